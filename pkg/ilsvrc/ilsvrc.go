package ilsvrc

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Package ilsvrc reads the Pascal VOC style XML annotations of the ImageNet DET challenge.
//
//	root
//	├── Annotations/DET/train/ILSVRC2013_train/<synset>/*.xml
//	├── Annotations/DET/train/ILSVRC2014_train_000{0..6}/*.xml
//	├── Data/DET/train/...
//	└── ImageSets/DET/...

// TrainAnnotationsDir is relative to the dataset root
const TrainAnnotationsDir = "Annotations/DET/train"

// Train2013Dir is the 2013 training partition, with one sub-folder per synset
const Train2013Dir = "ILSVRC2013_train"

// Train2014Dirs are the folders of the 2014 training partition
var Train2014Dirs = []string{
	"ILSVRC2014_train_0000",
	"ILSVRC2014_train_0001",
	"ILSVRC2014_train_0002",
	"ILSVRC2014_train_0003",
	"ILSVRC2014_train_0004",
	"ILSVRC2014_train_0005",
	"ILSVRC2014_train_0006",
}

// Annotation is the contents of one XML file
type Annotation struct {
	XMLName  xml.Name `xml:"annotation"`
	Folder   string   `xml:"folder"`
	Filename string   `xml:"filename"`
	Size     Size     `xml:"size"`
	Objects  []Object `xml:"object"`
}

type Size struct {
	Width  int `xml:"width"`
	Height int `xml:"height"`
}

type Object struct {
	Name   string `xml:"name"`
	BndBox BndBox `xml:"bndbox"`
}

type BndBox struct {
	XMin int `xml:"xmin"`
	YMin int `xml:"ymin"`
	XMax int `xml:"xmax"`
	YMax int `xml:"ymax"`
}

// ImageFileName is the path of the image, relative to the image root of the partition
func (a *Annotation) ImageFileName() string {
	return a.Folder + "/" + a.Filename + ".JPEG"
}

// Parse decodes an annotation
func Parse(r io.Reader) (*Annotation, error) {
	a := &Annotation{}
	if err := xml.NewDecoder(r).Decode(a); err != nil {
		return nil, err
	}
	if a.Filename == "" {
		return nil, fmt.Errorf("Annotation has no filename")
	}
	return a, nil
}

// ParseFile decodes an annotation file
func ParseFile(filename string) (*Annotation, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	a, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse %v: %w", filename, err)
	}
	return a, nil
}

// ListAnnotationFiles returns the XML files in a directory, sorted by name
func ListAnnotationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".xml") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
