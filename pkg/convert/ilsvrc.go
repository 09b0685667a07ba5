package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cyclopcam/detprep/pkg/coco"
	"github.com/cyclopcam/detprep/pkg/idgen"
	"github.com/cyclopcam/detprep/pkg/ilsvrc"
	"github.com/cyclopcam/detprep/pkg/progress"
	"github.com/cyclopcam/detprep/pkg/vocab"
)

// ILSVRC partition tags, which lead every image ID of the partition
const (
	Partition2013 = 2013
	Partition2014 = 2014
)

// ILSVRCOutputNames returns the document names for the two ILSVRC partitions
func ILSVRCOutputNames(dest string) (train2013, train2014 string) {
	return fmt.Sprintf("train_2013_%v.json", dest), fmt.Sprintf("train_2014_%v.json", dest)
}

// partition accumulates one output document, with its own instance ID space
type partition struct {
	tag      int
	doc      *coco.Document
	instance *idgen.Counter
	seen     map[int64]string // image ID -> annotation file that claimed it
}

func newPartition(opt *Options, tag int, base int64) (*partition, error) {
	doc, err := opt.Vocab.NewDocument(vocab.SourceILSVRC)
	if err != nil {
		return nil, err
	}
	return &partition{
		tag:      tag,
		doc:      doc,
		instance: idgen.NewCounter(base),
		seen:     map[int64]string{},
	}, nil
}

// ConvertILSVRC converts the DET training annotations under root into two documents,
// one for the 2013 partition (restricted to the vocabulary's synset folders) and one for
// the 2014 partition (all seven folders).
func ConvertILSVRC(root string, opt Options, report *Report) ([]Output, error) {
	annoRoot := filepath.Join(root, filepath.FromSlash(ilsvrc.TrainAnnotationsDir))

	p2013, err := newPartition(&opt, Partition2013, idgen.ILSVRC2013InstanceBase)
	if err != nil {
		return nil, err
	}
	synsets := opt.Vocab.ILSVRCSynsets()
	bar := progress.New(opt.Progress, len(synsets), "ILSVRC2013")
	for _, wnid := range synsets {
		dir := filepath.Join(annoRoot, ilsvrc.Train2013Dir, wnid)
		files, err := ilsvrc.ListAnnotationFiles(dir)
		if os.IsNotExist(err) {
			opt.Log.Warnf("Synset folder %v does not exist", dir)
			report.Skip(SkipMissingFolder)
			bar.Add(1)
			continue
		} else if err != nil {
			return nil, err
		}
		classCode := opt.Vocab.ILSVRCMap[wnid]
		for _, file := range files {
			if err := convertILSVRCFile(&opt, report, p2013, file, classCode); err != nil {
				return nil, err
			}
		}
		bar.Add(1)
	}
	bar.Finish()

	p2014, err := newPartition(&opt, Partition2014, idgen.ILSVRC2014InstanceBase)
	if err != nil {
		return nil, err
	}
	for _, folder := range ilsvrc.Train2014Dirs {
		files, err := ilsvrc.ListAnnotationFiles(filepath.Join(annoRoot, folder))
		if err != nil {
			return nil, fmt.Errorf("Failed to list %v: %w", folder, err)
		}
		bar := progress.New(opt.Progress, len(files), folder)
		for _, file := range files {
			if err := convertILSVRCFile(&opt, report, p2014, file, idgen.ILSVRC2014ClassCode); err != nil {
				return nil, err
			}
			bar.Add(1)
		}
		bar.Finish()
	}

	name2013, name2014 := ILSVRCOutputNames(opt.Vocab.Name)
	return []Output{
		{Name: name2013, Doc: p2013.doc},
		{Name: name2014, Doc: p2014.doc},
	}, nil
}

func convertILSVRCFile(opt *Options, report *Report, p *partition, file string, classCode int) error {
	if opt.excluded(file) {
		opt.Log.Debugf("Skipping excluded file %v", file)
		report.Skip(SkipExcluded)
		return nil
	}
	anno, err := ilsvrc.ParseFile(file)
	if err != nil {
		return err
	}
	if len(anno.Objects) == 0 {
		report.Skip(SkipNoObjects)
		return nil
	}

	imageID, err := idgen.ILSVRCImageID(anno.Filename, p.tag, classCode)
	if err != nil {
		return fmt.Errorf("%v: %w", file, err)
	}
	if prev, ok := p.seen[imageID]; ok {
		opt.Log.Warnf("Image ID %v of %v collides with %v. Dropping %v", imageID, file, prev, filepath.Base(file))
		report.Skip(SkipDuplicateImage)
		return nil
	}
	p.seen[imageID] = file

	p.doc.Images = append(p.doc.Images, coco.Image{
		ID:       imageID,
		FileName: anno.ImageFileName(),
		Width:    anno.Size.Width,
		Height:   anno.Size.Height,
	})

	for _, obj := range anno.Objects {
		categoryID, ok := opt.Vocab.ILSVRCMap[obj.Name]
		if !ok {
			if err := opt.Policy.Unknown(opt.Log, report, obj.Name, file); err != nil {
				return err
			}
			continue
		}
		b := obj.BndBox
		box := coco.BBoxFromCorners(float64(b.XMin), float64(b.YMin), float64(b.XMax), float64(b.YMax))
		p.doc.Annotations = append(p.doc.Annotations, coco.NewInstance(p.instance.Next(), imageID, categoryID, box))
	}
	return nil
}
