package vocab

import (
	"fmt"

	"github.com/cyclopcam/detprep/pkg/coco"
)

// Keys for the "info" header, by the dataset that the annotations came from
const (
	SourceCOCO   = "coco"
	SourceILSVRC = "ilsvrc-det"
)

var infos = map[string]coco.Info{
	SourceCOCO: {
		Description: "MS-COCO 2014 detection annotations, remapped to a video object vocabulary",
		URL:         "http://cocodataset.org",
		Version:     "1.0",
		Year:        2014,
		Contributor: "COCO Consortium",
		DateCreated: "2017/09/01",
	},
	SourceILSVRC: {
		Description: "ImageNet ILSVRC2015 DET training annotations, remapped to a video object vocabulary",
		URL:         "http://image-net.org/challenges/LSVRC/2015/",
		Version:     "1.0",
		Year:        2015,
		Contributor: "ImageNet",
		DateCreated: "2015/04/01",
	},
	VidOR: {
		Description: "VidOR video object relation dataset, sampled frames",
		URL:         "https://xdshang.github.io/docs/vidor.html",
		Version:     "1.0",
		Year:        2019,
		Contributor: "NExT++",
		DateCreated: "2019/05/01",
	},
	VidVRD: {
		Description: "VidVRD video visual relation dataset, sampled frames",
		URL:         "https://xdshang.github.io/docs/imagenet-vidvrd.html",
		Version:     "1.0",
		Year:        2017,
		Contributor: "NExT++",
		DateCreated: "2017/10/01",
	},
}

// Licenses is written into every document we produce
var Licenses = []coco.License{
	{
		ID:   1,
		Name: "Attribution-NonCommercial-ShareAlike License",
		URL:  "http://creativecommons.org/licenses/by-nc-sa/2.0/",
	},
}

// Info returns the document header for annotations that came from the given source
func Info(source string) (coco.Info, error) {
	info, ok := infos[source]
	if !ok {
		return coco.Info{}, fmt.Errorf("No info header for source '%v'", source)
	}
	return info, nil
}

// NewDocument creates an empty document for this vocabulary, with the header for 'source'
func (v *Vocab) NewDocument(source string) (*coco.Document, error) {
	info, err := Info(source)
	if err != nil {
		return nil, err
	}
	cats := append([]coco.Category(nil), v.Categories...)
	return coco.NewDocument(info, Licenses, cats), nil
}
