package convert

import (
	"fmt"
	"path/filepath"

	"github.com/cyclopcam/detprep/pkg/coco"
	"github.com/cyclopcam/detprep/pkg/progress"
	"github.com/cyclopcam/detprep/pkg/vocab"
)

// Source files, relative to the COCO root
const (
	COCOTrainFile   = "annotations/instances_train2014.json"
	COCOValFile     = "annotations/instances_val2014.json"
	COCOMinivalFile = "annotations/instances_minival2014.json"
)

// COCOOutputNames returns the document names for the train and val-minus-minival splits
func COCOOutputNames(dest string) (train, valMinusMinival string) {
	return fmt.Sprintf("train_%v.json", dest), fmt.Sprintf("val_minus_minival_%v.json", dest)
}

// ConvertCOCO converts COCO 2014 train, and val minus minival, into the target vocabulary.
// Image and annotation IDs, boxes and areas pass through unchanged. COCO areas are
// segmentation areas, so unlike the ILSVRC and frame documents, area is generally not
// the box area here.
func ConvertCOCO(root string, opt Options, report *Report) ([]Output, error) {
	load := func(name string) (*coco.Dataset, error) {
		opt.Log.Infof("Loading %v", name)
		ds, err := coco.Load(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			return nil, err
		}
		if dup := ds.DuplicateImageIDs(); len(dup) != 0 {
			return nil, fmt.Errorf("%v has %v duplicate image IDs, starting with %v", name, len(dup), dup[0])
		}
		return ds, nil
	}
	train, err := load(COCOTrainFile)
	if err != nil {
		return nil, err
	}
	val, err := load(COCOValFile)
	if err != nil {
		return nil, err
	}
	minival, err := load(COCOMinivalFile)
	if err != nil {
		return nil, err
	}

	// The train file's category table is authoritative for both splits
	trainDoc, err := convertCOCOSplit(&opt, report, train, train, train.ImageIDs(), "train2014")
	if err != nil {
		return nil, err
	}

	keep, err := coco.Subtract(val.ImageIDs(), minival.ImageIDs())
	if err != nil {
		return nil, fmt.Errorf("minival2014 is not a subset of val2014: %w", err)
	}
	if err := coco.CheckPartition(val.ImageIDs(), keep, minival.ImageIDs()); err != nil {
		return nil, fmt.Errorf("val-minus-minival and minival2014 do not partition val2014: %w", err)
	}
	valDoc, err := convertCOCOSplit(&opt, report, val, train, keep, "val2014")
	if err != nil {
		return nil, err
	}

	trainName, valName := COCOOutputNames(opt.Vocab.Name)
	return []Output{
		{Name: trainName, Doc: trainDoc},
		{Name: valName, Doc: valDoc},
	}, nil
}

func convertCOCOSplit(opt *Options, report *Report, src, categories *coco.Dataset, imageIDs []int64, split string) (*coco.Document, error) {
	doc, err := opt.Vocab.NewDocument(vocab.SourceCOCO)
	if err != nil {
		return nil, err
	}
	images, err := src.LoadImages(imageIDs)
	if err != nil {
		return nil, err
	}
	doc.Images = images

	anns := src.AnnotationsForImages(imageIDs)
	bar := progress.New(opt.Progress, len(anns), split)
	for _, ann := range anns {
		bar.Add(1)
		name, ok := categories.CategoryName(ann.CategoryID)
		if !ok {
			return nil, fmt.Errorf("Annotation %v in %v has category %v, which is not in the train2014 category table", ann.ID, split, ann.CategoryID)
		}
		categoryID, ok := opt.Vocab.COCOMap[name]
		if !ok {
			if err := opt.Policy.Unknown(opt.Log, report, name, fmt.Sprintf("%v annotation %v", split, ann.ID)); err != nil {
				return nil, err
			}
			continue
		}
		doc.Annotations = append(doc.Annotations, coco.Annotation{
			ID:         ann.ID,
			ImageID:    ann.ImageID,
			CategoryID: categoryID,
			BBox:       ann.BBox,
			Area:       ann.Area,
			IsCrowd:    0,
			BBoxMode:   coco.BBoxModeXYWHAbs,
		})
	}
	bar.Finish()
	return doc, nil
}
