package frameanno

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/cyclopcam/detprep/pkg/coco"
	"github.com/cyclopcam/detprep/pkg/convert"
	"github.com/cyclopcam/detprep/pkg/idgen"
	"github.com/cyclopcam/detprep/pkg/progress"
	"github.com/cyclopcam/detprep/pkg/storage"
	"github.com/cyclopcam/detprep/pkg/vocab"
	"github.com/cyclopcam/logs"
)

// Package frameanno builds COCO-style documents for the frames that videox extracted,
// from the per-video trajectory annotations of VidOR and VidVRD.

// Splits
const (
	SplitTrain = "train"
	SplitTest  = "test"
)

var splitDirs = map[string]map[string]string{
	vocab.VidOR: {
		SplitTrain: "training",
		SplitTest:  "validation",
	},
	vocab.VidVRD: {
		SplitTrain: "train",
		SplitTest:  "test",
	},
}

// SplitDir is the folder under the dataset root that holds the annotations of a split
func SplitDir(dataset, split string) (string, error) {
	dirs, ok := splitDirs[dataset]
	if !ok {
		return "", fmt.Errorf("Unknown dataset '%v'", dataset)
	}
	dir, ok := dirs[split]
	if !ok {
		return "", fmt.Errorf("Unknown split '%v' (expected %v or %v)", split, SplitTrain, SplitTest)
	}
	return dir, nil
}

// OutputName is the name of the document for a split sampled every 'stride' frames, eg d2_train_32.json
func OutputName(split string, stride int) string {
	return fmt.Sprintf("d2_%v_%v.json", split, stride)
}

// PreconditionError is returned when a sampled frame that has boxes was never extracted.
// The frame extractor must run (with the same stride) before the annotator.
type PreconditionError struct {
	Path string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("Frame %v does not exist. Extract the frames first", e.Path)
}

var ErrDuplicateImageID = errors.New("Duplicate frame image ID")

// SplitIDs tracks the IDs handed out within one split document
type SplitIDs struct {
	Instances *idgen.Counter   // Starts at 0, so the first instance is 1
	images    map[int64]string // image ID -> frame file name
}

func NewSplitIDs() *SplitIDs {
	return &SplitIDs{
		Instances: idgen.NewCounter(0),
		images:    map[int64]string{},
	}
}

// addImage registers the image ID of a frame, failing if another frame already has it
func (s *SplitIDs) addImage(id int64, name string) error {
	if prev, ok := s.images[id]; ok {
		return fmt.Errorf("%w %v: %v and %v", ErrDuplicateImageID, id, prev, name)
	}
	s.images[id] = name
	return nil
}

// Annotator converts trajectory annotations into a frame document
type Annotator struct {
	Log      logs.Log
	Vocab    *vocab.Vocab
	Policy   convert.CategoryPolicy
	Stride   int
	Frames   storage.Storage // The extracted frames
	Progress io.Writer
}

// ListAnnotations returns every annotation file under dir, at any depth, in lexical order
func ListAnnotations(dir string) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// AnnotateSplit builds the document for one split of a dataset rooted at 'root'.
// Instance IDs come from a single counter for the whole split, starting at 1.
func (a *Annotator) AnnotateSplit(ctx context.Context, dataset, root, split string, report *convert.Report) (convert.Output, error) {
	if a.Stride < 1 {
		return convert.Output{}, fmt.Errorf("Sampling stride must be at least 1, not %v", a.Stride)
	}
	splitDir, err := SplitDir(dataset, split)
	if err != nil {
		return convert.Output{}, err
	}
	doc, err := a.Vocab.NewDocument(dataset)
	if err != nil {
		return convert.Output{}, err
	}
	files, err := ListAnnotations(filepath.Join(root, splitDir))
	if err != nil {
		return convert.Output{}, fmt.Errorf("Failed to list annotations of %v: %w", split, err)
	}
	a.Log.Infof("Annotating %v %v videos, every %v frames", len(files), split, a.Stride)

	ids := NewSplitIDs()
	bar := progress.New(a.Progress, len(files), split)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return convert.Output{}, err
		}
		va, err := LoadVideoAnnotation(file)
		if err != nil {
			return convert.Output{}, err
		}
		if va.VideoID == "" {
			va.VideoID = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}
		if err := a.AnnotateVideo(doc, ids, va, report); err != nil {
			return convert.Output{}, fmt.Errorf("%v: %w", file, err)
		}
		bar.Add(1)
	}
	bar.Finish()
	return convert.Output{Name: OutputName(split, a.Stride), Doc: doc}, nil
}

// AnnotateVideo appends the sampled frames of one video to doc
func (a *Annotator) AnnotateVideo(doc *coco.Document, ids *SplitIDs, va *VideoAnnotation, report *convert.Report) error {
	categories, err := va.Categories()
	if err != nil {
		return err
	}
	for frame := 0; frame < len(va.Trajectories); frame += a.Stride {
		boxes := va.Trajectories[frame]
		if len(boxes) == 0 {
			report.Skip(convert.SkipEmptyFrame)
			continue
		}
		name, err := idgen.FrameFileName(va.VideoID, frame)
		if err != nil {
			return err
		}
		exists, err := a.Frames.Exists(name)
		if err != nil {
			return err
		}
		if !exists {
			return &PreconditionError{Path: a.Frames.Location(name)}
		}
		imageID, err := idgen.FrameImageID(va.VideoID, frame)
		if err != nil {
			return err
		}
		if err := ids.addImage(imageID, name); err != nil {
			return err
		}
		doc.Images = append(doc.Images, coco.Image{
			ID:       imageID,
			FileName: name,
			Width:    va.Width,
			Height:   va.Height,
		})
		for _, b := range boxes {
			catName, ok := categories[b.TID]
			if !ok {
				return fmt.Errorf("Frame %v has a box for tid %v, which is not in the object list", frame, b.TID)
			}
			categoryID, ok := a.Vocab.CategoryID(catName)
			if !ok {
				if err := a.Policy.Unknown(a.Log, report, catName, name); err != nil {
					return err
				}
				continue
			}
			box := coco.BBoxFromCorners(b.BBox.XMin, b.BBox.YMin, b.BBox.XMax, b.BBox.YMax)
			doc.Annotations = append(doc.Annotations, coco.NewInstance(ids.Instances.Next(), imageID, categoryID, box))
		}
	}
	return nil
}
