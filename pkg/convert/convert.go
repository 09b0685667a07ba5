package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/cyclopcam/detprep/pkg/coco"
	"github.com/cyclopcam/detprep/pkg/storage"
	"github.com/cyclopcam/detprep/pkg/vocab"
	"github.com/cyclopcam/logs"
)

// Package convert turns ILSVRC-DET and MS-COCO annotations into COCO-style documents
// in a video object vocabulary (VidOR or VidVRD).
//
// ILSVRC instances get area = box width * height. COCO instances keep the upstream
// area, which is measured on the segmentation mask and is usually smaller than the box,
// so area == bbox[2]*bbox[3] does not hold for the COCO documents.

// Options are shared by all converters
type Options struct {
	Log      logs.Log
	Vocab    *vocab.Vocab
	Policy   CategoryPolicy
	Exclude  []string  // Base names of annotation files to skip
	Progress io.Writer // Progress bars are written here. nil = silent
}

func (o *Options) excluded(filename string) bool {
	base := filepath.Base(filename)
	for _, e := range o.Exclude {
		if e == base {
			return true
		}
	}
	return false
}

// Output is a converted document, and the name it should be stored under
type Output struct {
	Name string
	Doc  *coco.Document
}

// WriteOutputs stores every document, and records them in the report
func WriteOutputs(log logs.Log, store storage.Storage, outputs []Output, report *Report) error {
	for _, out := range outputs {
		b, err := coco.Marshal(out.Doc)
		if err != nil {
			return fmt.Errorf("Failed to encode %v: %w", out.Name, err)
		}
		if err := storage.WriteFile(store, out.Name, bytes.NewReader(b)); err != nil {
			return err
		}
		log.Infof("Successfully exported annotations to %v", store.Location(out.Name))
		url, err := store.URL(out.Name)
		if err != nil && !errors.Is(err, storage.ErrNoPublicUrl) {
			return err
		}
		report.AddOutput(out.Name, store.Location(out.Name), url, out.Doc)
	}
	return nil
}

// SaveReport finishes the report and stores it under reports/
func SaveReport(log logs.Log, store storage.Storage, report *Report) error {
	report.Finish()
	b, err := report.Marshal()
	if err != nil {
		return err
	}
	if err := storage.WriteFile(store, report.Filename(), bytes.NewReader(b)); err != nil {
		return err
	}
	log.Infof("Report saved to %v", store.Location(report.Filename()))
	return nil
}
