package coco

import (
	"errors"
	"fmt"
)

// ValidateOptions controls which invariants Validate enforces
type ValidateOptions struct {
	// Require area == width * height. Documents that pass areas through from upstream COCO
	// carry segmentation areas, so this must be disabled for them.
	CheckArea bool

	// Stop collecting after this many problems (0 = no limit)
	MaxProblems int
}

// Validate checks the structural invariants of a document:
// unique image and annotation IDs, every annotation references an existing image and category,
// boxes have non-negative size, and (optionally) area is the box area.
// All problems are joined into the returned error.
func Validate(doc *Document, opt ValidateOptions) error {
	problems := []error{}
	add := func(format string, a ...any) bool {
		problems = append(problems, fmt.Errorf(format, a...))
		return opt.MaxProblems > 0 && len(problems) >= opt.MaxProblems
	}

	categories := map[int]bool{}
	for _, cat := range doc.Categories {
		if categories[cat.ID] {
			if add("duplicate category id %v", cat.ID) {
				return errors.Join(problems...)
			}
		}
		categories[cat.ID] = true
	}

	images := make(map[int64]bool, len(doc.Images))
	for _, img := range doc.Images {
		if images[img.ID] {
			if add("duplicate image id %v (%v)", img.ID, img.FileName) {
				return errors.Join(problems...)
			}
		}
		images[img.ID] = true
	}

	anns := make(map[int64]bool, len(doc.Annotations))
	for _, ann := range doc.Annotations {
		stop := false
		if anns[ann.ID] {
			stop = add("duplicate annotation id %v", ann.ID)
		}
		anns[ann.ID] = true
		if !images[ann.ImageID] {
			stop = add("annotation %v references missing image %v", ann.ID, ann.ImageID) || stop
		}
		if !categories[ann.CategoryID] {
			stop = add("annotation %v references missing category %v", ann.ID, ann.CategoryID) || stop
		}
		if !ann.BBox.Valid() {
			stop = add("annotation %v has negative box size %v", ann.ID, ann.BBox) || stop
		}
		if opt.CheckArea && ann.Area != ann.BBox.Area() {
			stop = add("annotation %v has area %v, but box area is %v", ann.ID, ann.Area, ann.BBox.Area()) || stop
		}
		if stop {
			break
		}
	}
	return errors.Join(problems...)
}

// CheckPartition verifies that 'subset' and 'removed' are disjoint, and that together they
// make up exactly 'full'. This is the relationship between val2014, minival2014, and
// val-minus-minival.
func CheckPartition(full, subset, removed []int64) error {
	inFull := make(map[int64]bool, len(full))
	for _, id := range full {
		inFull[id] = true
	}
	seen := make(map[int64]bool, len(full))
	inSubset := make(map[int64]bool, len(subset))
	for _, id := range subset {
		inSubset[id] = true
		seen[id] = true
	}
	for _, id := range removed {
		if inSubset[id] {
			return fmt.Errorf("Image %v is in both the subset and the removed set", id)
		}
		seen[id] = true
	}
	for id := range seen {
		if !inFull[id] {
			return fmt.Errorf("Image %v is not part of the full set", id)
		}
	}
	if len(seen) != len(inFull) {
		return fmt.Errorf("Subset and removed set cover %v images, but the full set has %v", len(seen), len(inFull))
	}
	return nil
}
