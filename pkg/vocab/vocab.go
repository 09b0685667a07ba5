package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/cyclopcam/detprep/pkg/coco"
)

// Package vocab holds the target category vocabularies (VidOR, VidVRD), and the tables that
// map source dataset classes (COCO names, ILSVRC synset IDs) onto them.

const (
	VidOR  = "vidor"
	VidVRD = "vidvrd"
)

// Names of the supported target vocabularies
var Names = []string{VidOR, VidVRD}

// Vocab is a target category vocabulary, plus the mappings from source datasets into it.
type Vocab struct {
	Name       string          `json:"name"`
	Categories []coco.Category `json:"categories"`
	COCOMap    map[string]int  `json:"cocoMap"`   // COCO class name -> category ID
	ILSVRCMap  map[string]int  `json:"ilsvrcMap"` // ILSVRC synset ID (eg n02691156) -> category ID

	byName map[string]int
}

// Get returns one of the built-in vocabularies
func Get(name string) (*Vocab, error) {
	switch name {
	case VidOR:
		return build(VidOR, vidorClasses, vidorFromCOCO, vidorFromILSVRC)
	case VidVRD:
		return build(VidVRD, vidvrdClasses, vidvrdFromCOCO, vidvrdFromILSVRC)
	}
	return nil, fmt.Errorf("Unknown vocabulary '%v' (expected one of %v)", name, Names)
}

// The static tables map source classes to target category names, so that the
// numeric IDs only live in one place (the order of the class list).
func build(name string, classes []string, fromCOCO, fromILSVRC map[string]string) (*Vocab, error) {
	v := &Vocab{
		Name:       name,
		Categories: makeCategories(classes),
		COCOMap:    make(map[string]int, len(fromCOCO)),
		ILSVRCMap:  make(map[string]int, len(fromILSVRC)),
	}
	v.index()
	for src, dst := range fromCOCO {
		id, ok := v.byName[dst]
		if !ok {
			return nil, fmt.Errorf("COCO class '%v' maps to '%v', which is not a %v category", src, dst, name)
		}
		v.COCOMap[src] = id
	}
	for src, dst := range fromILSVRC {
		id, ok := v.byName[dst]
		if !ok {
			return nil, fmt.Errorf("ILSVRC synset '%v' maps to '%v', which is not a %v category", src, dst, name)
		}
		v.ILSVRCMap[src] = id
	}
	return v, nil
}

// Load reads a vocabulary from a JSON file, for datasets that aren't built in,
// or to override the built-in mappings.
func Load(filename string) (*Vocab, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	v := &Vocab{}
	if err := json.Unmarshal(b, v); err != nil {
		return nil, fmt.Errorf("Failed to parse vocabulary %v: %w", filename, err)
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("Invalid vocabulary %v: %w", filename, err)
	}
	v.index()
	return v, nil
}

// Validate checks that category IDs and names are unique, and that every
// mapping targets an existing category.
func (v *Vocab) Validate() error {
	if len(v.Categories) == 0 {
		return fmt.Errorf("No categories")
	}
	ids := map[int]bool{}
	names := map[string]bool{}
	for _, c := range v.Categories {
		if ids[c.ID] {
			return fmt.Errorf("Duplicate category ID %v", c.ID)
		}
		if names[c.Name] {
			return fmt.Errorf("Duplicate category name '%v'", c.Name)
		}
		ids[c.ID] = true
		names[c.Name] = true
	}
	for src, id := range v.COCOMap {
		if !ids[id] {
			return fmt.Errorf("COCO class '%v' maps to unknown category %v", src, id)
		}
	}
	for src, id := range v.ILSVRCMap {
		if !ids[id] {
			return fmt.Errorf("ILSVRC synset '%v' maps to unknown category %v", src, id)
		}
	}
	return nil
}

func (v *Vocab) index() {
	v.byName = make(map[string]int, len(v.Categories))
	for _, c := range v.Categories {
		v.byName[c.Name] = c.ID
	}
}

// CategoryID returns the ID of a category in this vocabulary
func (v *Vocab) CategoryID(name string) (int, bool) {
	if v.byName == nil {
		v.index()
	}
	id, ok := v.byName[name]
	return id, ok
}

// ILSVRCSynsets returns the synset IDs that map into this vocabulary, sorted
func (v *Vocab) ILSVRCSynsets() []string {
	wnids := make([]string, 0, len(v.ILSVRCMap))
	for wnid := range v.ILSVRCMap {
		wnids = append(wnids, wnid)
	}
	sort.Strings(wnids)
	return wnids
}

// Category IDs are 1-based, in table order
func makeCategories(names []string) []coco.Category {
	cats := make([]coco.Category, len(names))
	for i, name := range names {
		cats[i] = coco.Category{ID: i + 1, Name: name}
	}
	return cats
}
