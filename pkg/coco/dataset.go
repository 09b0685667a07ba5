package coco

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// sourceDocument is the on-disk layout of an upstream COCO instances file.
// Unlike our own Document, it spells "licenses" correctly.
type sourceDocument struct {
	Info        Info         `json:"info"`
	Licenses    []License    `json:"licenses"`
	Categories  []Category   `json:"categories"`
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
}

// Dataset is an indexed COCO annotation file.
// All accessors preserve the order of the source file, so anything derived
// from a Dataset is deterministic.
type Dataset struct {
	Info        Info
	Licenses    []License
	Categories  []Category
	Images      []Image
	Annotations []Annotation

	imageIndex    map[int64]int   // image ID -> index into Images
	imageAnns     map[int64][]int // image ID -> indices into Annotations
	annIndex      map[int64]int   // annotation ID -> index into Annotations, built on first use
	categoryNames map[int]string
	duplicates    []int64
}

// Load reads and indexes a COCO instances file
func Load(filename string) (*Dataset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Failed to load COCO file %v: %w", filename, err)
	}
	return ds, nil
}

// Decode reads and indexes a COCO instances document.
// Our own output documents (with the "liscenses" key) decode fine too, they just
// come back without licenses. Duplicate image IDs are not an error here, so that
// damaged files can still be inspected. See DuplicateImageIDs.
func Decode(r io.Reader) (*Dataset, error) {
	src := sourceDocument{}
	if err := json.NewDecoder(r).Decode(&src); err != nil {
		return nil, err
	}
	ds := &Dataset{
		Info:          src.Info,
		Licenses:      src.Licenses,
		Categories:    src.Categories,
		Images:        src.Images,
		Annotations:   src.Annotations,
		imageIndex:    make(map[int64]int, len(src.Images)),
		imageAnns:     make(map[int64][]int, len(src.Images)),
		categoryNames: make(map[int]string, len(src.Categories)),
	}
	for i, img := range ds.Images {
		if _, ok := ds.imageIndex[img.ID]; ok {
			ds.duplicates = append(ds.duplicates, img.ID)
			continue
		}
		ds.imageIndex[img.ID] = i
	}
	for i, ann := range ds.Annotations {
		ds.imageAnns[ann.ImageID] = append(ds.imageAnns[ann.ImageID], i)
	}
	for _, cat := range ds.Categories {
		ds.categoryNames[cat.ID] = cat.Name
	}
	return ds, nil
}

// ImageIDs returns the IDs of all images, in file order
func (d *Dataset) ImageIDs() []int64 {
	ids := make([]int64, len(d.Images))
	for i := range d.Images {
		ids[i] = d.Images[i].ID
	}
	return ids
}

// LoadImages returns the image records for the given IDs, in the order given
func (d *Dataset) LoadImages(ids []int64) ([]Image, error) {
	images := make([]Image, 0, len(ids))
	for _, id := range ids {
		idx, ok := d.imageIndex[id]
		if !ok {
			return nil, fmt.Errorf("Image %v not found", id)
		}
		images = append(images, d.Images[idx])
	}
	return images, nil
}

// AnnotationsForImages returns all annotations of the given images.
// Annotations are grouped by image, in the order of ids, and within an image
// they keep their file order. Unknown image IDs contribute nothing.
func (d *Dataset) AnnotationsForImages(ids []int64) []Annotation {
	anns := []Annotation{}
	for _, id := range ids {
		for _, idx := range d.imageAnns[id] {
			anns = append(anns, d.Annotations[idx])
		}
	}
	return anns
}

// CategoryName returns the name of a category ID
func (d *Dataset) CategoryName(id int) (string, bool) {
	name, ok := d.categoryNames[id]
	return name, ok
}

// DuplicateImageIDs returns the image IDs that appear more than once, in file order.
// Lookups by such an ID return the first image with it.
func (d *Dataset) DuplicateImageIDs() []int64 {
	return d.duplicates
}

// Subtract returns the IDs in 'all' that are not in 'remove', preserving the order of 'all'.
// It is an error for 'remove' to contain an ID that isn't in 'all', because that means
// the two sets don't come from the same split.
func Subtract(all, remove []int64) ([]int64, error) {
	inAll := make(map[int64]bool, len(all))
	for _, id := range all {
		inAll[id] = true
	}
	drop := make(map[int64]bool, len(remove))
	for _, id := range remove {
		if !inAll[id] {
			return nil, fmt.Errorf("Image %v is not part of the set being subtracted from", id)
		}
		drop[id] = true
	}
	out := make([]int64, 0, len(all)-len(drop))
	for _, id := range all {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// AnnotationIDsForImages returns the IDs of all annotations of the given images,
// in the same order as AnnotationsForImages.
func (d *Dataset) AnnotationIDsForImages(ids []int64) []int64 {
	annIDs := []int64{}
	for _, id := range ids {
		for _, idx := range d.imageAnns[id] {
			annIDs = append(annIDs, d.Annotations[idx].ID)
		}
	}
	return annIDs
}

// LoadAnnotations returns the annotation records for the given IDs, in the order given
func (d *Dataset) LoadAnnotations(ids []int64) ([]Annotation, error) {
	if d.annIndex == nil {
		d.annIndex = make(map[int64]int, len(d.Annotations))
		for i, ann := range d.Annotations {
			d.annIndex[ann.ID] = i
		}
	}
	anns := make([]Annotation, 0, len(ids))
	for _, id := range ids {
		idx, ok := d.annIndex[id]
		if !ok {
			return nil, fmt.Errorf("Annotation %v not found", id)
		}
		anns = append(anns, d.Annotations[idx])
	}
	return anns, nil
}
