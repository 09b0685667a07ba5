package coco

// Package coco holds the COCO-style annotation document that every converter in this
// repo produces, plus a small reader that indexes source COCO files.

// BBoxModeXYWHAbs is the detectron2 BoxMode for absolute [x, y, width, height] boxes.
const BBoxModeXYWHAbs = 1

// DocumentType is the value of the top-level "type" key
const DocumentType = "instances"

// Document is a COCO-style annotation file.
// The "liscenses" key is misspelled on purpose. Downstream consumers were written
// against files that carry it, so we keep it byte-for-byte.
type Document struct {
	Info        Info         `json:"info"`
	Type        string       `json:"type"`
	Licenses    []License    `json:"liscenses"`
	Categories  []Category   `json:"categories"`
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
}

type Info struct {
	Description string `json:"description"`
	URL         string `json:"url"`
	Version     string `json:"version"`
	Year        int    `json:"year"`
	Contributor string `json:"contributor"`
	DateCreated string `json:"date_created"`
}

type License struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Category struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory,omitempty"`
}

// Image is an image record. The optional fields are only populated when we pass
// a record through from a source COCO file.
type Image struct {
	ID           int64  `json:"id"`
	FileName     string `json:"file_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	License      int    `json:"license,omitempty"`
	CocoURL      string `json:"coco_url,omitempty"`
	FlickrURL    string `json:"flickr_url,omitempty"`
	DateCaptured string `json:"date_captured,omitempty"`
}

// Annotation is a single object instance inside an image
type Annotation struct {
	ID         int64   `json:"id"`
	ImageID    int64   `json:"image_id"`
	CategoryID int     `json:"category_id"`
	BBox       BBox    `json:"bbox"`
	Area       float64 `json:"area"`
	IsCrowd    int     `json:"iscrowd"`
	BBoxMode   int     `json:"bbox_mode"`
}

// NewDocument creates an empty document with the given header
func NewDocument(info Info, licenses []License, categories []Category) *Document {
	return &Document{
		Info:        info,
		Type:        DocumentType,
		Licenses:    licenses,
		Categories:  categories,
		Images:      []Image{},
		Annotations: []Annotation{},
	}
}

// NewInstance builds an annotation for the given box, with area derived from the box.
func NewInstance(id, imageID int64, categoryID int, box BBox) Annotation {
	return Annotation{
		ID:         id,
		ImageID:    imageID,
		CategoryID: categoryID,
		BBox:       box,
		Area:       box.Area(),
		IsCrowd:    0,
		BBoxMode:   BBoxModeXYWHAbs,
	}
}
