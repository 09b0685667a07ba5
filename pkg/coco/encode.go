package coco

import (
	"bytes"
	"encoding/json"
	"io"
)

// Encode writes the document as compact JSON.
// Nil slices are written as empty arrays, because consumers index into them unconditionally.
func Encode(w io.Writer, doc *Document) error {
	out := *doc
	if out.Licenses == nil {
		out.Licenses = []License{}
	}
	if out.Categories == nil {
		out.Categories = []Category{}
	}
	if out.Images == nil {
		out.Images = []Image{}
	}
	if out.Annotations == nil {
		out.Annotations = []Annotation{}
	}
	return json.NewEncoder(w).Encode(&out)
}

// Marshal returns the encoded document
func Marshal(doc *Document) ([]byte, error) {
	buf := bytes.Buffer{}
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
