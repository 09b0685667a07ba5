package frameanno

import (
	"encoding/json"
	"fmt"
	"os"
)

// VideoAnnotation is a VidOR / VidVRD per-video annotation file.
// Relation instances are ignored.
type VideoAnnotation struct {
	VideoID      string          `json:"video_id"`
	VideoPath    string          `json:"video_path"`
	FrameCount   int             `json:"frame_count"`
	FPS          float64         `json:"fps"`
	Width        int             `json:"width"`
	Height       int             `json:"height"`
	Objects      []TrackedObject `json:"subject/objects"`
	Trajectories [][]TrackedBox  `json:"trajectories"` // Indexed by frame
}

// TrackedObject is an entry of the object catalog of a video
type TrackedObject struct {
	TID      int    `json:"tid"`
	Category string `json:"category"`
}

// TrackedBox is the position of one object in one frame
type TrackedBox struct {
	TID       int    `json:"tid"`
	BBox      Corner `json:"bbox"`
	Generated int    `json:"generated"`
}

type Corner struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// LoadVideoAnnotation reads a per-video annotation file
func LoadVideoAnnotation(filename string) (*VideoAnnotation, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	va := &VideoAnnotation{}
	if err := json.Unmarshal(b, va); err != nil {
		return nil, fmt.Errorf("Failed to parse %v: %w", filename, err)
	}
	return va, nil
}

// Categories returns the tid -> category name map of the video
func (va *VideoAnnotation) Categories() (map[int]string, error) {
	m := make(map[int]string, len(va.Objects))
	for _, obj := range va.Objects {
		if prev, ok := m[obj.TID]; ok && prev != obj.Category {
			return nil, fmt.Errorf("tid %v is both '%v' and '%v'", obj.TID, prev, obj.Category)
		}
		m[obj.TID] = obj.Category
	}
	return m, nil
}
