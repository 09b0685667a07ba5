package coco

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CategoryStats summarizes the instances of one category
type CategoryStats struct {
	CategoryID   int
	Name         string
	Instances    int
	Images       int     // Number of distinct images with at least one instance
	MeanArea     float64 // Box area, in pixels
	StdDevArea   float64
	MedianArea   float64
	MeanAspect   float64 // width / height, over boxes with non-zero height
	MinBoxHeight float64
}

// ComputeStats returns one entry per category, in category order.
// Categories without any instances are included, with zero counts.
func ComputeStats(doc *Document) []CategoryStats {
	areas := map[int][]float64{}
	aspects := map[int][]float64{}
	minHeight := map[int]float64{}
	images := map[int]map[int64]bool{}
	for _, ann := range doc.Annotations {
		c := ann.CategoryID
		areas[c] = append(areas[c], ann.BBox.Area())
		if ann.BBox.Height() > 0 {
			aspects[c] = append(aspects[c], ann.BBox.Width()/ann.BBox.Height())
		}
		if h, ok := minHeight[c]; !ok || ann.BBox.Height() < h {
			minHeight[c] = ann.BBox.Height()
		}
		if images[c] == nil {
			images[c] = map[int64]bool{}
		}
		images[c][ann.ImageID] = true
	}

	out := make([]CategoryStats, 0, len(doc.Categories))
	for _, cat := range doc.Categories {
		s := CategoryStats{
			CategoryID: cat.ID,
			Name:       cat.Name,
			Instances:  len(areas[cat.ID]),
			Images:     len(images[cat.ID]),
		}
		if a := areas[cat.ID]; len(a) != 0 {
			sorted := append([]float64(nil), a...)
			sort.Float64s(sorted)
			s.MeanArea = stat.Mean(sorted, nil)
			if len(sorted) > 1 {
				s.StdDevArea = stat.StdDev(sorted, nil)
			}
			s.MedianArea = stat.Quantile(0.5, stat.Empirical, sorted, nil)
			s.MinBoxHeight = minHeight[cat.ID]
		}
		if a := aspects[cat.ID]; len(a) != 0 {
			s.MeanAspect = stat.Mean(a, nil)
		}
		out = append(out, s)
	}
	return out
}
