package coco

// BBox is an axis aligned box in COCO order: [x, y, width, height]
type BBox [4]float64

// BBoxFromCorners converts an (xmin, ymin, xmax, ymax) box.
// No clamping is done, so a malformed source box yields a negative width or height,
// which Validate will report.
func BBoxFromCorners(xmin, ymin, xmax, ymax float64) BBox {
	return BBox{xmin, ymin, xmax - xmin, ymax - ymin}
}

func (b BBox) X() float64      { return b[0] }
func (b BBox) Y() float64      { return b[1] }
func (b BBox) Width() float64  { return b[2] }
func (b BBox) Height() float64 { return b[3] }

func (b BBox) X2() float64 {
	return b[0] + b[2]
}

func (b BBox) Y2() float64 {
	return b[1] + b[3]
}

func (b BBox) Area() float64 {
	return b[2] * b[3]
}

// Returns true if width and height are not negative
func (b BBox) Valid() bool {
	return b[2] >= 0 && b[3] >= 0
}
