package videox

import (
	"fmt"
	"io"

	"gocv.io/x/gocv"
)

// cvDecoder decodes with OpenCV's VideoCapture
type cvDecoder struct {
	filename string
	vc       *gocv.VideoCapture
	mat      gocv.Mat
	params   []int
}

// OpenOpenCV opens a video with OpenCV
func OpenOpenCV(filename string, quality int) (FrameDecoder, error) {
	vc, err := gocv.VideoCaptureFile(filename)
	if err != nil {
		return nil, fmt.Errorf("Error opening video file %v: %w", filename, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("OpenCV could not open %v", filename)
	}
	return &cvDecoder{
		filename: filename,
		vc:       vc,
		mat:      gocv.NewMat(),
		params:   []int{int(gocv.IMWriteJpegQuality), quality},
	}, nil
}

func (d *cvDecoder) Next() error {
	if !d.vc.Read(&d.mat) || d.mat.Empty() {
		return io.EOF
	}
	return nil
}

func (d *cvDecoder) JPEG() ([]byte, error) {
	return gocv.IMEncodeWithParams(gocv.JPEGFileExt, d.mat, d.params)
}

func (d *cvDecoder) Close() error {
	d.mat.Close()
	return d.vc.Close()
}
