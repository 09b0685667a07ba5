package videox

import (
	"context"
	"fmt"
)

// Decoder backends
const (
	BackendFFmpeg = "ffmpeg"
	BackendOpenCV = "opencv"
)

var Backends = []string{BackendFFmpeg, BackendOpenCV}

// DefaultJPEGQuality is used when no quality is specified
const DefaultJPEGQuality = 95

// FrameDecoder reads the frames of a video file, in presentation order.
// Decoding and compression are split, so that frames that are not sampled
// are never compressed.
type FrameDecoder interface {
	// Next decodes the next frame. Returns io.EOF after the last frame.
	Next() error

	// JPEG compresses the most recently decoded frame
	JPEG() ([]byte, error)

	Close() error
}

// Opener opens a video file for decoding
type Opener func(ctx context.Context, filename string) (FrameDecoder, error)

// NewOpener returns the opener for a backend. If quality is zero, DefaultJPEGQuality is used.
func NewOpener(backend string, quality int) (Opener, error) {
	if quality == 0 {
		quality = DefaultJPEGQuality
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("JPEG quality must be between 1 and 100, not %v", quality)
	}
	switch backend {
	case "", BackendFFmpeg:
		return func(ctx context.Context, filename string) (FrameDecoder, error) {
			return OpenFFmpeg(ctx, filename, quality)
		}, nil
	case BackendOpenCV:
		return func(ctx context.Context, filename string) (FrameDecoder, error) {
			return OpenOpenCV(filename, quality)
		}, nil
	}
	return nil, fmt.Errorf("Unknown decoder backend '%v' (expected one of %v)", backend, Backends)
}
