package videox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/cyclopcam/detprep/pkg/idgen"
	"github.com/cyclopcam/detprep/pkg/progress"
	"github.com/cyclopcam/detprep/pkg/storage"
	"github.com/cyclopcam/logs"
)

// VideosDir is the folder of a dataset root that holds the videos
const VideosDir = "videos"

var videoExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mkv": true,
	".mov": true,
}

// FramesDirName is the default name of the folder that frames sampled every 'stride' frames are written to
func FramesDirName(stride int) string {
	return fmt.Sprintf("frames@%v", stride)
}

// VideoID is the file name of a video without its extension, eg "2401075277"
func VideoID(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ListVideos returns every video file under dir, at any depth, in lexical order
func ListVideos(dir string) ([]string, error) {
	videos := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && videoExtensions[strings.ToLower(filepath.Ext(path))] {
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// Extractor samples frames out of videos, and writes them as JPEG files
type Extractor struct {
	Log      logs.Log
	Open     Opener
	Frames   storage.Storage // Destination of the frames
	Stride   int             // Keep frames whose index is a multiple of Stride
	Progress io.Writer
}

// ExtractStats counts the work done by an extraction run
type ExtractStats struct {
	Videos  int
	Decoded int
	Written int
}

// ExtractAll extracts every video under videosDir.
// A frame index that does not fit in the file name fails the whole run, instead of
// producing names that collide or sort incorrectly.
func (e *Extractor) ExtractAll(ctx context.Context, videosDir string) (ExtractStats, error) {
	total := ExtractStats{}
	if e.Stride < 1 {
		return total, fmt.Errorf("Sampling stride must be at least 1, not %v", e.Stride)
	}
	videos, err := ListVideos(videosDir)
	if err != nil {
		return total, fmt.Errorf("Failed to list videos in %v: %w", videosDir, err)
	}
	e.Log.Infof("Extracting every %v frames from %v videos in %v", e.Stride, len(videos), videosDir)
	bar := progress.New(e.Progress, len(videos), "videos")
	for _, video := range videos {
		stats, err := e.ExtractVideo(ctx, video)
		total.Decoded += stats.Decoded
		total.Written += stats.Written
		if err != nil {
			return total, err
		}
		total.Videos++
		bar.Add(1)
	}
	bar.Finish()
	e.Log.Infof("Successfully extracted %v frames (1/%v) from %v videos", total.Written, e.Stride, total.Videos)
	return total, nil
}

// ExtractVideo decodes a single video sequentially and writes frame i when i % Stride == 0
func (e *Extractor) ExtractVideo(ctx context.Context, filename string) (stats ExtractStats, err error) {
	if e.Stride < 1 {
		return stats, fmt.Errorf("Sampling stride must be at least 1, not %v", e.Stride)
	}
	videoID := VideoID(filename)
	dec, err := e.Open(ctx, filename)
	if err != nil {
		return stats, err
	}
	defer func() {
		if closeErr := dec.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for frame := 0; ; frame++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := dec.Next(); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return stats, fmt.Errorf("Failed to decode frame %v of %v: %w", frame, filename, err)
		}
		stats.Decoded++
		if frame%e.Stride != 0 {
			continue
		}
		name, err := idgen.FrameFileName(videoID, frame)
		if err != nil {
			return stats, err
		}
		jpg, err := dec.JPEG()
		if err != nil {
			return stats, fmt.Errorf("Failed to compress frame %v of %v: %w", frame, filename, err)
		}
		if err := storage.WriteFile(e.Frames, name, bytes.NewReader(jpg)); err != nil {
			return stats, err
		}
		stats.Written++
	}
	e.Log.Debugf("%v: wrote %v of %v frames", videoID, stats.Written, stats.Decoded)
	return stats, nil
}
