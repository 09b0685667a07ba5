package videox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bmharper/cimg/v2"
	"github.com/cyclopcam/detprep/pkg/shell"
)

// ffprobeStreams is the JSON that ffprobe prints for -show_entries stream=...
type ffprobeStreams struct {
	Streams []struct {
		Width    int `json:"width"`
		Height   int `json:"height"`
		SideData []struct {
			Rotation float64 `json:"rotation"`
		} `json:"side_data_list"`
		Tags struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
	} `json:"streams"`
}

// ExtractVideoSize returns the width and height of the first video stream, as ffmpeg
// decodes it. ffmpeg applies rotation metadata, so a stream that is rotated by 90 or 270
// degrees comes out with width and height swapped.
func ExtractVideoSize(srcFilename string) (width, height int, err error) {
	out, err := shell.Run("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:stream_tags=rotate:stream_side_data=rotation",
		"-of", "json",
		srcFilename,
	)
	if err != nil {
		return 0, 0, err
	}
	return parseVideoSize(out)
}

func parseVideoSize(out string) (width, height int, err error) {
	// Some builds print a warning line before the JSON
	start := strings.Index(out, "{")
	if start == -1 {
		return 0, 0, fmt.Errorf("Unable to parse ffprobe output: %v", out)
	}
	probe := ffprobeStreams{}
	if err := json.Unmarshal([]byte(out[start:]), &probe); err != nil {
		return 0, 0, fmt.Errorf("Unable to parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 || probe.Streams[0].Width <= 0 || probe.Streams[0].Height <= 0 {
		return 0, 0, fmt.Errorf("No video stream in ffprobe output: %v", out)
	}
	st := probe.Streams[0]
	rotation := 0.0
	for _, sd := range st.SideData {
		if sd.Rotation != 0 {
			rotation = sd.Rotation
		}
	}
	if rotation == 0 && st.Tags.Rotate != "" {
		// Older ffprobe builds only report the legacy tag
		if r, err := strconv.ParseFloat(st.Tags.Rotate, 64); err == nil {
			rotation = r
		}
	}
	quarterTurns := int(math.Round(rotation/90)) % 4
	if quarterTurns < 0 {
		quarterTurns += 4
	}
	if quarterTurns%2 == 1 {
		return st.Height, st.Width, nil
	}
	return st.Width, st.Height, nil
}

// ffmpegDecoder reads raw RGB frames from an ffmpeg child process
type ffmpegDecoder struct {
	filename string
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	img      *cimg.Image
	params   cimg.CompressParams
	eof      bool
	closed   bool
}

// OpenFFmpeg starts decoding a video with the ffmpeg executable.
// Every frame is emitted exactly once (no frame rate conversion), so frame indices
// match a sequential decode.
func OpenFFmpeg(ctx context.Context, filename string, quality int) (FrameDecoder, error) {
	width, height, err := ExtractVideoSize(filename)
	if err != nil {
		return nil, fmt.Errorf("Failed to probe %v: %w", filename, err)
	}
	cmd, stdout, err := shell.Start(ctx, "ffmpeg",
		"-v", "error",
		"-i", filename,
		"-vsync", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)
	if err != nil {
		return nil, err
	}
	return &ffmpegDecoder{
		filename: filename,
		cmd:      cmd,
		stdout:   stdout,
		img:      cimg.NewImage(width, height, cimg.PixelFormatRGB),
		params:   cimg.MakeCompressParams(cimg.Sampling420, quality, 0),
	}, nil
}

func (d *ffmpegDecoder) Next() error {
	if d.eof {
		return io.EOF
	}
	_, err := io.ReadFull(d.stdout, d.img.Pixels)
	if errors.Is(err, io.EOF) {
		d.eof = true
		return io.EOF
	} else if errors.Is(err, io.ErrUnexpectedEOF) {
		d.eof = true
		return fmt.Errorf("Truncated frame in %v", d.filename)
	}
	return err
}

func (d *ffmpegDecoder) JPEG() ([]byte, error) {
	return cimg.Compress(d.img, d.params)
}

func (d *ffmpegDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if !d.eof {
		// Stopping early. ffmpeg would otherwise block on a full pipe.
		d.cmd.Process.Kill()
		d.stdout.Close()
		d.cmd.Wait()
		return nil
	}
	if err := d.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg failed on %v: %w (%v)", d.filename, err, strings.TrimSpace(shell.Stderr(d.cmd)))
	}
	return nil
}
