package idgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Bases of the ILSVRC instance ID spaces
const (
	ILSVRC2013InstanceBase = 20130000000
	ILSVRC2014InstanceBase = 20140000000
)

// ILSVRC2014ClassCode is the class code used for every image of the 2014 partition,
// whose folders aren't grouped by synset.
const ILSVRC2014ClassCode = 999

// MaxFrameIndex is the largest frame index that fits in the 4 digit field used by
// frame file names and frame image IDs.
const MaxFrameIndex = 9999

var ErrFrameIndexOverflow = errors.New("frame index does not fit in 4 digits")

// ILSVRCImageID synthesizes the ID of an ILSVRC image.
// The ID is the decimal concatenation of the partition tag (eg 2013), the class code padded
// to 3 digits, and the last 5 characters of the final '_' separated part of the filename.
//
//	("n00007846_21106", 2013, 21) -> 201302121106
//	("ILSVRC2014_train_00010002", 2014, 999) -> 201499910002
//
// Short suffixes are not padded, so the ID can be shorter than 12 digits.
func ILSVRCImageID(filename string, partition int, classCode int) (int64, error) {
	parts := strings.Split(filename, "_")
	suffix := parts[len(parts)-1]
	if len(suffix) > 5 {
		suffix = suffix[len(suffix)-5:]
	}
	if !isDigits(suffix) {
		return 0, fmt.Errorf("ILSVRC filename '%v' does not end in a numeric suffix", filename)
	}
	s := fmt.Sprintf("%v%03d%v", partition, classCode, suffix)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("Image ID '%v' for '%v' is not a valid int64: %w", s, filename, err)
	}
	return id, nil
}

// Leading digit of the image IDs of non-numeric videos, by the split named in the video ID
var videoSplitDigits = map[string]string{
	"train": "1",
	"val":   "2",
	"test":  "3",
}

// otherSplitDigit leads the image IDs of non-numeric videos whose split is not recognized
const otherSplitDigit = "9"

// FrameImageID synthesizes the ID of a sampled video frame: the numeric video ID followed by
// the frame index padded to 4 digits. VidOR video IDs are numeric.
//
// IDs that are not numeric (eg VidVRD's ILSVRC2015_train_00005003) use the digits of the final
// '_' separated part, behind a split digit taken from the part before it (train 1, val 2, test 3,
// anything else 9). The split digit keeps train and val videos with the same number apart, and
// because it is never 0, leading zeros of the number still count.
//
//	("2401075277", 16) -> 24010752770016
//	("ILSVRC2015_train_00005003", 30) -> 1000050030030
//	("ILSVRC2015_val_00005003", 30) -> 2000050030030
func FrameImageID(videoID string, frame int) (int64, error) {
	if frame < 0 || frame > MaxFrameIndex {
		return 0, fmt.Errorf("%w: frame %v of video %v", ErrFrameIndexOverflow, frame, videoID)
	}
	numeric := videoID
	if !isDigits(numeric) {
		parts := strings.Split(videoID, "_")
		numeric = parts[len(parts)-1]
		if !isDigits(numeric) {
			return 0, fmt.Errorf("Video ID '%v' has no numeric part", videoID)
		}
		digit := otherSplitDigit
		if len(parts) >= 2 {
			if d, ok := videoSplitDigits[parts[len(parts)-2]]; ok {
				digit = d
			}
		}
		numeric = digit + numeric
	}
	s := fmt.Sprintf("%v%04d", numeric, frame)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("Image ID '%v' for video %v is not a valid int64: %w", s, videoID, err)
	}
	return id, nil
}

// FrameFileName is the file name of an extracted frame, eg "2401075277_0016.jpg".
// Frame indices that need more than 4 digits are rejected rather than widened, because
// the image ID scheme depends on the field width.
func FrameFileName(videoID string, frame int) (string, error) {
	if frame < 0 || frame > MaxFrameIndex {
		return "", fmt.Errorf("%w: frame %v of video %v", ErrFrameIndexOverflow, frame, videoID)
	}
	return fmt.Sprintf("%v_%04d.jpg", videoID, frame), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
