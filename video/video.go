// Package video reads container-level metadata and decoded RGB frames from
// demonstration videos.
package video

import (
	"errors"
	"fmt"
	"math"

	"github.com/Noofbiz/openego/ndarray"
)

// ErrOpen is returned when a video stream cannot be opened or probed.
var ErrOpen = errors.New("cannot open video")

// Info is the lightweight per-video metadata computed without decoding
// pixel content.
type Info struct {
	FrameCount int     `json:"num_frames"`
	FPS        int     `json:"fps"`
	RawFPS     float64 `json:"-"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Duration   float64 `json:"duration"`
}

// NewInfo builds an Info from raw stream properties. FPS is rounded half to
// even. Duration is frames/rawFPS, or 0 when rawFPS is not positive.
func NewInfo(frames int, rawFPS float64, width, height int) Info {
	info := Info{
		FrameCount: frames,
		FPS:        int(math.RoundToEven(rawFPS)),
		RawFPS:     rawFPS,
		Width:      width,
		Height:     height,
	}
	if rawFPS > 0 {
		info.Duration = float64(frames) / rawFPS
	}
	return info
}

// Fields returns the info as the loosely typed mapping stored in metadata
// documents.
func (i Info) Fields() map[string]any {
	return map[string]any{
		"num_frames": i.FrameCount,
		"fps":        i.FPS,
		"width":      i.Width,
		"height":     i.Height,
		"duration":   i.Duration,
	}
}

// FrameRange selects frames [Start, End) of a video.
type FrameRange struct {
	Start int
	End   int
}

func (r FrameRange) String() string { return fmt.Sprintf("[%d:%d]", r.Start, r.End) }

// Resolve clamps the range to a video of n frames using Python slice
// semantics. A nil range selects every frame.
func (r *FrameRange) Resolve(n int) (start, end int) {
	if r == nil {
		return 0, n
	}
	start, end = clamp(r.Start, n), clamp(r.End, n)
	if end < start {
		end = start
	}
	return start, end
}

func clamp(i, n int) int {
	if i < 0 {
		i += n
	}
	return min(max(i, 0), n)
}

// Reader is the video frame extraction collaborator.
type Reader interface {
	// Info probes container metadata. It fails with ErrOpen when the file
	// cannot be opened.
	Info(path string) (Info, error)

	// Frames decodes the selected frames as RGB, shaped (n, height, width, 3).
	// A nil range decodes the whole video.
	Frames(path string, r *FrameRange) (*ndarray.Array[uint8], error)
}
