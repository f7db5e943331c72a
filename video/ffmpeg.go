package video

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Noofbiz/openego/ndarray"
)

// FFmpeg implements Reader by running the ffprobe and ffmpeg executables.
// Every call starts its own process and waits for it to exit.
type FFmpeg struct {
	// FFprobePath is the ffprobe executable, "ffprobe" by default.
	FFprobePath string
	// FFmpegPath is the ffmpeg executable, "ffmpeg" by default.
	FFmpegPath string
}

// NewFFmpeg returns a reader using ffprobe and ffmpeg from PATH.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{FFprobePath: "ffprobe", FFmpegPath: "ffmpeg"}
}

type probeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
		Duration     string `json:"duration"`
	} `json:"streams"`
}

// Info probes the first video stream of path.
func (f *FFmpeg) Info(path string) (Info, error) {
	if _, err := os.Stat(path); err != nil {
		return Info{}, fmt.Errorf("%w %s: %v", ErrOpen, path, err)
	}
	cmd := exec.Command(f.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate,nb_frames,duration",
		"-of", "json",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("%w %s: ffprobe: %v: %s", ErrOpen, path, err, strings.TrimSpace(stderr.String()))
	}
	info, err := parseProbe(out)
	if err != nil {
		return Info{}, fmt.Errorf("%w %s: %v", ErrOpen, path, err)
	}
	return info, nil
}

// parseProbe turns ffprobe's JSON report into an Info. When the container
// does not record a frame count it is estimated from duration and rate.
func parseProbe(out []byte) (Info, error) {
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return Info{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return Info{}, errors.New("no video stream")
	}
	s := probe.Streams[0]

	fps := parseRate(s.RFrameRate)
	if fps <= 0 {
		fps = parseRate(s.AvgFrameRate)
	}
	frames, err := strconv.Atoi(s.NbFrames)
	if err != nil {
		d, _ := strconv.ParseFloat(s.Duration, 64)
		frames = int(math.Round(d * fps))
	}
	return NewInfo(frames, fps, s.Width, s.Height), nil
}

// parseRate parses ffprobe rationals such as "30000/1001". Unparseable or
// zero-denominator rates yield 0.
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// Frames decodes the selected frames to packed RGB. A video that ends early
// yields fewer frames than requested.
func (f *FFmpeg) Frames(path string, r *FrameRange) (*ndarray.Array[uint8], error) {
	info, err := f.Info(path)
	if err != nil {
		return nil, err
	}
	start, end := r.Resolve(info.FrameCount)
	frameSize := info.Width * info.Height * 3
	if end == start || frameSize == 0 {
		return ndarray.Zeros[uint8](0, info.Height, info.Width, 3), nil
	}

	args := []string{"-v", "error", "-i", path}
	if start > 0 || end < info.FrameCount {
		args = append(args, "-vf", fmt.Sprintf(`select=between(n\,%d\,%d)`, start, end-1), "-vsync", "0")
	}
	args = append(args,
		"-frames:v", strconv.Itoa(end-start),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)

	cmd := exec.Command(f.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w %s: start ffmpeg: %v", ErrOpen, path, err)
	}

	buf := make([]uint8, (end-start)*frameSize)
	n, readErr := io.ReadFull(stdout, buf)
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read frames from %s: %w", path, readErr)
	}
	if waitErr != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %v: %s", path, waitErr, strings.TrimSpace(stderr.String()))
	}

	got := n / frameSize
	return ndarray.New(buf[:got*frameSize], got, info.Height, info.Width, 3)
}
