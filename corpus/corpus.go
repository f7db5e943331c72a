// Package corpus discovers demonstration videos under a corpus root and
// indexes them with their benchmark and video properties.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Noofbiz/openego/benchmarks"
	"github.com/Noofbiz/openego/schema"
	"github.com/Noofbiz/openego/video"
	"github.com/facette/natsort"
	"github.com/go-logr/logr"
	"k8s.io/klog/v2"
)

// DefaultPattern matches demonstration videos.
const DefaultPattern = "*.mp4"

// Demonstration is one indexed video. It is immutable once built.
type Demonstration struct {
	Index     int
	VideoPath string
	Benchmark benchmarks.Benchmark
	Info      video.Info
}

// Config controls how an Index is built
type Config struct {
	// Pattern is matched against file base names. Defaults to DefaultPattern.
	Pattern string

	// Video probes every discovered file. Defaults to video.NewFFmpeg().
	Video video.Reader

	// Registry resolves benchmark ids. Defaults to benchmarks.DefaultRegistry().
	Registry *benchmarks.Registry

	// Logger defaults to klog.Background().
	Logger logr.Logger
}

// Index is the ordered list of demonstrations of a corpus.
type Index struct {
	Root  string
	Demos []Demonstration
}

// Discover walks root and returns the paths whose base name matches
// pattern, in natural order ("demo_2" before "demo_10").
func Discover(root, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	natsort.Sort(paths)
	return paths, nil
}

// BenchmarkID derives the benchmark id of a video from its location:
//
//	<benchmark>/<...demo...>/<video>       parent directory names a demo
//	<benchmark>/<...part...>/<task>/<video> grandparent names a part
//
// The id is lowercased and trimmed.
func BenchmarkID(videoPath string) (string, error) {
	parent := filepath.Dir(videoPath)
	grandparent := filepath.Dir(parent)
	switch {
	case strings.Contains(filepath.Base(parent), "demo"):
		return normalize(filepath.Base(grandparent)), nil
	case strings.Contains(filepath.Base(grandparent), "part"):
		return normalize(filepath.Base(filepath.Dir(grandparent))), nil
	}
	return "", fmt.Errorf("%w: cannot determine benchmark from %s", schema.ErrUnknownLayout, videoPath)
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Build discovers and indexes every video under root. It fails on the first
// video whose layout or benchmark is unknown or that cannot be probed.
func Build(root string, cfg Config) (*Index, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: corpus root %s: %v", schema.ErrPrecondition, root, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%w: corpus root %s is not a directory", schema.ErrPrecondition, root)
	}
	cfg = cfg.withDefaults()
	log := cfg.Logger

	paths, err := Discover(root, cfg.Pattern)
	if err != nil {
		return nil, err
	}

	idx := &Index{Root: root, Demos: make([]Demonstration, 0, len(paths))}
	for i, path := range paths {
		id, err := BenchmarkID(path)
		if err != nil {
			return nil, err
		}
		b, err := cfg.Registry.Resolve(id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		info, err := cfg.Video.Info(path)
		if err != nil {
			return nil, fmt.Errorf("failed to probe %s: %w", path, err)
		}
		log.V(2).Info("indexed demonstration", "index", i, "path", path, "benchmark", b.ID, "frames", info.FrameCount)
		idx.Demos = append(idx.Demos, Demonstration{Index: i, VideoPath: path, Benchmark: b, Info: info})
	}

	log.V(1).Info("built corpus index", "root", root, "demos", idx.Len(), "frames", idx.NumFrames(), "benchmarks", idx.Benchmarks())
	return idx, nil
}

func (c Config) withDefaults() Config {
	if c.Pattern == "" {
		c.Pattern = DefaultPattern
	}
	if c.Video == nil {
		c.Video = video.NewFFmpeg()
	}
	if c.Registry == nil {
		c.Registry = benchmarks.DefaultRegistry()
	}
	if c.Logger.GetSink() == nil {
		c.Logger = klog.Background()
	}
	return c
}

// Len returns the number of demonstrations.
func (x *Index) Len() int { return len(x.Demos) }

// NumFrames sums the frame counts of every demonstration.
func (x *Index) NumFrames() int {
	n := 0
	for _, d := range x.Demos {
		n += d.Info.FrameCount
	}
	return n
}

// Duration sums the durations of every demonstration, in seconds.
func (x *Index) Duration() float64 {
	var s float64
	for _, d := range x.Demos {
		s += d.Info.Duration
	}
	return s
}

// Benchmarks returns the distinct benchmark ids, sorted.
func (x *Index) Benchmarks() []string {
	ids := make([]string, 0)
	for _, d := range x.Demos {
		if !slices.Contains(ids, d.Benchmark.ID) {
			ids = append(ids, d.Benchmark.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// VideoPaths returns the indexed paths in index order.
func (x *Index) VideoPaths() []string {
	out := make([]string, len(x.Demos))
	for i, d := range x.Demos {
		out[i] = d.VideoPath
	}
	return out
}
