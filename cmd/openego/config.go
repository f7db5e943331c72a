package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Noofbiz/openego/arraystore"
	"github.com/Noofbiz/openego/benchmarks"
	"github.com/Noofbiz/openego/corpus"
	"github.com/Noofbiz/openego/datasets"
	"github.com/Noofbiz/openego/video"
	"k8s.io/klog/v2"
)

// Default values for configuration.
const (
	DefaultStoreFormat = "npz"
	DefaultFFmpeg      = "ffmpeg"
	DefaultFFprobe     = "ffprobe"
)

// ConfigRawInput holds the unvalidated configuration from file, env and
// flags.
type ConfigRawInput struct {
	Root                string   `mapstructure:"root"`
	Modalities          []string `mapstructure:"modalities"`
	StoreFormat         string   `mapstructure:"store-format"`
	VideoPattern        string   `mapstructure:"video-pattern"`
	ConfidenceThreshold *float64 `mapstructure:"confidence-threshold"`
	GenericBenchmarks   []string `mapstructure:"generic-benchmarks"`
	FFmpeg              string   `mapstructure:"ffmpeg"`
	FFprobe             string   `mapstructure:"ffprobe"`
}

// Config is the validated runtime configuration.
type Config struct {
	Root    string
	Options datasets.Options
}

// ProcessAndValidate checks input and fills cfg.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if strings.TrimSpace(input.Root) == "" {
		return errors.New("corpus root is required (--root or OPENEGO_ROOT)")
	}
	root, err := filepath.Abs(input.Root)
	if err != nil {
		return fmt.Errorf("invalid corpus root %q: %w", input.Root, err)
	}
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return fmt.Errorf("corpus root %q is not a directory", root)
	}

	modalities, err := datasets.ParseModalities(splitList(input.Modalities))
	if err != nil {
		return err
	}

	format := input.StoreFormat
	if format == "" {
		format = DefaultStoreFormat
	}
	store, err := arraystore.ForFormat(format)
	if err != nil {
		return err
	}

	if t := input.ConfidenceThreshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("confidence threshold must be in [0, 1], got %g", *t)
	}

	pattern := input.VideoPattern
	if pattern == "" {
		pattern = corpus.DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid video pattern %q: %w", pattern, err)
	}

	registry := benchmarks.DefaultRegistry()
	registry.AddGeneric(splitList(input.GenericBenchmarks)...)

	ff := video.NewFFmpeg()
	if input.FFmpeg != "" {
		ff.FFmpegPath = input.FFmpeg
	}
	if input.FFprobe != "" {
		ff.FFprobePath = input.FFprobe
	}

	cfg.Root = root
	cfg.Options = datasets.Options{
		Modalities:          modalities,
		VideoPattern:        pattern,
		Video:               ff,
		Store:               store,
		Benchmarks:          registry,
		ConfidenceThreshold: input.ConfidenceThreshold,
		Logger:              klog.Background().WithName("openego"),
	}
	return nil
}

// splitList flattens comma-separated entries and drops empty ones.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// newProvider indexes the configured corpus. Modalities, when given,
// replace the configured ones.
func newProvider(cfg *Config, modalities ...datasets.Modality) (*datasets.Provider, error) {
	opts := cfg.Options
	if len(modalities) > 0 {
		opts.Modalities = modalities
	}
	return datasets.NewProvider(cfg.Root, opts)
}
