package main

import (
	"path/filepath"
	"testing"

	"github.com/Noofbiz/openego/benchmarks"
	"github.com/Noofbiz/openego/datasets"
	"github.com/Noofbiz/openego/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	root := t.TempDir()
	var cfg Config
	err := ProcessAndValidate(&cfg, &ConfigRawInput{
		Root:              root,
		Modalities:        []string{"joint, rgb"},
		GenericBenchmarks: []string{"Epic-Kitchens"},
		FFprobe:           "/opt/ffprobe",
	})
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, []datasets.Modality{datasets.Joint, datasets.RGB}, cfg.Options.Modalities)
	assert.Equal(t, ".npz", cfg.Options.Store.Ext())
	assert.Equal(t, "*.mp4", cfg.Options.VideoPattern)

	b, err := cfg.Options.Benchmarks.Resolve("epic-kitchens")
	require.NoError(t, err)
	assert.Equal(t, benchmarks.Generic, b.Kind)

	ff, ok := cfg.Options.Video.(*video.FFmpeg)
	require.True(t, ok)
	assert.Equal(t, "/opt/ffprobe", ff.FFprobePath)
	assert.Equal(t, "ffmpeg", ff.FFmpegPath)
}

func TestProcessAndValidateConfidenceThreshold(t *testing.T) {
	root := t.TempDir()
	var cfg Config
	require.NoError(t, ProcessAndValidate(&cfg, &ConfigRawInput{Root: root}))
	assert.Nil(t, cfg.Options.ConfidenceThreshold)

	require.NoError(t, ProcessAndValidate(&cfg, &ConfigRawInput{Root: root, ConfidenceThreshold: datasets.Threshold(0)}))
	require.NotNil(t, cfg.Options.ConfidenceThreshold)
	assert.Equal(t, 0.0, *cfg.Options.ConfidenceThreshold)
}

func TestProcessAndValidateErrors(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name  string
		input ConfigRawInput
	}{
		{"no root", ConfigRawInput{}},
		{"missing root", ConfigRawInput{Root: filepath.Join(root, "nope")}},
		{"bad modality", ConfigRawInput{Root: root, Modalities: []string{"depth"}}},
		{"bad store", ConfigRawInput{Root: root, StoreFormat: "zarr"}},
		{"bad threshold", ConfigRawInput{Root: root, ConfidenceThreshold: datasets.Threshold(1.5)}},
		{"bad pattern", ConfigRawInput{Root: root, VideoPattern: "["}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			assert.Error(t, ProcessAndValidate(&cfg, &tt.input))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a,b", " ", "c,"}))
	assert.Nil(t, splitList(nil))
}
