package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Noofbiz/openego/datasets"
	"github.com/Noofbiz/openego/internal/fixture"
	"github.com/Noofbiz/openego/video"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCorpus writes two ARCTIC demos of 200 frames and one EgoDex video.
func testCorpus(t *testing.T) (*Config, string) {
	t.Helper()
	root := t.TempDir()
	for _, demo := range []string{"demo_0000", "demo_0001"} {
		_, err := fixture.WriteDemo(filepath.Join(root, "arctic", demo), fixture.Demo{Frames: 200})
		require.NoError(t, err)
	}
	egoDir := filepath.Join(root, "EgoDex", "part2", "fold_towel")
	require.NoError(t, fixture.Touch(filepath.Join(egoDir, "0.mp4")))
	require.NoError(t, fixture.WriteNPZ(filepath.Join(egoDir, "0.npz"), map[string]fixture.Array{
		"camera/intrinsic": {Data: fixture.Intrinsics, Shape: []int{3, 3}},
	}))

	var cfg Config
	require.NoError(t, ProcessAndValidate(&cfg, &ConfigRawInput{Root: root}))
	cfg.Options.Video = &fixture.Videos{Default: video.NewInfo(200, 30, 4, 4)}
	return &cfg, root
}

func TestCollectActionRows(t *testing.T) {
	cfg, _ := testCorpus(t)
	p, err := newProvider(cfg, datasets.Joint, datasets.Annotation)
	require.NoError(t, err)

	var warnings []error
	rows, err := collectActionRows(p, func(_ string, err error) { warnings = append(warnings, err) })
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "egodex")

	r := rows[0]
	assert.Equal(t, int32(1), r.DemoIndex)
	assert.Equal(t, "arctic", r.Benchmark)
	assert.Equal(t, int32(0), r.ActionIndex)
	assert.Equal(t, "left hand grasps the carton", r.Label)
	assert.Equal(t, "left_hand", r.Actors)
	assert.Equal(t, int32(30), r.StartFrame)
	assert.Equal(t, int32(108), r.EndFrame)
	assert.Equal(t, int32(78), r.NumFrames)
	assert.InDelta(t, 0.5, r.LeftVisibility, 1e-9)
	assert.InDelta(t, 1.0, r.RightVisibility, 1e-9)
	assert.True(t, r.HasIntrinsic)

	assert.Equal(t, "left_hand,right_hand", rows[1].Actors)
	assert.Equal(t, int32(2), rows[3].DemoIndex)
}

func TestWriteActionRowsParquet(t *testing.T) {
	cfg, _ := testCorpus(t)
	p, err := newProvider(cfg, datasets.Joint, datasets.Annotation)
	require.NoError(t, err)
	data, err := collectActionRows(p, nil)
	require.NoError(t, err)

	outputPath := filepath.Join(t.TempDir(), "actions.parquet")
	require.NoError(t, WriteActionRowsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[ActionRow](file)
	defer reader.Close()

	readData := make([]ActionRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	assert.Equal(t, len(data), n)
	assert.Equal(t, data, readData)

	schema := parquet.SchemaOf(ActionRow{})
	for _, col := range []string{"demo_index", "label", "start_frame", "left_visibility", "has_intrinsic"} {
		_, ok := schema.Lookup(col)
		assert.True(t, ok, col)
	}
}

func TestPrintInfoAndActions(t *testing.T) {
	cfg, root := testCorpus(t)
	p, err := newProvider(cfg, datasets.Joint, datasets.Annotation)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printInfo(&buf, p, root))
	out := buf.String()
	assert.Contains(t, out, "arctic")
	assert.Contains(t, out, filepath.Join("arctic", "demo_0001", "video.mp4"))
	assert.Contains(t, out, "3 demonstrations, 600 frames")

	actions, err := loadActions(p, 1)
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, printActions(&buf, actions))
	out = buf.String()
	assert.Contains(t, out, "left hand grasps the carton")
	assert.Contains(t, out, "108")

	_, err = loadActions(p, 0)
	assert.Error(t, err)
}
