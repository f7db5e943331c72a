package datasets

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Noofbiz/openego/benchmarks"
	"github.com/Noofbiz/openego/internal/fixture"
	"github.com/Noofbiz/openego/schema"
	"github.com/Noofbiz/openego/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hoCapCorpus writes a two-demo HO-Cap corpus of 676 frames at 30 fps and a
// minimal EgoDex demo, and returns its root and video fake.
func hoCapCorpus(t *testing.T) (string, *fixture.Videos) {
	t.Helper()
	root := t.TempDir()
	for _, demo := range []string{"demo_0000", "demo_0001"} {
		_, err := fixture.WriteDemo(filepath.Join(root, "HO-Cap", demo), fixture.Demo{Frames: 676})
		require.NoError(t, err)
	}
	egoDir := filepath.Join(root, "EgoDex", "part1", "add_remove_lid")
	require.NoError(t, fixture.Touch(filepath.Join(egoDir, "0.mp4")))
	require.NoError(t, fixture.WriteNPZ(filepath.Join(egoDir, "0.npz"), map[string]fixture.Array{
		"camera/intrinsic": {Data: fixture.Intrinsics, Shape: []int{3, 3}},
	}))
	return root, &fixture.Videos{Default: video.NewInfo(676, 30, 8, 6)}
}

func TestProviderIndexing(t *testing.T) {
	root, videos := hoCapCorpus(t)
	p, err := NewProvider(root, Options{Video: videos})
	require.NoError(t, err)

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 3, p.NumDemos())
	assert.Equal(t, 3*676, p.NumFrames())
	assert.InDelta(t, 3*676.0/30, p.Duration(), 1e-9)
	assert.Equal(t, []string{"egodex", "ho-cap"}, p.Benchmarks())
	assert.Equal(t, AllModalities, p.Modalities())
	assert.Len(t, p.VideoPaths(), 3)
	assert.Equal(t, 3, videos.Probes)
	assert.Equal(t, 0, videos.Decode, "indexing must not decode frames")

	d, err := p.Demo(1)
	require.NoError(t, err)
	assert.Equal(t, "ho-cap", d.Benchmark.ID)
	assert.Equal(t, "demo_0000", filepath.Base(filepath.Dir(d.VideoPath)))
}

func TestProviderGetAll(t *testing.T) {
	root, videos := hoCapCorpus(t)
	p, err := NewProvider(root, Options{Video: videos})
	require.NoError(t, err)

	s, err := p.Get(1, nil)
	require.NoError(t, err)
	assert.Equal(t, []Modality{Joint, Annotation, Metadata, RGB}, s.Modalities())
	for _, m := range AllModalities {
		assert.True(t, s.Has(m), m)
	}

	assert.Equal(t, []int{676, 21, 3}, s.Joints.LeftHand.Shape())
	assert.Equal(t, "Picking up and moving various objects on a table.", s.Annotation.Task)
	require.Len(t, s.Annotation.Actions, 2)
	assert.Equal(t, []int{676, 6, 8, 3}, s.RGB.Shape())

	assert.Equal(t, "ho-cap", s.Metadata["benchmark"])
	assert.Equal(t, p.VideoPaths()[1], s.Metadata["video_path"])
	assert.Contains(t, s.Metadata, "original_metadata")
	assert.Equal(t, 676.0, s.Metadata["num_frames"])
}

func TestProviderGetSubset(t *testing.T) {
	root, videos := hoCapCorpus(t)
	p, err := NewProvider(root, Options{Video: videos, Modalities: []Modality{Annotation, Metadata}})
	require.NoError(t, err)

	s, err := p.Get(2, nil)
	require.NoError(t, err)
	assert.True(t, s.Has(Annotation))
	assert.True(t, s.Has(Metadata))
	assert.False(t, s.Has(Joint))
	assert.False(t, s.Has(RGB))
	assert.Nil(t, s.Joints)
	assert.Nil(t, s.RGB)
	assert.Equal(t, 0, videos.Decode)
}

func TestProviderGetRange(t *testing.T) {
	root, videos := hoCapCorpus(t)
	p, err := NewProvider(root, Options{Video: videos, Modalities: []Modality{RGB}})
	require.NoError(t, err)

	s, err := p.Get(1, &video.FrameRange{Start: 30, End: 108})
	require.NoError(t, err)
	assert.Equal(t, []int{78, 6, 8, 3}, s.RGB.Shape())
	assert.Equal(t, uint8(30), s.RGB.At(0, 0, 0, 0))

	s, err = p.Get(1, &video.FrameRange{Start: 700, End: 800})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 6, 8, 3}, s.RGB.Shape())
}

func TestProviderJointRangeNotImplemented(t *testing.T) {
	root, videos := hoCapCorpus(t)
	p, err := NewProvider(root, Options{Video: videos})
	require.NoError(t, err)

	for i := 0; i < p.Len(); i++ {
		_, err := p.Get(i, &video.FrameRange{Start: 0, End: 10})
		assert.True(t, errors.Is(err, schema.ErrNotImplemented), "demo %d: %v", i, err)
	}
}

func TestProviderEgoDex(t *testing.T) {
	root, videos := hoCapCorpus(t)
	p, err := NewProvider(root, Options{Video: videos, Modalities: []Modality{Annotation}})
	require.NoError(t, err)
	_, err = p.Get(0, nil)
	assert.True(t, errors.Is(err, schema.ErrNotImplemented))
	assert.Contains(t, err.Error(), "egodex")

	p, err = NewProvider(root, Options{Video: videos, Modalities: []Modality{Metadata}})
	require.NoError(t, err)
	s, err := p.Get(0, nil)
	require.NoError(t, err)
	task, ok := s.Metadata.Lookup("original_metadata/task")
	require.True(t, ok)
	assert.Equal(t, "add remove lid", task)
	assert.Equal(t, "egodex", s.Metadata["benchmark"])
	assert.Equal(t, 676, s.Metadata["num_frames"])

	// the minimal store has no joint transforms
	p, err = NewProvider(root, Options{Video: videos, Modalities: []Modality{Joint}})
	require.NoError(t, err)
	_, err = p.Get(0, nil)
	assert.True(t, errors.Is(err, schema.ErrMissingKey))
}

func TestProviderConfidenceThreshold(t *testing.T) {
	root, videos := hoCapCorpus(t)
	for _, tt := range []struct {
		name string
		in   *float64
		want float64
	}{
		{"default", nil, DefaultConfidenceThreshold},
		{"zero", Threshold(0), 0},
		{"strict", Threshold(0.9), 0.9},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(root, Options{Video: videos, ConfidenceThreshold: tt.in})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.env.ConfidenceThreshold)
		})
	}
}

func TestProviderErrors(t *testing.T) {
	root, videos := hoCapCorpus(t)
	p, err := NewProvider(root, Options{Video: videos})
	require.NoError(t, err)

	for _, i := range []int{-1, 3, 100} {
		_, err := p.Get(i, nil)
		assert.True(t, errors.Is(err, schema.ErrIndexOutOfRange), i)
	}

	_, err = NewProvider(filepath.Join(root, "nope"), Options{Video: videos})
	assert.True(t, errors.Is(err, schema.ErrPrecondition))

	_, err = NewProvider(root, Options{Video: videos, Modalities: []Modality{"depth"}})
	assert.Error(t, err)

	reg := benchmarks.NewRegistry()
	_, err = NewProvider(root, Options{Video: videos, Benchmarks: reg})
	assert.True(t, errors.Is(err, schema.ErrUnknownBenchmark))
}

func TestProviderMissingFileAbortsGet(t *testing.T) {
	root := t.TempDir()
	videoPath := filepath.Join(root, "taco", "demo_0000", "video.mp4")
	require.NoError(t, fixture.Touch(videoPath))
	p, err := NewProvider(root, Options{Video: &fixture.Videos{Default: video.NewInfo(10, 30, 2, 2)}})
	require.NoError(t, err)

	s, err := p.Get(0, nil)
	assert.Nil(t, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "joint")
	assert.Contains(t, err.Error(), "taco")
}

func TestParseModalities(t *testing.T) {
	ms, err := ParseModalities([]string{"Joint", " rgb "})
	require.NoError(t, err)
	assert.Equal(t, []Modality{Joint, RGB}, ms)

	_, err = ParseModalities([]string{"depth"})
	assert.Error(t, err)
}
