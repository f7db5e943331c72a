package datasets

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Noofbiz/openego/internal/fixture"
	"github.com/Noofbiz/openego/ndarray"
	"github.com/Noofbiz/openego/schema"
	"github.com/Noofbiz/openego/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hoCapActions(t *testing.T, demo fixture.Demo) ([]*Action, *fixture.Videos) {
	t.Helper()
	root := t.TempDir()
	_, err := fixture.WriteDemo(filepath.Join(root, "ho-cap", "demo_0000"), demo)
	require.NoError(t, err)
	videos := &fixture.Videos{Default: video.NewInfo(demo.Frames, 30, 4, 2)}
	p, err := NewProvider(root, Options{Video: videos, Modalities: []Modality{Joint, Annotation}})
	require.NoError(t, err)
	s, err := p.Get(0, nil)
	require.NoError(t, err)
	actions, err := p.Actions(s)
	require.NoError(t, err)
	return actions, videos
}

func TestActionHOCapScenario(t *testing.T) {
	actions, _ := hoCapActions(t, fixture.Demo{Frames: 676})
	require.Len(t, actions, 2)
	a := actions[0]

	assert.Equal(t, 30, a.FPS)
	assert.Equal(t, 30, a.StartFrame())
	assert.Equal(t, 108, a.EndFrame())
	assert.InDelta(t, 2.6, a.Duration(), 1e-9)

	left, err := a.LeftHandJoints()
	require.NoError(t, err)
	assert.Equal(t, []int{78, 21, 3}, left.Shape())
	want := fixture.LeftJoint(30, 4)
	assert.Equal(t, want[1], left.At(0, 4, 1))

	right, err := a.RightHandJoints()
	require.NoError(t, err)
	assert.Equal(t, 78, right.Len())

	vis, err := a.LeftHandVisibility()
	require.NoError(t, err)
	assert.Equal(t, []int{78, 21}, vis.Shape())
	// per-frame visibility alternates 0/1 starting at frame 0
	for j := 0; j < schema.NumJoints; j++ {
		assert.Equal(t, 0.0, vis.At(0, j))
		assert.Equal(t, 1.0, vis.At(1, j))
	}

	px, err := a.LeftHandPixelJoints()
	require.NoError(t, err)
	assert.Equal(t, []int{78, 21, 2}, px.Shape())
	// x = 0.03*500/0.53 + 320
	assert.Equal(t, int32(348), px.At(0, 0, 0))

	k, ok := a.Intrinsic()
	require.True(t, ok)
	assert.Equal(t, 500.0, k.At(0, 0))

	// the second action starts where the first ends
	assert.Equal(t, a.EndFrame(), actions[1].StartFrame())
	assert.Equal(t, 150, actions[1].EndFrame())
}

func TestActionPerJointVisibility(t *testing.T) {
	actions, _ := hoCapActions(t, fixture.Demo{Frames: 200, PerJointVisibility: true})
	vis, err := actions[0].LeftHandVisibility()
	require.NoError(t, err)
	assert.Equal(t, []int{78, 21}, vis.Shape())
	// element (30, 0) of a (200, 21) array with flat index parity
	assert.Equal(t, float64((30*21)%2), vis.At(0, 0))
	assert.Equal(t, float64((30*21+1)%2), vis.At(0, 1))
}

func TestActionMissingIntrinsic(t *testing.T) {
	actions, _ := hoCapActions(t, fixture.Demo{Frames: 200, NoIntrinsics: true})
	a := actions[0]

	_, ok := a.Intrinsic()
	assert.False(t, ok)
	_, err := a.LeftHandPixelJoints()
	assert.True(t, errors.Is(err, schema.ErrMissingIntrinsic))
	_, err = a.JointsPixel()
	assert.True(t, errors.Is(err, schema.ErrMissingIntrinsic))

	seg, err := a.Joints()
	require.NoError(t, err)
	assert.Nil(t, seg.Intrinsic)
	v, present := seg.Document()["intrinsic"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestActionTruncatedSegment(t *testing.T) {
	// the second action ends at frame 150 but the demo has only 120 frames
	actions, _ := hoCapActions(t, fixture.Demo{Frames: 120})
	a := actions[1]
	left, err := a.LeftHandJoints()
	require.NoError(t, err)
	assert.Equal(t, 120-108, left.Len())
	assert.NotEqual(t, a.EndFrame()-a.StartFrame(), left.Len())
}

func TestActionFrames(t *testing.T) {
	actions, videos := hoCapActions(t, fixture.Demo{Frames: 676})
	frames, err := actions[0].Frames()
	require.NoError(t, err)
	assert.Equal(t, []int{78, 2, 4, 3}, frames.Shape())
	assert.Equal(t, uint8(30), frames.At(0, 0, 0, 0))
	assert.Equal(t, uint8(107), frames.At(77, 0, 0, 0))
	assert.Equal(t, 1, videos.Decode)

	// nothing is cached between calls
	_, err = actions[0].Frames()
	require.NoError(t, err)
	assert.Equal(t, 2, videos.Decode)

	detached := NewAction(actions[0].ActionAnnotation, 30, nil, "", nil)
	_, err = detached.Frames()
	assert.True(t, errors.Is(err, schema.ErrPrecondition))
	_, err = detached.LeftHandJoints()
	assert.True(t, errors.Is(err, schema.ErrPrecondition))
}

func TestActionJointsAndDict(t *testing.T) {
	actions, _ := hoCapActions(t, fixture.Demo{Frames: 676})
	a := actions[0]

	seg, err := a.Joints()
	require.NoError(t, err)
	assert.Equal(t, []int{78, 21, 3}, seg.RightHand.Shape())
	assert.Equal(t, []int{78, 21}, seg.RightHandVisibility.Shape())

	px, err := a.JointsPixel()
	require.NoError(t, err)
	assert.Equal(t, []int{78, 21, 2}, px.RightHand.Shape())
	assert.NotNil(t, px.Intrinsic)

	d, err := a.Dict()
	require.NoError(t, err)
	assert.NotContains(t, d, "video_path")
	assert.NotContains(t, d, "video_joints")
	for _, k := range []string{"start_timestamp", "end_timestamp", "objects", "actors", "label", "fps", "joints"} {
		assert.Contains(t, d, k)
	}
	assert.Equal(t, "left hand grasps the carton", d["label"])
	assert.Equal(t, 30, d["fps"])
	joints, err := d.Sub("joints")
	require.NoError(t, err)
	assert.Equal(t, []int{78, 21, 3}, joints[schema.KeyLeftHand].(*ndarray.Array[float64]).Shape())
}

func TestActionsNeedJointsAndAnnotation(t *testing.T) {
	root, videos := hoCapCorpus(t)
	p, err := NewProvider(root, Options{Video: videos, Modalities: []Modality{Annotation}})
	require.NoError(t, err)
	s, err := p.Get(1, nil)
	require.NoError(t, err)
	_, err = p.Actions(s)
	assert.True(t, errors.Is(err, schema.ErrPrecondition))
}

func TestToFrameRoundsHalfToEven(t *testing.T) {
	assert.Equal(t, 2, toFrame(0.5, 5))
	assert.Equal(t, 4, toFrame(1.5, 3))
	assert.Equal(t, 0, toFrame(1.0, 0))
	assert.Equal(t, 108, toFrame(3.6, 30))
}
