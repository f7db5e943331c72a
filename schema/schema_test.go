package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Noofbiz/openego/ndarray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentLookupAndMerge(t *testing.T) {
	doc := Document{
		"original_metadata": Document{"task": "pour water", "camera": map[string]any{"fx": 500.0}},
		"fps":               30,
	}
	doc.Merge(Document{"benchmark": "ho-cap", "fps": 60})

	v, ok := doc.Lookup("original_metadata/task")
	require.True(t, ok)
	assert.Equal(t, "pour water", v)

	v, ok = doc.Lookup("original_metadata/camera/fx")
	require.True(t, ok)
	assert.Equal(t, 500.0, v)

	_, ok = doc.Lookup("original_metadata/missing")
	assert.False(t, ok)
	_, ok = doc.Lookup("fps/deeper")
	assert.False(t, ok)

	fps, ok := doc.Float("fps")
	require.True(t, ok)
	assert.Equal(t, 60.0, fps)
	assert.Equal(t, []string{"benchmark", "fps", "original_metadata"}, doc.Keys())

	sub, err := doc.Sub("original_metadata")
	require.NoError(t, err)
	task, ok := sub.Text("task")
	assert.True(t, ok)
	assert.Equal(t, "pour water", task)

	_, err = doc.Sub("nope")
	assert.True(t, errors.Is(err, ErrMissingKey))
	_, err = doc.Sub("fps")
	assert.Error(t, err)
}

func TestAnnotationRecordJSON(t *testing.T) {
	raw := `{
		"task": "Picking up and moving various objects on a table.",
		"actions": [
			{"start_timestamp": 1.0, "end_timestamp": 3.6,
			 "objects": ["Tazo green tea carton"], "actors": ["left_hand"],
			 "label": "left hand grasps the carton"}
		],
		"video_info": {"fps": 30, "num_frames": 676}
	}`
	var rec AnnotationRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	require.Len(t, rec.Actions, 1)
	assert.Equal(t, 1.0, rec.Actions[0].StartTimestamp)
	assert.Equal(t, 3.6, rec.Actions[0].EndTimestamp)
	assert.Equal(t, []string{"Tazo green tea carton"}, rec.Actions[0].Objects)
	assert.Equal(t, []string{"left_hand"}, rec.Actions[0].Actors)

	fps, ok := rec.VideoInfo.Float("fps")
	assert.True(t, ok)
	assert.Equal(t, 30.0, fps)
}

func TestJointRecordAccessors(t *testing.T) {
	rec := &JointRecord{LeftHand: ndarray.Zeros[float64](4, NumJoints, 3)}
	j, err := rec.Joints(LeftHand)
	require.NoError(t, err)
	assert.Equal(t, 4, j.Len())
	assert.Equal(t, 4, rec.NumFrames())

	_, err = rec.Joints(RightHand)
	assert.True(t, errors.Is(err, ErrMissingKey))
	_, err = rec.Visibility(LeftHand)
	assert.True(t, errors.Is(err, ErrMissingKey))

	assert.Equal(t, "assumed", VisibilityAssumed.String())
	assert.Equal(t, "right_hand", RightHand.String())
}
