package datasets

import (
	"fmt"
	"math"

	"github.com/Noofbiz/openego/geometry"
	"github.com/Noofbiz/openego/ndarray"
	"github.com/Noofbiz/openego/schema"
	"github.com/Noofbiz/openego/video"
)

// Action is a view over one annotated action of a demonstration. It borrows
// the demo's joint record and slices it to the action's frames on every
// call; nothing is cached.
type Action struct {
	schema.ActionAnnotation

	FPS int

	// VideoPath is optional; Frames needs it.
	VideoPath string

	joints *schema.JointRecord
	video  video.Reader
}

// NewAction builds a view. joints may be shared by many actions.
func NewAction(ann schema.ActionAnnotation, fps int, joints *schema.JointRecord, videoPath string, reader video.Reader) *Action {
	return &Action{ActionAnnotation: ann, FPS: fps, VideoPath: videoPath, joints: joints, video: reader}
}

// Duration is the action length in seconds.
func (a *Action) Duration() float64 { return a.EndTimestamp - a.StartTimestamp }

// StartFrame is round(start * fps), rounding halves to even.
func (a *Action) StartFrame() int { return toFrame(a.StartTimestamp, a.FPS) }

// EndFrame is round(end * fps), rounding halves to even. It is exclusive.
func (a *Action) EndFrame() int { return toFrame(a.EndTimestamp, a.FPS) }

func toFrame(ts float64, fps int) int { return int(math.RoundToEven(ts * float64(fps))) }

func (a *Action) record() (*schema.JointRecord, error) {
	if a.joints == nil {
		return nil, fmt.Errorf("%w: action %q has no joint record", schema.ErrPrecondition, a.Label)
	}
	return a.joints, nil
}

// HandJoints returns the (n, 21, 3) joints of one hand over the action.
func (a *Action) HandJoints(h schema.Hand) (*ndarray.Array[float64], error) {
	rec, err := a.record()
	if err != nil {
		return nil, err
	}
	j, err := rec.Joints(h)
	if err != nil {
		return nil, err
	}
	return j.Rows(a.StartFrame(), a.EndFrame())
}

// LeftHandJoints is HandJoints(schema.LeftHand).
func (a *Action) LeftHandJoints() (*ndarray.Array[float64], error) {
	return a.HandJoints(schema.LeftHand)
}

// RightHandJoints is HandJoints(schema.RightHand).
func (a *Action) RightHandJoints() (*ndarray.Array[float64], error) {
	return a.HandJoints(schema.RightHand)
}

// HandVisibility returns the (n, 21) visibility of one hand over the action.
// Per-frame visibility is repeated across joints.
func (a *Action) HandVisibility(h schema.Hand) (*ndarray.Array[float64], error) {
	rec, err := a.record()
	if err != nil {
		return nil, err
	}
	v, err := rec.Visibility(h)
	if err != nil {
		return nil, err
	}
	v, err = v.Rows(a.StartFrame(), a.EndFrame())
	if err != nil {
		return nil, err
	}
	if v.Rank() == 1 {
		return v.Tile(schema.NumJoints)
	}
	if v.Rank() != 2 || v.Dim(1) != schema.NumJoints {
		return nil, fmt.Errorf("%s visibility must be shaped (frames,) or (frames, %d), got %v", h, schema.NumJoints, v.Shape())
	}
	return v, nil
}

// LeftHandVisibility is HandVisibility(schema.LeftHand).
func (a *Action) LeftHandVisibility() (*ndarray.Array[float64], error) {
	return a.HandVisibility(schema.LeftHand)
}

// RightHandVisibility is HandVisibility(schema.RightHand).
func (a *Action) RightHandVisibility() (*ndarray.Array[float64], error) {
	return a.HandVisibility(schema.RightHand)
}

// Intrinsic returns the demo's camera matrix. ok is false when the joint
// record has none; no default is substituted.
func (a *Action) Intrinsic() (k *ndarray.Array[float64], ok bool) {
	if a.joints == nil || a.joints.Intrinsics == nil {
		return nil, false
	}
	return a.joints.Intrinsics, true
}

// HandPixelJoints projects one hand's joints into (n, 21, 2) pixels.
func (a *Action) HandPixelJoints(h schema.Hand) (*ndarray.Array[int32], error) {
	k, ok := a.Intrinsic()
	if !ok {
		return nil, fmt.Errorf("%w: action %q", schema.ErrMissingIntrinsic, a.Label)
	}
	j, err := a.HandJoints(h)
	if err != nil {
		return nil, err
	}
	return geometry.PointsToPixels(j, k)
}

// LeftHandPixelJoints is HandPixelJoints(schema.LeftHand).
func (a *Action) LeftHandPixelJoints() (*ndarray.Array[int32], error) {
	return a.HandPixelJoints(schema.LeftHand)
}

// RightHandPixelJoints is HandPixelJoints(schema.RightHand).
func (a *Action) RightHandPixelJoints() (*ndarray.Array[int32], error) {
	return a.HandPixelJoints(schema.RightHand)
}

// Frames decodes the action's video frames.
func (a *Action) Frames() (*ndarray.Array[uint8], error) {
	if a.VideoPath == "" {
		return nil, fmt.Errorf("%w: action %q has no video path", schema.ErrPrecondition, a.Label)
	}
	if a.video == nil {
		return nil, fmt.Errorf("%w: action %q has no video reader", schema.ErrPrecondition, a.Label)
	}
	return a.video.Frames(a.VideoPath, &video.FrameRange{Start: a.StartFrame(), End: a.EndFrame()})
}

// Segment bundles both hands of an action in camera space.
type Segment struct {
	LeftHand            *ndarray.Array[float64]
	LeftHandVisibility  *ndarray.Array[float64]
	RightHand           *ndarray.Array[float64]
	RightHandVisibility *ndarray.Array[float64]
	// Intrinsic is nil when the demo has none.
	Intrinsic *ndarray.Array[float64]
}

// Document returns the segment keyed the way joint stores name things.
// "intrinsic" is always present and holds nil when the demo has none.
func (s Segment) Document() schema.Document {
	doc := schema.Document{
		schema.KeyLeftHand:            s.LeftHand,
		schema.KeyLeftHandVisibility:  s.LeftHandVisibility,
		schema.KeyRightHand:           s.RightHand,
		schema.KeyRightHandVisibility: s.RightHandVisibility,
		"intrinsic":                   nil,
	}
	if s.Intrinsic != nil {
		doc["intrinsic"] = s.Intrinsic
	}
	return doc
}

// PixelSegment is Segment with joints projected to pixels.
type PixelSegment struct {
	LeftHand            *ndarray.Array[int32]
	LeftHandVisibility  *ndarray.Array[float64]
	RightHand           *ndarray.Array[int32]
	RightHandVisibility *ndarray.Array[float64]
	Intrinsic           *ndarray.Array[float64]
}

// Joints returns both hands' joints and visibility over the action.
func (a *Action) Joints() (Segment, error) {
	var s Segment
	var err error
	if s.LeftHand, err = a.LeftHandJoints(); err != nil {
		return Segment{}, err
	}
	if s.LeftHandVisibility, err = a.LeftHandVisibility(); err != nil {
		return Segment{}, err
	}
	if s.RightHand, err = a.RightHandJoints(); err != nil {
		return Segment{}, err
	}
	if s.RightHandVisibility, err = a.RightHandVisibility(); err != nil {
		return Segment{}, err
	}
	s.Intrinsic, _ = a.Intrinsic()
	return s, nil
}

// JointsPixel is Joints with both hands projected to pixels. It fails with
// schema.ErrMissingIntrinsic when the demo has no intrinsic.
func (a *Action) JointsPixel() (PixelSegment, error) {
	var s PixelSegment
	var err error
	if s.LeftHand, err = a.LeftHandPixelJoints(); err != nil {
		return PixelSegment{}, err
	}
	if s.LeftHandVisibility, err = a.LeftHandVisibility(); err != nil {
		return PixelSegment{}, err
	}
	if s.RightHand, err = a.RightHandPixelJoints(); err != nil {
		return PixelSegment{}, err
	}
	if s.RightHandVisibility, err = a.RightHandVisibility(); err != nil {
		return PixelSegment{}, err
	}
	s.Intrinsic, _ = a.Intrinsic()
	return s, nil
}

// Dict returns the action's fields plus its joints. The video path and the
// full joint record are left out.
func (a *Action) Dict() (schema.Document, error) {
	seg, err := a.Joints()
	if err != nil {
		return nil, err
	}
	return schema.Document{
		"start_timestamp": a.StartTimestamp,
		"end_timestamp":   a.EndTimestamp,
		"objects":         a.Objects,
		"actors":          a.Actors,
		"label":           a.Label,
		"fps":             a.FPS,
		"joints":          seg.Document(),
	}, nil
}
