// Package schema defines the records exchanged between the benchmark loaders,
// the provider and the segment views.
package schema

import (
	"fmt"

	"github.com/Noofbiz/openego/ndarray"
)

// NumJoints is the size of the canonical MANO hand skeleton.
const NumJoints = 21

// Semantic keys of a joint record as they appear in keyed-array stores.
const (
	KeyLeftHand            = "left_hand"
	KeyRightHand           = "right_hand"
	KeyLeftHandVisibility  = "left_hand_visibility"
	KeyRightHandVisibility = "right_hand_visibility"
	KeyIntrinsics          = "intrinsics"
	KeyJointNames          = "joint_names"
)

// VisibilitySource records where a visibility channel came from.
type VisibilitySource int

const (
	// VisibilityStored means the channel was read verbatim from the store.
	VisibilityStored VisibilitySource = iota
	// VisibilityThresholded means it was derived from per-joint confidences.
	VisibilityThresholded
	// VisibilityAssumed means no confidence data existed for at least one
	// joint and those joints were reported fully visible.
	VisibilityAssumed
)

func (s VisibilitySource) String() string {
	switch s {
	case VisibilityStored:
		return "stored"
	case VisibilityThresholded:
		return "thresholded"
	case VisibilityAssumed:
		return "assumed"
	}
	return fmt.Sprintf("VisibilitySource(%d)", int(s))
}

// Hand selects one side of a joint record.
type Hand int

const (
	LeftHand Hand = iota
	RightHand
)

func (h Hand) String() string {
	if h == LeftHand {
		return KeyLeftHand
	}
	return KeyRightHand
}

// JointRecord holds the hand pose streams of one demonstration.
type JointRecord struct {
	// LeftHand and RightHand are (frames, 21, 3) camera-space positions.
	LeftHand  *ndarray.Array[float64]
	RightHand *ndarray.Array[float64]

	// Visibility is either (frames,) or (frames, 21). Values are 0/1 masks
	// or confidences depending on the benchmark.
	LeftHandVisibility  *ndarray.Array[float64]
	RightHandVisibility *ndarray.Array[float64]

	LeftVisibilitySource  VisibilitySource
	RightVisibilitySource VisibilitySource

	// Intrinsics is the 3x3 camera matrix, nil when the store has none.
	Intrinsics *ndarray.Array[float64]

	JointNames []string

	// Extra carries any other top-level store entries unchanged.
	Extra Document
}

// Joints returns the (frames, 21, 3) stream of one hand.
func (r *JointRecord) Joints(h Hand) (*ndarray.Array[float64], error) {
	a := r.LeftHand
	if h == RightHand {
		a = r.RightHand
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingKey, h)
	}
	return a, nil
}

// Visibility returns the visibility channel of one hand.
func (r *JointRecord) Visibility(h Hand) (*ndarray.Array[float64], error) {
	a := r.LeftHandVisibility
	if h == RightHand {
		a = r.RightHandVisibility
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s_visibility", ErrMissingKey, h)
	}
	return a, nil
}

// NumFrames returns the length of the left hand stream, or of the right one
// when the left is absent.
func (r *JointRecord) NumFrames() int {
	switch {
	case r.LeftHand != nil:
		return r.LeftHand.Len()
	case r.RightHand != nil:
		return r.RightHand.Len()
	}
	return 0
}

// ActionAnnotation is one labeled temporal segment of a demonstration.
type ActionAnnotation struct {
	StartTimestamp float64  `json:"start_timestamp"`
	EndTimestamp   float64  `json:"end_timestamp"`
	Objects        []string `json:"objects"`
	Actors         []string `json:"actors"`
	Label          string   `json:"label"`
}

// AnnotationRecord is the task label and ordered actions of a demonstration.
type AnnotationRecord struct {
	Task      string             `json:"task"`
	Actions   []ActionAnnotation `json:"actions"`
	VideoInfo Document           `json:"video_info,omitempty"`
}
