package datasets

import (
	"fmt"
	"strings"

	"github.com/Noofbiz/openego/video"
)

// This package exposes a multi-benchmark egocentric corpus as an indexed,
// lazily loaded dataset.
//
// Construction only indexes: it discovers videos, resolves each one's
// benchmark and probes its frame count, fps and size. Nothing else is read
// until an item is requested.
//
// Layout and intended usage:
//
// Provider
//   - Get(i, nil) returns the requested modalities of demonstration i
//   - joint: hand joint streams, (frames, 21, 3) per hand plus visibility
//   - annotation: task label and timestamped actions
//   - metadata: benchmark specific document plus video_path and benchmark
//   - rgb: decoded frames (frames, height, width, 3), optionally a range
//
// Action
//   - a view over one annotated action and its demo's joint record, sliced
//     to [round(start*fps), round(end*fps))
//
// ActionDataset
//   - fixed-length action windows batched into gomlx tensors

// Modality names one per-demonstration data stream.
type Modality string

const (
	Joint      Modality = "joint"
	RGB        Modality = "rgb"
	Annotation Modality = "annotation"
	Metadata   Modality = "metadata"
)

// AllModalities is the default modality set.
var AllModalities = []Modality{Joint, RGB, Annotation, Metadata}

// ParseModalities converts names such as "joint,annotation" into modalities.
func ParseModalities(names []string) ([]Modality, error) {
	out := make([]Modality, 0, len(names))
	for _, n := range names {
		m := Modality(strings.ToLower(strings.TrimSpace(n)))
		switch m {
		case Joint, RGB, Annotation, Metadata:
			out = append(out, m)
		default:
			return nil, fmt.Errorf("unknown modality %q (want one of %v)", n, AllModalities)
		}
	}
	return out, nil
}

// Dataset is implemented by Provider. Consumers that only need indexed
// access should depend on it rather than on the concrete type.
type Dataset interface {
	Len() int
	Get(i int, r *video.FrameRange) (*Sample, error)
	Actions(s *Sample) ([]*Action, error)
}
