package benchmarks

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Noofbiz/openego/arraystore"
	"github.com/Noofbiz/openego/ndarray"
	"github.com/Noofbiz/openego/schema"
	"github.com/Noofbiz/openego/video"
)

// Keys of the EgoDex store.
const (
	egoDexIntrinsicKey   = "camera/intrinsic"
	egoDexConfidenceGrp  = "confidences"
	egoDexConfidenceSufx = "_confidence"
)

type egoDexLoader struct {
	env Env
}

// storePath is the video path with its extension swapped for the store's.
func (l *egoDexLoader) storePath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + l.env.Store.Ext()
}

// LoadJoints converts the per-joint 4x4 world transforms of an EgoDex store
// into MANO-ordered (frames, 21, 3) positions per hand. Visibility is the
// confidence thresholded to 0/1; joints without a confidence entry count as
// fully confident.
func (l *egoDexLoader) LoadJoints(videoPath string) (*schema.JointRecord, error) {
	path := l.storePath(videoPath)
	g, err := l.env.Store.ReadAll(path)
	if err != nil {
		return nil, err
	}
	data := flattenEgoDex(g)

	rec := &schema.JointRecord{JointNames: append([]string(nil), ManoJointNames...)}
	for _, h := range []schema.Hand{schema.LeftHand, schema.RightHand} {
		side := strings.TrimSuffix(h.String(), "_hand")
		joints, vis, src, err := l.hand(data, side)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, h, err)
		}
		if h == schema.LeftHand {
			rec.LeftHand, rec.LeftHandVisibility, rec.LeftVisibilitySource = joints, vis, src
		} else {
			rec.RightHand, rec.RightHandVisibility, rec.RightVisibilitySource = joints, vis, src
		}
	}

	k, ok := data["intrinsic"]
	if !ok || k.Array == nil {
		return nil, fmt.Errorf("%s: %w: %s", path, schema.ErrMissingKey, egoDexIntrinsicKey)
	}
	rec.Intrinsics = k.Array
	return rec, nil
}

// flattenEgoDex lifts one level of groups into a flat key space, renaming
// joints to MANO names. Entries of the confidences group get a
// "_confidence" suffix.
func flattenEgoDex(g *arraystore.Group) map[string]arraystore.Value {
	data := make(map[string]arraystore.Value, len(g.Datasets))
	for name, v := range g.Datasets {
		data[name] = v
	}
	for gname, sub := range g.Groups {
		suffix := ""
		if gname == egoDexConfidenceGrp {
			suffix = egoDexConfidenceSufx
		}
		for name, v := range sub.Datasets {
			data[ManoName(name)+suffix] = v
		}
	}
	return data
}

func (l *egoDexLoader) hand(data map[string]arraystore.Value, side string) (joints, vis *ndarray.Array[float64], src schema.VisibilitySource, err error) {
	frames := -1
	positions := make([]*ndarray.Array[float64], 0, len(ManoJointNames))
	confidences := make([]*ndarray.Array[float64], 0, len(ManoJointNames))
	src = schema.VisibilityThresholded
	for _, name := range ManoJointNames {
		key := side + "_" + name
		v, ok := data[key]
		if !ok || v.Array == nil {
			return nil, nil, src, fmt.Errorf("%w: %s", schema.ErrMissingKey, key)
		}
		t, err := translation(v.Array)
		if err != nil {
			return nil, nil, src, fmt.Errorf("%s: %w", key, err)
		}
		if frames < 0 {
			frames = t.Len()
		} else if t.Len() != frames {
			return nil, nil, src, fmt.Errorf("%s has %d frames, expected %d", key, t.Len(), frames)
		}
		positions = append(positions, t)

		c, ok := data[key+egoDexConfidenceSufx]
		if !ok || c.Array == nil {
			src = schema.VisibilityAssumed
			confidences = append(confidences, ndarray.Full(1.0, frames))
			continue
		}
		if c.Array.Rank() != 1 || c.Array.Len() != frames {
			return nil, nil, src, fmt.Errorf("%s%s must be shaped (%d,), got %v", key, egoDexConfidenceSufx, frames, c.Array.Shape())
		}
		confidences = append(confidences, c.Array)
	}
	if src == schema.VisibilityAssumed {
		l.env.Logger.V(2).Info("missing joint confidences, assuming visible", "hand", side)
	}

	joints, err = ndarray.Stack(positions)
	if err != nil {
		return nil, nil, src, err
	}
	conf, err := ndarray.Stack(confidences)
	if err != nil {
		return nil, nil, src, err
	}
	threshold := l.env.ConfidenceThreshold
	vis = ndarray.Map(conf, func(c float64) float64 {
		if c > threshold {
			return 1
		}
		return 0
	})
	return joints, vis, src, nil
}

// translation extracts the translation column of a stack of homogeneous
// transforms: rows 0-2 of column 3, for (frames, 4, 4) input.
func translation(m *ndarray.Array[float64]) (*ndarray.Array[float64], error) {
	s := m.Shape()
	if len(s) != 3 || s[1] < 3 || s[2] < 4 {
		return nil, fmt.Errorf("transforms must be shaped (frames, 4, 4), got %v", s)
	}
	out := ndarray.Zeros[float64](s[0], 3)
	for f := 0; f < s[0]; f++ {
		for r := 0; r < 3; r++ {
			out.Set(m.At(f, r, 3), f, r)
		}
	}
	return out, nil
}

func (l *egoDexLoader) LoadAnnotation(videoPath string) (*schema.AnnotationRecord, error) {
	return nil, fmt.Errorf("%w: annotations for %s", schema.ErrNotImplemented, EgoDexID)
}

// LoadMetadata composes the camera intrinsic, the task description derived
// from the task directory name and the probed video properties.
func (l *egoDexLoader) LoadMetadata(videoPath string, info video.Info) (schema.Document, error) {
	k, err := l.env.Store.Read(l.storePath(videoPath), egoDexIntrinsicKey)
	if err != nil {
		return nil, err
	}
	task := strings.ReplaceAll(filepath.Base(filepath.Dir(videoPath)), "_", " ")
	doc := schema.Document{
		"intrinsic":         k.Array,
		"original_metadata": schema.Document{"task": task},
	}
	return doc.Merge(info.Fields()), nil
}
