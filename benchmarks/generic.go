package benchmarks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Noofbiz/openego/arraystore"
	"github.com/Noofbiz/openego/ndarray"
	"github.com/Noofbiz/openego/schema"
	"github.com/Noofbiz/openego/video"
)

// File stems of the generic layout, resolved in the video's directory.
const (
	JointsStem           = "joints"
	MetadataStem         = "metadata"
	OriginalMetadataStem = "original_metadata"
	AnnotationFile       = "annotation.json"
)

type genericLoader struct {
	env Env
}

func (l *genericLoader) path(videoPath, stem string) string {
	return filepath.Join(filepath.Dir(videoPath), stem+l.env.Store.Ext())
}

func (l *genericLoader) LoadJoints(videoPath string) (*schema.JointRecord, error) {
	path := l.path(videoPath, JointsStem)
	g, err := l.env.Store.ReadAll(path)
	if err != nil {
		return nil, err
	}
	rec, err := jointRecordFromGroup(g)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// jointRecordFromGroup maps the semantic keys of a joints store onto a
// record. Unrecognized entries are kept in Extra.
func jointRecordFromGroup(g *arraystore.Group) (*schema.JointRecord, error) {
	rec := &schema.JointRecord{Extra: schema.Document{}}
	for name, v := range g.Datasets {
		switch name {
		case schema.KeyLeftHand:
			rec.LeftHand = v.Array
		case schema.KeyRightHand:
			rec.RightHand = v.Array
		case schema.KeyLeftHandVisibility:
			rec.LeftHandVisibility = v.Array
		case schema.KeyRightHandVisibility:
			rec.RightHandVisibility = v.Array
		case schema.KeyIntrinsics:
			rec.Intrinsics = v.Array
		case schema.KeyJointNames:
			rec.JointNames = v.Strings
		default:
			rec.Extra[name] = v.Any()
		}
	}
	for name, sub := range g.Groups {
		rec.Extra[name] = sub.Document()
	}

	for _, h := range []schema.Hand{schema.LeftHand, schema.RightHand} {
		j, err := rec.Joints(h)
		if err != nil {
			continue
		}
		if err := checkJoints(j); err != nil {
			return nil, fmt.Errorf("%s: %w", h, err)
		}
		if v, err := rec.Visibility(h); err == nil {
			if err := checkVisibility(v, j.Len()); err != nil {
				return nil, fmt.Errorf("%s_visibility: %w", h, err)
			}
		}
	}
	if rec.Intrinsics != nil && !isMatrix3(rec.Intrinsics) {
		return nil, fmt.Errorf("intrinsics must be 3x3, got %v", rec.Intrinsics.Shape())
	}
	return rec, nil
}

func checkJoints(a *ndarray.Array[float64]) error {
	if s := a.Shape(); len(s) != 3 || s[1] != schema.NumJoints || s[2] != 3 {
		return fmt.Errorf("joints must be shaped (frames, %d, 3), got %v", schema.NumJoints, s)
	}
	return nil
}

// checkVisibility accepts (frames,) or (frames, 21).
func checkVisibility(a *ndarray.Array[float64], frames int) error {
	s := a.Shape()
	switch {
	case len(s) == 1 && s[0] == frames:
	case len(s) == 2 && s[0] == frames && s[1] == schema.NumJoints:
	default:
		return fmt.Errorf("visibility must be shaped (%d,) or (%d, %d) to match the joints, got %v", frames, frames, schema.NumJoints, s)
	}
	return nil
}

func isMatrix3(a *ndarray.Array[float64]) bool {
	s := a.Shape()
	return len(s) == 2 && s[0] == 3 && s[1] == 3
}

func (l *genericLoader) LoadAnnotation(videoPath string) (*schema.AnnotationRecord, error) {
	path := filepath.Join(filepath.Dir(videoPath), AnnotationFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec schema.AnnotationRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &rec, nil
}

// LoadMetadata returns the metadata store's entries plus the original
// metadata store nested under "original_metadata". info is unused: the
// generic layout records its own video properties.
func (l *genericLoader) LoadMetadata(videoPath string, _ video.Info) (schema.Document, error) {
	orig, err := l.env.Store.ReadAll(l.path(videoPath, OriginalMetadataStem))
	if err != nil {
		return nil, err
	}
	meta, err := l.env.Store.ReadAll(l.path(videoPath, MetadataStem))
	if err != nil {
		return nil, err
	}
	doc := schema.Document{"original_metadata": orig.Document()}
	return doc.Merge(meta.Document()), nil
}
