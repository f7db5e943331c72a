// Package benchmarks holds the loader strategies that turn a benchmark's
// on-disk layout into joint, annotation and metadata records.
//
// The set of strategies is closed: every benchmark id resolves to either the
// generic per-demo-directory layout or the EgoDex layout. Resolution happens
// once, when a corpus is indexed, so unknown ids fail early.
package benchmarks

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Noofbiz/openego/arraystore"
	"github.com/Noofbiz/openego/schema"
	"github.com/Noofbiz/openego/video"
	"github.com/go-logr/logr"
)

// Kind selects a loader strategy.
type Kind int

const (
	// Generic is the demo_XXXX directory layout with joints, annotation,
	// metadata and original_metadata files next to the video.
	Generic Kind = iota
	// EgoDex is the partN/task/N.mp4 layout with a same-stem store per video.
	EgoDex
)

func (k Kind) String() string {
	switch k {
	case Generic:
		return "generic"
	case EgoDex:
		return "egodex"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// EgoDexID is the benchmark id served by the EgoDex strategy.
const EgoDexID = "egodex"

// DefaultGeneric lists the benchmarks known to use the generic layout.
var DefaultGeneric = []string{"arctic", "h2o", "ho-cap", "hoi4d", "hot3d", "oakink2", "taco"}

// Benchmark is a resolved benchmark id and its strategy.
type Benchmark struct {
	ID   string
	Kind Kind
}

func (b Benchmark) String() string { return b.ID }

// Registry maps benchmark ids to strategies.
type Registry struct {
	kinds map[string]Kind
}

// NewRegistry returns a registry that only knows EgoDex.
func NewRegistry() *Registry {
	return &Registry{kinds: map[string]Kind{EgoDexID: EgoDex}}
}

// DefaultRegistry returns a registry with EgoDex and DefaultGeneric.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.AddGeneric(DefaultGeneric...)
	return r
}

// AddGeneric registers ids that use the generic layout. Ids are normalized
// the same way paths are.
func (r *Registry) AddGeneric(ids ...string) {
	for _, id := range ids {
		if id = normalize(id); id != "" && id != EgoDexID {
			r.kinds[id] = Generic
		}
	}
}

// Resolve returns the strategy for id.
func (r *Registry) Resolve(id string) (Benchmark, error) {
	id = normalize(id)
	k, ok := r.kinds[id]
	if !ok {
		return Benchmark{}, fmt.Errorf("%w: %q", schema.ErrUnknownBenchmark, id)
	}
	return Benchmark{ID: id, Kind: k}, nil
}

// IDs returns every registered id, sorted.
func (r *Registry) IDs() []string { return slices.Sorted(maps.Keys(r.kinds)) }

func normalize(id string) string { return strings.ToLower(strings.TrimSpace(id)) }

// Loader reads the per-demonstration records of one benchmark.
type Loader interface {
	LoadJoints(videoPath string) (*schema.JointRecord, error)
	LoadAnnotation(videoPath string) (*schema.AnnotationRecord, error)
	LoadMetadata(videoPath string, info video.Info) (schema.Document, error)
}

// Env carries the collaborators shared by every loader.
type Env struct {
	Store arraystore.Reader

	// ConfidenceThreshold turns per-joint confidences into visibility; a
	// joint is visible when its confidence is strictly greater.
	ConfidenceThreshold float64

	Logger logr.Logger
}

// Loader returns the strategy implementation for b.
func (b Benchmark) Loader(env Env) Loader {
	if b.Kind == EgoDex {
		return &egoDexLoader{env: env}
	}
	return &genericLoader{env: env}
}
