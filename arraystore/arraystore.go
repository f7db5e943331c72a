// Package arraystore reads keyed numeric arrays from on-disk containers.
//
// A store file holds named datasets, optionally nested in groups. Readers
// expose it as a Group tree; nested names are addressed with slash-separated
// keys such as "camera/intrinsic".
package arraystore

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/Noofbiz/openego/ndarray"
	"github.com/Noofbiz/openego/schema"
)

// Reader is the keyed-array store collaborator.
type Reader interface {
	// Ext is the file extension this reader handles, including the dot.
	Ext() string

	// Read returns the dataset stored under key.
	Read(path, key string) (Value, error)

	// ReadAll returns every dataset in the file as a group tree.
	ReadAll(path string) (*Group, error)
}

// Value is one dataset. Numeric datasets are converted to float64; string
// datasets are kept as strings.
type Value struct {
	// DType is the on-disk element type as reported by the container.
	DType   string
	Array   *ndarray.Array[float64]
	Strings []string
}

// IsScalar reports whether the dataset holds a single rank-0 element.
func (v Value) IsScalar() bool {
	if v.Array != nil {
		return v.Array.Rank() == 0
	}
	return false
}

// Any returns the value in the loose form used by metadata documents:
// scalars unwrap to float64, single strings to string.
func (v Value) Any() any {
	switch {
	case v.Array != nil && v.Array.Rank() == 0:
		return v.Array.Data()[0]
	case v.Array != nil:
		return v.Array
	case len(v.Strings) == 1:
		return v.Strings[0]
	default:
		return v.Strings
	}
}

// Group is a node of a store's hierarchy.
type Group struct {
	Datasets map[string]Value
	Groups   map[string]*Group
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{Datasets: map[string]Value{}, Groups: map[string]*Group{}}
}

// Insert stores v under a slash-separated key, creating intermediate groups.
func (g *Group) Insert(key string, v Value) {
	parts := strings.Split(key, "/")
	cur := g
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur.Groups[p]
		if !ok {
			next = NewGroup()
			cur.Groups[p] = next
		}
		cur = next
	}
	cur.Datasets[parts[len(parts)-1]] = v
}

// Lookup finds the dataset under a slash-separated key.
func (g *Group) Lookup(key string) (Value, bool) {
	parts := strings.Split(key, "/")
	cur := g
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur.Groups[p]
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	v, ok := cur.Datasets[parts[len(parts)-1]]
	return v, ok
}

// DatasetNames returns the sorted names of the group's direct datasets.
func (g *Group) DatasetNames() []string { return slices.Sorted(maps.Keys(g.Datasets)) }

// GroupNames returns the sorted names of the group's direct subgroups.
func (g *Group) GroupNames() []string { return slices.Sorted(maps.Keys(g.Groups)) }

// Document converts the tree into a metadata document.
func (g *Group) Document() schema.Document {
	doc := schema.Document{}
	for name, v := range g.Datasets {
		doc[name] = v.Any()
	}
	for name, sub := range g.Groups {
		doc[name] = sub.Document()
	}
	return doc
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Reader{}
)

func init() {
	Register(NPZ{})
}

// Register makes a reader available through ForFormat. Registering the same
// extension twice replaces the earlier reader.
func Register(r Reader) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[r.Ext()] = r
}

// ForFormat returns the reader for a format name or extension, e.g. "npz",
// ".npz" or "hdf5".
func ForFormat(format string) (Reader, error) {
	ext := strings.ToLower(strings.TrimSpace(format))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[ext]
	if !ok {
		return nil, fmt.Errorf("no array store reader for %q (available: %v)", format, slices.Sorted(maps.Keys(registry)))
	}
	return r, nil
}
