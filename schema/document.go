package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Document is a semi-structured metadata tree. Values are primitives,
// strings, slices, *ndarray.Array values or nested Documents. Its shape
// depends on the benchmark that produced it.
type Document map[string]any

// Merge copies every entry of other into d, overwriting existing keys.
func (d Document) Merge(other Document) Document {
	maps.Copy(d, other)
	return d
}

// Keys returns the sorted top-level keys.
func (d Document) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// Lookup walks a slash-separated path through nested documents.
func (d Document) Lookup(path string) (any, bool) {
	cur := d
	parts := strings.Split(path, "/")
	for i, p := range parts {
		v, ok := cur[p]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := asDocument(v)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Sub returns the nested document stored at key.
func (d Document) Sub(key string) (Document, error) {
	v, ok := d[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	sub, ok := asDocument(v)
	if !ok {
		return nil, fmt.Errorf("%s is a %T, not a document", key, v)
	}
	return sub, nil
}

// Text returns the string stored at key.
func (d Document) Text(key string) (string, bool) {
	v, ok := d[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Float returns the number stored at key as a float64.
func (d Document) Float(key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func asDocument(v any) (Document, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]any:
		return Document(m), true
	}
	return nil, false
}
