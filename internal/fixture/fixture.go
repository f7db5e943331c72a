// Package fixture writes small on-disk corpora for tests: NumPy .npz stores,
// annotation JSON files and placeholder videos.
package fixture

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"

	"github.com/sbinet/npyio/npz"
)

// Array is a row-major float64 dataset written as "<f8", or a string
// dataset written as "<U<n>" when Strings is set.
type Array struct {
	Data    []float64
	Shape   []int
	Strings []string
}

// Scalar returns a rank-0 dataset.
func Scalar(v float64) Array { return Array{Data: []float64{v}} }

// Fill returns a dataset of the given shape whose elements are produced by f
// from their flat index.
func Fill(f func(i int) float64, shape ...int) Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = f(i)
	}
	return Array{Data: data, Shape: shape}
}

// Const returns a dataset with every element set to v.
func Const(v float64, shape ...int) Array {
	return Fill(func(int) float64 { return v }, shape...)
}

// WriteNPZ writes arrays into an .npz archive at path, one "<key>.npy"
// member per entry. Keys may contain "/" to express groups. Shapes with a
// zero dimension are written as (0,).
func WriteNPZ(path string, arrays map[string]Array) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := npz.NewWriter(f)
	for _, k := range slices.Sorted(maps.Keys(arrays)) {
		if err := w.Write(k+".npy", arrays[k].value()); err != nil {
			return fmt.Errorf("write %s: %w", k, err)
		}
	}
	return w.Close()
}

// value builds a Go value whose npy encoding has a's dtype and shape:
// a float64 for scalars and nested fixed-size arrays otherwise.
func (a Array) value() any {
	if a.Strings != nil {
		return a.Strings
	}
	if len(a.Shape) == 0 {
		return a.Data[0]
	}
	t := reflect.TypeFor[float64]()
	for i := len(a.Shape) - 1; i >= 0; i-- {
		t = reflect.ArrayOf(a.Shape[i], t)
	}
	v := reflect.New(t).Elem()
	fill(v, a.Data)
	return v.Interface()
}

func fill(v reflect.Value, data []float64) []float64 {
	if v.Kind() == reflect.Float64 {
		v.SetFloat(data[0])
		return data[1:]
	}
	for i := 0; i < v.Len(); i++ {
		data = fill(v.Index(i), data)
	}
	return data
}

// WriteJSON marshals v into path, creating parent directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Touch creates an empty file, e.g. a placeholder video for discovery.
func Touch(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, nil, 0o644)
}
