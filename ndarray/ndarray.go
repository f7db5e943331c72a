// Package ndarray provides a small row-major n-dimensional array used to carry
// joint streams, visibility masks, intrinsics, pixel coordinates and decoded
// video frames between the loaders and their consumers.
//
// Slicing along the leading axis returns views that share the parent's
// backing buffer, so per-segment accessors stay cheap. Operations that
// change the element layout (Tile, Stack, Broadcast2, Convert) allocate.
package ndarray

import (
	"fmt"
	"slices"
)

// Number is the set of element types an Array can hold.
type Number interface {
	uint8 | int32 | int64 | float32 | float64
}

// Array is a dense row-major array of T with a fixed shape.
// A rank-0 array (empty shape) holds exactly one element.
type Array[T Number] struct {
	shape []int
	data  []T
}

// New wraps data in an array of the given shape. len(data) must equal the
// product of the shape. The data slice is not copied.
func New[T Number](data []T, shape ...int) (*Array[T], error) {
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative dimension in shape %v", shape)
		}
	}
	if n := sizeOf(shape); n != len(data) {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, n, len(data))
	}
	return &Array[T]{shape: slices.Clone(shape), data: data}, nil
}

// MustNew is like New but panics on a shape mismatch. Intended for literals
// in tests and tables.
func MustNew[T Number](data []T, shape ...int) *Array[T] {
	a, err := New(data, shape...)
	if err != nil {
		panic(err)
	}
	return a
}

// Zeros returns a zero-filled array.
func Zeros[T Number](shape ...int) *Array[T] {
	return &Array[T]{shape: slices.Clone(shape), data: make([]T, sizeOf(shape))}
}

// Full returns an array with every element set to v.
func Full[T Number](v T, shape ...int) *Array[T] {
	a := Zeros[T](shape...)
	for i := range a.data {
		a.data[i] = v
	}
	return a
}

// Scalar returns a rank-0 array holding v.
func Scalar[T Number](v T) *Array[T] {
	return &Array[T]{shape: []int{}, data: []T{v}}
}

func sizeOf(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Shape returns a copy of the array's dimensions.
func (a *Array[T]) Shape() []int { return slices.Clone(a.shape) }

// Rank returns the number of dimensions.
func (a *Array[T]) Rank() int { return len(a.shape) }

// Dim returns the size of axis i. Negative i counts from the end.
func (a *Array[T]) Dim(i int) int {
	if i < 0 {
		i += len(a.shape)
	}
	return a.shape[i]
}

// Len returns the size of the leading axis, or 0 for a scalar.
func (a *Array[T]) Len() int {
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[0]
}

// Size returns the total number of elements.
func (a *Array[T]) Size() int { return len(a.data) }

// Data returns the backing buffer in row-major order. Writes through the
// returned slice are visible to every view sharing it.
func (a *Array[T]) Data() []T { return a.data }

// Item returns the single element of a rank-0 or one-element array.
func (a *Array[T]) Item() (T, error) {
	if len(a.data) != 1 {
		var zero T
		return zero, fmt.Errorf("item of array with shape %v", a.shape)
	}
	return a.data[0], nil
}

func (a *Array[T]) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("ndarray: %d indices for shape %v", len(idx), a.shape))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			panic(fmt.Sprintf("ndarray: index %v out of range for shape %v", idx, a.shape))
		}
		off = off*a.shape[i] + x
	}
	return off
}

// At returns the element at the given index. It panics when the index is out
// of range, the way slice indexing does.
func (a *Array[T]) At(idx ...int) T { return a.data[a.offset(idx)] }

// Set stores v at the given index.
func (a *Array[T]) Set(v T, idx ...int) { a.data[a.offset(idx)] = v }

// rowSize is the number of elements in one entry of the leading axis.
func (a *Array[T]) rowSize() int { return sizeOf(a.shape[1:]) }

// Rows returns the view a[start:end] along the leading axis using Python
// slice semantics: negative bounds count from the end and out-of-range
// bounds are clamped, so the result may be shorter than end-start.
func (a *Array[T]) Rows(start, end int) (*Array[T], error) {
	if len(a.shape) == 0 {
		return nil, fmt.Errorf("cannot slice a scalar")
	}
	n := a.shape[0]
	start, end = clampBound(start, n), clampBound(end, n)
	if end < start {
		end = start
	}
	rs := a.rowSize()
	shape := slices.Clone(a.shape)
	shape[0] = end - start
	return &Array[T]{shape: shape, data: a.data[start*rs : end*rs : end*rs]}, nil
}

func clampBound(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}

// Row returns the view a[i] with rank reduced by one.
func (a *Array[T]) Row(i int) (*Array[T], error) {
	if len(a.shape) == 0 {
		return nil, fmt.Errorf("cannot index a scalar")
	}
	if i < 0 || i >= a.shape[0] {
		return nil, fmt.Errorf("row %d out of range [0, %d)", i, a.shape[0])
	}
	rs := a.rowSize()
	return &Array[T]{shape: slices.Clone(a.shape[1:]), data: a.data[i*rs : (i+1)*rs : (i+1)*rs]}, nil
}

// Reshape returns a view with a new shape of the same size. One dimension
// may be -1 and is inferred.
func (a *Array[T]) Reshape(shape ...int) (*Array[T], error) {
	shape = slices.Clone(shape)
	infer := -1
	known := 1
	for i, d := range shape {
		switch {
		case d == -1 && infer == -1:
			infer = i
		case d < 0:
			return nil, fmt.Errorf("invalid shape %v", shape)
		default:
			known *= d
		}
	}
	if infer >= 0 {
		if known == 0 || len(a.data)%known != 0 {
			return nil, fmt.Errorf("cannot reshape %v into %v", a.shape, shape)
		}
		shape[infer] = len(a.data) / known
	}
	if sizeOf(shape) != len(a.data) {
		return nil, fmt.Errorf("cannot reshape %v into %v", a.shape, shape)
	}
	return &Array[T]{shape: shape, data: a.data}, nil
}

// Clone returns a deep copy.
func (a *Array[T]) Clone() *Array[T] {
	return &Array[T]{shape: slices.Clone(a.shape), data: slices.Clone(a.data)}
}

// Tile repeats a 1-D array n times along a new trailing axis, turning
// shape (F,) into (F, n) with every column equal to the input.
func (a *Array[T]) Tile(n int) (*Array[T], error) {
	if len(a.shape) != 1 {
		return nil, fmt.Errorf("tile needs a 1-D array, got shape %v", a.shape)
	}
	out := Zeros[T](a.shape[0], n)
	for i, v := range a.data {
		row := out.data[i*n : (i+1)*n]
		for j := range row {
			row[j] = v
		}
	}
	return out, nil
}

// Convert returns a copy of a with elements converted to U.
func Convert[U, T Number](a *Array[T]) *Array[U] {
	out := make([]U, len(a.data))
	for i, v := range a.data {
		out[i] = U(v)
	}
	return &Array[U]{shape: slices.Clone(a.shape), data: out}
}

// Map applies f to every element and returns the result as a new array.
func Map[U, T Number](a *Array[T], f func(T) U) *Array[U] {
	out := make([]U, len(a.data))
	for i, v := range a.data {
		out[i] = f(v)
	}
	return &Array[U]{shape: slices.Clone(a.shape), data: out}
}

// Stack joins arrays of identical shape (N, rest...) along a new axis 1,
// producing (N, len(arrs), rest...). It mirrors numpy.stack(arrs, axis=1).
func Stack[T Number](arrs []*Array[T]) (*Array[T], error) {
	if len(arrs) == 0 {
		return nil, fmt.Errorf("stack of zero arrays")
	}
	first := arrs[0]
	if first.Rank() == 0 {
		return nil, fmt.Errorf("cannot stack scalars along axis 1")
	}
	for i, x := range arrs[1:] {
		if !slices.Equal(x.shape, first.shape) {
			return nil, fmt.Errorf("stack: array %d has shape %v, want %v", i+1, x.shape, first.shape)
		}
	}
	n, k, rs := first.shape[0], len(arrs), first.rowSize()
	shape := append([]int{n, k}, first.shape[1:]...)
	out := Zeros[T](shape...)
	for i := 0; i < n; i++ {
		for j, x := range arrs {
			copy(out.data[(i*k+j)*rs:], x.data[i*rs:(i+1)*rs])
		}
	}
	return out, nil
}

// Equal reports whether a and b have the same shape and elements.
func Equal[T Number](a, b *Array[T]) bool {
	return slices.Equal(a.shape, b.shape) && slices.Equal(a.data, b.data)
}
