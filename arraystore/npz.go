package arraystore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Noofbiz/openego/ndarray"
	"github.com/Noofbiz/openego/schema"
	"github.com/sbinet/npyio/npy"
	"github.com/sbinet/npyio/npz"
)

// NPZ reads NumPy .npz archives. Archive members named "group/name.npy"
// form the group hierarchy.
type NPZ struct{}

// Ext implements Reader.
func (NPZ) Ext() string { return ".npz" }

// Read implements Reader.
func (NPZ) Read(path, key string) (Value, error) {
	r, err := npz.Open(path)
	if err != nil {
		return Value{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	members := memberNames(r)
	raw, ok := members[key]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q in %s", schema.ErrMissingKey, key, path)
	}
	v, err := readMember(r, raw)
	if err != nil {
		return Value{}, fmt.Errorf("read %q from %s: %w", key, path, err)
	}
	return v, nil
}

// ReadAll implements Reader.
func (NPZ) ReadAll(path string) (*Group, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	root := NewGroup()
	for key, raw := range memberNames(r) {
		v, err := readMember(r, raw)
		if err != nil {
			return nil, fmt.Errorf("read %q from %s: %w", key, path, err)
		}
		root.Insert(key, v)
	}
	return root, nil
}

// memberNames maps logical keys (no ".npy" suffix) to archive member names.
func memberNames(r *npz.Reader) map[string]string {
	out := make(map[string]string)
	for _, k := range r.Keys() {
		out[strings.TrimSuffix(k, ".npy")] = k
	}
	return out
}

func readMember(r *npz.Reader, name string) (Value, error) {
	hdr := r.Header(name)
	if hdr == nil {
		return Value{}, fmt.Errorf("no header for %q", name)
	}
	dtype := hdr.Descr.Type
	shape := hdr.Descr.Shape

	if kind := dtypeKind(dtype); kind == 'U' || kind == 'S' {
		s, err := readStrings(r, name, dtype)
		if err != nil {
			return Value{}, err
		}
		if hdr.Descr.Fortran && len(shape) > 1 {
			s = reorder(s, fortranOffsets(shape))
		}
		return Value{DType: dtype, Strings: s}, nil
	}

	data, err := readNumeric(r, name, dtype)
	if err != nil {
		return Value{}, err
	}
	arr, err := ndarray.New(data, shape...)
	if err != nil {
		return Value{}, err
	}
	if hdr.Descr.Fortran && arr.Rank() > 1 {
		arr = fromFortran(arr)
	}
	return Value{DType: dtype, Array: arr}, nil
}

// dtypeKind returns the NumPy kind character of a descr such as "<f8".
func dtypeKind(dtype string) byte {
	d := strings.TrimLeft(dtype, "<>|=")
	if d == "" {
		return 0
	}
	return d[0]
}

func dtypeSize(dtype string) int {
	d := strings.TrimLeft(dtype, "<>|=")
	if len(d) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(d[1:])
	return n
}

// readNumeric decodes a member into its native Go type and widens it to
// float64.
func readNumeric(r *npz.Reader, name, dtype string) ([]float64, error) {
	switch kind, size := dtypeKind(dtype), dtypeSize(dtype); {
	case kind == 'f' && size == 8:
		var v []float64
		err := r.Read(name, &v)
		return v, err
	case kind == 'f' && size == 4:
		return readAs[float32](r, name)
	case kind == 'i' && size == 8:
		return readAs[int64](r, name)
	case kind == 'i' && size == 4:
		return readAs[int32](r, name)
	case kind == 'i' && size == 2:
		return readAs[int16](r, name)
	case kind == 'i' && size == 1:
		return readAs[int8](r, name)
	case kind == 'u' && size == 8:
		return readAs[uint64](r, name)
	case kind == 'u' && size == 4:
		return readAs[uint32](r, name)
	case kind == 'u' && size == 2:
		return readAs[uint16](r, name)
	case kind == 'u' && size == 1:
		return readAs[uint8](r, name)
	case kind == 'b':
		var v []bool
		if err := r.Read(name, &v); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		for i, b := range v {
			if b {
				out[i] = 1
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported dtype %q", dtype)
}

type integerOrFloat interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32
}

func readAs[T integerOrFloat](r *npz.Reader, name string) ([]float64, error) {
	var v []T
	if err := r.Read(name, &v); err != nil {
		return nil, err
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out, nil
}

// readStrings decodes a fixed-width string member. "U" elements are
// UTF-32 code units, "S" elements bytes; both are NUL padded.
func readStrings(r *npz.Reader, name, dtype string) ([]string, error) {
	rc, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	// NewReader consumes the header and leaves rc at the data.
	rp, err := npy.NewReader(rc)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	width := dtypeSize(dtype)
	unit := 1
	if dtypeKind(dtype) == 'U' {
		unit = 4
	}
	n := 1
	for _, d := range rp.Header.Descr.Shape {
		n *= d
	}
	if width <= 0 || len(raw) < n*width*unit {
		return nil, fmt.Errorf("%s: %d bytes for %d elements of %s", name, len(raw), n, dtype)
	}
	var order binary.ByteOrder = binary.LittleEndian
	if strings.HasPrefix(dtype, ">") {
		order = binary.BigEndian
	}

	out := make([]string, n)
	for i := range out {
		elem := raw[i*width*unit : (i+1)*width*unit]
		if unit == 1 {
			out[i] = string(bytes.TrimRight(elem, "\x00"))
			continue
		}
		runes := make([]rune, 0, width)
		for j := 0; j < width; j++ {
			runes = append(runes, rune(order.Uint32(elem[4*j:])))
		}
		out[i] = strings.TrimRight(string(runes), "\x00")
	}
	return out, nil
}

// fortranOffsets maps each row-major position of shape to its offset in a
// column-major buffer.
func fortranOffsets(shape []int) []int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	offs := make([]int, n)
	idx := make([]int, len(shape))
	for i := range offs {
		off, stride := 0, 1
		for d := 0; d < len(shape); d++ {
			off += idx[d] * stride
			stride *= shape[d]
		}
		offs[i] = off
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return offs
}

func reorder[T any](src []T, offs []int) []T {
	dst := make([]T, len(offs))
	for i, off := range offs {
		dst[i] = src[off]
	}
	return dst
}

// fromFortran reorders a column-major buffer into row-major order.
func fromFortran(a *ndarray.Array[float64]) *ndarray.Array[float64] {
	return ndarray.MustNew(reorder(a.Data(), fortranOffsets(a.Shape())), a.Shape()...)
}
