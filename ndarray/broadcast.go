package ndarray

import (
	"fmt"
	"slices"
)

// BroadcastShapes returns the shape produced by combining a and b under
// numpy broadcasting rules: shapes are right-aligned and each pair of
// dimensions must be equal or contain a 1.
func BroadcastShapes(a, b []int) ([]int, error) {
	n := max(len(a), len(b))
	out := make([]int, n)
	for i := 1; i <= n; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}
		switch {
		case da == db, db == 1:
			out[n-i] = da
		case da == 1:
			out[n-i] = db
		default:
			return nil, fmt.Errorf("shapes %v and %v cannot be broadcast together", a, b)
		}
	}
	return out, nil
}

// Broadcast2 applies op element-wise to a and b after broadcasting them to a
// common shape.
func Broadcast2[T Number](a, b *Array[T], op func(x, y T) T) (*Array[T], error) {
	shape, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	out := Zeros[T](shape...)
	if slices.Equal(a.shape, shape) && slices.Equal(b.shape, shape) {
		for i := range out.data {
			out.data[i] = op(a.data[i], b.data[i])
		}
		return out, nil
	}

	sa, sb := broadcastStrides(a.shape, shape), broadcastStrides(b.shape, shape)
	idx := make([]int, len(shape))
	for i := range out.data {
		oa, ob := 0, 0
		for d, x := range idx {
			oa += x * sa[d]
			ob += x * sb[d]
		}
		out.data[i] = op(a.data[oa], b.data[ob])
		// advance the multi-index in row-major order
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out, nil
}

// broadcastStrides returns per-axis element strides of src viewed as target,
// with zero stride on broadcast axes.
func broadcastStrides(src, target []int) []int {
	strides := make([]int, len(target))
	off := len(target) - len(src)
	stride := 1
	for i := len(src) - 1; i >= 0; i-- {
		if src[i] != 1 {
			strides[off+i] = stride
		}
		stride *= src[i]
	}
	return strides
}
