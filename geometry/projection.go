// Package geometry projects camera-space 3D points into pixel space.
package geometry

import (
	"fmt"
	"math"

	"github.com/Noofbiz/openego/ndarray"
)

// MinDepth is the smallest depth used as a divisor. Points at or behind the
// camera plane are projected as if they sat at this depth.
const MinDepth = 1e-6

// PointsToPixels projects points shaped (..., 3) through the camera
// intrinsic and returns integer pixel coordinates shaped (..., 2).
//
// The intrinsic is either a single 3x3 matrix or a batch (B, 3, 3). A batched
// intrinsic has its focal lengths and principal point laid out as
// (B, 1, 1, 2) before broadcasting, which lines up with point tensors shaped
// (B, frames, joints, 3).
func PointsToPixels(points, intrinsic *ndarray.Array[float64]) (*ndarray.Array[int32], error) {
	px, _, err := PointsToPixelsWithDepth(points, intrinsic)
	return px, err
}

// PointsToPixelsWithDepth is PointsToPixels that also returns the clamped
// depth used for each point, shaped (..., 1).
func PointsToPixelsWithDepth(points, intrinsic *ndarray.Array[float64]) (*ndarray.Array[int32], *ndarray.Array[float64], error) {
	if points.Rank() == 0 || points.Dim(-1) != 3 {
		return nil, nil, fmt.Errorf("points must be shaped (..., 3), got %v", points.Shape())
	}
	focal, principal, err := cameraParams(intrinsic)
	if err != nil {
		return nil, nil, err
	}

	xy, depth := splitPoints(points)
	scaled, err := ndarray.Broadcast2(xy, focal, mul)
	if err != nil {
		return nil, nil, fmt.Errorf("broadcast focal length: %w", err)
	}
	scaled, err = ndarray.Broadcast2(scaled, depth, div)
	if err != nil {
		return nil, nil, fmt.Errorf("broadcast depth: %w", err)
	}
	shifted, err := ndarray.Broadcast2(scaled, principal, add)
	if err != nil {
		return nil, nil, fmt.Errorf("broadcast principal point: %w", err)
	}
	return ndarray.Map(shifted, truncate), depth, nil
}

// cameraParams extracts (fx, fy) and (cx, cy) from a single or batched
// intrinsic, shaped (2,) or (B, 1, 1, 2).
func cameraParams(k *ndarray.Array[float64]) (focal, principal *ndarray.Array[float64], err error) {
	switch shape := k.Shape(); {
	case len(shape) == 2 && shape[0] == 3 && shape[1] == 3:
		focal = ndarray.MustNew([]float64{k.At(0, 0), k.At(1, 1)}, 2)
		principal = ndarray.MustNew([]float64{k.At(0, 2), k.At(1, 2)}, 2)
		return focal, principal, nil
	case len(shape) == 3 && shape[1] == 3 && shape[2] == 3:
		b := shape[0]
		f := make([]float64, 0, 2*b)
		p := make([]float64, 0, 2*b)
		for i := 0; i < b; i++ {
			f = append(f, k.At(i, 0, 0), k.At(i, 1, 1))
			p = append(p, k.At(i, 0, 2), k.At(i, 1, 2))
		}
		return ndarray.MustNew(f, b, 1, 1, 2), ndarray.MustNew(p, b, 1, 1, 2), nil
	default:
		return nil, nil, fmt.Errorf("intrinsic must be (3, 3) or (B, 3, 3), got %v", shape)
	}
}

// splitPoints returns points[..., :2] and points[..., -1:] clamped to
// MinDepth.
func splitPoints(points *ndarray.Array[float64]) (xy, depth *ndarray.Array[float64]) {
	shape := points.Shape()
	n := points.Size() / 3
	src := points.Data()
	xyData := make([]float64, 0, 2*n)
	dData := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		xyData = append(xyData, src[3*i], src[3*i+1])
		dData = append(dData, max(src[3*i+2], MinDepth))
	}
	shape[len(shape)-1] = 2
	xy = ndarray.MustNew(xyData, shape...)
	shape[len(shape)-1] = 1
	depth = ndarray.MustNew(dData, shape...)
	return xy, depth
}

func mul(x, y float64) float64 { return x * y }
func div(x, y float64) float64 { return x / y }
func add(x, y float64) float64 { return x + y }

// truncate converts toward zero, saturating at the int32 range. NaN maps
// to 0.
func truncate(v float64) int32 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}
