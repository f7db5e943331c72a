package geometry

import (
	"math"
	"testing"

	"github.com/Noofbiz/openego/ndarray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intrinsic(fx, fy, cx, cy float64) *ndarray.Array[float64] {
	return ndarray.MustNew([]float64{
		fx, 0, cx,
		0, fy, cy,
		0, 0, 1,
	}, 3, 3)
}

func TestPointsToPixelsSingleIntrinsic(t *testing.T) {
	k := intrinsic(500, 400, 640, 360)
	points := ndarray.MustNew([]float64{
		0, 0, 1,
		0.1, -0.2, 2,
		0.013, 0.013, 1, // 6.5 px: truncated, not rounded
	}, 3, 3)

	px, depth, err := PointsToPixelsWithDepth(points, k)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, px.Shape())
	assert.Equal(t, []int{3, 1}, depth.Shape())
	assert.Equal(t, []int32{640, 360, 665, 320, 646, 365}, px.Data())
	assert.Equal(t, []float64{1, 2, 1}, depth.Data())
}

func TestPointsToPixelsKeepsLeadingDims(t *testing.T) {
	k := intrinsic(1, 1, 0, 0)
	points := ndarray.Full(1.0, 5, 21, 3)
	px, err := PointsToPixels(points, k)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 21, 2}, px.Shape())
	for _, v := range px.Data() {
		assert.Equal(t, int32(1), v)
	}
}

func TestPointsToPixelsZeroDepthIsClamped(t *testing.T) {
	k := intrinsic(500, 500, 320, 240)
	points := ndarray.MustNew([]float64{
		0.001, -0.001, 0,
		0, 0, -5,
	}, 2, 3)

	px, depth, err := PointsToPixelsWithDepth(points, k)
	require.NoError(t, err)
	assert.Equal(t, []float64{MinDepth, MinDepth}, depth.Data())

	// 0.001*500/1e-6 = 5e5 from the principal point, finite and bounded
	assert.Equal(t, int32(320+500000), px.At(0, 0))
	assert.Equal(t, int32(240-500000), px.At(0, 1))
	assert.Equal(t, []int32{320, 240}, px.Data()[2:])
}

func TestPointsToPixelsSaturates(t *testing.T) {
	k := intrinsic(1e6, 1e6, 0, 0)
	points := ndarray.MustNew([]float64{1e3, -1e3, 0}, 1, 3)
	px, err := PointsToPixels(points, k)
	require.NoError(t, err)
	assert.Equal(t, []int32{math.MaxInt32, math.MinInt32}, px.Data())
}

func TestBatchedIntrinsicMatchesSingle(t *testing.T) {
	const batch, frames, joints = 2, 4, 21
	k := intrinsic(600, 610, 300, 200)

	data := make([]float64, batch*frames*joints*3)
	for i := range data {
		switch i % 3 {
		case 2:
			data[i] = 0.5 + float64(i%7)/10
		default:
			data[i] = float64(i%11)/50 - 0.1
		}
	}
	points := ndarray.MustNew(data, batch, frames, joints, 3)

	kb := make([]float64, 0, batch*9)
	for i := 0; i < batch; i++ {
		kb = append(kb, k.Data()...)
	}
	batched := ndarray.MustNew(kb, batch, 3, 3)

	single, err := PointsToPixels(points, k)
	require.NoError(t, err)
	fromBatch, err := PointsToPixels(points, batched)
	require.NoError(t, err)

	assert.Equal(t, []int{batch, frames, joints, 2}, fromBatch.Shape())
	assert.True(t, ndarray.Equal(single, fromBatch))
}

func TestPointsToPixelsRejectsBadShapes(t *testing.T) {
	k := intrinsic(1, 1, 0, 0)
	_, err := PointsToPixels(ndarray.Zeros[float64](4, 2), k)
	assert.Error(t, err)

	_, err = PointsToPixels(ndarray.Zeros[float64](4, 3), ndarray.Zeros[float64](2, 2))
	assert.Error(t, err)

	// batch of 3 intrinsics against 2 leading batch entries
	_, err = PointsToPixels(ndarray.Zeros[float64](2, 4, 21, 3), ndarray.Zeros[float64](3, 3, 3))
	assert.Error(t, err)
}
