package transform

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sandboxar/internal/raster"
)

func TestApplyAffine(t *testing.T) {
	h := Affine(2, 3, 10, -5)
	x, y := h.Apply(1, 1)
	assert.InDelta(t, 12, x, 1e-12)
	assert.InDelta(t, -2, y, 1e-12)
}

func TestApplyProjective(t *testing.T) {
	h := Homography{1, 0, 0, 0, 1, 0, 0.5, 0, 1}
	x, y := h.Apply(2, 4)
	assert.InDelta(t, 1, x, 1e-12)
	assert.InDelta(t, 2, y, 1e-12)
}

func TestInverseRoundTrip(t *testing.T) {
	h := Homography{1.2, 0.1, 5, -0.2, 0.9, 3, 0.001, 0.002, 1}
	inv, err := h.Inverse()
	require.NoError(t, err)
	for _, p := range [][2]float64{{0, 0}, {10, 20}, {-3, 7.5}} {
		x, y := h.Apply(p[0], p[1])
		bx, by := inv.Apply(x, y)
		assert.InDelta(t, p[0], bx, 1e-9)
		assert.InDelta(t, p[1], by, 1e-9)
	}
}

func TestInverseSingular(t *testing.T) {
	_, err := Homography{}.Inverse()
	assert.ErrorIs(t, err, ErrSingular)
}

func TestWarpGridIdentity(t *testing.T) {
	src := &raster.Grid{W: 3, H: 2, Pix: []float32{1, 2, 3, 4, 5, 6}}
	dst, err := WarpGrid(src, Identity(), 3, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, src.Pix, dst.Pix, 1e-6)
}

func TestWarpGridShiftFillsZero(t *testing.T) {
	src := &raster.Grid{W: 3, H: 1, Pix: []float32{1, 2, 3}}
	dst, err := WarpGrid(src, Affine(1, 1, 1, 0), 3, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0, 1, 2}, dst.Pix, 1e-6)
}

func TestWarpNRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	src.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 255})
	out, err := WarpNRGBA(src, Identity(), 2, 2)
	require.NoError(t, err)
	require.Len(t, out, 16)
	assert.InDeltaSlice(t, []float32{1, 0, 0, 1}, out[0:4], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 1, 0, 1}, out[4:8], 1e-6)
}
