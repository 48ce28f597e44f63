package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGather(t *testing.T) {
	field := []float64{10, 20, 30}
	idx := []int32{2, 1, 0, 0, 1, 2}
	g := Gather(field, idx, 3, 2)
	assert.Equal(t, []float32{30, 20, 10, 10, 20, 30}, g.Pix)
	assert.Equal(t, float32(20), g.At(1, 1))
}

func TestGatherIntoPanicsOnShapeMismatch(t *testing.T) {
	g := NewGrid(2, 2)
	assert.Panics(t, func() { GatherInto(g, []float64{1}, []int32{0, 0, 0}) })
}

func TestGatherIntoPanicsOnStaleIndex(t *testing.T) {
	g := NewGrid(2, 1)
	assert.Panics(t, func() { GatherInto(g, []float64{1}, []int32{0, 5}) })
}

func TestSubAndHypot(t *testing.T) {
	a := &Grid{W: 2, H: 1, Pix: []float32{3, 5}}
	b := &Grid{W: 2, H: 1, Pix: []float32{4, 12}}
	d := NewGrid(2, 1)
	Sub(d, b, a)
	assert.Equal(t, []float32{1, 7}, d.Pix)

	Hypot(d, a, b)
	assert.InDelta(t, 5, d.Pix[0], 1e-6)
	assert.InDelta(t, 13, d.Pix[1], 1e-6)

	assert.Panics(t, func() { Sub(NewGrid(1, 1), a, b) })
}

func TestMinMax(t *testing.T) {
	tests := []struct {
		name   string
		pix    []float32
		lo, hi float32
	}{
		{"empty", nil, 0, 0},
		{"single", []float32{2}, 2, 2},
		{"mixed", []float32{-1, 4, 0.5}, -1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Grid{W: len(tt.pix), H: 1, Pix: tt.pix}
			lo, hi := g.MinMax()
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestBilinear(t *testing.T) {
	g := &Grid{W: 2, H: 2, Pix: []float32{0, 1, 2, 3}}
	require.InDelta(t, 1.5, g.Bilinear(0.5, 0.5, -1), 1e-6)
	assert.InDelta(t, 3, g.Bilinear(1, 1, -1), 1e-6)
	assert.Equal(t, float32(-1), g.Bilinear(1.5, 0, -1))
	assert.Equal(t, float32(-1), g.Bilinear(-0.1, 0, -1))
}
