package raster

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
)

// Grid is a dense row-major float32 raster, indexed y*W+x.
type Grid struct {
	W, H int
	Pix  []float32
}

// NewGrid allocates a zeroed w×h grid.
func NewGrid(w, h int) *Grid {
	return &Grid{W: w, H: h, Pix: make([]float32, w*h)}
}

// At returns the value at (x, y).
func (g *Grid) At(x, y int) float32 {
	return g.Pix[y*g.W+x]
}

// Set writes v at (x, y).
func (g *Grid) Set(x, y int, v float32) {
	g.Pix[y*g.W+x] = v
}

// Fill sets every pixel to v.
func (g *Grid) Fill(v float32) {
	for i := range g.Pix {
		g.Pix[i] = v
	}
}

// Gather builds a w×h grid where every pixel takes field[idx[pixel]].
func Gather(field []float64, idx []int32, w, h int) *Grid {
	g := NewGrid(w, h)
	GatherInto(g, field, idx)
	return g
}

// GatherInto is the allocation-free form of Gather used every frame.
// An index outside field panics; a stale index raster is a programming error.
func GatherInto(dst *Grid, field []float64, idx []int32) {
	if len(idx) != len(dst.Pix) {
		panic(fmt.Sprintf("raster: index raster has %d pixels, grid has %d", len(idx), len(dst.Pix)))
	}
	for i, k := range idx {
		dst.Pix[i] = float32(field[k])
	}
}

// Sub writes a-b into dst. All three grids must share a shape.
func Sub(dst, a, b *Grid) {
	mustMatch(dst, a)
	mustMatch(dst, b)
	for i := range dst.Pix {
		dst.Pix[i] = a.Pix[i] - b.Pix[i]
	}
}

// Hypot writes sqrt(a²+b²) into dst.
func Hypot(dst, a, b *Grid) {
	mustMatch(dst, a)
	mustMatch(dst, b)
	for i := range dst.Pix {
		dst.Pix[i] = math32.Sqrt(a.Pix[i]*a.Pix[i] + b.Pix[i]*b.Pix[i])
	}
}

// MinMax returns the smallest and largest finite values in the grid.
// An empty or all-NaN grid yields (0, 0).
func (g *Grid) MinMax() (float32, float32) {
	lo := float32(math.Inf(1))
	hi := float32(math.Inf(-1))
	for _, v := range g.Pix {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// Bilinear samples the grid at a fractional position. Samples outside the
// grid return outside.
func (g *Grid) Bilinear(fx, fy float32, outside float32) float32 {
	if fx < 0 || fy < 0 || fx > float32(g.W-1) || fy > float32(g.H-1) {
		return outside
	}
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= g.W {
		x1 = g.W - 1
	}
	if y1 >= g.H {
		y1 = g.H - 1
	}
	dx := fx - float32(x0)
	dy := fy - float32(y0)
	top := g.Pix[y0*g.W+x0]*(1-dx) + g.Pix[y0*g.W+x1]*dx
	bottom := g.Pix[y1*g.W+x0]*(1-dx) + g.Pix[y1*g.W+x1]*dx
	return top*(1-dy) + bottom*dy
}

func mustMatch(a, b *Grid) {
	if a.W != b.W || a.H != b.H {
		panic(fmt.Sprintf("raster: shape mismatch %dx%d vs %dx%d", a.W, a.H, b.W, b.H))
	}
}
