package overlay

import (
	"github.com/chewxy/math32"

	"sandboxar/internal/raster"
)

// ContourLevels is the number of bands the debug contour splits the range into.
const ContourLevels = 10

// Contour draws black isolines of g into an RGBA image: a pixel is on a line
// when its band differs from its right or lower neighbour.
func Contour(dst []byte, g *raster.Grid, lo, hi float32) []byte {
	n := g.W * g.H * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = 0
	}
	if hi <= lo {
		return dst
	}
	band := func(v float32) int {
		return int(math32.Floor((v - lo) / (hi - lo) * ContourLevels))
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			b := band(g.At(x, y))
			edge := (x+1 < g.W && band(g.At(x+1, y)) != b) ||
				(y+1 < g.H && band(g.At(x, y+1)) != b)
			if edge {
				dst[(y*g.W+x)*4+3] = 255
			}
		}
	}
	return dst
}

// SetContour refreshes the debug contour layer from a bed raster.
func (c *Compositor) SetContour(g *raster.Grid) {
	l := &c.layers[LayerContour]
	if !l.exists {
		return
	}
	l.rgba = Contour(l.rgba, g, l.Min, l.Max)
}
