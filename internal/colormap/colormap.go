// Package colormap turns scalar rasters into colours through 256-entry
// lookup tables built from colorgrad gradients.
package colormap

import (
	"fmt"

	"github.com/mazznoer/colorgrad"
)

// Size is the number of entries in every lookup table.
const Size = 256

// Map is a colour lookup table from normalized [0,1] values to RGB.
type Map struct {
	Name string
	lut  [Size][3]byte
}

// Jet is the classic blue-cyan-yellow-red rainbow.
func Jet() *Map {
	return mustBuild("jet", "#00007f", "#0000ff", "#007fff", "#00ffff", "#7fff7f", "#ffff00", "#ff7f00", "#ff0000", "#7f0000")
}

// Blues runs from near-white to deep blue, used for water depth.
func Blues() *Map {
	return fromGradient("blues", colorgrad.Blues())
}

// Terrain is a bathymetry/topography scale: deep water blues below the
// midpoint, sand, grass and rock above.
func Terrain() *Map {
	return mustBuild("terrain",
		"#000033", "#000099", "#0066ff", "#33ccff", "#99ffff",
		"#e6d28c", "#6ea03c", "#3c7828", "#8c6e50", "#ffffff")
}

func mustBuild(name string, colors ...string) *Map {
	grad, err := colorgrad.NewGradient().HtmlColors(colors...).Build()
	if err != nil {
		panic(fmt.Sprintf("colormap: %s: %v", name, err))
	}
	return fromGradient(name, grad)
}

func fromGradient(name string, grad colorgrad.Gradient) *Map {
	m := &Map{Name: name}
	for i, c := range grad.Colors(Size) {
		r, g, b, _ := c.RGBA()
		m.lut[i] = [3]byte{byte(r >> 8), byte(g >> 8), byte(b >> 8)}
	}
	return m
}

// At maps v within [lo, hi] to a colour. Values outside the range clamp to
// the ends; NaN maps to the low end.
func (m *Map) At(v, lo, hi float32) (r, g, b byte) {
	i := 0
	if hi > lo {
		t := (v - lo) / (hi - lo)
		if t >= 1 {
			i = Size - 1
		} else if t > 0 {
			i = int(t * Size)
		}
	}
	c := m.lut[i]
	return c[0], c[1], c[2]
}
