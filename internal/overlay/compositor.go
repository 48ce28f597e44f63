// Package overlay composites the visualization layers into one RGBA frame
// and hands it to a display.
package overlay

import (
	"errors"
	"fmt"

	"sandboxar/internal/advect"
	"sandboxar/internal/colormap"
	"sandboxar/internal/raster"
)

// LayerID names a layer; layers are drawn in increasing order.
type LayerID int

const (
	LayerHeight LayerID = iota
	LayerBackground
	LayerWaterLevel
	LayerBedDepth
	LayerFlowMagnitude
	LayerContour
	LayerParticles
	numLayers
)

var layerNames = [numLayers]string{
	"height", "background", "waterlevel", "bed", "flow", "contour", "particles",
}

func (id LayerID) String() string {
	if id < 0 || id >= numLayers {
		return fmt.Sprintf("layer(%d)", int(id))
	}
	return layerNames[id]
}

// presetLayers are the mutually exclusive primary layers selected by
// presets 1 to 4.
var presetLayers = [4]LayerID{LayerHeight, LayerWaterLevel, LayerBedDepth, LayerFlowMagnitude}

// ErrUnsupportedDisplayOperation is returned by displays that cannot flush
// pending window events.
var ErrUnsupportedDisplayOperation = errors.New("overlay: display cannot flush events")

// Display is the drawing surface the composed frame is presented on.
type Display interface {
	Present(pix []byte, w, h int) error
	FlushEvents() error
}

// Layer is one raster in the stack. Scalar layers map values through a
// colour scale; image layers carry straight-alpha RGBA pixels.
type Layer struct {
	ID      LayerID
	Visible bool
	Alpha   float32
	Min     float32
	Max     float32
	Cmap    *colormap.Map

	scalar *raster.Grid
	rgba   []byte
	exists bool
}

// Style fixes a layer's look at creation.
type Style struct {
	Visible bool
	Alpha   float32
	Min     float32
	Max     float32
	Cmap    *colormap.Map
}

// Compositor owns the layer stack and the composed output frame.
type Compositor struct {
	W, H   int
	layers [numLayers]Layer
	out    []byte

	swallowed int
}

// NewCompositor returns an empty w×h stack; layers are created by the Add
// methods.
func NewCompositor(w, h int) *Compositor {
	c := &Compositor{W: w, H: h, out: make([]byte, w*h*4)}
	for i := range c.layers {
		c.layers[i].ID = LayerID(i)
	}
	return c
}

// AddScalar creates a colour-mapped layer from an initial raster.
func (c *Compositor) AddScalar(id LayerID, st Style, g *raster.Grid) error {
	if g.W != c.W || g.H != c.H {
		return fmt.Errorf("overlay: %s raster is %dx%d, want %dx%d", id, g.W, g.H, c.W, c.H)
	}
	if st.Cmap == nil {
		return fmt.Errorf("overlay: %s needs a colour scale", id)
	}
	l := &c.layers[id]
	l.Visible, l.Alpha, l.Min, l.Max, l.Cmap = st.Visible, st.Alpha, st.Min, st.Max, st.Cmap
	l.scalar = raster.NewGrid(g.W, g.H)
	copy(l.scalar.Pix, g.Pix)
	l.exists = true
	return nil
}

// AddImage creates an RGBA layer from straight-alpha 8-bit pixels.
func (c *Compositor) AddImage(id LayerID, st Style, pix []byte) error {
	if len(pix) != c.W*c.H*4 {
		return fmt.Errorf("overlay: %s image has %d bytes, want %d", id, len(pix), c.W*c.H*4)
	}
	l := &c.layers[id]
	l.Visible, l.Alpha, l.Min, l.Max = st.Visible, st.Alpha, st.Min, st.Max
	l.rgba = append([]byte(nil), pix...)
	l.exists = true
	return nil
}

// SetScalar replaces a scalar layer's pixels, keeping its style.
func (c *Compositor) SetScalar(id LayerID, g *raster.Grid) error {
	l := &c.layers[id]
	if !l.exists || l.scalar == nil {
		return fmt.Errorf("overlay: %s is not a scalar layer", id)
	}
	if g.W != c.W || g.H != c.H {
		return fmt.Errorf("overlay: %s raster is %dx%d, want %dx%d", id, g.W, g.H, c.W, c.H)
	}
	copy(l.scalar.Pix, g.Pix)
	return nil
}

// SetParticles replaces the particle layer's pixels from the advection buffer.
func (c *Compositor) SetParticles(b *advect.Buffer) error {
	l := &c.layers[LayerParticles]
	if !l.exists {
		return fmt.Errorf("overlay: particle layer not initialized")
	}
	if b.W != c.W || b.H != c.H {
		return fmt.Errorf("overlay: particle buffer is %dx%d, want %dx%d", b.W, b.H, c.W, c.H)
	}
	l.rgba = b.RGBA8(l.rgba)
	return nil
}

// Layer returns the layer record for inspection.
func (c *Compositor) Layer(id LayerID) *Layer {
	return &c.layers[id]
}

// Exists reports whether the layer was created.
func (c *Compositor) Exists(id LayerID) bool {
	return c.layers[id].exists
}

// Visible reports whether the layer exists and is shown.
func (c *Compositor) Visible(id LayerID) bool {
	return c.layers[id].exists && c.layers[id].Visible
}

// SetVisible shows or hides a layer.
func (c *Compositor) SetVisible(id LayerID, v bool) {
	c.layers[id].Visible = v
}

// Preset shows exactly one of the four primary layers (n in 1..4) and hides
// the other three. Other layers are untouched.
func (c *Compositor) Preset(n int) error {
	if n < 1 || n > len(presetLayers) {
		return fmt.Errorf("overlay: no preset %d", n)
	}
	for i, id := range presetLayers {
		c.layers[id].Visible = i == n-1
	}
	return nil
}

// ToggleParticles flips the particle overlay's visibility.
func (c *Compositor) ToggleParticles() {
	l := &c.layers[LayerParticles]
	l.Visible = !l.Visible
}

// Compose blends the visible layers over a white canvas and returns the
// straight RGBA frame. The slice is reused by the next call.
func (c *Compositor) Compose() []byte {
	out := c.out
	for i := range out {
		out[i] = 255
	}
	for i := range c.layers {
		l := &c.layers[i]
		if !l.exists || !l.Visible || l.Alpha <= 0 {
			continue
		}
		if l.scalar != nil {
			c.blendScalar(l)
		} else {
			c.blendImage(l)
		}
	}
	return out
}

func (c *Compositor) blendScalar(l *Layer) {
	a := l.Alpha
	for i, v := range l.scalar.Pix {
		r, g, b := l.Cmap.At(v, l.Min, l.Max)
		base := i * 4
		c.out[base] = mix(c.out[base], r, a)
		c.out[base+1] = mix(c.out[base+1], g, a)
		c.out[base+2] = mix(c.out[base+2], b, a)
	}
}

func (c *Compositor) blendImage(l *Layer) {
	for i := 0; i < len(l.rgba); i += 4 {
		a := l.Alpha * float32(l.rgba[i+3]) / 255
		if a <= 0 {
			continue
		}
		c.out[i] = mix(c.out[i], l.rgba[i], a)
		c.out[i+1] = mix(c.out[i+1], l.rgba[i+1], a)
		c.out[i+2] = mix(c.out[i+2], l.rgba[i+2], a)
	}
}

func mix(dst, src byte, a float32) byte {
	if a >= 1 {
		return src
	}
	return byte(float32(dst)*(1-a) + float32(src)*a + 0.5)
}

// Present composes and sends the frame to the display, then flushes window
// events. Displays that cannot flush are tolerated.
func (c *Compositor) Present(d Display) error {
	if err := d.Present(c.Compose(), c.W, c.H); err != nil {
		return fmt.Errorf("presenting frame: %w", err)
	}
	if err := d.FlushEvents(); err != nil {
		if errors.Is(err, ErrUnsupportedDisplayOperation) {
			c.swallowed++
			return nil
		}
		return fmt.Errorf("flushing display events: %w", err)
	}
	return nil
}

// SwallowedFlushes counts flushes the display could not perform.
func (c *Compositor) SwallowedFlushes() int {
	return c.swallowed
}
