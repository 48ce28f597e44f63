// Package demo is a self-contained stand-in for the camera and the
// hydrodynamic model: a perlin-noise sand box with a toy water relaxation,
// so the overlay can run without hardware or a model engine.
package demo

import (
	"fmt"
	"image"
	"math/rand"
	"runtime"

	"github.com/aquilax/go-perlin"

	"sandboxar/internal/bedit"
	"sandboxar/internal/frame"
	"sandboxar/internal/raster"
	"sandboxar/internal/transform"
)

// Toy model constants. Lengths are in model units unless noted.
const (
	relaxRate   = 0.2
	gravity     = 200.0
	maxSpeed    = 0.05 // fraction of a cell per step
	wetDepth    = 0.01
	inflowRate  = 0.02
	drainDepth  = 0.05
	seaLevel    = 1.1
	bedBase     = 1.0
	bedAmp      = 0.8
	noiseFreq   = 3.0
	bumpHeight  = 0.6
	bumpRadius  = 3.0 // cells
	sculptSpeed = 0.1 // cells per step
	scanEvery   = 15
)

var sand = [3]float64{194, 178, 128}

// Options sizes the synthetic sandbox.
type Options struct {
	Width, Height int
	NX, NY        int
	CellSize      float64
	Seed          int64
	Workers       int
}

// Coupling owns the frame context and refreshes it every Step. It also
// accepts bed edits as the model would.
type Coupling struct {
	ctx      *frame.Context
	nx, ny   int
	d        float64
	field    *waterField
	pool     *pool
	noise    *perlin.Perlin
	sculptor *sculptor

	terrainNodes []float64
	baseScan     *raster.Grid
	steps        int
}

var _ bedit.Model = (*Coupling)(nil)

// New builds the sandbox and a context ready for the overlay.
func New(opts Options) (*Coupling, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.NX <= 0 || opts.NY <= 0 || opts.CellSize <= 0 {
		return nil, fmt.Errorf("demo: invalid size %dx%d px, %dx%d cells of %g", opts.Width, opts.Height, opts.NX, opts.NY, opts.CellSize)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	c := &Coupling{
		nx:    opts.NX,
		ny:    opts.NY,
		d:     opts.CellSize,
		noise: perlin.NewPerlin(2, 2, 3, opts.Seed),
	}
	c.sculptor = newSculptor(opts.NX, opts.NY, rand.New(rand.NewSource(opts.Seed+1)))

	mesh := frame.NewGridMesh(opts.NX, opts.NY, opts.CellSize)
	nodes := mesh.Nodes()
	c.terrainNodes = make([]float64, nodes)
	for k := range c.terrainNodes {
		c.terrainNodes[k] = c.terrain(mesh.NodeX[k], mesh.NodeY[k])
	}
	bedNodes := append([]float64(nil), c.terrainNodes...)
	bedCells := make([]float64, mesh.Cells())

	ex, ey := float64(opts.NX)*opts.CellSize, float64(opts.NY)*opts.CellSize
	inBox := make([]bool, nodes)
	for k := range inBox {
		inBox[k] = true
	}
	c.ctx = &frame.Context{
		Width:          opts.Width,
		Height:         opts.Height,
		Video:          image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		Scan:           raster.NewGrid(opts.Width, opts.Height),
		CameraToImage:  transform.Identity(),
		ModelToImage:   transform.Affine(float64(opts.Width)/ex, float64(opts.Height)/ey, 0, 0),
		ImageToModel:   transform.Affine(ex/float64(opts.Width), ey/float64(opts.Height), 0, 0),
		Mesh:           mesh,
		BedCells:       bedCells,
		BedNodes:       bedNodes,
		CameraBedNodes: append([]float64(nil), c.terrainNodes...),
		NodeInBox:      inBox,
		NodeInImage:    append([]bool(nil), inBox...),
		ZMin:           0,
		ZMax:           bedBase + bedAmp + bumpHeight,
	}
	for j := 0; j < opts.NY; j++ {
		for i := 0; i < opts.NX; i++ {
			c.updateCellBed(i, j)
		}
	}
	c.field = newWaterField(opts.NX, opts.NY, opts.CellSize, bedCells, seaLevel)
	c.pool = newPool(opts.Workers, opts.NY)
	c.ctx.U, c.ctx.V = c.field.u, c.field.v
	c.ctx.WaterLevel = c.field.level

	c.baseScan = raster.NewGrid(opts.Width, opts.Height)
	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			mx, my := c.ctx.ImageToModel.Apply(float64(x)+0.5, float64(y)+0.5)
			c.baseScan.Set(x, y, float32(c.terrain(mx, my)))
		}
	}
	c.refreshCamera()
	return c, nil
}

// Context returns the shared frame context.
func (c *Coupling) Context() *frame.Context { return c.ctx }

// Steps counts completed model steps.
func (c *Coupling) Steps() int { return c.steps }

// Close stops the model workers.
func (c *Coupling) Close() { c.pool.close() }

// Step advances the water and the sculptor by one timestep and refreshes the
// context fields.
func (c *Coupling) Step() {
	c.sculptor.advance()
	c.pool.run(c.field.relaxRows)
	c.field.pour(1, c.ny/2, inflowRate)
	c.field.drainColumn(c.nx-1, drainDepth)
	c.field.swap()
	c.ctx.WaterLevel = c.field.level
	c.steps++
	if c.steps%scanEvery == 0 {
		c.refreshCamera()
	}
}

// SetVarSlice writes length values starting at index start into the bed
// level variable name: "zk" on nodes, which also reshapes the adjacent
// cells, or "bl" on cells.
func (c *Coupling) SetVarSlice(name string, start, length int, values []float64) error {
	if len(values) != length {
		return fmt.Errorf("demo: %s: %d values for length %d", name, len(values), length)
	}
	switch name {
	case bedit.VarBedNodes:
		if start < 0 || start+length > len(c.ctx.BedNodes) {
			return fmt.Errorf("demo: %s[%d:%d] out of range", name, start, start+length)
		}
		for k, val := range values {
			n := start + k
			c.ctx.BedNodes[n] = val
			ni, nj := n%(c.nx+1), n/(c.nx+1)
			for j := nj - 1; j <= nj; j++ {
				for i := ni - 1; i <= ni; i++ {
					if i >= 0 && j >= 0 && i < c.nx && j < c.ny {
						c.updateCellBed(i, j)
					}
				}
			}
		}
	case bedit.VarBedCells:
		if start < 0 || start+length > len(c.ctx.BedCells) {
			return fmt.Errorf("demo: %s[%d:%d] out of range", name, start, start+length)
		}
		copy(c.ctx.BedCells[start:], values)
	default:
		return fmt.Errorf("demo: unknown variable %q", name)
	}
	return nil
}

// updateCellBed sets a cell's bed to the mean of its corner nodes.
func (c *Coupling) updateCellBed(i, j int) {
	stride := c.nx + 1
	n := j*stride + i
	z := c.ctx.BedNodes
	c.ctx.BedCells[j*c.nx+i] = (z[n] + z[n+1] + z[n+stride] + z[n+stride+1]) / 4
}

func (c *Coupling) terrain(x, y float64) float64 {
	ex, ey := float64(c.nx)*c.d, float64(c.ny)*c.d
	return bedBase + bedAmp*c.noise.Noise2D(x/ex*noiseFreq, y/ey*noiseFreq)
}

// refreshCamera re-renders what the camera sees: the terrain plus the
// sculptor's bump, as a height scan, a shaded frame and node bed levels.
func (c *Coupling) refreshCamera() {
	ctx := c.ctx
	for k := range ctx.CameraBedNodes {
		ctx.CameraBedNodes[k] = c.terrainNodes[k] + c.sculptor.bump(ctx.Mesh.NodeX[k]/c.d, ctx.Mesh.NodeY[k]/c.d)
	}

	copy(ctx.Scan.Pix, c.baseScan.Pix)
	w, h := ctx.Width, ctx.Height
	cellsPerPxX := float64(c.nx) / float64(w)
	cellsPerPxY := float64(c.ny) / float64(h)
	x0 := int((c.sculptor.x - 3*bumpRadius) / cellsPerPxX)
	x1 := int((c.sculptor.x + 3*bumpRadius) / cellsPerPxX)
	y0 := int((c.sculptor.y - 3*bumpRadius) / cellsPerPxY)
	y1 := int((c.sculptor.y + 3*bumpRadius) / cellsPerPxY)
	for y := max(y0, 0); y <= min(y1, h-1); y++ {
		for x := max(x0, 0); x <= min(x1, w-1); x++ {
			b := c.sculptor.bump((float64(x)+0.5)*cellsPerPxX, (float64(y)+0.5)*cellsPerPxY)
			ctx.Scan.Pix[y*w+x] += float32(b)
		}
	}

	span := ctx.ZMax - ctx.ZMin
	pix := ctx.Video.Pix
	for i, z := range ctx.Scan.Pix {
		shade := min(0.6+0.4*(float64(z)-ctx.ZMin)/span, 1)
		base := i * 4
		pix[base] = byte(sand[0] * shade)
		pix[base+1] = byte(sand[1] * shade)
		pix[base+2] = byte(sand[2] * shade)
		pix[base+3] = 255
	}
}
