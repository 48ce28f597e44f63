// Package frame holds the shared per-frame state handed from the
// simulation coupling layer to the overlay.
package frame

import (
	"fmt"
	"image"
	"os"

	"go.uber.org/multierr"

	"sandboxar/internal/raster"
	"sandboxar/internal/transform"
)

// DomainError reports malformed or empty mesh and field input.
type DomainError struct {
	Field  string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain: %s: %s", e.Field, e.Reason)
}

// Mesh is the flattened unstructured simulation mesh in model coordinates.
type Mesh struct {
	CellX, CellY []float64
	NodeX, NodeY []float64
}

// Cells returns the number of mesh cells.
func (m Mesh) Cells() int { return len(m.CellX) }

// Nodes returns the number of mesh nodes.
func (m Mesh) Nodes() int { return len(m.NodeX) }

// Background locates an optional static background image.
type Background interface {
	Exists() bool
	Path() string
}

// FileBackground is a Background on the local filesystem. An empty path
// never exists.
type FileBackground string

func (b FileBackground) Exists() bool {
	if b == "" {
		return false
	}
	_, err := os.Stat(string(b))
	return err == nil
}

func (b FileBackground) Path() string { return string(b) }

// Context is the mutable state shared between the coupling layer and the
// overlay. The coupling layer owns it and refreshes the field slices every
// timestep; mesh topology is fixed after Initialize.
type Context struct {
	// Output raster size.
	Width, Height int

	// Camera frame and camera-space height scan.
	Video *image.NRGBA
	Scan  *raster.Grid

	CameraToImage transform.Homography
	ModelToImage  transform.Homography
	ImageToModel  transform.Homography

	Mesh Mesh

	// Per cell.
	WaterLevel []float64
	BedCells   []float64
	U, V       []float64

	// Per node.
	BedNodes       []float64
	CameraBedNodes []float64
	NodeInBox      []bool
	NodeInImage    []bool

	// Bed level at session start, used by the reset command.
	OriginalBedCells []float64

	// Global terrain elevation range for the height and bed colour scales.
	ZMin, ZMax float64

	Background Background

	// Flow multiplier applied to the displacement field; 0 means default.
	Scale float64
	Debug bool
}

// Validate checks shapes and reports every problem found as a DomainError.
func (c *Context) Validate() error {
	var err error
	fail := func(field, format string, args ...any) {
		err = multierr.Append(err, &DomainError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}
	if c.Width <= 0 || c.Height <= 0 {
		fail("size", "output raster is %dx%d", c.Width, c.Height)
	}
	cells, nodes := c.Mesh.Cells(), c.Mesh.Nodes()
	if cells == 0 {
		fail("mesh.cells", "no cell coordinates")
	}
	if nodes == 0 {
		fail("mesh.nodes", "no node coordinates")
	}
	if len(c.Mesh.CellY) != cells {
		fail("mesh.cells", "x has %d entries, y has %d", cells, len(c.Mesh.CellY))
	}
	if len(c.Mesh.NodeY) != nodes {
		fail("mesh.nodes", "x has %d entries, y has %d", nodes, len(c.Mesh.NodeY))
	}
	for _, f := range []struct {
		name   string
		values []float64
	}{
		{"waterlevel", c.WaterLevel},
		{"bed.cells", c.BedCells},
		{"u", c.U},
		{"v", c.V},
	} {
		if len(f.values) != cells {
			fail(f.name, "has %d entries, mesh has %d cells", len(f.values), cells)
		}
	}
	if len(c.BedNodes) != nodes {
		fail("bed.nodes", "has %d entries, mesh has %d nodes", len(c.BedNodes), nodes)
	}
	if c.CameraBedNodes != nil && len(c.CameraBedNodes) != nodes {
		fail("camera.bed.nodes", "has %d entries, mesh has %d nodes", len(c.CameraBedNodes), nodes)
	}
	if c.NodeInBox != nil && len(c.NodeInBox) != nodes {
		fail("node.inbox", "has %d entries, mesh has %d nodes", len(c.NodeInBox), nodes)
	}
	if c.NodeInImage != nil && len(c.NodeInImage) != nodes {
		fail("node.inimage", "has %d entries, mesh has %d nodes", len(c.NodeInImage), nodes)
	}
	if c.OriginalBedCells != nil && len(c.OriginalBedCells) != cells {
		fail("bed.original", "has %d entries, mesh has %d cells", len(c.OriginalBedCells), cells)
	}
	if c.Video == nil {
		fail("video", "missing camera frame")
	}
	if c.Scan == nil {
		fail("scan", "missing height scan")
	}
	if c.ZMax < c.ZMin {
		fail("z", "range [%g, %g] is inverted", c.ZMin, c.ZMax)
	}
	return err
}

// SnapshotBed records the current cell bed level as the reset target, once.
func (c *Context) SnapshotBed() {
	if len(c.OriginalBedCells) == len(c.BedCells) {
		return
	}
	c.OriginalBedCells = append([]float64(nil), c.BedCells...)
}

// FlowScale returns the flow multiplier, defaulting to 10.
func (c *Context) FlowScale() float64 {
	if c.Scale == 0 {
		return 10.0
	}
	return c.Scale
}

// NewGridMesh lays out a regular nx×ny cell mesh with spacing d, cell centres
// at half-cell offsets and (nx+1)×(ny+1) corner nodes.
func NewGridMesh(nx, ny int, d float64) Mesh {
	var m Mesh
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			m.CellX = append(m.CellX, (float64(i)+0.5)*d)
			m.CellY = append(m.CellY, (float64(j)+0.5)*d)
		}
	}
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.NodeX = append(m.NodeX, float64(i)*d)
			m.NodeY = append(m.NodeY, float64(j)*d)
		}
	}
	return m
}
