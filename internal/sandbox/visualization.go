// Package sandbox ties the resampler, rasterizer, flow transformer, particle
// engine and compositor into the per-frame overlay pipeline.
package sandbox

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"path/filepath"

	"sandboxar/internal/advect"
	"sandboxar/internal/bedit"
	"sandboxar/internal/colormap"
	"sandboxar/internal/event"
	"sandboxar/internal/flow"
	"sandboxar/internal/frame"
	"sandboxar/internal/imageio"
	"sandboxar/internal/overlay"
	"sandboxar/internal/raster"
	"sandboxar/internal/resample"
	"sandboxar/internal/transform"
)

// Layer styling.
const (
	waterDepthMax       = 3.0
	waterAlpha          = 1.0
	waterAlphaOverImage = 0.3
	particleAlpha       = 0.8
)

// Options configures a Visualization. Zero values select defaults.
type Options struct {
	Logger      *log.Logger
	Warper      advect.Warper
	Rand        *rand.Rand
	SnapshotDir string
}

// Visualization renders the overlay for one session. It is driven from a
// single goroutine: Initialize once, then Update once per simulation step.
type Visualization struct {
	log     *log.Logger
	display overlay.Display
	model   bedit.Model
	opts    Options

	ctx    *frame.Context
	index  *resample.Index
	comp   *overlay.Compositor
	engine *advect.Engine
	queue  event.Queue

	// Per-frame rasters, reused.
	waterLevel, bedCells, bedNodes *raster.Grid
	depth, du, dv, mag             *raster.Grid
	duCells, dvCells               []float64

	frames      int
	quit        bool
	flushLogged bool
}

// New returns an uninitialized Visualization presenting on display and
// sending bed edits to model.
func New(display overlay.Display, model bedit.Model, opts Options) *Visualization {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	return &Visualization{
		log:     opts.Logger,
		display: display,
		model:   model,
		opts:    opts,
	}
}

// Initialize validates ctx, builds the pixel→mesh index and creates every
// layer, then renders once. Only the water level and particle layers start
// visible.
func (v *Visualization) Initialize(ctx *frame.Context) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	ctx.SnapshotBed()
	v.ctx = ctx
	w, h := ctx.Width, ctx.Height

	if err := v.buildIndex(); err != nil {
		return err
	}
	v.engine = advect.NewEngine(w, h, v.opts.Warper, v.opts.Rand)
	v.allocRasters(w, h)
	if err := v.rasterize(); err != nil {
		return err
	}
	height, err := transform.WarpGrid(ctx.Scan, ctx.CameraToImage, w, h)
	if err != nil {
		return fmt.Errorf("warping height scan: %w", err)
	}

	var background []byte
	if ctx.Background != nil && ctx.Background.Exists() {
		background, err = imageio.LoadBackground(ctx.Background.Path(), w, h)
		if err != nil {
			v.log.Printf("Background unavailable: %v", err)
		}
	}

	zmin, zmax := float32(ctx.ZMin), float32(ctx.ZMax)
	_, magMax := v.mag.MinMax()
	if magMax <= 0 {
		magMax = 1
	}
	waterA := float32(waterAlpha)
	if background != nil {
		waterA = waterAlphaOverImage
	}

	jet := colormap.Jet()
	v.comp = overlay.NewCompositor(w, h)
	add := []struct {
		id    overlay.LayerID
		style overlay.Style
		g     *raster.Grid
	}{
		{overlay.LayerHeight, overlay.Style{Alpha: 1, Min: zmin, Max: zmax, Cmap: jet}, height},
		{overlay.LayerWaterLevel, overlay.Style{Visible: true, Alpha: waterA, Min: 0, Max: waterDepthMax, Cmap: colormap.Blues()}, v.depth},
		{overlay.LayerBedDepth, overlay.Style{Alpha: 1, Min: zmin, Max: zmax, Cmap: colormap.Terrain()}, v.bedCells},
		{overlay.LayerFlowMagnitude, overlay.Style{Alpha: 1, Min: 0, Max: magMax, Cmap: jet}, v.mag},
	}
	for _, l := range add {
		if err := v.comp.AddScalar(l.id, l.style, l.g); err != nil {
			return err
		}
	}
	if background != nil {
		if err := v.comp.AddImage(overlay.LayerBackground, overlay.Style{Visible: true, Alpha: 1}, background); err != nil {
			return err
		}
	}
	if ctx.Debug {
		if err := v.comp.AddImage(overlay.LayerContour, overlay.Style{Visible: true, Alpha: 1, Min: zmin, Max: zmax}, make([]byte, w*h*4)); err != nil {
			return err
		}
		v.comp.SetContour(v.bedCells)
	}
	particles := v.engine.Buffer().RGBA8(nil)
	if err := v.comp.AddImage(overlay.LayerParticles, overlay.Style{Visible: true, Alpha: particleAlpha}, particles); err != nil {
		return err
	}
	return v.present()
}

// Update refreshes every layer from ctx, advances the particles by one
// frame and presents the result. Pending input commands run first.
func (v *Visualization) Update(ctx *frame.Context) error {
	if v.comp == nil {
		return fmt.Errorf("sandbox: Update before Initialize")
	}
	v.ctx = ctx
	if v.index.Stale(ctx.Mesh) {
		if err := v.rebuild(); err != nil {
			return err
		}
	}
	if err := v.ProcessEvents(); err != nil {
		return err
	}
	v.frames++

	height, err := transform.WarpGrid(ctx.Scan, ctx.CameraToImage, ctx.Width, ctx.Height)
	if err != nil {
		return fmt.Errorf("warping height scan: %w", err)
	}
	if err := v.comp.SetScalar(overlay.LayerHeight, height); err != nil {
		return err
	}
	if err := v.rasterize(); err != nil {
		return err
	}
	for _, l := range []struct {
		id overlay.LayerID
		g  *raster.Grid
	}{
		{overlay.LayerWaterLevel, v.depth},
		{overlay.LayerBedDepth, v.bedCells},
		{overlay.LayerFlowMagnitude, v.mag},
	} {
		if err := v.comp.SetScalar(l.id, l.g); err != nil {
			return err
		}
	}

	err = v.engine.Step(advect.StepInput{
		DU:         v.du,
		DV:         v.dv,
		Scale:      float32(ctx.FlowScale()),
		CellMask:   v.index.CellMask,
		WaterLevel: v.waterLevel,
		BedCells:   v.bedCells,
		BedNodes:   v.bedNodes,
	})
	if err != nil {
		return err
	}
	if err := v.comp.SetParticles(v.engine.Buffer()); err != nil {
		return err
	}
	if ctx.Debug {
		v.comp.SetContour(v.bedCells)
	}
	return v.present()
}

// Notify queues a raw input event; it takes effect on the next Update or
// ProcessEvents.
func (v *Visualization) Notify(e event.Event) {
	if !v.queue.Push(e) {
		v.log.Printf("Input queue full; dropped %+v", e)
	}
}

// ProcessEvents executes the commands of all queued events.
func (v *Visualization) ProcessEvents() error {
	return v.queue.Drain(func(e event.Event) error {
		if e.Kind == event.Click {
			v.log.Printf("Click at (%d, %d)", e.X, e.Y)
			return nil
		}
		return v.Execute(event.Translate(e))
	})
}

// Execute runs one command against the current context.
func (v *Visualization) Execute(cmd event.Command) error {
	if cmd == event.None {
		return nil
	}
	if v.comp == nil {
		return fmt.Errorf("sandbox: %s before Initialize", cmd)
	}
	switch cmd {
	case event.Preset1, event.Preset2, event.Preset3, event.Preset4:
		return v.comp.Preset(cmd.Preset())
	case event.ToggleParticles:
		v.comp.ToggleParticles()
	case event.ResetParticles:
		if err := v.engine.ResetFromVideo(v.ctx.Video, v.ctx.CameraToImage); err != nil {
			return err
		}
		return v.comp.SetParticles(v.engine.Buffer())
	case event.ApplyCameraBed:
		if v.model == nil {
			v.log.Printf("No model attached; ignoring %s", cmd)
			return nil
		}
		n, err := bedit.ApplyCameraBed(v.ctx, v.model)
		if err != nil {
			v.log.Printf("Camera bed not applied: %v", err)
			return nil
		}
		v.log.Printf("Applied camera bed level to %d nodes", n)
	case event.ResetBed:
		if v.model == nil {
			v.log.Printf("No model attached; ignoring %s", cmd)
			return nil
		}
		n, err := bedit.ResetBed(v.ctx, v.model)
		if err != nil {
			v.log.Printf("Bed not reset: %v", err)
			return nil
		}
		v.log.Printf("Reset bed level of %d cells", n)
	case event.Snapshot:
		dir := v.opts.SnapshotDir
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, fmt.Sprintf("sandbox-%06d.webp", v.frames))
		if err := v.Snapshot(path); err != nil {
			v.log.Printf("Snapshot failed: %v", err)
			return nil
		}
		v.log.Printf("Snapshot written to %s", path)
	case event.Quit:
		v.quit = true
	default:
		return fmt.Errorf("sandbox: unhandled command %s", cmd)
	}
	return nil
}

// Snapshot writes the currently composed frame as WebP.
func (v *Visualization) Snapshot(path string) error {
	return imageio.WriteSnapshot(path, v.comp.Compose(), v.comp.W, v.comp.H)
}

// Quit reports whether a quit command was received.
func (v *Visualization) Quit() bool { return v.quit }

// Compositor exposes the layer stack.
func (v *Visualization) Compositor() *overlay.Compositor { return v.comp }

// Particles exposes the particle buffer.
func (v *Visualization) Particles() *advect.Buffer { return v.engine.Buffer() }

// Index exposes the pixel→mesh index.
func (v *Visualization) Index() *resample.Index { return v.index }

// WaterDepth returns the last rasterized water depth.
func (v *Visualization) WaterDepth() *raster.Grid { return v.depth }

// Frames counts completed updates.
func (v *Visualization) Frames() int { return v.frames }

// Close releases the particle warper.
func (v *Visualization) Close() {
	if v.engine != nil {
		v.engine.Close()
	}
}

func (v *Visualization) present() error {
	if err := v.comp.Present(v.display); err != nil {
		return err
	}
	if v.comp.SwallowedFlushes() == 1 && !v.flushLogged {
		v.flushLogged = true
		v.log.Printf("Display cannot flush events; continuing without")
	}
	return nil
}

// rebuild follows a mesh change: the context is revalidated, the bed reset
// snapshot retaken for the new cells and the particles cleared, since they
// trace flow on the old mesh.
func (v *Visualization) rebuild() error {
	ctx := v.ctx
	v.log.Printf("Mesh changed to %d cells / %d nodes; rebuilding pixel index", ctx.Mesh.Cells(), ctx.Mesh.Nodes())
	ctx.OriginalBedCells = nil
	if err := ctx.Validate(); err != nil {
		return err
	}
	ctx.SnapshotBed()
	if err := v.buildIndex(); err != nil {
		return err
	}
	v.engine.Reset()
	return nil
}

func (v *Visualization) buildIndex() error {
	idx, err := resample.Build(v.ctx.Mesh, v.ctx.ImageToModel, v.ctx.Width, v.ctx.Height)
	if err != nil {
		return err
	}
	v.index = idx
	v.duCells = make([]float64, v.ctx.Mesh.Cells())
	v.dvCells = make([]float64, v.ctx.Mesh.Cells())
	v.log.Printf("Pixel index built: %dx%d pixels, %d cells, %d nodes, %d pixels outside the mesh",
		idx.W, idx.H, v.ctx.Mesh.Cells(), v.ctx.Mesh.Nodes(), idx.MaskedCells())
	return nil
}

func (v *Visualization) allocRasters(w, h int) {
	v.waterLevel = raster.NewGrid(w, h)
	v.bedCells = raster.NewGrid(w, h)
	v.bedNodes = raster.NewGrid(w, h)
	v.depth = raster.NewGrid(w, h)
	v.du = raster.NewGrid(w, h)
	v.dv = raster.NewGrid(w, h)
	v.mag = raster.NewGrid(w, h)
}

// rasterize gathers the mesh fields into the per-pixel rasters and derives
// water depth and displacement magnitude.
func (v *Visualization) rasterize() error {
	ctx := v.ctx
	cells := ctx.Mesh.Cells()
	if len(ctx.U) != cells || len(ctx.V) != cells {
		return fmt.Errorf("sandbox: velocity has %d/%d entries, mesh has %d cells", len(ctx.U), len(ctx.V), cells)
	}
	idx := v.index
	raster.GatherInto(v.waterLevel, ctx.WaterLevel, idx.Cell)
	raster.GatherInto(v.bedCells, ctx.BedCells, idx.Cell)
	raster.GatherInto(v.bedNodes, ctx.BedNodes, idx.Node)
	raster.Sub(v.depth, v.waterLevel, v.bedCells)

	flow.DisplacementInto(v.duCells, v.dvCells, ctx.Mesh.CellX, ctx.Mesh.CellY, ctx.U, ctx.V, ctx.ModelToImage)
	raster.GatherInto(v.du, v.duCells, idx.Cell)
	raster.GatherInto(v.dv, v.dvCells, idx.Cell)
	raster.Hypot(v.mag, v.du, v.dv)
	return nil
}
