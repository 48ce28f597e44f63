package advect

import (
	"fmt"
	"image"
	"math/rand"

	"sandboxar/internal/raster"
	"sandboxar/internal/transform"
)

// Seeding and scaling constants.
const (
	DefaultScale = 10.0
	SeedCount    = 4
	SeedRadius   = 4
	MinSeedDepth = 0.5
)

// StepInput carries the per-pixel rasters for one frame. All grids share
// the engine's size.
type StepInput struct {
	// Image-space displacement per pixel, unscaled.
	DU, DV *raster.Grid
	Scale  float32

	// Pixels outside the cell footprint.
	CellMask []bool

	WaterLevel *raster.Grid
	BedCells   *raster.Grid
	BedNodes   *raster.Grid
}

// Engine owns the particle buffer that persists across frames.
type Engine struct {
	buf     *Buffer
	scratch *Buffer
	warper  Warper
	rng     *rand.Rand
}

// NewEngine allocates a transparent w×h particle buffer. A nil warper
// selects CPUWarper.
func NewEngine(w, h int, warper Warper, rng *rand.Rand) *Engine {
	if warper == nil {
		warper = CPUWarper{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Engine{
		buf:     NewBuffer(w, h),
		scratch: NewBuffer(w, h),
		warper:  warper,
		rng:     rng,
	}
}

// Buffer exposes the current particle buffer.
func (e *Engine) Buffer() *Buffer { return e.buf }

// Close releases the warper.
func (e *Engine) Close() { e.warper.Close() }

// Step advances the particle texture by one frame: warp, clamp alpha, mask
// out-of-domain pixels, seed, then clear particles on dry pixels. Dry
// clearing runs last so particles carried onto land are removed the same
// frame.
func (e *Engine) Step(in StepInput) error {
	if err := e.checkInput(in); err != nil {
		return err
	}
	if err := e.warper.Warp(e.scratch, e.buf, in.DU, in.DV, in.Scale); err != nil {
		return fmt.Errorf("warping particles: %w", err)
	}
	e.buf, e.scratch = e.scratch, e.buf

	e.buf.ClampAlpha()
	e.buf.MaskAlpha(in.CellMask)
	e.seed(in.WaterLevel, in.BedNodes, in.CellMask)
	e.maskDry(in.WaterLevel, in.BedCells, in.BedNodes)
	return nil
}

// seed stamps up to SeedCount white discs at random positions whose
// node-aligned water depth is at least MinSeedDepth. Disc pixels outside
// the cell footprint stay empty.
func (e *Engine) seed(level, bedNodes *raster.Grid, outside []bool) int {
	w, h := e.buf.W, e.buf.H
	placed := 0
	for i := 0; i < SeedCount; i++ {
		u, v := e.rng.Float64(), e.rng.Float64()
		cx := clampCoord(int(u*float64(w)), 0, w-1)
		cy := clampCoord(int(v*float64(h)), 0, h-1)
		if level.At(cx, cy)-bedNodes.At(cx, cy) < MinSeedDepth {
			continue
		}
		for _, o := range seedFootprint {
			x, y := cx+o.dx, cy+o.dy
			if x < 0 || y < 0 || x >= w || y >= h || outside[y*w+x] {
				continue
			}
			e.buf.SetPixel(x, y, 1, 1, 1, 1)
		}
		placed++
	}
	return placed
}

// maskDry zeroes alpha where the bed reaches the water level at either cell
// or node alignment.
func (e *Engine) maskDry(level, bedCells, bedNodes *raster.Grid) {
	for i, wl := range level.Pix {
		if bedCells.Pix[i] >= wl || bedNodes.Pix[i] >= wl {
			e.buf.Pix[i*channels+A] = 0
		}
	}
}

// Reset makes the whole buffer transparent white.
func (e *Engine) Reset() {
	e.buf.Clear()
}

// ResetFromVideo clears the particles and takes colour from the camera frame
// warped into output space. Alpha stays 0 everywhere.
func (e *Engine) ResetFromVideo(video *image.NRGBA, cameraToImage transform.Homography) error {
	e.buf.Clear()
	if video == nil {
		return nil
	}
	warped, err := transform.WarpNRGBA(video, cameraToImage, e.buf.W, e.buf.H)
	if err != nil {
		return fmt.Errorf("warping video: %w", err)
	}
	for i := 0; i < len(e.buf.Pix); i += channels {
		e.buf.Pix[i+R] = warped[i+R]
		e.buf.Pix[i+G] = warped[i+G]
		e.buf.Pix[i+B] = warped[i+B]
		e.buf.Pix[i+A] = 0
	}
	return nil
}

func (e *Engine) checkInput(in StepInput) error {
	n := e.buf.W * e.buf.H
	for name, g := range map[string]*raster.Grid{
		"du": in.DU, "dv": in.DV, "waterlevel": in.WaterLevel,
		"bed cells": in.BedCells, "bed nodes": in.BedNodes,
	} {
		if g == nil {
			return fmt.Errorf("advect: missing %s raster", name)
		}
		if g.W != e.buf.W || g.H != e.buf.H {
			return fmt.Errorf("advect: %s raster is %dx%d, buffer is %dx%d", name, g.W, g.H, e.buf.W, e.buf.H)
		}
	}
	if len(in.CellMask) != n {
		return fmt.Errorf("advect: cell mask has %d pixels, buffer has %d", len(in.CellMask), n)
	}
	return nil
}
