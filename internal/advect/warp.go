package advect

import (
	"fmt"

	"github.com/chewxy/math32"

	"sandboxar/internal/raster"
)

// Border is the colour sampled outside the buffer: transparent white.
var Border = [channels]float32{1, 1, 1, 0}

// Warper performs the semi-Lagrangian step: dst(p) = src(p + scale·d(p))
// with bilinear sampling and Border outside src.
type Warper interface {
	Warp(dst, src *Buffer, du, dv *raster.Grid, scale float32) error
	Close()
}

// CPUWarper is the reference Warper.
type CPUWarper struct{}

func (CPUWarper) Close() {}

func (CPUWarper) Warp(dst, src *Buffer, du, dv *raster.Grid, scale float32) error {
	if err := checkWarpShapes(dst, src, du, dv); err != nil {
		return err
	}
	w, h := src.W, src.H
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			sx := float32(x) + scale*du.Pix[i]
			sy := float32(y) + scale*dv.Pix[i]
			sampleBilinear(dst.Pix[i*channels:i*channels+channels], src, sx, sy)
		}
	}
	return nil
}

// sampleBilinear mirrors OpenCV's remap with a constant border: each of the
// four taps outside the image contributes the border colour.
func sampleBilinear(out []float32, src *Buffer, sx, sy float32) {
	x0f := math32.Floor(sx)
	y0f := math32.Floor(sy)
	fx := sx - x0f
	fy := sy - y0f
	x0, y0 := int(x0f), int(y0f)
	weights := [4]float32{(1 - fx) * (1 - fy), fx * (1 - fy), (1 - fx) * fy, fx * fy}
	taps := [4][2]int{{x0, y0}, {x0 + 1, y0}, {x0, y0 + 1}, {x0 + 1, y0 + 1}}
	var acc [channels]float32
	for t, p := range taps {
		wgt := weights[t]
		if wgt == 0 {
			continue
		}
		px := texel(src, p[0], p[1])
		for c := 0; c < channels; c++ {
			acc[c] += px[c] * wgt
		}
	}
	copy(out, acc[:])
}

func texel(src *Buffer, x, y int) []float32 {
	if x < 0 || y < 0 || x >= src.W || y >= src.H {
		return Border[:]
	}
	base := (y*src.W + x) * channels
	return src.Pix[base : base+channels]
}

func checkWarpShapes(dst, src *Buffer, du, dv *raster.Grid) error {
	if dst.W != src.W || dst.H != src.H {
		return fmt.Errorf("advect: warp %dx%d into %dx%d", src.W, src.H, dst.W, dst.H)
	}
	if du.W != src.W || du.H != src.H || dv.W != src.W || dv.H != src.H {
		return fmt.Errorf("advect: displacement %dx%d/%dx%d does not match buffer %dx%d",
			du.W, du.H, dv.W, dv.H, src.W, src.H)
	}
	return nil
}
