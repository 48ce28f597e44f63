package advect

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sandboxar/internal/raster"
	"sandboxar/internal/transform"
)

const tw, th = 32, 24

func uniform(v float32) *raster.Grid {
	g := raster.NewGrid(tw, th)
	g.Fill(v)
	return g
}

func input(level, bedCells, bedNodes float32) StepInput {
	return StepInput{
		DU:         uniform(0),
		DV:         uniform(0),
		Scale:      DefaultScale,
		CellMask:   make([]bool, tw*th),
		WaterLevel: uniform(level),
		BedCells:   uniform(bedCells),
		BedNodes:   uniform(bedNodes),
	}
}

func randomBuffer(rng *rand.Rand) *Buffer {
	b := NewBuffer(tw, th)
	for i := range b.Pix {
		b.Pix[i] = rng.Float32()
	}
	return b
}

func TestWarpIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	src := randomBuffer(rng)
	dst := NewBuffer(tw, th)
	require.NoError(t, CPUWarper{}.Warp(dst, src, uniform(0), uniform(0), DefaultScale))
	assert.InDeltaSlice(t, src.Pix, dst.Pix, 1e-6)
}

func TestWarpSamplesUpstream(t *testing.T) {
	src := NewBuffer(tw, th)
	src.SetPixel(10, 5, 0.2, 0.4, 0.6, 1)
	dst := NewBuffer(tw, th)
	// d = 0.2 px, scale 10: every pixel samples 2 px to its right.
	require.NoError(t, CPUWarper{}.Warp(dst, src, uniform(0.2), uniform(0), 10))
	assert.InDelta(t, 1, dst.Alpha(8, 5), 1e-5)
	assert.InDelta(t, 0.4, dst.Pix[(5*tw+8)*channels+G], 1e-5)
	assert.InDelta(t, 0, dst.Alpha(10, 5), 1e-5)
}

func TestWarpBorderIsTransparentWhite(t *testing.T) {
	src := NewBuffer(tw, th)
	src.Fill(0, 0, 0, 1)
	dst := NewBuffer(tw, th)
	require.NoError(t, CPUWarper{}.Warp(dst, src, uniform(-100), uniform(0), 1))
	for i := 0; i < tw*th; i++ {
		assert.Equal(t, Border[:], dst.Pix[i*channels:i*channels+channels])
	}
}

func TestWarpShapeMismatch(t *testing.T) {
	err := CPUWarper{}.Warp(NewBuffer(2, 2), NewBuffer(tw, th), uniform(0), uniform(0), 1)
	assert.Error(t, err)
}

func TestStepZeroDisplacementKeepsAlpha(t *testing.T) {
	e := NewEngine(tw, th, nil, rand.New(rand.NewSource(7)))
	rng := rand.New(rand.NewSource(11))
	e.buf.copyFrom(randomBuffer(rng))
	before := make([]float32, tw*th)
	for i := range before {
		before[i] = e.buf.alphaAt(i)
	}
	// Wet everywhere but too shallow to seed.
	require.NoError(t, e.Step(input(1.3, 1.0, 1.0)))
	for i := range before {
		assert.InDelta(t, before[i], e.buf.alphaAt(i), 1e-6)
	}
}

func TestStepMasksOutOfDomain(t *testing.T) {
	e := NewEngine(tw, th, nil, rand.New(rand.NewSource(1)))
	e.buf.Fill(1, 1, 1, 1)
	in := input(5, 0, 0)
	for i := 0; i < tw*th; i += 3 {
		in.CellMask[i] = true
	}
	for frame := 0; frame < 20; frame++ {
		require.NoError(t, e.Step(in))
		for i, m := range in.CellMask {
			if m {
				require.Zero(t, e.buf.alphaAt(i), "frame %d pixel %d", frame, i)
			}
		}
	}
}

func TestStepClearsDryPixels(t *testing.T) {
	tests := []struct {
		name                      string
		level, bedCells, bedNodes float32
	}{
		{"cell bed above water", 1, 2, 0},
		{"node bed above water", 1, 0, 2},
		{"bed equals water", 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tw, th, nil, rand.New(rand.NewSource(5)))
			e.buf.Fill(1, 1, 1, 1)
			require.NoError(t, e.Step(input(tt.level, tt.bedCells, tt.bedNodes)))
			for i := 0; i < tw*th; i++ {
				require.Zero(t, e.buf.alphaAt(i))
			}
		})
	}
}

func TestSeedRequiresDepth(t *testing.T) {
	e := NewEngine(tw, th, nil, rand.New(rand.NewSource(9)))
	e.buf.Clear()
	assert.Zero(t, e.seed(uniform(1.49), uniform(1.0), make([]bool, tw*th)))
	for i := 0; i < tw*th; i++ {
		require.Zero(t, e.buf.alphaAt(i))
	}

	assert.Equal(t, SeedCount, e.seed(uniform(1.5), uniform(1.0), make([]bool, tw*th)))
	lit := 0
	for i := 0; i < tw*th; i++ {
		if e.buf.alphaAt(i) == 1 {
			lit++
		}
	}
	assert.Greater(t, lit, 0)
	assert.LessOrEqual(t, lit, SeedCount*len(seedFootprint))
}

func TestSeedOnlyWhereDeep(t *testing.T) {
	// Left half deep, right half shallow.
	level := uniform(0)
	for y := 0; y < th; y++ {
		for x := 0; x < tw/2; x++ {
			level.Set(x, y, 3)
		}
	}
	e := NewEngine(tw, th, nil, rand.New(rand.NewSource(2)))
	for i := 0; i < 50; i++ {
		e.seed(level, uniform(0), make([]bool, tw*th))
	}
	for y := 0; y < th; y++ {
		for x := tw/2 + SeedRadius; x < tw; x++ {
			require.Zero(t, e.buf.Alpha(x, y), "x=%d y=%d", x, y)
		}
	}
}

func TestSeedFootprint(t *testing.T) {
	assert.Len(t, precomputeDisc(1), 1)
	disc := precomputeDisc(SeedRadius)
	for _, o := range disc {
		assert.Less(t, o.dx*o.dx+o.dy*o.dy, SeedRadius*SeedRadius)
	}
	assert.Contains(t, disc, offset{dx: 3, dy: 0})
	assert.NotContains(t, disc, offset{dx: 4, dy: 0})
}

func TestResetFromVideo(t *testing.T) {
	e := NewEngine(tw, th, nil, nil)
	e.buf.Fill(0, 0, 0, 1)
	video := image.NewNRGBA(image.Rect(0, 0, tw, th))
	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			video.SetNRGBA(x, y, color.NRGBA{R: 255, G: 128, B: 0, A: 255})
		}
	}
	require.NoError(t, e.ResetFromVideo(video, transform.Identity()))
	for i := 0; i < tw*th; i++ {
		px := e.buf.Pix[i*channels : i*channels+channels]
		assert.InDelta(t, 1, px[R], 1e-6)
		assert.InDelta(t, 128.0/255.0, px[G], 1e-6)
		assert.InDelta(t, 0, px[B], 1e-6)
		assert.Zero(t, px[A])
	}
}

func TestStepRejectsBadInput(t *testing.T) {
	e := NewEngine(tw, th, nil, nil)
	in := input(1, 0, 0)
	in.CellMask = in.CellMask[:5]
	assert.Error(t, e.Step(in))

	in = input(1, 0, 0)
	in.DU = raster.NewGrid(1, 1)
	assert.Error(t, e.Step(in))
}

func TestRGBA8(t *testing.T) {
	b := NewBuffer(1, 1)
	b.SetPixel(0, 0, 1, 0.5, -0.2, 2)
	assert.Equal(t, []byte{255, 128, 0, 255}, b.RGBA8(nil))
}
