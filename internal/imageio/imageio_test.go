package imageio

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBackgroundScales(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "bg.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	pix, err := LoadBackground(path, 8, 6)
	require.NoError(t, err)
	require.Len(t, pix, 8*6*4)
	assert.Equal(t, []byte{10, 20, 30, 255}, pix[0:4])
	assert.Equal(t, []byte{10, 20, 30, 255}, pix[len(pix)-4:])
}

func solid(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestLoadBackgroundFormats(t *testing.T) {
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	tests := []struct {
		name   string
		file   string
		encode func(f *os.File) error
		delta  float64
	}{
		{"png", "bg.png", func(f *os.File) error { return png.Encode(f, solid(c)) }, 0},
		{"jpeg", "bg.jpg", func(f *os.File) error { return jpeg.Encode(f, solid(c), &jpeg.Options{Quality: 100}) }, 4},
		{"tga", "bg.tga", func(f *os.File) error { return tga.Encode(f, solid(c)) }, 0},
		{"png without extension", "background", func(f *os.File) error { return png.Encode(f, solid(c)) }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			f, err := os.Create(path)
			require.NoError(t, err)
			require.NoError(t, tt.encode(f))
			require.NoError(t, f.Close())

			pix, err := LoadBackground(path, 3, 3)
			require.NoError(t, err)
			require.Len(t, pix, 3*3*4)
			assert.InDelta(t, 200, int(pix[0]), tt.delta)
			assert.InDelta(t, 100, int(pix[1]), tt.delta)
			assert.InDelta(t, 50, int(pix[2]), tt.delta)
			assert.Equal(t, byte(255), pix[3])
		})
	}
}

func TestLoadBackgroundUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.bmp")
	require.NoError(t, os.WriteFile(path, []byte("BM not really"), 0o644))
	_, err := LoadBackground(path, 4, 4)
	assert.Error(t, err)
}

func TestLoadBackgroundMissing(t *testing.T) {
	_, err := LoadBackground(filepath.Join(t.TempDir(), "nope.png"), 4, 4)
	assert.Error(t, err)
}

func TestWriteSnapshot(t *testing.T) {
	pix := make([]byte, 4*3*4)
	for i := range pix {
		pix[i] = 200
	}
	path := filepath.Join(t.TempDir(), "shots", "frame.webp")
	require.NoError(t, WriteSnapshot(path, pix, 4, 3))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, WriteSnapshot(path, pix[:5], 4, 3))
}
