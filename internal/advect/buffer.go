// Package advect keeps the persistent RGBA particle texture that visualizes
// flow and moves it along the image-space displacement field each frame.
package advect

import "fmt"

// Channel offsets inside a pixel.
const (
	R = iota
	G
	B
	A
	channels
)

// Buffer is a w×h RGBA float raster with values in [0, 1]. Alpha alone
// carries particle presence; colour is meaningless where alpha is 0.
type Buffer struct {
	W, H int
	Pix  []float32
}

// NewBuffer returns a fully transparent black buffer.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]float32, w*h*channels)}
}

// Clear makes every pixel transparent white.
func (b *Buffer) Clear() {
	b.Fill(1, 1, 1, 0)
}

// Fill sets every pixel to the given colour.
func (b *Buffer) Fill(r, g, bl, a float32) {
	for i := 0; i < len(b.Pix); i += channels {
		b.Pix[i+R] = r
		b.Pix[i+G] = g
		b.Pix[i+B] = bl
		b.Pix[i+A] = a
	}
}

// Alpha returns the alpha channel of pixel (x, y).
func (b *Buffer) Alpha(x, y int) float32 {
	return b.Pix[(y*b.W+x)*channels+A]
}

// SetPixel writes one RGBA pixel.
func (b *Buffer) SetPixel(x, y int, r, g, bl, a float32) {
	base := (y*b.W + x) * channels
	b.Pix[base+R] = r
	b.Pix[base+G] = g
	b.Pix[base+B] = bl
	b.Pix[base+A] = a
}

// ClampAlpha raises negative alpha, left over from interpolation, to zero.
func (b *Buffer) ClampAlpha() {
	for i := A; i < len(b.Pix); i += channels {
		if b.Pix[i] < 0 {
			b.Pix[i] = 0
		}
	}
}

// MaskAlpha zeroes alpha wherever mask is true.
func (b *Buffer) MaskAlpha(mask []bool) {
	if len(mask) != b.W*b.H {
		panic(fmt.Sprintf("advect: mask has %d pixels, buffer has %d", len(mask), b.W*b.H))
	}
	for i, m := range mask {
		if m {
			b.Pix[i*channels+A] = 0
		}
	}
}

// RGBA8 converts the buffer to straight-alpha 8-bit RGBA.
func (b *Buffer) RGBA8(dst []byte) []byte {
	if cap(dst) < len(b.Pix) {
		dst = make([]byte, len(b.Pix))
	}
	dst = dst[:len(b.Pix)]
	for i, v := range b.Pix {
		dst[i] = to8(v)
	}
	return dst
}

func to8(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
