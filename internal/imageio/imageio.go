// Package imageio loads the optional background picture and writes WebP
// snapshots of the composed overlay.
package imageio

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte{0xff, 0xd8}
)

// LoadBackground decodes a PNG, JPEG or TGA file and stretches it to w×h,
// returning straight-alpha RGBA bytes.
func LoadBackground(path string, w, h int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("background: open %s: %w", path, err)
	}
	defer f.Close()

	src, err := decode(bufio.NewReader(f), path)
	if err != nil {
		return nil, fmt.Errorf("background: decode %s: %w", path, err)
	}
	return Fit(src, w, h).Pix, nil
}

// decode picks the decoder from the file's magic bytes, falling back to TGA
// for .tga files. The tga package registers itself with an empty magic
// string that matches any input, so image.Decode cannot be used.
func decode(r *bufio.Reader, path string) (image.Image, error) {
	head, err := r.Peek(len(pngMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	switch {
	case bytes.HasPrefix(head, pngMagic):
		return png.Decode(r)
	case bytes.HasPrefix(head, jpegMagic):
		return jpeg.Decode(r)
	case strings.EqualFold(filepath.Ext(path), ".tga"):
		return tga.Decode(r)
	}
	return nil, fmt.Errorf("unsupported image format %q", filepath.Ext(path))
}

// Fit scales src to exactly w×h with bilinear filtering.
func Fit(src image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// WriteSnapshot encodes a straight-alpha RGBA frame as WebP at path,
// creating parent directories.
func WriteSnapshot(path string, pix []byte, w, h int) error {
	if len(pix) != w*h*4 {
		return fmt.Errorf("snapshot: frame has %d bytes, want %d", len(pix), w*h*4)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	img := &image.NRGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", path, err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("snapshot: WebP encode: %w", err)
	}
	return f.Close()
}
