// Package transform maps points and images between model, camera and
// output-image coordinates with 3×3 homogeneous transforms.
package transform

import (
	"errors"
	"fmt"
	"image"

	"gonum.org/v1/gonum/mat"

	"sandboxar/internal/raster"
)

// Homography is a row-major 3×3 projective transform.
type Homography [9]float64

// ErrSingular is returned when a transform cannot be inverted.
var ErrSingular = errors.New("transform: singular matrix")

// Identity returns the identity transform.
func Identity() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Affine builds a scale+translate transform.
func Affine(sx, sy, tx, ty float64) Homography {
	return Homography{sx, 0, tx, 0, sy, ty, 0, 0, 1}
}

// Apply transforms (x, y), dividing out the homogeneous coordinate.
func (h Homography) Apply(x, y float64) (float64, float64) {
	w := h[6]*x + h[7]*y + h[8]
	if w == 0 {
		w = 1e-12
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w
}

// ApplyAll transforms paired coordinate slices.
func (h Homography) ApplyAll(xs, ys []float64) ([]float64, []float64) {
	ox := make([]float64, len(xs))
	oy := make([]float64, len(ys))
	for i := range xs {
		ox[i], oy[i] = h.Apply(xs[i], ys[i])
	}
	return ox, oy
}

// Inverse returns h⁻¹.
func (h Homography) Inverse() (Homography, error) {
	m := mat.NewDense(3, 3, h[:])
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Homography{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	return out, nil
}

// WarpGrid is warpPerspective for scalar rasters: every destination pixel p
// takes src sampled bilinearly at h⁻¹(p). Samples falling outside src are 0.
func WarpGrid(src *raster.Grid, h Homography, w, hgt int) (*raster.Grid, error) {
	inv, err := h.Inverse()
	if err != nil {
		return nil, err
	}
	dst := raster.NewGrid(w, hgt)
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			sx, sy := inv.Apply(float64(x), float64(y))
			dst.Pix[y*w+x] = src.Bilinear(float32(sx), float32(sy), 0)
		}
	}
	return dst, nil
}

// WarpNRGBA is warpPerspective for colour frames. The result holds
// normalized [0,1] channel values in RGBA order, four floats per pixel.
func WarpNRGBA(src *image.NRGBA, h Homography, w, hgt int) ([]float32, error) {
	inv, err := h.Inverse()
	if err != nil {
		return nil, err
	}
	out := make([]float32, w*hgt*4)
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			fx, fy := inv.Apply(float64(x), float64(y))
			if fx < 0 || fy < 0 || fx > float64(sw-1) || fy > float64(sh-1) {
				continue
			}
			x0, y0 := int(fx), int(fy)
			x1, y1 := min(x0+1, sw-1), min(y0+1, sh-1)
			dx, dy := fx-float64(x0), fy-float64(y0)
			w00 := (1 - dx) * (1 - dy)
			w10 := dx * (1 - dy)
			w01 := (1 - dx) * dy
			w11 := dx * dy
			i00 := src.PixOffset(b.Min.X+x0, b.Min.Y+y0)
			i10 := src.PixOffset(b.Min.X+x1, b.Min.Y+y0)
			i01 := src.PixOffset(b.Min.X+x0, b.Min.Y+y1)
			i11 := src.PixOffset(b.Min.X+x1, b.Min.Y+y1)
			base := (y*w + x) * 4
			for c := 0; c < 4; c++ {
				v := float64(src.Pix[i00+c])*w00 + float64(src.Pix[i10+c])*w10 +
					float64(src.Pix[i01+c])*w01 + float64(src.Pix[i11+c])*w11
				out[base+c] = float32(v / 255.0)
			}
		}
	}
	return out, nil
}
