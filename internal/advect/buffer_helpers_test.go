package advect

import "fmt"

// alphaAt returns the alpha of flat pixel index i.
func (b *Buffer) alphaAt(i int) float32 {
	return b.Pix[i*channels+A]
}

// copyFrom copies src into b; the shapes must match.
func (b *Buffer) copyFrom(src *Buffer) {
	if b.W != src.W || b.H != src.H {
		panic(fmt.Sprintf("advect: copy %dx%d into %dx%d", src.W, src.H, b.W, b.H))
	}
	copy(b.Pix, src.Pix)
}
