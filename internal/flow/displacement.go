// Package flow converts model-space cell velocities into image-space
// displacements.
package flow

import (
	"fmt"

	"sandboxar/internal/transform"
)

// Displacement maps each cell velocity through modelToImage by transforming
// the cell position and the position offset by the velocity, then returning
// transform(pos) - transform(pos+velocity). Projective transforms scale the
// vector differently across the image, so the vector itself is never
// transformed on its own.
func Displacement(cellX, cellY, u, v []float64, modelToImage transform.Homography) (du, dv []float64, err error) {
	n := len(cellX)
	if len(cellY) != n || len(u) != n || len(v) != n {
		return nil, nil, fmt.Errorf("flow: field lengths differ (x=%d y=%d u=%d v=%d)", n, len(cellY), len(u), len(v))
	}
	du = make([]float64, n)
	dv = make([]float64, n)
	DisplacementInto(du, dv, cellX, cellY, u, v, modelToImage)
	return du, dv, nil
}

// DisplacementInto is the per-frame form of Displacement writing into
// caller-owned slices of the same length.
func DisplacementInto(du, dv, cellX, cellY, u, v []float64, modelToImage transform.Homography) {
	for i := range cellX {
		x0, y0 := modelToImage.Apply(cellX[i], cellY[i])
		x1, y1 := modelToImage.Apply(cellX[i]+u[i], cellY[i]+v[i])
		du[i] = x0 - x1
		dv[i] = y0 - y1
	}
}
