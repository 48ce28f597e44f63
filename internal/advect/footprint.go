package advect

type offset struct {
	dx int
	dy int
}

// seedFootprint is the filled disc stamped for every new particle.
var seedFootprint = precomputeDisc(SeedRadius)

// precomputeDisc lists the pixel offsets strictly inside a circle of the
// given radius around the centre pixel.
func precomputeDisc(radius int) []offset {
	disc := make([]offset, 0, (2*radius+1)*(2*radius+1))
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y < r2 {
				disc = append(disc, offset{dx: x, dy: y})
			}
		}
	}
	return disc
}

// clampCoord constrains v to the inclusive [lo, hi] range.
func clampCoord(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
