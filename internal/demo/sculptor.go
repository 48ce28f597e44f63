package demo

import (
	"math"
	"math/rand"
)

// sculptor is a hand wandering over the sand. Its bump shows up in the
// camera's view of the bed, not in the model, until the bed is applied.
type sculptor struct {
	x, y       float64 // cell units
	dirX, dirY float64
	frames     int
	maxX, maxY float64
	rng        *rand.Rand
}

func newSculptor(nx, ny int, rng *rand.Rand) *sculptor {
	return &sculptor{
		x: float64(nx) / 2, y: float64(ny) / 2,
		maxX: float64(nx), maxY: float64(ny),
		rng: rng,
	}
}

// advance moves one step along the current heading, choosing a new one when
// the heading expires or would leave the box.
func (s *sculptor) advance() {
	for attempts := 0; attempts < 5; attempts++ {
		if s.frames <= 0 {
			s.randomize()
		}
		nextX := s.x + s.dirX*sculptSpeed
		nextY := s.y + s.dirY*sculptSpeed
		if nextX > bumpRadius && nextX < s.maxX-bumpRadius &&
			nextY > bumpRadius && nextY < s.maxY-bumpRadius {
			s.x, s.y = nextX, nextY
			s.frames--
			return
		}
		s.frames = 0
	}
}

func (s *sculptor) randomize() {
	angle := s.rng.Float64() * 2 * math.Pi
	s.dirX = math.Cos(angle)
	s.dirY = math.Sin(angle)
	s.frames = 20 + s.rng.Intn(50)
}

// bump is the sand height added at (x, y) in cell units.
func (s *sculptor) bump(x, y float64) float64 {
	dx, dy := x-s.x, y-s.y
	r2 := dx*dx + dy*dy
	if r2 > 9*bumpRadius*bumpRadius {
		return 0
	}
	return bumpHeight * math.Exp(-r2/(2*bumpRadius*bumpRadius))
}
