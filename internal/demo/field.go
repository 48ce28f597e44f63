package demo

import "math"

// waterField stores the toy water model on the cell grid: a double-buffered
// surface elevation, the bed it rests on, and the derived cell velocities.
type waterField struct {
	nx, ny int
	d      float64

	level []float64
	next  []float64
	bed   []float64
	u, v  []float64
}

// newWaterField allocates a field over bed, which it shares with the caller.
// The surface starts at rest at seaLevel or on the bed, whichever is higher.
func newWaterField(nx, ny int, d float64, bed []float64, seaLevel float64) *waterField {
	f := &waterField{
		nx: nx, ny: ny, d: d,
		level: make([]float64, nx*ny),
		next:  make([]float64, nx*ny),
		bed:   bed,
		u:     make([]float64, nx*ny),
		v:     make([]float64, nx*ny),
	}
	for i, b := range bed {
		f.level[i] = math.Max(b, seaLevel)
	}
	return f
}

// surface is the water elevation, never below the bed.
func (f *waterField) surface(i int) float64 {
	return math.Max(f.level[i], f.bed[i])
}

func (f *waterField) depth(i int) float64 {
	return f.surface(i) - f.bed[i]
}

// exchange is the volume moving from cell j into cell i, limited by what the
// donor holds.
func (f *waterField) exchange(i, j int) float64 {
	si, sj := f.surface(i), f.surface(j)
	if sj > si {
		return relaxRate * math.Min(sj-si, f.depth(j))
	}
	return -relaxRate * math.Min(si-sj, f.depth(i))
}

// relaxRows writes the next surface and the velocities of the given rows.
// Rows only read the current surface, so disjoint row sets run in parallel.
func (f *waterField) relaxRows(rows []int) {
	nx, ny := f.nx, f.ny
	vmax := maxSpeed * f.d
	for _, y := range rows {
		for x := 0; x < nx; x++ {
			i := y*nx + x
			s := f.surface(i)
			var in float64
			left, right, up, down := s, s, s, s
			if x > 0 {
				in += f.exchange(i, i-1)
				left = f.surface(i - 1)
			}
			if x < nx-1 {
				in += f.exchange(i, i+1)
				right = f.surface(i + 1)
			}
			if y > 0 {
				in += f.exchange(i, i-nx)
				up = f.surface(i - nx)
			}
			if y < ny-1 {
				in += f.exchange(i, i+nx)
				down = f.surface(i + nx)
			}
			f.next[i] = s + in

			if f.depth(i) < wetDepth {
				f.u[i], f.v[i] = 0, 0
				continue
			}
			f.u[i] = clampAbs(-gravity*(right-left)/(2*f.d), vmax)
			f.v[i] = clampAbs(-gravity*(down-up)/(2*f.d), vmax)
		}
	}
}

// pour adds water at a cell.
func (f *waterField) pour(x, y int, amount float64) {
	i := y*f.nx + x
	f.next[i] = math.Max(f.next[i], f.bed[i]) + amount
}

// drainColumn caps the depth of one cell column.
func (f *waterField) drainColumn(x int, depth float64) {
	for y := 0; y < f.ny; y++ {
		i := y*f.nx + x
		f.next[i] = math.Min(f.next[i], f.bed[i]+depth)
	}
}

// swap makes the freshly computed surface current.
func (f *waterField) swap() {
	f.level, f.next = f.next, f.level
}

func clampAbs(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
