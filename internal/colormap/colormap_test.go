package colormap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNames(t *testing.T) {
	assert.Equal(t, "jet", Jet().Name)
	assert.Equal(t, "blues", Blues().Name)
	assert.Equal(t, "terrain", Terrain().Name)
}

func TestJetEnds(t *testing.T) {
	m := Jet()
	r, g, b := m.At(0, 0, 1)
	assert.Equal(t, byte(0), r)
	assert.Equal(t, byte(0), g)
	assert.InDelta(t, 127, int(b), 2)

	r, g, b = m.At(1, 0, 1)
	assert.InDelta(t, 127, int(r), 2)
	assert.Equal(t, byte(0), g)
	assert.Equal(t, byte(0), b)
}

func TestAtClampsAndHandlesDegenerateRange(t *testing.T) {
	m := Blues()
	lr, lg, lb := m.At(0, 0, 3)
	r, g, b := m.At(-5, 0, 3)
	assert.Equal(t, [3]byte{lr, lg, lb}, [3]byte{r, g, b})

	hr, hg, hb := m.At(3, 0, 3)
	r, g, b = m.At(50, 0, 3)
	assert.Equal(t, [3]byte{hr, hg, hb}, [3]byte{r, g, b})

	r, g, b = m.At(float32(math.NaN()), 0, 3)
	assert.Equal(t, [3]byte{lr, lg, lb}, [3]byte{r, g, b})

	r, g, b = m.At(2, 1, 1)
	assert.Equal(t, [3]byte{lr, lg, lb}, [3]byte{r, g, b})
}

func TestBluesDarkensWithDepth(t *testing.T) {
	m := Blues()
	r0, g0, _ := m.At(0, 0, 1)
	r1, g1, _ := m.At(1, 0, 1)
	assert.Greater(t, int(r0)+int(g0), int(r1)+int(g1))
}
