package bedit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sandboxar/internal/frame"
)

type call struct {
	name          string
	start, length int
	values        []float64
}

type recorder struct {
	calls []call
	err   error
}

func (r *recorder) SetVarSlice(name string, start, length int, values []float64) error {
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, call{name, start, length, append([]float64(nil), values...)})
	return nil
}

func nodeContext(n int) *frame.Context {
	ctx := &frame.Context{
		BedNodes:       make([]float64, n),
		CameraBedNodes: make([]float64, n),
		NodeInBox:      make([]bool, n),
		NodeInImage:    make([]bool, n),
	}
	for i := 0; i < n; i++ {
		ctx.BedNodes[i] = 1
		ctx.CameraBedNodes[i] = 1
		ctx.NodeInBox[i] = true
		ctx.NodeInImage[i] = true
	}
	return ctx
}

func TestApplyCameraBedSingleIndex(t *testing.T) {
	ctx := nodeContext(12)
	ctx.CameraBedNodes[7] = 2.5
	r := &recorder{}

	n, err := ApplyCameraBed(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, r.calls, 1)
	assert.Equal(t, call{VarBedNodes, 7, 1, []float64{2.5}}, r.calls[0])
	assert.Equal(t, 2.5, ctx.BedNodes[7])

	n, err = ApplyCameraBed(ctx, r)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, r.calls, 1)
}

func TestApplyCameraBedRespectsMasks(t *testing.T) {
	ctx := nodeContext(4)
	for i := range ctx.CameraBedNodes {
		ctx.CameraBedNodes[i] = 3
	}
	ctx.NodeInBox[0] = false
	ctx.NodeInImage[2] = false
	r := &recorder{}
	n, err := ApplyCameraBed(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, r.calls[0].start)
	assert.Equal(t, 3, r.calls[1].start)
	assert.Equal(t, 1.0, ctx.BedNodes[0])
}

func TestApplyCameraBedErrors(t *testing.T) {
	ctx := nodeContext(3)
	ctx.CameraBedNodes = ctx.CameraBedNodes[:2]
	_, err := ApplyCameraBed(ctx, &recorder{})
	assert.Error(t, err)

	ctx = nodeContext(3)
	ctx.CameraBedNodes[1] = 0
	boom := errors.New("model offline")
	_, err = ApplyCameraBed(ctx, &recorder{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, ctx.BedNodes[1])
}

func TestResetBed(t *testing.T) {
	ctx := &frame.Context{
		BedCells:         []float64{1, 5, 3, 9},
		OriginalBedCells: []float64{1, 2, 3, 4},
	}
	r := &recorder{}
	n, err := ResetBed(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []call{
		{VarBedCells, 1, 1, []float64{2}},
		{VarBedCells, 3, 1, []float64{4}},
	}, r.calls)
	assert.Equal(t, []float64{1, 2, 3, 4}, ctx.BedCells)

	n, err = ResetBed(ctx, r)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestResetBedWithoutSnapshot(t *testing.T) {
	_, err := ResetBed(&frame.Context{BedCells: []float64{1}}, &recorder{})
	assert.Error(t, err)
}
