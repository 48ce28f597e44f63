// Package bedit writes bed-level edits back into the running simulation.
package bedit

import (
	"fmt"

	"sandboxar/internal/frame"
)

// Simulation variable names for the node and cell bed level.
const (
	VarBedNodes = "zk"
	VarBedCells = "bl"
)

// Model is the simulation accessor that accepts partial variable writes.
// start is a 0-based mesh index.
type Model interface {
	SetVarSlice(name string, start, length int, values []float64) error
}

// ApplyCameraBed sets the model's node bed level to the camera-derived bed
// level for nodes inside both the model box and the camera image. Only
// differing nodes are written, one index at a time, and each write is
// mirrored into ctx so a repeated call issues nothing. It returns the number
// of writes.
func ApplyCameraBed(ctx *frame.Context, m Model) (int, error) {
	if len(ctx.CameraBedNodes) != len(ctx.BedNodes) {
		return 0, fmt.Errorf("bedit: camera bed has %d nodes, model has %d", len(ctx.CameraBedNodes), len(ctx.BedNodes))
	}
	writes := 0
	for i, target := range ctx.CameraBedNodes {
		if !selected(ctx.NodeInBox, i) || !selected(ctx.NodeInImage, i) {
			continue
		}
		if ctx.BedNodes[i] == target {
			continue
		}
		if err := m.SetVarSlice(VarBedNodes, i, 1, []float64{target}); err != nil {
			return writes, fmt.Errorf("bedit: writing %s[%d]: %w", VarBedNodes, i, err)
		}
		ctx.BedNodes[i] = target
		writes++
	}
	return writes, nil
}

// ResetBed restores every changed cell bed level to the session snapshot.
func ResetBed(ctx *frame.Context, m Model) (int, error) {
	if len(ctx.OriginalBedCells) != len(ctx.BedCells) {
		return 0, fmt.Errorf("bedit: no bed snapshot for %d cells", len(ctx.BedCells))
	}
	writes := 0
	for i, orig := range ctx.OriginalBedCells {
		if ctx.BedCells[i] == orig {
			continue
		}
		if err := m.SetVarSlice(VarBedCells, i, 1, []float64{orig}); err != nil {
			return writes, fmt.Errorf("bedit: writing %s[%d]: %w", VarBedCells, i, err)
		}
		ctx.BedCells[i] = orig
		writes++
	}
	return writes, nil
}

// selected treats a missing mask as all-true.
func selected(mask []bool, i int) bool {
	return mask == nil || mask[i]
}
