package main

import (
	"fmt"

	"sandboxar/internal/overlay"
)

// screenDisplay keeps the last presented frame for Draw. Ebiten pumps window
// events itself, so there is nothing to flush.
type screenDisplay struct {
	w, h int
	pix  []byte
}

func newScreenDisplay(w, h int) *screenDisplay {
	return &screenDisplay{w: w, h: h, pix: make([]byte, w*h*4)}
}

func (d *screenDisplay) Present(pix []byte, w, h int) error {
	if w != d.w || h != d.h || len(pix) != len(d.pix) {
		return fmt.Errorf("frame is %dx%d, screen is %dx%d", w, h, d.w, d.h)
	}
	copy(d.pix, pix)
	return nil
}

func (d *screenDisplay) FlushEvents() error {
	return overlay.ErrUnsupportedDisplayOperation
}
