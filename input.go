package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"sandboxar/internal/event"
)

// commandKeys are forwarded to the overlay as key presses.
var commandKeys = []struct {
	key ebiten.Key
	r   rune
}{
	{ebiten.Key1, '1'},
	{ebiten.Key2, '2'},
	{ebiten.Key3, '3'},
	{ebiten.Key4, '4'},
	{ebiten.KeyC, 'c'},
	{ebiten.KeyP, 'p'},
	{ebiten.KeyB, 'b'},
	{ebiten.KeyR, 'r'},
	{ebiten.KeyS, 's'},
	{ebiten.KeyQ, 'q'},
}

// collectInput turns this tick's key and mouse presses into overlay events.
func (g *Game) collectInput() {
	for _, k := range commandKeys {
		if inpututil.IsKeyJustPressed(k.key) {
			g.vis.Notify(event.Event{Kind: event.KeyPress, Key: k.r})
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.vis.Notify(event.Event{Kind: event.Click, X: x, Y: y})
	}
	g.handleDebugControls()
}

// handleDebugControls processes debug overlay hotkeys.
func (g *Game) handleDebugControls() {
	if !g.debug {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.adjustSimSteps(-simStepsStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.adjustSimSteps(simStepsStep)
	}
}
