package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Draw copies the last composed overlay frame to the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.WritePixels(g.screen.pix)

	if g.debug {
		debugMsg := fmt.Sprintf("FPS: %.1f (%.1f TPS)\nModel steps/frame: %d (+/-)\nModel: %.2f ms\nOverlay: %.2f ms\nFrames: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), g.simSteps,
			g.lastSim.Seconds()*1000, g.lastOverlay.Seconds()*1000, g.vis.Frames())
		ebitenutil.DebugPrint(screen, debugMsg)
	}
}

// Layout reports the logical screen size used by Ebiten.
func (g *Game) Layout(_, _ int) (int, int) { return g.screen.w, g.screen.h }
