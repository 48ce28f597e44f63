package main

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"sandboxar/internal/demo"
	"sandboxar/internal/sandbox"
)

// Game drives the demo sandbox and the overlay from Ebiten's update loop.
type Game struct {
	coupling *demo.Coupling
	vis      *sandbox.Visualization
	screen   *screenDisplay
	logger   *log.Logger

	debug       bool
	simSteps    int
	lastSim     time.Duration
	lastOverlay time.Duration
	lastSlowLog time.Time
}

func newGame(coupling *demo.Coupling, vis *sandbox.Visualization, screen *screenDisplay, logger *log.Logger, debug bool) *Game {
	return &Game{
		coupling: coupling,
		vis:      vis,
		screen:   screen,
		logger:   logger,
		debug:    debug,
		simSteps: defaultSimSteps,
	}
}

// Update collects input, advances the model and refreshes the overlay.
func (g *Game) Update() error {
	g.collectInput()

	simStart := time.Now()
	for i := 0; i < g.simSteps; i++ {
		g.coupling.Step()
	}
	g.lastSim = time.Since(simStart)

	overlayStart := time.Now()
	if err := g.vis.Update(g.coupling.Context()); err != nil {
		return err
	}
	g.lastOverlay = time.Since(overlayStart)
	g.logSlowFrame()

	if g.vis.Quit() {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) logSlowFrame() {
	total := g.lastSim + g.lastOverlay
	if total < slowFrameBudget {
		return
	}
	now := time.Now()
	if now.Sub(g.lastSlowLog) < slowFrameLogEvery {
		return
	}
	g.logger.Printf("Slow frame: model %.1f ms, overlay %.1f ms",
		g.lastSim.Seconds()*1000, g.lastOverlay.Seconds()*1000)
	g.lastSlowLog = now
}

// adjustSimSteps clamps the model steps per frame within bounds.
func (g *Game) adjustSimSteps(delta int) {
	g.simSteps += delta
	if g.simSteps < minSimSteps {
		g.simSteps = minSimSteps
	} else if g.simSteps > maxSimSteps {
		g.simSteps = maxSimSteps
	}
}
