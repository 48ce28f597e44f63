package main

import (
	"errors"
	"flag"
	"log"
	"math/rand"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"sandboxar/internal/advect"
	"sandboxar/internal/config"
	"sandboxar/internal/demo"
	"sandboxar/internal/frame"
	"sandboxar/internal/sandbox"
)

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "sandbox: ", log.LstdFlags)
	if err := run(logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(logger *log.Logger) error {
	var cfg config.Config
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.Resolve(config.Flags{
		Width:       *widthFlag,
		Height:      *heightFlag,
		FlowScale:   *flowScaleFlag,
		Background:  *backgroundFlag,
		SnapshotDir: *snapshotsFlag,
		Debug:       *debugFlag,
		OpenCL:      *openCLFlag,
		Seed:        *seedFlag,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	stopProfiles, err := startProfiles(*cpuProfileFlag, *memProfileFlag)
	if err != nil {
		return err
	}
	defer func() {
		if err := stopProfiles(); err != nil {
			logger.Printf("Profiling: %v", err)
		}
	}()

	coupling, err := demo.New(demo.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		NX:       cfg.MeshNX,
		NY:       cfg.MeshNY,
		CellSize: cfg.CellSize,
		Seed:     cfg.Seed,
		Workers:  cfg.Workers,
	})
	if err != nil {
		return err
	}
	defer coupling.Close()

	ctx := coupling.Context()
	ctx.ModelToImage, ctx.CameraToImage, ctx.ImageToModel, err = cfg.Calibration(ctx.ModelToImage, ctx.CameraToImage)
	if err != nil {
		return err
	}
	ctx.Scale = cfg.FlowScale
	ctx.Debug = cfg.Debug
	ctx.Background = frame.FileBackground(cfg.Background)
	logger.Printf("Demo sandbox: %dx%d cells, %dx%d output, flow scale %g",
		cfg.MeshNX, cfg.MeshNY, cfg.Width, cfg.Height, cfg.FlowScale)

	screen := newScreenDisplay(cfg.Width, cfg.Height)
	vis := sandbox.New(screen, coupling, sandbox.Options{
		Logger:      logger,
		Warper:      selectWarper(cfg, logger),
		Rand:        rand.New(rand.NewSource(cfg.Seed)),
		SnapshotDir: cfg.SnapshotDir,
	})
	defer vis.Close()
	if err := vis.Initialize(ctx); err != nil {
		return err
	}

	ebiten.SetWindowSize(cfg.Width*cfg.WindowScale, cfg.Height*cfg.WindowScale)
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetTPS(int(defaultTPS))
	game := newGame(coupling, vis, screen, logger, cfg.Debug)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// selectWarper returns the OpenCL warper when requested and available. A nil
// result selects the CPU warper.
func selectWarper(cfg config.Config, logger *log.Logger) advect.Warper {
	if !cfg.OpenCL {
		return nil
	}
	solver, err := advect.NewOpenCLWarper(cfg.Width, cfg.Height)
	if err != nil {
		logger.Printf("OpenCL warper unavailable, using CPU: %v", err)
		return nil
	}
	logger.Printf("OpenCL warper enabled (device: %s)", solver.DeviceName())
	return solver
}
