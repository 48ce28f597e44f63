package main

import "flag"

// Command-line flags. Non-zero values override the JSON config file.
var (
	// configFlag names an optional JSON config file.
	configFlag = flag.String("config", "", "path to a JSON config file")

	widthFlag  = flag.Int("width", 0, "output raster width in pixels (default 640)")
	heightFlag = flag.Int("height", 0, "output raster height in pixels (default 480)")

	// flowScaleFlag multiplies the per-frame particle displacement.
	flowScaleFlag = flag.Float64("flow-scale", 0, "particle displacement multiplier (default 10)")

	backgroundFlag = flag.String("background", "", "background image drawn under the water layer")
	snapshotsFlag  = flag.String("snapshots", "", "directory for WebP snapshots taken with 's'")
	seedFlag       = flag.Int64("seed", 0, "random seed for the demo sandbox and particle seeding")

	// openCLFlag runs the particle warp on an OpenCL device when available.
	openCLFlag = flag.Bool("opencl", false, "warp particles on an OpenCL device (needs -tags opencl)")

	// debugFlag enables the FPS overlay and the bed contour layer.
	debugFlag = flag.Bool("debug", false, "show FPS overlay and bed contours")

	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to this file")
	memProfileFlag = flag.String("memprofile", "", "write a heap profile to this file on exit")
)
