package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/multierr"

	"sandboxar/internal/transform"
)

// Config holds the overlay and demo sandbox settings.
type Config struct {
	// Output raster
	Width       int `json:"width"`
	Height      int `json:"height"`
	WindowScale int `json:"window_scale"`

	// Overlay
	FlowScale   float64 `json:"flow_scale"`
	Background  string  `json:"background"`
	SnapshotDir string  `json:"snapshot_dir"`
	Debug       bool    `json:"debug"`
	OpenCL      bool    `json:"opencl"`

	// Calibration, 3×3 row-major. Unset keeps the sandbox defaults.
	ModelToImage  *[9]float64 `json:"model_to_image"`
	CameraToImage *[9]float64 `json:"camera_to_image"`

	// Demo sandbox
	MeshNX   int     `json:"mesh_nx"`
	MeshNY   int     `json:"mesh_ny"`
	CellSize float64 `json:"cell_size"`
	Seed     int64   `json:"seed"`
	Workers  int     `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Width       int
	Height      int
	FlowScale   float64
	Background  string
	SnapshotDir string
	Debug       bool
	OpenCL      bool
	Seed        int64
}

// Resolve applies flag overrides, then fills empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.FlowScale > 0 {
		c.FlowScale = flags.FlowScale
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}
	if flags.SnapshotDir != "" {
		c.SnapshotDir = flags.SnapshotDir
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	c.Debug = c.Debug || flags.Debug
	c.OpenCL = c.OpenCL || flags.OpenCL

	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 480
	}
	if c.WindowScale <= 0 {
		c.WindowScale = 1
	}
	if c.FlowScale <= 0 {
		c.FlowScale = 10
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = "."
	}
	if c.MeshNX <= 0 {
		c.MeshNX = 64
	}
	if c.MeshNY <= 0 {
		c.MeshNY = 48
	}
	if c.CellSize <= 0 {
		c.CellSize = 10
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Calibration returns the configured transforms, falling back to the given
// defaults, together with the image-to-model inverse.
func (c *Config) Calibration(modelToImage, cameraToImage transform.Homography) (m2i, c2i, i2m transform.Homography, err error) {
	m2i, c2i = modelToImage, cameraToImage
	if c.ModelToImage != nil {
		m2i = transform.Homography(*c.ModelToImage)
	}
	if c.CameraToImage != nil {
		c2i = transform.Homography(*c.CameraToImage)
	}
	i2m, err = m2i.Inverse()
	if err != nil {
		return m2i, c2i, i2m, fmt.Errorf("config: model_to_image: %w", err)
	}
	if _, cerr := c2i.Inverse(); cerr != nil {
		err = fmt.Errorf("config: camera_to_image: %w", cerr)
	}
	return m2i, c2i, i2m, err
}

// Validate reports every out-of-range setting left after Resolve.
func (c *Config) Validate() error {
	var err error
	if c.Width > 8192 || c.Height > 8192 {
		err = multierr.Append(err, fmt.Errorf("config: output %dx%d is too large", c.Width, c.Height))
	}
	if c.MeshNX*c.MeshNY > 1<<20 {
		err = multierr.Append(err, fmt.Errorf("config: mesh %dx%d is too large", c.MeshNX, c.MeshNY))
	}
	if c.WindowScale > 8 {
		err = multierr.Append(err, fmt.Errorf("config: window scale %d is too large", c.WindowScale))
	}
	return err
}
