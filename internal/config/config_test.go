package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"sandboxar/internal/transform"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sandbox.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `{
		"width": 320,
		"flow_scale": 4.5,
		"debug": true,
		"model_to_image": [2, 0, 1, 0, 2, 1, 0, 0, 1]
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Zero(t, cfg.Height)
	assert.Equal(t, 4.5, cfg.FlowScale)
	assert.True(t, cfg.Debug)
	require.NotNil(t, cfg.ModelToImage)
	assert.Equal(t, 2.0, cfg.ModelToImage[0])
	assert.Nil(t, cfg.CameraToImage)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, `{"width": "wide"}`))
	assert.Error(t, err)
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.Equal(t, 10.0, cfg.FlowScale)
	assert.Equal(t, ".", cfg.SnapshotDir)
	assert.Equal(t, 64, cfg.MeshNX)
	assert.Equal(t, 48, cfg.MeshNY)
	assert.Equal(t, int64(1), cfg.Seed)
	assert.Greater(t, cfg.Workers, 0)
	assert.NoError(t, cfg.Validate())
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	cfg := Config{Width: 320, Height: 200, FlowScale: 3, Background: "file.png"}
	cfg.Resolve(Flags{Width: 800, FlowScale: 7, Debug: true, Seed: 42})
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
	assert.Equal(t, 7.0, cfg.FlowScale)
	assert.Equal(t, "file.png", cfg.Background)
	assert.True(t, cfg.Debug)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestCalibration(t *testing.T) {
	cfg := Config{}
	m2i, c2i, i2m, err := cfg.Calibration(transform.Affine(2, 2, 0, 0), transform.Identity())
	require.NoError(t, err)
	assert.Equal(t, transform.Affine(2, 2, 0, 0), m2i)
	assert.Equal(t, transform.Identity(), c2i)
	x, y := i2m.Apply(4, 6)
	assert.InDelta(t, 2, x, 1e-12)
	assert.InDelta(t, 3, y, 1e-12)

	cfg.ModelToImage = &[9]float64{}
	_, _, _, err = cfg.Calibration(transform.Identity(), transform.Identity())
	assert.True(t, errors.Is(err, transform.ErrSingular))
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Config{Width: 10000, Height: 10, WindowScale: 20, MeshNX: 2000, MeshNY: 2000}
	err := cfg.Validate()
	assert.Len(t, multierr.Errors(err), 3)
}
