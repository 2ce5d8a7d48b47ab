package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	display, err := cfg.DisplayConfiguration()
	require.NoError(t, err)
	assert.Equal(t, metadata.AntiAliasingNone, display.AntiAliasing)
	assert.Equal(t, uint32(1280), display.Width)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[display]
width = 640
height = 480
antialiasing = "msaa_4x"

[logging]
level = "debug"

[renderer]
depth_convention = "inverted"

[renderer.voxelization]
grid_center = [1.0, 2.0, 3.0]
resolution = 64
`))
	require.NoError(t, err)

	display, err := cfg.DisplayConfiguration()
	require.NoError(t, err)
	assert.Equal(t, metadata.AntiAliasingMSAA4x, display.AntiAliasing)
	assert.Equal(t, uint32(640), display.Width)
	assert.True(t, display.VSync, "unset keys keep their defaults")

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, core.DebugLevel, level)

	conv, err := cfg.DepthConvention()
	require.NoError(t, err)
	assert.Equal(t, math.DepthInverted, conv)

	grid := cfg.VoxelGrid()
	assert.Equal(t, math.NewVec3(1, 2, 3), grid.Center)
	assert.Equal(t, uint32(64), grid.Resolution)
	assert.Equal(t, uint32(6), grid.MaxMipLevel())
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "[display]\nrefresh_rate = 60\n"},
		{"unknown antialiasing", "[display]\nantialiasing = \"taa\"\n"},
		{"zero width", "[display]\nwidth = 0\n"},
		{"bad level", "[logging]\nlevel = \"chatty\"\n"},
		{"non power of two grid", "[renderer.voxelization]\nresolution = 100\n"},
		{"malformed", "[display\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumen.toml")
	cfg := Default()
	cfg.Display.AntiAliasing = "fxaa"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
