package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Shadow.MaxPointShadows)
	assert.Equal(t, 1024, cfg.Shadow.Resolution)
}

func TestParseTOMLOverridesDefaults(t *testing.T) {
	data := []byte(`
[window]
title = "viewer"
width = 800

[shadow]
max_point_shadows = 3
`)
	cfg, err := Parse(data, ".toml")
	require.NoError(t, err)

	assert.Equal(t, "viewer", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset fields keep defaults")
	assert.Equal(t, 3, cfg.Shadow.MaxPointShadows)
}

func TestParseYAML(t *testing.T) {
	data := []byte("render:\n  exposure: 2.5\n  wireframe: true\nlog:\n  level: debug\n")
	cfg, err := Parse(data, ".yml")
	require.NoError(t, err)

	assert.InDelta(t, 2.5, cfg.Render.Exposure, 1e-6)
	assert.True(t, cfg.Render.Wireframe)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("{}"), ".json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Parse([]byte("[window]\nunknown = 1\n"), ".toml")
	assert.Error(t, err)

	_, err = Parse([]byte("[window]\nwidth = -1\n"), ".toml")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("[shadow]\nresolution = 2048\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.Shadow.Resolution)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
