package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "3dmodels/rx7stock.glb", cfg.Assets.Stock)
	assert.Equal(t, "3dmodels/rx7fcedit.glb", cfg.Assets.Edit)
	assert.False(t, cfg.InitialIsStock())
	assert.Equal(t, common.KeyV, cfg.ToggleViewKey())
	assert.Equal(t, common.KeyM, cfg.ToggleModelKey())
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
title = "FC"
width = 800

[assets]
initial = "stock"

[controls]
toggle_view = "space"

[watch]
enabled = true
debounce_ms = 100
`))
	require.NoError(t, err)
	assert.Equal(t, "FC", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.True(t, cfg.InitialIsStock())
	assert.Equal(t, common.KeySpace, cfg.ToggleViewKey())
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 100*time.Millisecond, cfg.Debounce())
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[window]\nfullscreen = true\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"negative height", func(c *Config) { c.Window.Height = -1 }},
		{"msaa zero", func(c *Config) { c.Window.MSAA = 0 }},
		{"missing stock", func(c *Config) { c.Assets.Stock = "" }},
		{"bad initial", func(c *Config) { c.Assets.Initial = "both" }},
		{"texture size", func(c *Config) { c.Assets.MaxTextureSize = 0 }},
		{"unknown key", func(c *Config) { c.Controls.ToggleView = "hyper" }},
		{"same keys", func(c *Config) { c.Controls.ToggleModel = "v" }},
		{"log level", func(c *Config) { c.Log.Level = "trace" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"debounce", func(c *Config) { c.Watch.DebounceMS = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\nformat = \"json\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	cfg.NewLogger(&buf).Debug("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
