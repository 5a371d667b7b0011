// Package config loads the viewer's TOML configuration. Every field has a default that
// reproduces the stock viewer, so an empty or missing file is a valid configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid wraps every validation failure returned by Validate and Load.
var ErrInvalid = errors.New("invalid config")

const (
	InitialStock = "stock"
	InitialEdit  = "edit"
)

// Config is the root of the configuration file.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Assets   AssetsConfig   `toml:"assets"`
	Controls ControlsConfig `toml:"controls"`
	Log      LogConfig      `toml:"log"`
	Watch    WatchConfig    `toml:"watch"`
}

// WindowConfig configures the window and surface.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`

	// MSAA is the sample count; 1 disables multisampling, anything above uses 4.
	MSAA int `toml:"msaa"`
}

// AssetsConfig names the two model variants and which one is shown first.
type AssetsConfig struct {
	Stock   string `toml:"stock"`
	Edit    string `toml:"edit"`
	Initial string `toml:"initial"`

	// MaxTextureSize bounds the larger side of decoded textures in pixels.
	MaxTextureSize int `toml:"max_texture_size"`
}

// ControlsConfig binds the viewer actions to key names accepted by common.KeyFromName.
type ControlsConfig struct {
	ToggleView  string `toml:"toggle_view"`
	ToggleModel string `toml:"toggle_model"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// WatchConfig enables reloading the shown model when its file changes.
type WatchConfig struct {
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - *Config: the default configuration
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "RX-7 Viewer",
			Width:  1280,
			Height: 720,
			VSync:  true,
			MSAA:   4,
		},
		Assets: AssetsConfig{
			Stock:          "3dmodels/rx7stock.glb",
			Edit:           "3dmodels/rx7fcedit.glb",
			Initial:        InitialEdit,
			MaxTextureSize: 4096,
		},
		Controls: ControlsConfig{
			ToggleView:  "V",
			ToggleModel: "M",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchConfig{
			DebounceMS: 250,
		},
	}
}

// Load reads the file at path over the defaults and validates the result. An empty path
// returns the defaults. Keys that do not exist in Config are rejected.
//
// Parameters:
//   - path: the TOML file to read, or ""
//
// Returns:
//   - *Config: the loaded configuration
//   - error: an error if the file cannot be read, decoded or fails validation
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - *Config: the decoded configuration
//   - error: an error if decoding or validation fails
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks sizes, asset paths, key names and log settings. All problems are
// reported together.
//
// Returns:
//   - error: nil, or an error wrapping ErrInvalid
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		add("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.MSAA < 1 {
		add("window.msaa %d must be at least 1", c.Window.MSAA)
	}
	if c.Assets.Stock == "" || c.Assets.Edit == "" {
		add("assets.stock and assets.edit are required")
	}
	if c.Assets.Initial != InitialStock && c.Assets.Initial != InitialEdit {
		add("assets.initial %q must be %q or %q", c.Assets.Initial, InitialStock, InitialEdit)
	}
	if c.Assets.MaxTextureSize <= 0 {
		add("assets.max_texture_size %d must be positive", c.Assets.MaxTextureSize)
	}
	if _, ok := common.KeyFromName(c.Controls.ToggleView); !ok {
		add("controls.toggle_view: unknown key %q", c.Controls.ToggleView)
	}
	if _, ok := common.KeyFromName(c.Controls.ToggleModel); !ok {
		add("controls.toggle_model: unknown key %q", c.Controls.ToggleModel)
	}
	if strings.EqualFold(c.Controls.ToggleView, c.Controls.ToggleModel) {
		add("controls.toggle_view and controls.toggle_model are both %q", c.Controls.ToggleView)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		add("log.format %q must be text or json", c.Log.Format)
	}
	if c.Watch.DebounceMS < 0 {
		add("watch.debounce_ms %d must not be negative", c.Watch.DebounceMS)
	}
	return errors.Join(errs...)
}

// InitialIsStock reports whether the stock model is shown first.
func (c *Config) InitialIsStock() bool {
	return c.Assets.Initial == InitialStock
}

// ToggleViewKey returns the key bound to the view toggle. Call after Validate.
func (c *Config) ToggleViewKey() common.Key {
	k, _ := common.KeyFromName(c.Controls.ToggleView)
	return k
}

// ToggleModelKey returns the key bound to the model toggle. Call after Validate.
func (c *Config) ToggleModelKey() common.Key {
	k, _ := common.KeyFromName(c.Controls.ToggleModel)
	return k
}

// Debounce returns the watcher debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// ParseLevel maps a level name to a slog.Level.
//
// Parameters:
//   - name: debug, info, warn or error, case insensitive
//
// Returns:
//   - slog.Level: the level
//   - error: an error wrapping ErrInvalid for unknown names
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: log.level %q must be debug, info, warn or error", ErrInvalid, name)
}

// NewLogger builds the logger described by the log section.
//
// Parameters:
//   - w: where records are written
//
// Returns:
//   - *slog.Logger: the logger
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
