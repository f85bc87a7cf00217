package lattice

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config tunes input routing and scrolling. All fields are plain numbers:
// out-of-range values clamp, they never error.
type Config struct {
	// DoubleClickMS is the longest gap between two clicks that still
	// counts as a double-click.
	DoubleClickMS int `toml:"double_click_ms"`

	// DoubleClickSlop is how far (normalized) the second click may land
	// from the first.
	DoubleClickSlop float32 `toml:"double_click_slop"`

	// ScrollStep is the default step extent for scroll layouts that do
	// not set their own. Zero derives the step from the first child.
	ScrollStep float32 `toml:"scroll_step"`

	// SmoothScrollMS is the duration of animated scrolls.
	SmoothScrollMS int `toml:"smooth_scroll_ms"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() Config {
	return Config{
		DoubleClickMS:   500,
		DoubleClickSlop: 0.01,
		ScrollStep:      0,
		SmoothScrollMS:  180,
	}
}

// LoadConfig reads a TOML config file. A missing file is not an error:
// defaults are returned. Unset fields keep their defaults; invalid values
// clamp.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("lattice: no config file, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg.clamped(), nil
}

// clamped normalizes every numeric field into its valid range.
func (c Config) clamped() Config {
	if c.DoubleClickMS < 0 {
		c.DoubleClickMS = 0
	}
	if c.DoubleClickSlop < 0 {
		c.DoubleClickSlop = 0
	}
	if c.DoubleClickSlop > 1 {
		c.DoubleClickSlop = 1
	}
	c.ScrollStep = clamp01(c.ScrollStep)
	if c.SmoothScrollMS < 0 {
		c.SmoothScrollMS = 0
	}
	return c
}

func (c Config) doubleClickWindow() time.Duration {
	return time.Duration(c.DoubleClickMS) * time.Millisecond
}

func (c Config) smoothScrollDuration() time.Duration {
	return time.Duration(c.SmoothScrollMS) * time.Millisecond
}
