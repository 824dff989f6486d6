// Package config holds the view's configuration: font metrics, caret blink
// policy, theme colors, and logging. Configuration is an explicitly passed
// record, not ambient state, so independent viewport instances can carry
// different settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/textview/internal/core"
)

// Errors returned by configuration loading.
var (
	// ErrBadColor indicates a theme color that is not a valid hex value.
	ErrBadColor = errors.New("invalid theme color")

	// ErrBadMetrics indicates non-positive font measurements.
	ErrBadMetrics = errors.New("invalid font metrics")
)

// FontConfig carries the raw per-font measurements.
type FontConfig struct {
	Ascent    float64 `toml:"ascent"`
	Descent   float64 `toml:"descent"`
	Leading   float64 `toml:"leading"`
	CharWidth float64 `toml:"char_width"`
}

// CaretConfig controls caret blinking.
type CaretConfig struct {
	Blink           bool `toml:"blink"`
	BlinkIntervalMS int  `toml:"blink_interval_ms"`
}

// Interval returns the blink half-period as a duration, or 0 when blinking
// is disabled.
func (c CaretConfig) Interval() time.Duration {
	if !c.Blink {
		return 0
	}
	return time.Duration(c.BlinkIntervalMS) * time.Millisecond
}

// ThemeConfig holds colors as hex strings.
type ThemeConfig struct {
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Selection  string `toml:"selection"`
	Caret      string `toml:"caret"`
}

// LogConfig controls the log destination.
type LogConfig struct {
	Path  string `toml:"path"`
	Debug bool   `toml:"debug"`
}

// Config is the top-level configuration record.
type Config struct {
	Font  FontConfig  `toml:"font"`
	Caret CaretConfig `toml:"caret"`
	Theme ThemeConfig `toml:"theme"`
	Log   LogConfig   `toml:"log"`
}

// Default returns the built-in configuration: a cell-grid font (terminal
// frontend) and a 500ms blink.
func Default() Config {
	return Config{
		Font: FontConfig{
			Ascent:    1,
			Descent:   0,
			Leading:   0,
			CharWidth: 1,
		},
		Caret: CaretConfig{
			Blink:           true,
			BlinkIntervalMS: 500,
		},
		Theme: ThemeConfig{
			Foreground: "#d8dee9",
			Background: "#2e3440",
			Selection:  "#434c5e",
			Caret:      "#d8dee9",
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks metrics, colors, and the blink interval.
func (c Config) Validate() error {
	if c.Font.Ascent <= 0 || c.Font.Descent < 0 || c.Font.Leading < 0 || c.Font.CharWidth < 0 {
		return fmt.Errorf("%w: ascent=%v descent=%v leading=%v charWidth=%v",
			ErrBadMetrics, c.Font.Ascent, c.Font.Descent, c.Font.Leading, c.Font.CharWidth)
	}
	for name, hex := range map[string]string{
		"foreground": c.Theme.Foreground,
		"background": c.Theme.Background,
		"selection":  c.Theme.Selection,
		"caret":      c.Theme.Caret,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%w: %s=%q", ErrBadColor, name, hex)
		}
	}
	if c.Caret.BlinkIntervalMS <= 0 {
		return fmt.Errorf("%w: blink_interval_ms=%d", ErrBadMetrics, c.Caret.BlinkIntervalMS)
	}
	return nil
}

// Metrics derives the shared TextMetrics record from the font settings.
func (c Config) Metrics() core.TextMetrics {
	return core.NewTextMetrics(c.Font.Ascent, c.Font.Descent, c.Font.Leading, c.Font.CharWidth)
}
