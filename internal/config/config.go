// Package config loads the compositor configuration using Viper.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"deedles.dev/strata/geom"
	"deedles.dev/strata/layer"
	"github.com/spf13/viper"
)

// Config is the complete compositor configuration.
type Config struct {
	Log    LogConfig     `mapstructure:"log"`
	Output OutputConfig  `mapstructure:"output"`
	Panels []PanelConfig `mapstructure:"panel"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig applies to every output.
type OutputConfig struct {
	Background string `mapstructure:"background"` // Hex colour that outputs are cleared to
}

// PanelConfig describes a compositor-owned layer surface, such as a
// strip of screen kept free for an external bar.
type PanelConfig struct {
	Name          string        `mapstructure:"name"`
	Output        string        `mapstructure:"output"` // Output name, or empty for every output
	Layer         string        `mapstructure:"layer"`
	Anchor        []string      `mapstructure:"anchor"`
	ExclusiveZone int           `mapstructure:"exclusive_zone"`
	Width         int           `mapstructure:"width"`
	Height        int           `mapstructure:"height"`
	Margin        MarginsConfig `mapstructure:"margin"`
	Keyboard      string        `mapstructure:"keyboard"`
	Color         string        `mapstructure:"color"` // Hex colour the panel is drawn in
}

type MarginsConfig struct {
	Top    int `mapstructure:"top"`
	Bottom int `mapstructure:"bottom"`
	Left   int `mapstructure:"left"`
	Right  int `mapstructure:"right"`
}

var DefaultConfig = Config{
	Log: LogConfig{
		Level: "info",
	},
	Output: OutputConfig{
		Background: "#777777",
	},
}

// DefaultPanelColor is used for panels that do not set a colour.
const DefaultPanelColor = "#78AD84"

// Load reads the configuration from path, or, if path is empty, from
// strata.toml in the first of the standard locations that has one.
// STRATA_ environment variables override file values. A missing file
// is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("strata")
	v.SetConfigType("toml")
	v.SetEnvPrefix("strata")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
			v.AddConfigPath(filepath.Join(dir, "strata"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "strata"))
		}
		v.AddConfigPath(".")
	}

	v.SetDefault("log.level", DefaultConfig.Log.Level)
	v.SetDefault("output.background", DefaultConfig.Output.Background)

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for i, p := range cfg.Panels {
		_, err := p.State()
		if err == nil {
			_, err = p.PanelColor()
		}
		if err != nil {
			return nil, fmt.Errorf("panel %d (%q): %w", i, p.Name, err)
		}
	}

	return &cfg, nil
}

// State converts the panel description into layer surface state.
func (p PanelConfig) State() (layer.State, error) {
	l, err := layer.ParseLayer(p.Layer)
	if err != nil {
		return layer.State{}, err
	}

	anchor, err := geom.ParseEdges(p.Anchor)
	if err != nil {
		return layer.State{}, err
	}

	keyboard, err := layer.ParseKeyboardInteractivity(p.Keyboard)
	if err != nil {
		return layer.State{}, err
	}

	return layer.State{
		Layer:         l,
		Anchor:        anchor,
		ExclusiveZone: p.ExclusiveZone,
		Margin: geom.Margins{
			Left:   p.Margin.Left,
			Right:  p.Margin.Right,
			Top:    p.Margin.Top,
			Bottom: p.Margin.Bottom,
		},
		DesiredWidth:          p.Width,
		DesiredHeight:         p.Height,
		KeyboardInteractivity: keyboard,
	}, nil
}

// AppliesTo reports whether the panel should be placed on the named
// output.
func (p PanelConfig) AppliesTo(output string) bool {
	return (p.Output == "") || (p.Output == output)
}

// PanelColor returns the colour that the panel should be drawn in.
func (p PanelConfig) PanelColor() (color.NRGBA, error) {
	if p.Color == "" {
		return ParseColor(DefaultPanelColor)
	}
	return ParseColor(p.Color)
}

// ParseColor parses a colour of the form #RRGGBB or #RRGGBBAA.
func ParseColor(str string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(str), "#")
	switch len(hex) {
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", str)
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", str, err)
	}
	return color.NRGBA{
		R: uint8(n >> 24),
		G: uint8(n >> 16),
		B: uint8(n >> 8),
		A: uint8(n),
	}, nil
}
