package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds extraction parameters and front-end state.
// Fields may be loaded from a YAML or JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `mapstructure:"debug" yaml:"debug" json:"debug"`
	// Pipeline
	Strategy   string  `mapstructure:"strategy" yaml:"strategy" json:"strategy"`
	Mode       string  `mapstructure:"mode" yaml:"mode" json:"mode"`
	Scale      float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
	Iterations int     `mapstructure:"iterations" yaml:"iterations" json:"iterations"`
	Margin     int     `mapstructure:"margin" yaml:"margin" json:"margin"`
	Pad        int     `mapstructure:"pad" yaml:"pad" json:"pad"`
	Border     int     `mapstructure:"border" yaml:"border" json:"border"`
	Threshold  float64 `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	Foreground string  `mapstructure:"foreground" yaml:"foreground" json:"foreground"`
	Background string  `mapstructure:"background" yaml:"background" json:"background"`

	// Last confirmed interactive selection, original-image pixels.
	SelectionX int `mapstructure:"selection_x" yaml:"selection_x" json:"selection_x"`
	SelectionY int `mapstructure:"selection_y" yaml:"selection_y" json:"selection_y"`
	SelectionW int `mapstructure:"selection_w" yaml:"selection_w" json:"selection_w"`
	SelectionH int `mapstructure:"selection_h" yaml:"selection_h" json:"selection_h"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:      false,
		Strategy:   "auto",
		Mode:       "flat",
		Scale:      0.5,
		Iterations: 5,
		Margin:     0,
		Pad:        10,
		Border:     8,
		Threshold:  25,
		Foreground: "#ffffff",
		Background: "#000000",
		SelectionX: 0,
		SelectionY: 0,
		SelectionW: 0,
		SelectionH: 0,
	}
}

// Validate clamps/normalizes values to safe ranges. Names are lowercased but
// not interpreted here.
func (c *Config) Validate() error {
	if math.IsNaN(c.Scale) || c.Scale <= 0 {
		c.Scale = 0.5
	}
	c.Scale = math.Min(1.0, math.Max(0.1, c.Scale))
	if c.Iterations < 1 {
		c.Iterations = 1
	}
	if c.Margin < 0 {
		c.Margin = 0
	}
	if c.Margin > 100 {
		c.Margin = 100
	}
	if c.Pad < 0 {
		c.Pad = 0
	}
	if c.Border < 1 {
		c.Border = 8
	}
	if math.IsNaN(c.Threshold) || c.Threshold < 0 {
		c.Threshold = 25
	}
	c.Strategy = strings.ToLower(strings.TrimSpace(c.Strategy))
	if c.Strategy == "" {
		c.Strategy = "auto"
	}
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = "flat"
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	return nil
}

// HasSelection reports whether a selection rectangle was persisted.
func (c *Config) HasSelection() bool { return c.SelectionW > 0 && c.SelectionH > 0 }

// SetSelection records a confirmed selection.
func (c *Config) SetSelection(x, y, w, h int) {
	c.SelectionX, c.SelectionY, c.SelectionW, c.SelectionH = x, y, w, h
}

// SaveSelection records a confirmed selection in the file at path and leaves
// every other key as the file had it. Overrides a front-end applied for a
// single run, such as its strategy, are not persisted.
func SaveSelection(path string, x, y, w, h int) error {
	c, err := Load(path)
	if err != nil {
		return err
	}
	c.SetSelection(x, y, w, h)
	return c.Save(path)
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"debug":     "debug",
	"strategy":  "strategy",
	"scale":     "scale",
	"iters":     "iterations",
	"margin":    "margin",
	"pad":       "pad",
	"border":    "border",
	"threshold": "threshold",
	"fg":        "foreground",
	"bg":        "background",
}

// Load attempts to read configuration from the given YAML or JSON file path. If
// the file does not exist it returns DefaultConfig(). On parse error it returns
// defaults with the error.
func Load(path string) (*Config, error) {
	return LoadWithFlags(path, nil)
}

// LoadWithFlags is Load with flags layered on top: a flag the user set wins
// over the file, the file wins over defaults. path may be empty.
func LoadWithFlags(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return DefaultConfig(), fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if configType(path) != "" {
			v.SetConfigType(configType(path))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) && !errors.Is(err, os.ErrNotExist) {
				return DefaultConfig(), fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("decode config: %w", err)
	}
	_ = cfg.Validate()
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("debug", d.Debug)
	v.SetDefault("strategy", d.Strategy)
	v.SetDefault("mode", d.Mode)
	v.SetDefault("scale", d.Scale)
	v.SetDefault("iterations", d.Iterations)
	v.SetDefault("margin", d.Margin)
	v.SetDefault("pad", d.Pad)
	v.SetDefault("border", d.Border)
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("foreground", d.Foreground)
	v.SetDefault("background", d.Background)
	v.SetDefault("selection_x", d.SelectionX)
	v.SetDefault("selection_y", d.SelectionY)
	v.SetDefault("selection_w", d.SelectionW)
	v.SetDefault("selection_h", d.SelectionH)
}

// configType derives the viper format from the extension; YAML unless .json.
func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml", "":
		return "yaml"
	default:
		return ""
	}
}

// Save writes the configuration to path, JSON for .json files and YAML
// otherwise. Missing parent directories are created.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	var (
		data []byte
		err  error
	)
	if configType(path) == "json" {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
