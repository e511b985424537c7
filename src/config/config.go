package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is where the entry point looks for an optional config file
	DefaultPath = "icons.yaml"

	// DefaultMargin is the transparent border kept on every side of an icon
	DefaultMargin = 10

	// MaxFaviconSize is the largest dimension an .ico entry can describe
	MaxFaviconSize = 256
)

// Config represents the icon generation plan
type Config struct {
	Source  string         `yaml:"source"`
	Margin  int            `yaml:"margin"`
	Targets []TargetConfig `yaml:"targets"`
	Favicon *TargetConfig  `yaml:"favicon"`
	Watch   bool           `yaml:"watch"`
}

// TargetConfig is a single square output
type TargetConfig struct {
	Size int    `yaml:"size"`
	Path string `yaml:"path"`
}

// Default returns the plan used when no config file exists:
// the two web app manifest icons rendered from icon-source.png
func Default() *Config {
	return &Config{
		Source: "icon-source.png",
		Margin: DefaultMargin,
		Targets: []TargetConfig{
			{Size: 192, Path: "public/app-icon-192.png"},
			{Size: 512, Path: "public/app-icon-512.png"},
		},
	}
}

// Load reads and parses the configuration file.
// Fields missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	// Targets listed in the file replace the defaults instead of appending
	cfg.Targets = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = Default().Targets
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path if it exists and falls back to Default otherwise
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	if c.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %d", c.Margin)
	}
	for i, t := range c.Targets {
		if err := c.validateTarget(t); err != nil {
			return fmt.Errorf("targets[%d]: %w", i, err)
		}
	}
	if c.Favicon != nil {
		if err := c.validateTarget(*c.Favicon); err != nil {
			return fmt.Errorf("favicon: %w", err)
		}
		if c.Favicon.Size > MaxFaviconSize {
			return fmt.Errorf("favicon: size %d exceeds %d", c.Favicon.Size, MaxFaviconSize)
		}
	}
	return nil
}

func (c *Config) validateTarget(t TargetConfig) error {
	if t.Path == "" {
		return fmt.Errorf("path is required")
	}
	if t.Size <= 2*c.Margin {
		return fmt.Errorf("size %d leaves no room inside a %dpx margin", t.Size, c.Margin)
	}
	return nil
}
