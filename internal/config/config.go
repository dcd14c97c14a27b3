package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tonhe/hometray/internal/engine"
	"github.com/tonhe/hometray/internal/rgb"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	APIURL     string `toml:"api_url"`
	Token      string `toml:"token,omitempty"`
	Credential string `toml:"credential,omitempty"`

	Entities             []string `toml:"entities"`
	Domains              []string `toml:"domains"`
	DomainEntitiesIgnore []string `toml:"domain_entities_ignore"`

	// UpdateInterval is in whole seconds.
	UpdateInterval int    `toml:"update_interval"`
	IconDir        string `toml:"icon_dir,omitempty"`
	IconSize       int    `toml:"icon_size"`
	LogLevel       string `toml:"log_level"`
	MetricsAddr    string `toml:"metrics_addr,omitempty"`
	Theme          string `toml:"theme"`

	Colors Colors `toml:"colors"`
}

// Colors are stored as integer arrays so a hand-edited file can be checked
// before anything reaches the renderer.
type Colors struct {
	UseRGBValue bool    `toml:"use_rgb_value"`
	On          []int   `toml:"on"`
	Off         []int   `toml:"off"`
	Unknown     []int   `toml:"unknown"`
	Palette     [][]int `toml:"palette"`
}

func DefaultConfig() *Config {
	return &Config{
		APIURL:         "http://localhost:8123/api",
		UpdateInterval: 5,
		LogLevel:       "info",
		Theme:          "solarized-dark",
		Colors: Colors{
			UseRGBValue: true,
			On:          engine.DefaultScheme.On.Ints(),
			Off:         engine.DefaultScheme.Off.Ints(),
			Unknown:     engine.DefaultScheme.Unknown.Ints(),
			Palette: [][]int{
				{255, 255, 255},
				{253, 213, 27},
				{255, 0, 0},
				{0, 255, 0},
				{0, 0, 255},
			},
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func SaveConfig(cfg *Config, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.UpdateInterval <= 0 {
		return fmt.Errorf("%w: update_interval must be positive, got %d", ErrInvalid, c.UpdateInterval)
	}
	if c.IconSize < 0 {
		return fmt.Errorf("%w: icon_size must not be negative, got %d", ErrInvalid, c.IconSize)
	}
	for name, v := range map[string][]int{
		"on":      c.Colors.On,
		"off":     c.Colors.Off,
		"unknown": c.Colors.Unknown,
	} {
		if _, err := rgb.FromInts(v); err != nil {
			return fmt.Errorf("%w: colors.%s: %v", ErrInvalid, name, err)
		}
	}
	for i, v := range c.Colors.Palette {
		if _, err := rgb.FromInts(v); err != nil {
			return fmt.Errorf("%w: colors.palette[%d]: %v", ErrInvalid, i, err)
		}
	}
	return nil
}

// Scheme returns the fallback colors. Call Validate first; invalid entries
// fall back to the defaults.
func (c *Config) Scheme() engine.ColorScheme {
	s := engine.DefaultScheme
	s.UseRGBValue = c.Colors.UseRGBValue
	if v, err := rgb.FromInts(c.Colors.On); err == nil {
		s.On = v
	}
	if v, err := rgb.FromInts(c.Colors.Off); err == nil {
		s.Off = v
	}
	if v, err := rgb.FromInts(c.Colors.Unknown); err == nil {
		s.Unknown = v
	}
	return s
}

// Palette returns the colors offered by the Change Color menu.
func (c *Config) Palette() []rgb.Color {
	out := make([]rgb.Color, 0, len(c.Colors.Palette))
	for _, v := range c.Colors.Palette {
		if col, err := rgb.FromInts(v); err == nil {
			out = append(out, col)
		}
	}
	return out
}

// Interval returns the refresh period.
func (c *Config) Interval() time.Duration {
	if c.UpdateInterval <= 0 {
		return engine.DefaultInterval
	}
	return time.Duration(c.UpdateInterval) * time.Second
}

// ResolveEntities merges the explicit entity list with the entities found
// under the configured domains. Domain entities come first, minus ignored
// ids and ids already listed explicitly; duplicates are dropped.
func (c *Config) ResolveEntities(domainEntities []string) []string {
	skip := make(map[string]bool, len(c.DomainEntitiesIgnore)+len(c.Entities))
	for _, id := range c.DomainEntitiesIgnore {
		skip[id] = true
	}
	for _, id := range c.Entities {
		skip[id] = true
	}

	out := make([]string, 0, len(domainEntities)+len(c.Entities))
	for _, id := range domainEntities {
		if skip[id] {
			continue
		}
		skip[id] = true
		out = append(out, id)
	}
	seen := make(map[string]bool, len(c.Entities))
	for _, id := range c.Entities {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
