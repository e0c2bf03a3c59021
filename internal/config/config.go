// Package config loads the simulator run configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Horizon  float64 `yaml:"horizon"`
	BaseRate float64 `yaml:"base_rate"`

	// CatalogPath points at a JSON item table. Empty means the built-in
	// classic table.
	CatalogPath string `yaml:"catalog_path"`

	Strategies []string `yaml:"strategies"`

	Output Output `yaml:"output"`
	Serve  Serve  `yaml:"serve"`
}

type Output struct {
	ArchiveDir string `yaml:"archive_dir"`
	ResultsDB  string `yaml:"results_db"`
	ChartDir   string `yaml:"chart_dir"`
}

type Serve struct {
	Addr string `yaml:"addr"`
	// MaxStreamPoints caps how many history events a single run may push
	// over one websocket before the run is rejected as too chatty.
	MaxStreamPoints int `yaml:"max_stream_points"`
}

func Defaults() Config {
	return Config{
		Horizon:  10000,
		BaseRate: 1.0,
		Strategies: []string{
			"cheapest", "expensive", "ratio-min", "ratio-max",
		},
		Serve: Serve{
			Addr:            ":8080",
			MaxStreamPoints: 100000,
		},
	}
}

// Load reads path over the defaults, so absent keys keep their default
// values.
func Load(path string) (Config, error) {
	c := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Horizon < 0 {
		return fmt.Errorf("horizon must be >= 0, got %v", c.Horizon)
	}
	if c.BaseRate <= 0 {
		return fmt.Errorf("base_rate must be positive, got %v", c.BaseRate)
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy required")
	}
	if c.Serve.MaxStreamPoints <= 0 {
		return fmt.Errorf("serve.max_stream_points must be positive, got %d", c.Serve.MaxStreamPoints)
	}
	return nil
}
