package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// renderConfig mirrors the render/svg command flags so batch setups
// can keep them in a file. Flags set explicitly on the command line
// win over config values.
type renderConfig struct {
	// Scale is the device pixel density factor for raster output.
	Scale float64 `yaml:"scale"`

	// From and To bound the rendered frame range; To zero means the
	// document out point.
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`

	// Step is the frame increment between rendered frames.
	Step float64 `yaml:"step"`

	// Out is the output directory (render) or file (svg).
	Out string `yaml:"out"`
}

func defaultRenderConfig() renderConfig {
	return renderConfig{Scale: 1, Step: 1, Out: "."}
}

func loadRenderConfig(path string) (renderConfig, error) {
	cfg := defaultRenderConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if cfg.Step <= 0 {
		cfg.Step = 1
	}
	if cfg.Out == "" {
		cfg.Out = "."
	}
	return cfg, nil
}
