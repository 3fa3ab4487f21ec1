// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings drives one pipeline run. Zero values defer to the container
// and model defaults.
type Settings struct {
	Input     string  `yaml:"input"`
	OutputDir string  `yaml:"output_dir"`
	Frequency string  `yaml:"frequency"`
	Mode      string  `yaml:"mode"`
	Start     string  `yaml:"start"`
	Stop      string  `yaml:"stop"`
	Steps     int     `yaml:"steps"`
	Window    int     `yaml:"window"`
	MaxLag    int     `yaml:"max_lag"`
	Criterion string  `yaml:"criterion"`
	Alpha     float64 `yaml:"alpha"`
	Workers   int     `yaml:"workers"`
	CachePath string  `yaml:"cache_path"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		Input:     "data/epidemic.csv",
		OutputDir: "output",
	}
}

// LoadSettings reads a yaml settings file. A missing file returns the
// defaults so the binary runs without any configuration.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %v", path, err)
	}
	return s, nil
}
