// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsMissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Input != "data/epidemic.csv" || s.OutputDir != "output" {
		t.Errorf("defaults = %+v", s)
	}
}

func TestLoadSettingsParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	doc := `input: counts.csv
output_dir: out
frequency: W
mode: incidence
start: "2020-01-01"
stop: "2020-06-01"
steps: 12
window: 5
max_lag: 4
criterion: bic
alpha: 0.1
workers: 3
cache_path: results.db
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Input != "counts.csv" || s.Frequency != "W" || s.Mode != "incidence" {
		t.Errorf("parsed = %+v", s)
	}
	if s.Steps != 12 || s.Window != 5 || s.MaxLag != 4 || s.Criterion != "bic" {
		t.Errorf("parsed = %+v", s)
	}
	if s.Alpha != 0.1 || s.Workers != 3 || s.CachePath != "results.db" {
		t.Errorf("parsed = %+v", s)
	}
}

func TestLoadSettingsPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("steps: 3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Steps != 3 || s.Input != "data/epidemic.csv" {
		t.Errorf("partial settings = %+v", s)
	}
}

func TestLoadSettingsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- bad"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Error("garbage yaml did not fail")
	}
}
