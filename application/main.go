// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/d-setiawan/sird-forecasting-go/cache"
	"github.com/d-setiawan/sird-forecasting-go/features"
	"github.com/d-setiawan/sird-forecasting-go/model"
	"github.com/d-setiawan/sird-forecasting-go/timeseries"
)

// This is the main function that runs the full epidemic forecasting pipeline from a raw count CSV.
// The function loads the yaml settings, builds the data container, fits the logit-VAR model on the
// engineered transition rates, forecasts the rates with confidence bounds, simulates the epidemic
// over every scenario combination and writes per-compartment CSVs, R0 CSVs and a markdown report
// into the configured output directory.

func main() {
	settingsPath := flag.String("settings", "settings.yaml", "path to the yaml settings file")
	flag.Parse()

	// 1. Load settings
	cfg, err := LoadSettings(*settingsPath)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Running epidemic forecast for:", cfg.Input)

	// 2. Load the raw counts
	raw, err := timeseries.ReadCSV(cfg.Input)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Loaded series with", raw.Len(), "rows and columns:", raw.Columns())

	// 3. Build the data container
	container, err := model.NewContainer(raw, model.ContainerOptions{
		Mode:      features.Mode(cfg.Mode),
		Frequency: cfg.Frequency,
		Window:    cfg.Window,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Resolved frequency:", container.Frequency().Code, "mode:", container.Mode())

	// 4. Open the result cache when configured
	var store cache.Store
	if cfg.CachePath != "" {
		s, err := cache.Open(cfg.CachePath)
		if err != nil {
			log.Fatal(err)
		}
		defer s.Close()
		store = s
		fmt.Println("Result cache:", cfg.CachePath)
	}

	// 5. Fit the model over the training window
	m, err := model.New(container, model.Config{
		Window:    cfg.Window,
		MaxLag:    cfg.MaxLag,
		Criterion: cfg.Criterion,
		Alpha:     cfg.Alpha,
		Workers:   cfg.Workers,
		Cache:     store,
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := m.Fit(cfg.Start, cfg.Stop); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Fitted VAR with lag order", m.FittedVAR().Model.Lags,
		"on", container.Data().Len(), "observations")

	// 6. Forecast the transition rates
	if err := m.Forecast(cfg.Steps); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Forecast horizon:", m.ForecastBox().Steps(), "periods")

	// 7. Simulate the epidemic across every scenario
	if err := m.Simulate(); err != nil {
		log.Fatal(err)
	}
	if err := m.GenerateResults(); err != nil {
		log.Fatal(err)
	}
	res := m.Results()
	fmt.Println("Simulated", res.ScenarioCount, "scenarios in", res.Elapsed)

	// 8. Write one CSV per compartment
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatal(err)
	}
	for _, comp := range res.Names {
		frame, err := res.Compartment(comp)
		if err != nil {
			log.Fatal(err)
		}
		path := filepath.Join(cfg.OutputDir, "forecast_"+comp+".csv")
		if err := frame.WriteCSV(path); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Println("Compartment forecasts written to", cfg.OutputDir)

	// 9. Write the reproduction number history and forecast
	r0h, err := m.R0History()
	if err != nil {
		log.Fatal(err)
	}
	if err := r0h.WriteCSV(filepath.Join(cfg.OutputDir, "r0_history.csv")); err != nil {
		log.Fatal(err)
	}
	fr0, err := m.ForecastR0()
	if err != nil {
		log.Fatal(err)
	}
	if err := fr0.WriteCSV(filepath.Join(cfg.OutputDir, "r0_forecast.csv")); err != nil {
		log.Fatal(err)
	}
	fmt.Println("R0 series written to", cfg.OutputDir)

	// 10. Summarize the run and export the markdown report
	rep := m.Report()
	fmt.Print(rep.Summary())
	reportPath := filepath.Join(cfg.OutputDir, "report.md")
	if err := rep.ExportMarkdown(reportPath); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Report written to", reportPath)
}
