// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

// Package analysis evaluates forecast accuracy, screens rate
// influence within the fitted model and renders run reports.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MetricNames lists the accuracy measures Metrics reports.
var MetricNames = []string{"mae", "mse", "rmse", "mape", "smape"}

// Metrics compares predictions against observed values. Rows where
// either side is NaN are skipped. mape skips zero actuals and is NaN
// when none remain; smape counts a row as zero error when both sides
// are zero.
func Metrics(actual, predicted []float64) (map[string]float64, error) {
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("length mismatch: %d actual vs %d predicted", len(actual), len(predicted))
	}
	a := make([]float64, 0, len(actual))
	p := make([]float64, 0, len(predicted))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		a = append(a, actual[i])
		p = append(p, predicted[i])
	}
	if len(a) == 0 {
		return nil, errors.New("no comparable observations")
	}

	n := float64(len(a))
	mae := floats.Distance(a, p, 1) / n
	l2 := floats.Distance(a, p, 2)
	mse := l2 * l2 / n
	rmse := math.Sqrt(mse)

	mapeSum, mapeN := 0.0, 0
	smapeSum := 0.0
	for i := range a {
		diff := math.Abs(p[i] - a[i])
		if a[i] != 0 {
			mapeSum += diff / math.Abs(a[i])
			mapeN++
		}
		if denom := (math.Abs(a[i]) + math.Abs(p[i])) / 2; denom > 0 {
			smapeSum += diff / denom
		}
	}
	mape := math.NaN()
	if mapeN > 0 {
		mape = mapeSum / float64(mapeN)
	}

	return map[string]float64{
		"mae":   mae,
		"mse":   mse,
		"rmse":  rmse,
		"mape":  mape,
		"smape": smapeSum / n,
	}, nil
}
