// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package simulation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/d-setiawan/sird-forecasting-go/timeseries"
)

// StatColumns are the aggregate columns appended after the scenario
// columns of every compartment frame.
var StatColumns = []string{"mean", "median", "gmean", "hmean"}

// Results holds every scenario path of a simulation run plus the
// per-compartment aggregates.
type Results struct {
	RunID            string
	CreatedAt        time.Time
	Horizon          int
	ScenarioCount    int
	ScenarioKeys     []string
	ClippedScenarios []string
	Elapsed          time.Duration

	// Names lists the compartments in recurrence order.
	Names []string

	// Compartments maps a compartment to a frame holding one column
	// per scenario key followed by the aggregate columns.
	Compartments map[string]*timeseries.Frame
}

// Dates returns the simulated dates.
func (r *Results) Dates() []time.Time {
	for _, name := range r.Names {
		if f := r.Compartments[name]; f != nil {
			return f.Dates()
		}
	}
	return nil
}

// Compartment returns the scenario frame for one compartment.
func (r *Results) Compartment(name string) (*timeseries.Frame, error) {
	f, ok := r.Compartments[name]
	if !ok {
		return nil, fmt.Errorf("no compartment %q in results", name)
	}
	return f, nil
}

// Central returns a copy of one aggregate column of a compartment.
func (r *Results) Central(name, method string) ([]float64, error) {
	f, err := r.Compartment(name)
	if err != nil {
		return nil, err
	}
	known := false
	for _, m := range StatColumns {
		if m == method {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown aggregation method %q", method)
	}
	col := f.Column(method)
	if col == nil {
		return nil, fmt.Errorf("compartment %q has no %q column", name, method)
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

// appendStats appends the aggregate columns, computed row-wise over
// the scenario columns only. Geometric and harmonic means are NaN on
// rows where any scenario value is not strictly positive.
func appendStats(frame *timeseries.Frame, keys []string) error {
	cols := make([][]float64, len(keys))
	for j, key := range keys {
		c := frame.Column(key)
		if c == nil {
			return fmt.Errorf("missing scenario column %q", key)
		}
		cols[j] = c
	}

	n := frame.Len()
	mean := make([]float64, n)
	median := make([]float64, n)
	gmean := make([]float64, n)
	hmean := make([]float64, n)
	vals := make([]float64, len(keys))
	sorted := make([]float64, len(keys))
	for i := 0; i < n; i++ {
		for j := range cols {
			vals[j] = cols[j][i]
		}
		mean[i] = stat.Mean(vals, nil)
		copy(sorted, vals)
		sort.Float64s(sorted)
		median[i] = stat.Quantile(0.5, stat.Empirical, sorted, nil)

		positive := true
		for _, v := range vals {
			if v <= 0 {
				positive = false
				break
			}
		}
		if positive {
			gmean[i] = stat.GeometricMean(vals, nil)
			hmean[i] = stat.HarmonicMean(vals, nil)
		} else {
			gmean[i] = math.NaN()
			hmean[i] = math.NaN()
		}
	}

	stats := [][]float64{mean, median, gmean, hmean}
	for i, name := range StatColumns {
		if err := frame.AddColumn(name, stats[i]); err != nil {
			return err
		}
	}
	return nil
}
