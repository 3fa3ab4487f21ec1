// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

// Package features turns raw case counts into SIRD/SIRDV compartments
// and per-period transition rates on the logit scale.
package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/d-setiawan/sird-forecasting-go/timeseries"
)

// Mode states how the raw case column is to be read.
type Mode string

const (
	// ModeCumulative reads C, D and V as running totals.
	ModeCumulative Mode = "cumulative"
	// ModeIncidence reads C as per-period new cases; D and V stay
	// cumulative.
	ModeIncidence Mode = "incidence"
)

var ErrInvalidMode = errors.New("Invalid mode")

// ParseMode resolves a mode string, defaulting empty input to
// cumulative.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeCumulative, nil
	case ModeCumulative, ModeIncidence:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q (expected cumulative or incidence)", ErrInvalidMode, s)
	}
}

// Rates are confined to (rateEps, 1-rateEps) so the logit transform
// stays finite.
const rateEps = 1e-10

// LogitPrefix marks the transformed rate columns.
const LogitPrefix = "logit_"

// Options configures feature engineering.
type Options struct {
	Mode            Mode
	RecoveryLag     float64
	WithVaccination bool
}

// RateColumns returns the transition-rate column names in model order.
func RateColumns(withVaccination bool) []string {
	if withVaccination {
		return []string{"alpha", "beta", "gamma", "delta"}
	}
	return []string{"alpha", "beta", "gamma"}
}

// LogitColumns returns the logit-transformed rate column names in
// model order.
func LogitColumns(withVaccination bool) []string {
	rates := RateColumns(withVaccination)
	out := make([]string, len(rates))
	for i, r := range rates {
		out[i] = LogitPrefix + r
	}
	return out
}

// Logit maps (0,1) onto the real line.
func Logit(x float64) float64 { return math.Log(x / (1 - x)) }

// Logistic is the inverse of Logit.
func Logistic(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// ValidateSchema checks that the raw frame carries the required count
// columns and a positive population.
func ValidateSchema(raw *timeseries.Frame, withVaccination bool) error {
	required := []string{"C", "D", "N"}
	if withVaccination {
		required = append(required, "V")
	}
	for _, name := range required {
		if !raw.Has(name) {
			return fmt.Errorf("missing required column %q", name)
		}
	}
	for i, v := range raw.Column("N") {
		if !(v > 0) {
			return fmt.Errorf("population column N must be positive (row %d)", i)
		}
	}
	return nil
}

// Engineer derives compartments S I R D (V) A, forward differences and
// transition rates alpha beta gamma (delta) from raw counts, clips the
// rates into (0,1) and appends their logit transforms. The output frame
// is forward-filled and residual NaN entries become 0.
func Engineer(raw *timeseries.Frame, opts Options) (*timeseries.Frame, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeCumulative
	}
	if mode != ModeCumulative && mode != ModeIncidence {
		return nil, fmt.Errorf("%w: %q (expected cumulative or incidence)", ErrInvalidMode, string(mode))
	}
	if err := ValidateSchema(raw, opts.WithVaccination); err != nil {
		return nil, err
	}

	n := raw.Len()
	popN := raw.ColumnCopy("N")
	death := raw.ColumnCopy("D")

	var cases, incident []float64
	if mode == ModeIncidence {
		incident = raw.ColumnCopy("C")
		cases = raw.CumSum("C")
	} else {
		cases = raw.ColumnCopy("C")
	}

	var vacc []float64
	if opts.WithVaccination {
		vacc = raw.ColumnCopy("V")
		for i := range vacc {
			if math.IsNaN(vacc[i]) {
				vacc[i] = 0
			}
		}
	}

	// Recovered cases are the cases confirmed RecoveryLag periods ago
	// that did not die. The lagged series needs the cumulative case
	// curve, so shift that rather than the raw column.
	scratch, err := timeseries.New(raw.Dates())
	if err != nil {
		return nil, err
	}
	scratch.AddColumn("C", cases)
	shifted := scratch.FractionalShift("C", opts.RecoveryLag)
	for i := range shifted {
		if math.IsNaN(shifted[i]) {
			shifted[i] = 0
		}
	}

	recovered := make([]float64, n)
	for i := range recovered {
		recovered[i] = shifted[i] - death[i]
	}
	if mode == ModeIncidence {
		for i := range recovered {
			if recovered[i] < 0 {
				recovered[i] = 0
			}
			if recovered[i] > cases[i] {
				recovered[i] = cases[i]
			}
		}
	}

	infected := make([]float64, n)
	susceptible := make([]float64, n)
	active := make([]float64, n)
	for i := 0; i < n; i++ {
		infected[i] = cases[i] - recovered[i] - death[i]
		susceptible[i] = popN[i] - cases[i]
		if opts.WithVaccination {
			susceptible[i] -= vacc[i]
		}
		active[i] = susceptible[i] + infected[i]
	}

	out, err := timeseries.New(raw.Dates())
	if err != nil {
		return nil, err
	}
	out.AddColumn("S", susceptible)
	out.AddColumn("I", infected)
	out.AddColumn("R", recovered)
	out.AddColumn("D", death)
	if opts.WithVaccination {
		out.AddColumn("V", vacc)
	}
	out.AddColumn("C", cases)
	out.AddColumn("A", active)
	out.AddColumn("N", popN)

	// Forward differences. In incidence mode dC is the incident count
	// itself, exactly, rather than a float difference of the cumsum.
	var dC []float64
	if mode == ModeIncidence {
		dC = make([]float64, n)
		for i := range dC {
			if i == n-1 {
				dC[i] = math.NaN()
			} else {
				dC[i] = incident[i+1]
			}
		}
	} else {
		dC = out.ForwardDiff("C")
	}
	dR := out.ForwardDiff("R")
	dD := out.ForwardDiff("D")
	out.AddColumn("dC", dC)
	out.AddColumn("dR", dR)
	out.AddColumn("dD", dD)

	var dV []float64
	if opts.WithVaccination {
		dV = out.ForwardDiff("V")
		for i := range dV {
			if dV[i] < 0 {
				dV[i] = 0
			}
		}
		out.AddColumn("dV", dV)
	}

	alpha := make([]float64, n)
	beta := make([]float64, n)
	gamma := make([]float64, n)
	for i := 0; i < n; i++ {
		alpha[i] = active[i] * dC[i] / (infected[i] * susceptible[i])
		beta[i] = dR[i] / infected[i]
		gamma[i] = dD[i] / infected[i]
	}
	out.AddColumn("alpha", alpha)
	out.AddColumn("beta", beta)
	out.AddColumn("gamma", gamma)
	if opts.WithVaccination {
		delta := make([]float64, n)
		for i := 0; i < n; i++ {
			delta[i] = dV[i] / susceptible[i]
		}
		out.AddColumn("delta", delta)
	}

	for _, rate := range RateColumns(opts.WithVaccination) {
		vals := out.Column(rate)
		for i, v := range vals {
			if math.IsInf(v, 0) {
				vals[i] = math.NaN()
			}
		}
		out.Clip(rate, rateEps, 1-rateEps)

		logit := make([]float64, n)
		for i, v := range vals {
			if math.IsNaN(v) {
				logit[i] = math.NaN()
			} else {
				logit[i] = Logit(v)
			}
		}
		out.AddColumn(LogitPrefix+rate, logit)
	}

	out.Ffill()
	out.FillNaN(0)
	return out, nil
}

// R0 returns the basic reproduction number alpha/(beta+gamma) per row
// of an engineered frame.
func R0(f *timeseries.Frame) ([]float64, error) {
	for _, name := range []string{"alpha", "beta", "gamma"} {
		if !f.Has(name) {
			return nil, fmt.Errorf("frame lacks rate column %q", name)
		}
	}
	alpha := f.Column("alpha")
	beta := f.Column("beta")
	gamma := f.Column("gamma")
	out := make([]float64, f.Len())
	for i := range out {
		out[i] = alpha[i] / (beta[i] + gamma[i])
	}
	return out, nil
}
