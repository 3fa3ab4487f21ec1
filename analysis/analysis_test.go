// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package analysis

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/d-setiawan/sird-forecasting-go/forecast"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestMetricsHandComputed(t *testing.T) {
	actual := []float64{10, 20, 0, 40}
	predicted := []float64{12, 18, 5, 50}
	m, err := Metrics(actual, predicted)
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}

	if !almostEqual(m["mae"], 4.75, 1e-12) {
		t.Errorf("mae = %v, want 4.75", m["mae"])
	}
	if !almostEqual(m["mse"], 33.25, 1e-9) {
		t.Errorf("mse = %v, want 33.25", m["mse"])
	}
	if !almostEqual(m["rmse"], math.Sqrt(33.25), 1e-9) {
		t.Errorf("rmse = %v, want %v", m["rmse"], math.Sqrt(33.25))
	}
	// Zero actual is skipped for mape only.
	wantMape := (2.0/10 + 2.0/20 + 10.0/40) / 3
	if !almostEqual(m["mape"], wantMape, 1e-12) {
		t.Errorf("mape = %v, want %v", m["mape"], wantMape)
	}
	wantSmape := (2.0/11 + 2.0/19 + 2 + 10.0/45) / 4
	if !almostEqual(m["smape"], wantSmape, 1e-12) {
		t.Errorf("smape = %v, want %v", m["smape"], wantSmape)
	}
}

func TestMetricsSkipsNaNRows(t *testing.T) {
	actual := []float64{1, math.NaN(), 3, 4}
	predicted := []float64{1.5, 2, math.NaN(), 5}
	m, err := Metrics(actual, predicted)
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if !almostEqual(m["mae"], 0.75, 1e-12) {
		t.Errorf("mae = %v, want 0.75 over the two comparable rows", m["mae"])
	}
}

func TestMetricsZeroSeries(t *testing.T) {
	m, err := Metrics([]float64{0, 0}, []float64{0, 0})
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if m["mae"] != 0 {
		t.Errorf("mae = %v, want 0", m["mae"])
	}
	if !math.IsNaN(m["mape"]) {
		t.Errorf("mape = %v, want NaN with no nonzero actuals", m["mape"])
	}
	if m["smape"] != 0 {
		t.Errorf("smape = %v, want 0 when both sides are zero", m["smape"])
	}
}

func TestMetricsErrors(t *testing.T) {
	if _, err := Metrics([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("Metrics with mismatched lengths did not return an error")
	}
	if _, err := Metrics([]float64{math.NaN()}, []float64{1}); err == nil {
		t.Error("Metrics with no comparable rows did not return an error")
	}
}

// coupledSample generates two series where the first strongly drives
// the second, and fits a lag-1 model to them.
func coupledSample(t *testing.T) (*forecast.VAR, *mat.Dense) {
	t.Helper()
	n := 100
	r := rand.New(rand.NewSource(23))
	y := mat.NewDense(n, 2, nil)
	y.Set(0, 0, 0.1)
	y.Set(0, 1, 0)
	for k := 1; k < n; k++ {
		x := y.At(k-1, 0)
		z := y.At(k-1, 1)
		y.Set(k, 0, 0.5*x+0.3*(r.Float64()-0.5))
		y.Set(k, 1, 0.9*x+0.1*z+0.1*(r.Float64()-0.5))
	}
	v, err := forecast.Estimate(y, []string{"logit_alpha", "logit_beta"},
		forecast.ModelSpec{Lags: 1, Deterministic: forecast.DetConst})
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	return v, y
}

func TestRateInfluenceDetectsCoupling(t *testing.T) {
	v, y := coupledSample(t)

	res, err := RateInfluence(v, y, "alpha", "beta")
	if err != nil {
		t.Fatalf("RateInfluence returned error: %v", err)
	}
	if res.Cause != "alpha" || res.Effect != "beta" {
		t.Errorf("labels = %s -> %s, want alpha -> beta", res.Cause, res.Effect)
	}
	if res.Lags != 1 {
		t.Errorf("Lags = %d, want 1", res.Lags)
	}
	if !res.Significant {
		t.Errorf("alpha -> beta not flagged significant (F = %v, p = %v)", res.FStatistic, res.PValue)
	}
	if res.FStatistic <= 0 {
		t.Errorf("FStatistic = %v, want positive for a strong coupling", res.FStatistic)
	}

	// The reverse direction must at least produce a valid p-value.
	rev, err := RateInfluence(v, y, "beta", "alpha")
	if err != nil {
		t.Fatalf("RateInfluence reverse returned error: %v", err)
	}
	if rev.PValue < 0 || rev.PValue > 1 {
		t.Errorf("reverse p-value = %v, outside [0, 1]", rev.PValue)
	}
	if rev.Cause != "beta" || rev.Effect != "alpha" {
		t.Errorf("reverse labels = %s -> %s, want beta -> alpha", rev.Cause, rev.Effect)
	}
}

func TestRateInfluenceValidation(t *testing.T) {
	v, y := coupledSample(t)

	if _, err := RateInfluence(v, nil, "alpha", "beta"); err == nil {
		t.Error("nil sample did not return an error")
	}
	if _, err := RateInfluence(nil, y, "alpha", "beta"); err == nil {
		t.Error("nil model did not return an error")
	}
	if _, err := RateInfluence(v, y, "alpha", "alpha"); err == nil {
		t.Error("same cause and effect did not return an error")
	}
	if _, err := RateInfluence(v, y, "alpha", "delta"); err == nil {
		t.Error("unknown rate did not return an error")
	}
}

func TestInfluenceMatrix(t *testing.T) {
	v, y := coupledSample(t)
	matrix, err := InfluenceMatrix(v, y)
	if err != nil {
		t.Fatalf("InfluenceMatrix returned error: %v", err)
	}
	if len(matrix) != 2 {
		t.Fatalf("matrix has %d rows, want 2", len(matrix))
	}
	for i := 0; i < 2; i++ {
		if matrix[i][i] != nil {
			t.Errorf("diagonal [%d][%d] not nil", i, i)
		}
	}
	if matrix[0][1] == nil || matrix[0][1].Cause != "alpha" || matrix[0][1].Effect != "beta" {
		t.Errorf("matrix[0][1] = %+v, want alpha -> beta", matrix[0][1])
	}
	if matrix[1][0] == nil || matrix[1][0].Cause != "beta" {
		t.Errorf("matrix[1][0] = %+v, want beta -> alpha", matrix[1][0])
	}
}

func TestReportSummaryAndMarkdown(t *testing.T) {
	v, y := coupledSample(t)
	influence, err := InfluenceMatrix(v, y)
	if err != nil {
		t.Fatalf("InfluenceMatrix returned error: %v", err)
	}

	rep := &Report{
		Frequency:     "daily",
		Mode:          "cumulative",
		Observations:  100,
		Rates:         []string{"alpha", "beta", "gamma"},
		LagOrder:      2,
		Criterion:     "aic",
		Deterministic: "const",
		Horizon:       14,
		ScenarioCount: 27,
		Clipped:       []string{"upper|upper|upper"},
		RunID:         "run-1",
		Influence:     influence,
		Accuracy: map[string]map[string]map[string]float64{
			"C": {"mean": {"mae": 1.5, "mse": 4, "rmse": 2, "mape": 0.1, "smape": 0.09}},
		},
	}

	sum := rep.Summary()
	for _, want := range []string{
		"Epidemic Forecast Report",
		"Lag order:      2 (aic)",
		"Scenarios:      27 (1 clipped)",
		"alpha, beta, gamma",
	} {
		if !strings.Contains(sum, want) {
			t.Errorf("Summary missing %q:\n%s", want, sum)
		}
	}

	path := filepath.Join(t.TempDir(), "report.md")
	if err := rep.ExportMarkdown(path); err != nil {
		t.Fatalf("ExportMarkdown returned error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	text := string(raw)
	for _, want := range []string{
		"# Epidemic forecast report",
		"## Rate influence",
		"| alpha | beta |",
		"## Forecast accuracy",
		"| C | mean |",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
