// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package simulation

import (
	"math"
	"testing"
	"time"

	"github.com/d-setiawan/sird-forecasting-go/forecast"
	"github.com/d-setiawan/sird-forecasting-go/timeseries"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func day(n int) time.Time {
	return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// constFrame builds a frame of constant columns starting at day start.
func constFrame(t *testing.T, start, rows int, names []string, vals map[string]float64) *timeseries.Frame {
	t.Helper()
	dates := make([]time.Time, rows)
	for i := range dates {
		dates[i] = day(start + i)
	}
	frame, err := timeseries.New(dates)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	for _, name := range names {
		col := make([]float64, rows)
		for i := range col {
			col[i] = vals[name]
		}
		if err := frame.AddColumn(name, col); err != nil {
			t.Fatalf("AddColumn returned error: %v", err)
		}
	}
	return frame
}

func rateBox(t *testing.T, start, steps int, rates []string, lower, point, upper map[string]float64) *forecast.Interval {
	t.Helper()
	return &forecast.Interval{
		Lower: constFrame(t, start, steps, rates, lower),
		Point: constFrame(t, start, steps, rates, point),
		Upper: constFrame(t, start, steps, rates, upper),
	}
}

func TestScenariosEnumeration(t *testing.T) {
	scens := Scenarios([]string{"alpha", "beta", "gamma"})
	if len(scens) != 27 {
		t.Fatalf("len(scenarios) = %d, want 27", len(scens))
	}
	if got := scens[0].Key(); got != "lower|lower|lower" {
		t.Errorf("first key = %q, want lower|lower|lower", got)
	}
	if got := scens[1].Key(); got != "lower|lower|point" {
		t.Errorf("second key = %q, want lower|lower|point (last rate varies fastest)", got)
	}
	if got := scens[9].Key(); got != "point|lower|lower" {
		t.Errorf("key 9 = %q, want point|lower|lower (first rate varies slowest)", got)
	}
	if got := scens[26].Key(); got != "upper|upper|upper" {
		t.Errorf("last key = %q, want upper|upper|upper", got)
	}

	seen := make(map[string]bool, len(scens))
	for _, sc := range scens {
		if seen[sc.Key()] {
			t.Errorf("duplicate scenario key %q", sc.Key())
		}
		seen[sc.Key()] = true
	}

	if lvl, ok := scens[9].Level("alpha"); !ok || lvl != LevelPoint {
		t.Errorf("scenario 9 alpha level = %v %v, want point", lvl, ok)
	}
	if _, ok := scens[9].Level("delta"); ok {
		t.Error("Level on a missing rate reported ok")
	}

	if got := len(Scenarios([]string{"alpha", "beta", "gamma", "delta"})); got != 81 {
		t.Errorf("len(scenarios) with delta = %d, want 81", got)
	}
	if Scenarios(nil) != nil {
		t.Error("Scenarios(nil) did not return nil")
	}
}

func TestRunScenarioHandComputed(t *testing.T) {
	rates := []string{"alpha", "beta", "gamma"}
	hist := constFrame(t, 9, 1, []string{"S", "I", "R", "D", "alpha", "beta", "gamma"},
		map[string]float64{"S": 900, "I": 100, "R": 0, "D": 0, "alpha": 0, "beta": 0.1, "gamma": 0.05})
	band := map[string]float64{"alpha": 0, "beta": 0.2, "gamma": 0.1}
	box := rateBox(t, 10, 3, rates, band, band, band)

	eng, err := New(hist, box, Config{Workers: 1})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	frame, err := eng.RunScenario(Scenarios(rates)[0])
	if err != nil {
		t.Fatalf("RunScenario returned error: %v", err)
	}

	// Row 0 runs on the last historical rates, later rows on the
	// forecast shifted one row.
	wantBeta := []float64{0.1, 0.2, 0.2}
	for i, want := range wantBeta {
		if got := frame.Column("beta")[i]; !almostEqual(got, want, 1e-12) {
			t.Errorf("beta[%d] = %v, want %v", i, got, want)
		}
	}

	wantI := []float64{85, 59.5, 41.65}
	wantR := []float64{10, 27, 38.9}
	wantD := []float64{5, 13.5, 19.45}
	for i := 0; i < 3; i++ {
		if got := frame.Column("I")[i]; !almostEqual(got, wantI[i], 1e-9) {
			t.Errorf("I[%d] = %v, want %v", i, got, wantI[i])
		}
		if got := frame.Column("R")[i]; !almostEqual(got, wantR[i], 1e-9) {
			t.Errorf("R[%d] = %v, want %v", i, got, wantR[i])
		}
		if got := frame.Column("D")[i]; !almostEqual(got, wantD[i], 1e-9) {
			t.Errorf("D[%d] = %v, want %v", i, got, wantD[i])
		}
		if got := frame.Column("S")[i]; !almostEqual(got, 900, 1e-9) {
			t.Errorf("S[%d] = %v, want 900 with no infections", i, got)
		}
		if got := frame.Column("C")[i]; !almostEqual(got, 100, 1e-9) {
			t.Errorf("C[%d] = %v, want 100", i, got)
		}
		if got := frame.Column("A")[i]; !almostEqual(got, 900+wantI[i], 1e-9) {
			t.Errorf("A[%d] = %v, want %v", i, got, 900+wantI[i])
		}
		if !frame.Date(i).Equal(day(10 + i)) {
			t.Errorf("date[%d] = %v, want %v", i, frame.Date(i), day(10+i))
		}
	}
}

func sirdSetup(t *testing.T, steps int) *Engine {
	t.Helper()
	rates := []string{"alpha", "beta", "gamma"}
	hist := constFrame(t, 9, 1, []string{"S", "I", "R", "D", "alpha", "beta", "gamma"},
		map[string]float64{"S": 900, "I": 100, "R": 0, "D": 0, "alpha": 0.1, "beta": 0.05, "gamma": 0.02})
	box := rateBox(t, 10, steps, rates,
		map[string]float64{"alpha": 0.05, "beta": 0.03, "gamma": 0.01},
		map[string]float64{"alpha": 0.1, "beta": 0.05, "gamma": 0.02},
		map[string]float64{"alpha": 0.15, "beta": 0.07, "gamma": 0.03})
	eng, err := New(hist, box, Config{Workers: 1})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return eng
}

func TestRunCountsAndAggregates(t *testing.T) {
	steps := 5
	eng := sirdSetup(t, steps)
	res, err := eng.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if res.ScenarioCount != 27 {
		t.Errorf("ScenarioCount = %d, want 27", res.ScenarioCount)
	}
	if len(res.ScenarioKeys) != 27 {
		t.Errorf("len(ScenarioKeys) = %d, want 27", len(res.ScenarioKeys))
	}
	if res.Horizon != steps {
		t.Errorf("Horizon = %d, want %d", res.Horizon, steps)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
	if len(res.ClippedScenarios) != 0 {
		t.Errorf("ClippedScenarios = %v, want none for mild rates", res.ClippedScenarios)
	}
	wantNames := []string{"S", "I", "R", "D", "A", "C"}
	if len(res.Names) != len(wantNames) {
		t.Fatalf("Names = %v, want %v", res.Names, wantNames)
	}
	for i, name := range wantNames {
		if res.Names[i] != name {
			t.Errorf("Names[%d] = %q, want %q", i, res.Names[i], name)
		}
	}

	for _, name := range wantNames {
		frame, err := res.Compartment(name)
		if err != nil {
			t.Fatalf("Compartment(%q) returned error: %v", name, err)
		}
		if got := len(frame.Columns()); got != 31 {
			t.Errorf("%s columns = %d, want 27 scenarios + 4 aggregates", name, got)
		}
		if frame.Len() != steps {
			t.Errorf("%s rows = %d, want %d", name, frame.Len(), steps)
		}
	}

	// Mass moves between compartments but never leaks.
	for _, key := range res.ScenarioKeys {
		s := res.Compartments["S"].Column(key)
		i := res.Compartments["I"].Column(key)
		r := res.Compartments["R"].Column(key)
		d := res.Compartments["D"].Column(key)
		for row := 0; row < steps; row++ {
			total := s[row] + i[row] + r[row] + d[row]
			if !almostEqual(total, 1000, 1e-6) {
				t.Errorf("scenario %s row %d total = %v, want 1000", key, row, total)
			}
		}
	}

	// Over positive values the classical mean ordering holds.
	iFrame := res.Compartments["I"]
	last := steps - 1
	mean := iFrame.Column("mean")[last]
	gmean := iFrame.Column("gmean")[last]
	hmean := iFrame.Column("hmean")[last]
	median := iFrame.Column("median")[last]
	if !(mean >= gmean && gmean >= hmean) {
		t.Errorf("mean %v, gmean %v, hmean %v out of order", mean, gmean, hmean)
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, key := range res.ScenarioKeys {
		v := iFrame.Column(key)[last]
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if median < lo || median > hi {
		t.Errorf("median %v outside scenario range [%v, %v]", median, lo, hi)
	}

	central, err := res.Central("I", "median")
	if err != nil {
		t.Fatalf("Central returned error: %v", err)
	}
	if len(central) != steps {
		t.Errorf("Central length = %d, want %d", len(central), steps)
	}
	if !almostEqual(central[last], median, 1e-12) {
		t.Errorf("Central median = %v, want %v", central[last], median)
	}
}

func TestRunVaccinationScenarios(t *testing.T) {
	rates := []string{"alpha", "beta", "gamma", "delta"}
	hist := constFrame(t, 9, 1, []string{"S", "I", "R", "D", "V", "alpha", "beta", "gamma", "delta"},
		map[string]float64{"S": 850, "I": 100, "R": 0, "D": 0, "V": 50,
			"alpha": 0.1, "beta": 0.05, "gamma": 0.02, "delta": 0.01})
	box := rateBox(t, 10, 4, rates,
		map[string]float64{"alpha": 0.05, "beta": 0.03, "gamma": 0.01, "delta": 0.005},
		map[string]float64{"alpha": 0.1, "beta": 0.05, "gamma": 0.02, "delta": 0.01},
		map[string]float64{"alpha": 0.15, "beta": 0.07, "gamma": 0.03, "delta": 0.015})
	eng, err := New(hist, box, Config{Workers: 1})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	res, err := eng.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if res.ScenarioCount != 81 {
		t.Errorf("ScenarioCount = %d, want 81", res.ScenarioCount)
	}
	if _, err := res.Compartment("V"); err != nil {
		t.Errorf("Compartment(V) returned error: %v", err)
	}
	for _, key := range res.ScenarioKeys {
		s := res.Compartments["S"].Column(key)
		i := res.Compartments["I"].Column(key)
		r := res.Compartments["R"].Column(key)
		d := res.Compartments["D"].Column(key)
		v := res.Compartments["V"].Column(key)
		for row := 0; row < res.Horizon; row++ {
			total := s[row] + i[row] + r[row] + d[row] + v[row]
			if !almostEqual(total, 1000, 1e-6) {
				t.Errorf("scenario %s row %d total = %v, want 1000", key, row, total)
			}
		}
		for row := 0; row < res.Horizon-1; row++ {
			if v[row+1] < v[row] {
				t.Errorf("scenario %s V decreased from %v to %v", key, v[row], v[row+1])
			}
		}
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	steps := 6
	seq, err := sirdSetup(t, steps).Run()
	if err != nil {
		t.Fatalf("sequential Run returned error: %v", err)
	}
	eng := sirdSetup(t, steps)
	eng.workers = 8
	par, err := eng.Run()
	if err != nil {
		t.Fatalf("parallel Run returned error: %v", err)
	}

	for _, name := range seq.Names {
		sf := seq.Compartments[name]
		pf := par.Compartments[name]
		for _, col := range sf.Columns() {
			s := sf.Column(col)
			p := pf.Column(col)
			for i := range s {
				sv, pv := s[i], p[i]
				if sv != pv && !(math.IsNaN(sv) && math.IsNaN(pv)) {
					t.Fatalf("%s %s row %d: sequential %v, parallel %v", name, col, i, sv, pv)
				}
			}
		}
	}
}

func TestRunClipsNegativeCompartments(t *testing.T) {
	rates := []string{"alpha", "beta", "gamma"}
	hist := constFrame(t, 9, 1, []string{"S", "I", "R", "D", "alpha", "beta", "gamma"},
		map[string]float64{"S": 900, "I": 100, "R": 0, "D": 0, "alpha": 0.01, "beta": 0.9, "gamma": 0.8})
	band := map[string]float64{"alpha": 0.01, "beta": 0.9, "gamma": 0.8}
	box := rateBox(t, 10, 3, rates, band, band, band)
	eng, err := New(hist, box, Config{Workers: 1})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	res, err := eng.Run()
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(res.ClippedScenarios) != 27 {
		t.Errorf("ClippedScenarios = %d scenarios, want all 27", len(res.ClippedScenarios))
	}
	for _, key := range res.ScenarioKeys {
		for row, v := range res.Compartments["I"].Column(key) {
			if v < 0 {
				t.Errorf("scenario %s I[%d] = %v, want clipped at 0", key, row, v)
			}
		}
	}
}

func TestAppendStats(t *testing.T) {
	keys := []string{"a", "b", "c"}
	dates := []time.Time{day(0), day(1)}
	frame, err := timeseries.FromColumns(dates, keys, [][]float64{{1, 0}, {2, 2}, {3, 3}})
	if err != nil {
		t.Fatalf("FromColumns returned error: %v", err)
	}
	if err := appendStats(frame, keys); err != nil {
		t.Fatalf("appendStats returned error: %v", err)
	}

	if got := frame.Column("mean")[0]; !almostEqual(got, 2, 1e-12) {
		t.Errorf("mean[0] = %v, want 2", got)
	}
	if got := frame.Column("median")[0]; !almostEqual(got, 2, 1e-12) {
		t.Errorf("median[0] = %v, want 2", got)
	}
	if got := frame.Column("gmean")[0]; !almostEqual(got, math.Cbrt(6), 1e-12) {
		t.Errorf("gmean[0] = %v, want %v", got, math.Cbrt(6))
	}
	if got := frame.Column("hmean")[0]; !almostEqual(got, 18.0/11.0, 1e-12) {
		t.Errorf("hmean[0] = %v, want %v", got, 18.0/11.0)
	}

	// A zero in the row poisons the multiplicative means only.
	if got := frame.Column("mean")[1]; !almostEqual(got, 5.0/3.0, 1e-12) {
		t.Errorf("mean[1] = %v, want 5/3", got)
	}
	if got := frame.Column("gmean")[1]; !math.IsNaN(got) {
		t.Errorf("gmean[1] = %v, want NaN", got)
	}
	if got := frame.Column("hmean")[1]; !math.IsNaN(got) {
		t.Errorf("hmean[1] = %v, want NaN", got)
	}
}

func TestNewValidation(t *testing.T) {
	rates := []string{"alpha", "beta", "gamma"}
	band := map[string]float64{"alpha": 0.1, "beta": 0.05, "gamma": 0.02}
	box := rateBox(t, 10, 3, rates, band, band, band)

	if _, err := New(nil, box, Config{}); err == nil {
		t.Error("New with nil history did not return an error")
	}

	hist := constFrame(t, 9, 1, []string{"S", "I", "R", "D", "alpha", "beta", "gamma"},
		map[string]float64{"S": 900, "I": 100, "R": 0, "D": 0, "alpha": 0.1, "beta": 0.05, "gamma": 0.02})
	if _, err := New(hist, nil, Config{}); err == nil {
		t.Error("New with nil interval did not return an error")
	}

	short := constFrame(t, 9, 1, []string{"S", "I", "D", "alpha", "beta", "gamma"},
		map[string]float64{"S": 900, "I": 100, "D": 0, "alpha": 0.1, "beta": 0.05, "gamma": 0.02})
	if _, err := New(short, box, Config{}); err == nil {
		t.Error("New without an R column did not return an error")
	}

	noRate := constFrame(t, 9, 1, []string{"S", "I", "R", "D", "alpha", "beta"},
		map[string]float64{"S": 900, "I": 100, "R": 0, "D": 0, "alpha": 0.1, "beta": 0.05})
	if _, err := New(noRate, box, Config{}); err == nil {
		t.Error("New without a gamma history column did not return an error")
	}

	badBox := rateBox(t, 10, 3, []string{"alpha", "beta"},
		map[string]float64{"alpha": 0.1, "beta": 0.05},
		map[string]float64{"alpha": 0.1, "beta": 0.05},
		map[string]float64{"alpha": 0.1, "beta": 0.05})
	if _, err := New(hist, badBox, Config{}); err == nil {
		t.Error("New with a gamma-less interval did not return an error")
	}

	eng, err := New(hist, box, Config{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := eng.RunScenario(Scenario{Rates: []string{"alpha"}, Levels: []Level{LevelPoint}}); err == nil {
		t.Error("RunScenario with mismatched rates did not return an error")
	}
}
