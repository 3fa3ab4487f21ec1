// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package simulation

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/d-setiawan/sird-forecasting-go/forecast"
	"github.com/d-setiawan/sird-forecasting-go/timeseries"
)

// Config tunes a simulation run.
type Config struct {
	// Workers caps the scenario worker pool. Zero means one worker
	// per CPU, one runs the scenarios sequentially.
	Workers int
}

type state struct {
	S, I, R, D, V float64
}

// Engine walks the discrete epidemic recurrence over every forecast
// scenario. The starting point is the last row of the engineered
// history, the rates come from the forecast bands.
type Engine struct {
	box      *forecast.Interval
	rates    []string
	lastRate map[string]float64
	initial  state
	withVacc bool
	workers  int
}

// New prepares an engine. Vaccination dynamics switch on when the
// forecast carries a delta rate, which then requires a V column in the
// history.
func New(hist *timeseries.Frame, box *forecast.Interval, cfg Config) (*Engine, error) {
	if hist == nil || hist.Len() == 0 {
		return nil, errors.New("empty history frame")
	}
	if box == nil || box.Lower == nil || box.Point == nil || box.Upper == nil {
		return nil, errors.New("nil forecast interval")
	}
	if box.Steps() < 1 {
		return nil, errors.New("forecast interval has no steps")
	}

	rates := box.Rates()
	withVacc := false
	for _, r := range rates {
		if r == "delta" {
			withVacc = true
		}
	}
	required := []string{"alpha", "beta", "gamma"}
	if withVacc {
		required = append(required, "delta")
	}
	if len(rates) != len(required) {
		return nil, fmt.Errorf("forecast rates %v, want %v", rates, required)
	}
	for i, r := range required {
		if rates[i] != r {
			return nil, fmt.Errorf("forecast rates %v, want %v", rates, required)
		}
	}

	last := hist.Len() - 1
	var st state
	needed := []string{"S", "I", "R", "D"}
	if withVacc {
		needed = append(needed, "V")
	}
	for _, name := range needed {
		col := hist.Column(name)
		if col == nil {
			return nil, fmt.Errorf("history frame is missing column %q", name)
		}
		switch name {
		case "S":
			st.S = col[last]
		case "I":
			st.I = col[last]
		case "R":
			st.R = col[last]
		case "D":
			st.D = col[last]
		case "V":
			st.V = col[last]
		}
	}
	lastRate := make(map[string]float64, len(rates))
	for _, r := range rates {
		col := hist.Column(r)
		if col == nil {
			return nil, fmt.Errorf("history frame is missing rate column %q", r)
		}
		lastRate[r] = col[last]
	}

	return &Engine{
		box:      box,
		rates:    rates,
		lastRate: lastRate,
		initial:  st,
		withVacc: withVacc,
		workers:  cfg.Workers,
	}, nil
}

func (e *Engine) compartmentNames() []string {
	if e.withVacc {
		return []string{"S", "I", "R", "D", "V", "A", "C"}
	}
	return []string{"S", "I", "R", "D", "A", "C"}
}

// ratePath is the rate driving each output row: the last historical
// value first, then the forecast band shifted one row. The final
// forecast row never drives a transition.
func (e *Engine) ratePath(rate string, level Level) []float64 {
	frame := e.box.Point
	switch level {
	case LevelLower:
		frame = e.box.Lower
	case LevelUpper:
		frame = e.box.Upper
	}
	vals := make([]float64, e.box.Steps())
	vals[0] = e.lastRate[rate]
	copy(vals[1:], frame.Column(rate))
	return vals
}

type walkResult struct {
	cols    map[string][]float64
	clipped bool
}

// walk iterates the recurrence for one scenario. Compartments that
// would go negative are clipped at zero and the scenario is flagged.
func (e *Engine) walk(sc Scenario) walkResult {
	steps := e.box.Steps()
	paths := make(map[string][]float64, len(e.rates))
	for i, r := range e.rates {
		paths[r] = e.ratePath(r, sc.Levels[i])
	}

	cols := make(map[string][]float64)
	for _, name := range e.compartmentNames() {
		cols[name] = make([]float64, steps)
	}
	for _, r := range e.rates {
		cols[r] = paths[r]
	}

	st := e.initial
	clipped := false
	for i := 0; i < steps; i++ {
		infections := 0.0
		if active := st.S + st.I; active > 0 {
			infections = paths["alpha"][i] * st.S * st.I / active
		}
		recoveries := paths["beta"][i] * st.I
		deaths := paths["gamma"][i] * st.I
		vaccinations := 0.0
		if e.withVacc {
			vaccinations = paths["delta"][i] * st.S
		}

		st.S -= infections + vaccinations
		st.I += infections - recoveries - deaths
		st.R += recoveries
		st.D += deaths
		st.V += vaccinations
		if st.S < 0 {
			st.S = 0
			clipped = true
		}
		if st.I < 0 {
			st.I = 0
			clipped = true
		}
		if st.R < 0 {
			st.R = 0
			clipped = true
		}
		if st.D < 0 {
			st.D = 0
			clipped = true
		}
		if st.V < 0 {
			st.V = 0
			clipped = true
		}

		cols["S"][i] = st.S
		cols["I"][i] = st.I
		cols["R"][i] = st.R
		cols["D"][i] = st.D
		if e.withVacc {
			cols["V"][i] = st.V
		}
		cols["A"][i] = st.S + st.I
		cols["C"][i] = st.I + st.R + st.D
	}
	return walkResult{cols: cols, clipped: clipped}
}

// RunScenario walks a single scenario and returns its compartment and
// rate paths on the forecast dates.
func (e *Engine) RunScenario(sc Scenario) (*timeseries.Frame, error) {
	if len(sc.Rates) != len(e.rates) {
		return nil, fmt.Errorf("scenario covers %d rates, engine has %d", len(sc.Rates), len(e.rates))
	}
	for i, r := range e.rates {
		if sc.Rates[i] != r {
			return nil, fmt.Errorf("scenario rates %v, want %v", sc.Rates, e.rates)
		}
	}
	res := e.walk(sc)
	frame, err := timeseries.New(e.box.Dates())
	if err != nil {
		return nil, err
	}
	for _, name := range e.compartmentNames() {
		if err := frame.AddColumn(name, res.cols[name]); err != nil {
			return nil, err
		}
	}
	for _, r := range e.rates {
		if err := frame.AddColumn(r, res.cols[r]); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// Run walks every scenario through a worker pool and aggregates the
// paths per compartment. Each scenario writes only its own slot, so
// results are identical whatever the worker count.
func (e *Engine) Run() (*Results, error) {
	start := time.Now()
	scens := Scenarios(e.rates)
	keys := make([]string, len(scens))
	for i, sc := range scens {
		keys[i] = sc.Key()
	}

	walks := make([]walkResult, len(scens))
	workers := e.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(scens) {
		workers = len(scens)
	}
	jobs := make(chan int, len(scens))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				walks[idx] = e.walk(scens[idx])
			}
		}()
	}
	for i := range scens {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	comps := make(map[string]*timeseries.Frame, len(e.compartmentNames()))
	for _, name := range e.compartmentNames() {
		frame, err := timeseries.New(e.box.Dates())
		if err != nil {
			return nil, err
		}
		for i, key := range keys {
			if err := frame.AddColumn(key, walks[i].cols[name]); err != nil {
				return nil, err
			}
		}
		if err := appendStats(frame, keys); err != nil {
			return nil, err
		}
		comps[name] = frame
	}

	var clippedKeys []string
	for i, wr := range walks {
		if wr.clipped {
			clippedKeys = append(clippedKeys, keys[i])
		}
	}

	return &Results{
		RunID:            uuid.NewString(),
		CreatedAt:        time.Now().UTC(),
		Horizon:          e.box.Steps(),
		ScenarioCount:    len(scens),
		ScenarioKeys:     keys,
		ClippedScenarios: clippedKeys,
		Elapsed:          time.Since(start),
		Names:            e.compartmentNames(),
		Compartments:     comps,
	}, nil
}
