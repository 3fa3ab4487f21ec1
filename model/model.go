// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/d-setiawan/sird-forecasting-go/analysis"
	"github.com/d-setiawan/sird-forecasting-go/cache"
	"github.com/d-setiawan/sird-forecasting-go/features"
	"github.com/d-setiawan/sird-forecasting-go/forecast"
	"github.com/d-setiawan/sird-forecasting-go/frequency"
	"github.com/d-setiawan/sird-forecasting-go/simulation"
	"github.com/d-setiawan/sird-forecasting-go/timeseries"
)

// Config tunes the model stages.
type Config struct {
	// Window pads the default forecast horizon past the lag order.
	// Zero means 7.
	Window int

	// MaxLag caps lag-order selection. Zero falls back to the
	// frequency default.
	MaxLag int

	// Criterion is the information criterion for lag selection. Empty
	// means aic.
	Criterion string

	// Alpha is the tail mass outside the forecast bounds. Zero means
	// 0.05.
	Alpha float64

	// Workers sizes the simulation pool. Zero means NumCPU.
	Workers int

	// Cache persists simulation results between runs. Nil disables
	// caching.
	Cache cache.Store
}

// Model runs the pipeline in stages: Fit, Forecast, Simulate,
// GenerateResults. Each stage requires the previous ones; refitting
// resets everything downstream.
type Model struct {
	container  *DataContainer
	cfg        Config
	forecaster *forecast.VARForecaster
	box        *forecast.Interval
	engine     *simulation.Engine
	results    *simulation.Results
}

// New wraps a data container. Zero config fields pick up defaults.
func New(container *DataContainer, cfg Config) (*Model, error) {
	if container == nil {
		return nil, errors.New("nil data container")
	}
	if cfg.Window == 0 {
		cfg.Window = 7
	}
	if cfg.Window < 1 {
		return nil, fmt.Errorf("horizon window must be positive, got %d", cfg.Window)
	}
	if cfg.Criterion == "" {
		cfg.Criterion = "aic"
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = 0.05
	}
	if cfg.Alpha < 0 || cfg.Alpha >= 1 {
		return nil, fmt.Errorf("alpha must lie in (0, 1), got %v", cfg.Alpha)
	}
	return &Model{container: container, cfg: cfg}, nil
}

// Fit restricts the container to [start, stop] (empty strings keep the
// full range), processes it, and fits the VAR forecaster on the logit
// rate columns of the engineered frame.
func (m *Model) Fit(start, stop string) error {
	if err := m.container.ReindexData(start, stop); err != nil {
		return err
	}
	if err := m.container.Process(); err != nil {
		return err
	}

	maxLag := m.cfg.MaxLag
	if maxLag == 0 {
		maxLag = m.container.Frequency().DefaultMaxLag
	}
	f := forecast.NewVARForecaster()
	err := f.Fit(m.container.Data(), forecast.Options{
		MaxLag:    maxLag,
		Criterion: m.cfg.Criterion,
		Alpha:     m.cfg.Alpha,
		Frequency: m.container.Frequency().Code,
	})
	if err != nil {
		return err
	}

	m.forecaster = f
	m.box = nil
	m.engine = nil
	m.results = nil
	return nil
}

// Forecast projects the fitted rates steps periods past the sample.
// Steps of zero or below asks for the default horizon, the selected
// lag order plus the configured window.
func (m *Model) Forecast(steps int) error {
	if m.forecaster == nil {
		return errors.New("model must be fitted before forecasting")
	}
	if steps <= 0 {
		steps = m.forecaster.Fitted().Model.Lags + m.cfg.Window
	}
	box, err := m.forecaster.Forecast(steps)
	if err != nil {
		return err
	}
	m.box = box
	m.engine = nil
	m.results = nil
	return nil
}

// Simulate prepares the scenario engine over the forecast box.
func (m *Model) Simulate() error {
	if m.box == nil {
		return errors.New("Forecast must be generated before simulating epidemic.")
	}
	eng, err := simulation.New(m.container.Data(), m.box, simulation.Config{Workers: m.cfg.Workers})
	if err != nil {
		return err
	}
	m.engine = eng
	m.results = nil
	return nil
}

// GenerateResults runs every scenario and stores the per-compartment
// frames. A configured cache is consulted first; cache failures
// degrade to a fresh run, never to a fatal error.
func (m *Model) GenerateResults() error {
	if m.box == nil || m.engine == nil {
		return errors.New("Forecast and simulation must be generated before generating results.")
	}
	if m.results != nil {
		return nil
	}

	key := m.cacheKey()
	if m.cfg.Cache != nil {
		if cached, ok, err := m.cfg.Cache.Load(key); err == nil && ok {
			m.results = cached
			return nil
		}
	}

	res, err := m.engine.Run()
	if err != nil {
		return err
	}
	m.results = res
	if m.cfg.Cache != nil {
		// Save failures leave the cache cold but never fail the run.
		_ = m.cfg.Cache.Save(key, res)
	}
	return nil
}

// Results returns the simulation results, or nil before
// GenerateResults.
func (m *Model) Results() *simulation.Results { return m.results }

// ForecastBox returns the rate forecast interval, or nil before
// Forecast.
func (m *Model) ForecastBox() *forecast.Interval { return m.box }

// FittedVAR returns the estimated VAR, or nil before Fit.
func (m *Model) FittedVAR() *forecast.VAR {
	if m.forecaster == nil {
		return nil
	}
	return m.forecaster.Fitted()
}

// R0History returns alpha/(beta+gamma) over the processed history as a
// one column frame.
func (m *Model) R0History() (*timeseries.Frame, error) {
	data := m.container.Data()
	if data == nil {
		return nil, errors.New("container must be processed before computing R0")
	}
	r0, err := features.R0(data)
	if err != nil {
		return nil, err
	}
	return timeseries.FromColumns(data.Dates(), []string{"r0"}, [][]float64{r0})
}

// forecastR0Stats are the summary columns appended after the scenario
// columns of the R0 forecast frame.
var forecastR0Stats = []string{"mean", "median", "std", "min", "max"}

// ForecastR0 returns the reproduction number over the forecast dates
// for every alpha, beta, gamma band combination. Vaccination does not
// enter R0, so the frame always holds 27 scenario columns, followed by
// row summaries computed over those columns only.
func (m *Model) ForecastR0() (*timeseries.Frame, error) {
	if m.box == nil {
		return nil, errors.New("forecast must be generated before computing R0 scenarios")
	}
	for _, rate := range []string{"alpha", "beta", "gamma"} {
		if !m.box.Point.Has(rate) {
			return nil, fmt.Errorf("forecast box lacks rate column %q", rate)
		}
	}

	band := func(l simulation.Level) *timeseries.Frame {
		switch l {
		case simulation.LevelLower:
			return m.box.Lower
		case simulation.LevelUpper:
			return m.box.Upper
		default:
			return m.box.Point
		}
	}

	scenarios := simulation.Scenarios([]string{"alpha", "beta", "gamma"})
	steps := m.box.Steps()
	names := make([]string, len(scenarios))
	cols := make([][]float64, len(scenarios))
	for s, sc := range scenarios {
		la, _ := sc.Level("alpha")
		lb, _ := sc.Level("beta")
		lg, _ := sc.Level("gamma")
		alpha := band(la).Column("alpha")
		beta := band(lb).Column("beta")
		gamma := band(lg).Column("gamma")
		col := make([]float64, steps)
		for i := range col {
			col[i] = alpha[i] / (beta[i] + gamma[i])
		}
		names[s] = sc.Key()
		cols[s] = col
	}

	frame, err := timeseries.FromColumns(m.box.Dates(), names, cols)
	if err != nil {
		return nil, err
	}

	n := len(scenarios)
	extra := make([][]float64, len(forecastR0Stats))
	for k := range extra {
		extra[k] = make([]float64, steps)
	}
	row := make([]float64, n)
	sorted := make([]float64, n)
	for i := 0; i < steps; i++ {
		for s := 0; s < n; s++ {
			row[s] = cols[s][i]
		}
		copy(sorted, row)
		sort.Float64s(sorted)
		extra[0][i] = stat.Mean(row, nil)
		extra[1][i] = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		extra[2][i] = stat.StdDev(row, nil)
		extra[3][i] = floats.Min(sorted)
		extra[4][i] = floats.Max(sorted)
	}
	for k, name := range forecastR0Stats {
		if err := frame.AddColumn(name, extra[k]); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// EvaluateForecast scores the central simulated paths against observed
// counts over the overlapping dates. Compartments defaults to C, D and
// I. The result nests compartment, central method, then metric.
func (m *Model) EvaluateForecast(testing *timeseries.Frame, compartments ...string) (map[string]map[string]map[string]float64, error) {
	if m.results == nil {
		return nil, errors.New("results must be generated before evaluating the forecast")
	}
	if testing == nil {
		return nil, errors.New("nil testing frame")
	}
	if len(compartments) == 0 {
		compartments = []string{"C", "D", "I"}
	}

	resDates := m.results.Dates()
	testDates := testing.Dates()
	var resRows, testRows []int
	j := 0
	for i, d := range resDates {
		for j < len(testDates) && testDates[j].Before(d) {
			j++
		}
		if j < len(testDates) && testDates[j].Equal(d) {
			resRows = append(resRows, i)
			testRows = append(testRows, j)
		}
	}
	if len(resRows) == 0 {
		return nil, errors.New("no overlapping dates between results and testing frame")
	}

	out := make(map[string]map[string]map[string]float64, len(compartments))
	for _, comp := range compartments {
		if !testing.Has(comp) {
			return nil, fmt.Errorf("testing frame is missing column %q", comp)
		}
		actualCol := testing.Column(comp)
		actual := make([]float64, len(testRows))
		for k, r := range testRows {
			actual[k] = actualCol[r]
		}

		byMethod := make(map[string]map[string]float64, len(simulation.StatColumns))
		for _, method := range simulation.StatColumns {
			central, err := m.results.Central(comp, method)
			if err != nil {
				return nil, err
			}
			predicted := make([]float64, len(resRows))
			defined := false
			for k, r := range resRows {
				predicted[k] = central[r]
				if !math.IsNaN(predicted[k]) {
					defined = true
				}
			}
			// A method undefined over the whole window (gmean of a
			// zero path) scores NaN rather than failing the others.
			if !defined {
				nan := make(map[string]float64, len(analysis.MetricNames))
				for _, name := range analysis.MetricNames {
					nan[name] = math.NaN()
				}
				byMethod[method] = nan
				continue
			}
			metrics, err := analysis.Metrics(actual, predicted)
			if err != nil {
				return nil, err
			}
			byMethod[method] = metrics
		}
		out[comp] = byMethod
	}
	return out, nil
}

// AggregateForecast resamples one compartment's aggregate columns to a
// coarser frequency with last, sum or mean.
func (m *Model) AggregateForecast(compartment, target, agg string) (*timeseries.Frame, error) {
	if m.results == nil {
		return nil, errors.New("results must be generated before aggregating the forecast")
	}
	desc, err := frequency.Get(target)
	if err != nil {
		return nil, err
	}
	src := m.container.Frequency()
	if desc.PeriodsPerYear >= src.PeriodsPerYear {
		return nil, fmt.Errorf("target frequency %s is not coarser than %s", desc.Code, src.Code)
	}
	frame, err := m.results.Compartment(compartment)
	if err != nil {
		return nil, err
	}
	central, err := frame.Select(simulation.StatColumns...)
	if err != nil {
		return nil, err
	}
	return central.Resample(desc.Code, agg)
}

// Report assembles the run report from whatever stages have completed.
// Influence testing is best effort; a failure leaves the section out.
func (m *Model) Report() *analysis.Report {
	r := &analysis.Report{
		Frequency: string(m.container.Frequency().Code),
		Mode:      string(m.container.Mode()),
		Criterion: m.cfg.Criterion,
		Rates:     features.RateColumns(m.container.HasVaccination()),
	}
	if data := m.container.Data(); data != nil {
		r.Observations = data.Len()
	}
	if v := m.FittedVAR(); v != nil {
		r.LagOrder = v.Model.Lags
		r.Deterministic = v.Model.Deterministic.String()
		for _, name := range v.ConstantColumns {
			r.ConstantRates = append(r.ConstantRates, strings.TrimPrefix(name, features.LogitPrefix))
		}
		if infl, err := analysis.InfluenceMatrix(v, m.forecaster.Sample()); err == nil {
			r.Influence = infl
		}
	}
	if m.box != nil {
		r.Horizon = m.box.Steps()
	}
	if m.results != nil {
		r.ScenarioCount = m.results.ScenarioCount
		r.Clipped = m.results.ClippedScenarios
		r.RunID = m.results.RunID
		r.Elapsed = m.results.Elapsed
	}
	return r
}

// cacheKey fingerprints the training window, the engineered rates and
// the forecast box. Any change to those inputs yields a new key.
func (m *Model) cacheKey() string {
	h := sha256.New()
	data := m.container.Data()
	io.WriteString(h, data.Date(0).Format(time.RFC3339))
	io.WriteString(h, data.Date(data.Len()-1).Format(time.RFC3339))
	binary.Write(h, binary.LittleEndian, int64(m.box.Steps()))

	for _, d := range data.Dates() {
		binary.Write(h, binary.LittleEndian, d.Unix())
	}
	for _, name := range features.RateColumns(m.container.HasVaccination()) {
		io.WriteString(h, name)
		binary.Write(h, binary.LittleEndian, data.Column(name))
	}
	for _, frame := range []*timeseries.Frame{m.box.Lower, m.box.Point, m.box.Upper} {
		for _, name := range frame.Columns() {
			io.WriteString(h, name)
			binary.Write(h, binary.LittleEndian, frame.Column(name))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
