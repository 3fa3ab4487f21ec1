// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package forecast

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/d-setiawan/sird-forecasting-go/features"
	"github.com/d-setiawan/sird-forecasting-go/frequency"
	"github.com/d-setiawan/sird-forecasting-go/timeseries"
)

// Options tunes the fit. The zero value asks for a constant term, AIC
// selection, 95% bounds and a daily calendar.
type Options struct {
	// MaxLag caps the lag order search. Zero leaves only the automatic
	// short-sample ceiling in force.
	MaxLag int

	// Criterion is the information criterion for lag selection: aic,
	// bic, hqic or fpe. Empty means aic.
	Criterion string

	// Deterministic selects the deterministic regression terms. The
	// zero value requests a constant. Columns that are constant over
	// the sample force the terms off whatever was requested.
	Deterministic Deterministic

	// Alpha is the tail mass outside the confidence bounds. Zero
	// means 0.05.
	Alpha float64

	// Frequency drives the forecast calendar. Empty means daily.
	Frequency frequency.Code
}

// Interval is a forecast with its confidence bounds. All three frames
// share dates and columns, and hold rates on the natural scale.
type Interval struct {
	Lower *timeseries.Frame
	Point *timeseries.Frame
	Upper *timeseries.Frame
}

// Rates lists the forecast rate columns.
func (iv *Interval) Rates() []string { return iv.Point.Columns() }

// Steps is the forecast horizon.
func (iv *Interval) Steps() int { return iv.Point.Len() }

// Dates lists the forecast dates.
func (iv *Interval) Dates() []time.Time { return iv.Point.Dates() }

// Forecaster fits a model to engineered rates and projects them
// forward with confidence bounds.
type Forecaster interface {
	Fit(data *timeseries.Frame, opts Options) error
	Forecast(steps int) (*Interval, error)
	Fitted() *VAR
}

// VARForecaster fits a VAR to every logit-transformed rate column of
// the training frame.
type VARForecaster struct {
	opts     Options
	fitted   *VAR
	sample   *mat.Dense
	rates    []string
	lastDate time.Time
	freq     frequency.Code
}

// NewVARForecaster returns an unfitted forecaster.
func NewVARForecaster() *VARForecaster {
	return &VARForecaster{}
}

// Fit selects a lag order by information criterion and estimates the
// VAR on the logit rate columns of data, in frame order.
func (f *VARForecaster) Fit(data *timeseries.Frame, opts Options) error {
	if data == nil {
		return errors.New("nil training frame")
	}
	var logitCols []string
	for _, name := range data.Columns() {
		if strings.HasPrefix(name, features.LogitPrefix) {
			logitCols = append(logitCols, name)
		}
	}
	if len(logitCols) == 0 {
		return errors.New("training frame has no logit rate columns")
	}
	n := data.Len()
	if n < 2 {
		return fmt.Errorf("training frame has %d rows, need at least 2", n)
	}

	K := len(logitCols)
	y := mat.NewDense(n, K, nil)
	var constCols []string
	for j, name := range logitCols {
		col := data.Column(name)
		lo, hi := col[0], col[0]
		for i, val := range col {
			y.Set(i, j, val)
			if val < lo {
				lo = val
			}
			if val > hi {
				hi = val
			}
		}
		if hi-lo <= 1e-12 {
			constCols = append(constCols, name)
		}
	}

	det := opts.Deterministic
	if det == DetNone {
		det = DetConst
	}
	if len(constCols) > 0 {
		det = DetNone
	}

	criterion := opts.Criterion
	if criterion == "" {
		criterion = "aic"
	}
	maxLag := AutoMaxLag(n, opts.MaxLag)
	lags, err := SelectLag(y, logitCols, maxLag, det, criterion)
	if err != nil {
		return err
	}
	v, err := Estimate(y, logitCols, ModelSpec{Lags: lags, Deterministic: det})
	if err != nil {
		return err
	}
	v.ConstantColumns = constCols

	rates := make([]string, K)
	for j, name := range logitCols {
		rates[j] = strings.TrimPrefix(name, features.LogitPrefix)
	}
	freq := opts.Frequency
	if freq == "" {
		freq = frequency.Daily
	}

	f.opts = opts
	f.fitted = v
	f.sample = y
	f.rates = rates
	f.lastDate = data.Date(n - 1)
	f.freq = freq
	return nil
}

// Forecast projects the fitted rates steps periods forward and maps
// the bounds back to the natural scale.
func (f *VARForecaster) Forecast(steps int) (*Interval, error) {
	if f.fitted == nil {
		return nil, errors.New("model must be fitted before forecasting")
	}
	if steps < 1 {
		return nil, fmt.Errorf("forecast steps must be positive, got %d", steps)
	}

	point, err := f.fitted.Forecast(f.sample, steps)
	if err != nil {
		return nil, err
	}
	se, err := f.fitted.forecastStderr(steps)
	if err != nil {
		return nil, err
	}
	alpha := f.opts.Alpha
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.05
	}
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - alpha/2)

	dates := make([]time.Time, steps)
	next := f.lastDate
	for i := range dates {
		next = f.freq.Next(next)
		dates[i] = next
	}

	K := len(f.rates)
	lower := make([][]float64, K)
	center := make([][]float64, K)
	upper := make([][]float64, K)
	for j := 0; j < K; j++ {
		lower[j] = make([]float64, steps)
		center[j] = make([]float64, steps)
		upper[j] = make([]float64, steps)
		for i := 0; i < steps; i++ {
			mid := point.At(i, j)
			spread := z * se.At(i, j)
			lower[j][i] = features.Logistic(mid - spread)
			center[j][i] = features.Logistic(mid)
			upper[j][i] = features.Logistic(mid + spread)
		}
	}

	lo, err := timeseries.FromColumns(dates, f.rates, lower)
	if err != nil {
		return nil, err
	}
	mid, err := timeseries.FromColumns(dates, f.rates, center)
	if err != nil {
		return nil, err
	}
	hi, err := timeseries.FromColumns(dates, f.rates, upper)
	if err != nil {
		return nil, err
	}
	return &Interval{Lower: lo, Point: mid, Upper: hi}, nil
}

// Fitted returns the estimated VAR, or nil before Fit.
func (f *VARForecaster) Fitted() *VAR {
	return f.fitted
}

// Sample returns the logit rate matrix the model was fitted on, or nil
// before Fit.
func (f *VARForecaster) Sample() *mat.Dense {
	return f.sample
}
