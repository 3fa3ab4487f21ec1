// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package timeseries

import (
	"fmt"
	"math"
	"time"

	"github.com/d-setiawan/sird-forecasting-go/frequency"
)

// Shift returns the named column moved down by k rows. The first k
// entries are NaN. k must be non-negative.
func (f *Frame) Shift(name string, k int) []float64 {
	vals := f.cols[name]
	out := make([]float64, len(vals))
	for i := range out {
		if i < k {
			out[i] = math.NaN()
		} else {
			out[i] = vals[i-k]
		}
	}
	return out
}

// FractionalShift interpolates between the floor and ceiling integer
// shifts: (1-w)*shift(floor(lag)) + w*shift(ceil(lag)) with
// w = lag - floor(lag). For integral lag it equals Shift.
func (f *Frame) FractionalShift(name string, lag float64) []float64 {
	fl := int(math.Floor(lag))
	w := lag - math.Floor(lag)
	lower := f.Shift(name, fl)
	if w == 0 {
		return lower
	}
	upper := f.Shift(name, fl+1)
	out := make([]float64, len(lower))
	for i := range out {
		out[i] = (1-w)*lower[i] + w*upper[i]
	}
	return out
}

// ForwardDiff returns d[i] = x[i+1] - x[i], with NaN at the final row.
func (f *Frame) ForwardDiff(name string) []float64 {
	vals := f.cols[name]
	out := make([]float64, len(vals))
	for i := range out {
		if i == len(vals)-1 {
			out[i] = math.NaN()
		} else {
			out[i] = vals[i+1] - vals[i]
		}
	}
	return out
}

// CumSum returns the running sum of the named column. NaN entries
// contribute zero.
func (f *Frame) CumSum(name string) []float64 {
	vals := f.cols[name]
	out := make([]float64, len(vals))
	running := 0.0
	for i, v := range vals {
		if !math.IsNaN(v) {
			running += v
		}
		out[i] = running
	}
	return out
}

// RollingMean returns a frame of trailing window means over every
// column. Rows before the window fills, and windows containing NaN,
// yield NaN.
func (f *Frame) RollingMean(window int) *Frame {
	out, _ := New(f.dates)
	for _, name := range f.names {
		vals := f.cols[name]
		col := make([]float64, len(vals))
		for i := range col {
			if i < window-1 {
				col[i] = math.NaN()
				continue
			}
			sum := 0.0
			for j := i - window + 1; j <= i; j++ {
				sum += vals[j]
			}
			col[i] = sum / float64(window)
		}
		out.AddColumn(name, col)
	}
	return out
}

// Ffill carries the last seen value forward over NaN gaps, per column.
// Leading NaN entries are left in place.
func (f *Frame) Ffill() {
	for _, name := range f.names {
		vals := f.cols[name]
		last := math.NaN()
		for i, v := range vals {
			if math.IsNaN(v) {
				vals[i] = last
			} else {
				last = v
			}
		}
	}
}

// FillNaN replaces every remaining NaN with v, in place.
func (f *Frame) FillNaN(v float64) {
	for _, name := range f.names {
		vals := f.cols[name]
		for i := range vals {
			if math.IsNaN(vals[i]) {
				vals[i] = v
			}
		}
	}
}

// Clip bounds the named column to [lo, hi] in place. NaN entries are
// preserved.
func (f *Frame) Clip(name string, lo, hi float64) {
	vals := f.cols[name]
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			vals[i] = lo
		} else if v > hi {
			vals[i] = hi
		}
	}
}

// ReindexDaily expands the frame to one row per calendar day between
// start and stop inclusive, carrying values forward over the introduced
// dates. Days before the first observed date come out as NaN.
func (f *Frame) ReindexDaily(start, stop time.Time) (*Frame, error) {
	if stop.Before(start) {
		return nil, fmt.Errorf("stop %s precedes start %s", stop.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	var dates []time.Time
	for t := start; !t.After(stop); t = t.AddDate(0, 0, 1) {
		dates = append(dates, t)
	}

	out, err := New(dates)
	if err != nil {
		return nil, err
	}
	for _, name := range f.names {
		vals := f.cols[name]
		col := make([]float64, len(dates))
		src := 0
		for i, t := range dates {
			for src < len(f.dates) && !f.dates[src].After(t) {
				src++
			}
			if src == 0 {
				col[i] = math.NaN()
			} else {
				col[i] = vals[src-1]
			}
		}
		out.AddColumn(name, col)
	}
	return out, nil
}

// Resample groups rows into target-frequency periods and aggregates
// each column with "last" (last non-NaN in the period), "sum" (NaN
// skipped) or "mean" (NaN skipped). The output index holds period ends.
func (f *Frame) Resample(code frequency.Code, agg string) (*Frame, error) {
	switch agg {
	case "last", "sum", "mean":
	default:
		return nil, fmt.Errorf("unknown aggregate %q (expected last, sum or mean)", agg)
	}

	var binEnds []time.Time
	var binRows [][]int
	for i, t := range f.dates {
		end := code.PeriodEnd(t)
		if len(binEnds) > 0 && binEnds[len(binEnds)-1].Equal(end) {
			binRows[len(binRows)-1] = append(binRows[len(binRows)-1], i)
		} else {
			binEnds = append(binEnds, end)
			binRows = append(binRows, []int{i})
		}
	}

	out, err := New(binEnds)
	if err != nil {
		return nil, err
	}
	for _, name := range f.names {
		vals := f.cols[name]
		col := make([]float64, len(binEnds))
		for b, rows := range binRows {
			col[b] = aggregate(vals, rows, agg)
		}
		out.AddColumn(name, col)
	}
	return out, nil
}

func aggregate(vals []float64, rows []int, agg string) float64 {
	switch agg {
	case "last":
		for i := len(rows) - 1; i >= 0; i-- {
			if v := vals[rows[i]]; !math.IsNaN(v) {
				return v
			}
		}
		return math.NaN()
	case "sum":
		sum := 0.0
		for _, r := range rows {
			if v := vals[r]; !math.IsNaN(v) {
				sum += v
			}
		}
		return sum
	default: // mean
		sum, n := 0.0, 0
		for _, r := range rows {
			if v := vals[r]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			return math.NaN()
		}
		return sum / float64(n)
	}
}
