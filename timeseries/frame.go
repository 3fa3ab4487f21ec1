// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

// Package timeseries provides the date-indexed frame the pipeline is
// built on: ordered named float64 columns over a strictly increasing
// date index, with missing values represented as NaN.
package timeseries

import (
	"fmt"
	"sort"
	"time"
)

// Frame holds equally sized named columns over a shared date index.
type Frame struct {
	dates []time.Time
	names []string
	cols  map[string][]float64
}

// New builds an empty frame over the given index. Dates must be
// strictly increasing.
func New(dates []time.Time) (*Frame, error) {
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("dates must be strictly increasing (violation at row %d)", i)
		}
	}
	own := make([]time.Time, len(dates))
	copy(own, dates)
	return &Frame{dates: own, cols: make(map[string][]float64)}, nil
}

// FromColumns builds a frame from parallel name and column slices.
func FromColumns(dates []time.Time, names []string, columns [][]float64) (*Frame, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("got %d names for %d columns", len(names), len(columns))
	}
	f, err := New(dates)
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		if err := f.AddColumn(name, columns[i]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// AddColumn appends a named column. The values slice is copied.
func (f *Frame) AddColumn(name string, values []float64) error {
	if _, ok := f.cols[name]; ok {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(values) != len(f.dates) {
		return fmt.Errorf("column %q has %d values for %d dates", name, len(values), len(f.dates))
	}
	own := make([]float64, len(values))
	copy(own, values)
	f.names = append(f.names, name)
	f.cols[name] = own
	return nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.dates) }

// Dates returns the underlying index. Callers must not modify it.
func (f *Frame) Dates() []time.Time { return f.dates }

// Date returns the index entry at row i.
func (f *Frame) Date(i int) time.Time { return f.dates[i] }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Has reports whether the named column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the underlying values of the named column, or nil if
// absent. Callers that want to mutate should use ColumnCopy.
func (f *Frame) Column(name string) []float64 { return f.cols[name] }

// ColumnCopy returns a copy of the named column, or nil if absent.
func (f *Frame) ColumnCopy(name string) []float64 {
	vals, ok := f.cols[name]
	if !ok {
		return nil
	}
	out := make([]float64, len(vals))
	copy(out, vals)
	return out
}

// At returns the value at row i of the named column.
func (f *Frame) At(i int, name string) float64 { return f.cols[name][i] }

// Set stores v at row i of the named column, which must exist.
func (f *Frame) Set(i int, name string, v float64) { f.cols[name][i] = v }

// Drop removes the named columns; unknown names are ignored.
func (f *Frame) Drop(names ...string) {
	for _, name := range names {
		if _, ok := f.cols[name]; !ok {
			continue
		}
		delete(f.cols, name)
		for i, n := range f.names {
			if n == name {
				f.names = append(f.names[:i], f.names[i+1:]...)
				break
			}
		}
	}
}

// Select returns a new frame holding copies of the named columns.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out, _ := New(f.dates)
	for _, name := range names {
		vals, ok := f.cols[name]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		if err := out.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Rename changes a column's name in place.
func (f *Frame) Rename(old, new string) error {
	vals, ok := f.cols[old]
	if !ok {
		return fmt.Errorf("unknown column %q", old)
	}
	if _, ok := f.cols[new]; ok {
		return fmt.Errorf("duplicate column %q", new)
	}
	delete(f.cols, old)
	f.cols[new] = vals
	for i, n := range f.names {
		if n == old {
			f.names[i] = new
			break
		}
	}
	return nil
}

// Copy returns a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	out, _ := New(f.dates)
	for _, name := range f.names {
		out.AddColumn(name, f.cols[name])
	}
	return out
}

// Slice returns a copy of rows [i, j).
func (f *Frame) Slice(i, j int) *Frame {
	if i < 0 {
		i = 0
	}
	if j > len(f.dates) {
		j = len(f.dates)
	}
	if i > j {
		i = j
	}
	out, _ := New(f.dates[i:j])
	for _, name := range f.names {
		out.AddColumn(name, f.cols[name][i:j])
	}
	return out
}

// Between returns a copy of the rows with start <= date <= stop.
func (f *Frame) Between(start, stop time.Time) *Frame {
	lo := sort.Search(len(f.dates), func(i int) bool { return !f.dates[i].Before(start) })
	hi := sort.Search(len(f.dates), func(i int) bool { return f.dates[i].After(stop) })
	return f.Slice(lo, hi)
}

// Head returns the first n rows.
func (f *Frame) Head(n int) *Frame { return f.Slice(0, n) }

// Tail returns the last n rows.
func (f *Frame) Tail(n int) *Frame { return f.Slice(len(f.dates)-n, len(f.dates)) }
