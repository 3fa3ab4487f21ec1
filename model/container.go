// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

// Package model orchestrates the full pipeline: raw counts in, fitted
// forecaster, scenario simulation and aggregated results out.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/d-setiawan/sird-forecasting-go/features"
	"github.com/d-setiawan/sird-forecasting-go/frequency"
	"github.com/d-setiawan/sird-forecasting-go/timeseries"
)

const dateLayout = "2006-01-02"

// ContainerOptions configures how raw counts are read and prepared.
type ContainerOptions struct {
	// Mode selects how the C (and V) columns are read. Empty means
	// cumulative.
	Mode features.Mode

	// Frequency names the series frequency. Empty asks for detection
	// from the date index.
	Frequency string

	// Window is the trailing smoothing window in index periods. Zero
	// means 7; a window of 1 disables smoothing.
	Window int

	// RecoveryLag overrides the frequency default recovery shift. Zero
	// keeps the default.
	RecoveryLag float64

	// WithVaccination forces the SIRDV variant. A V column in the raw
	// frame enables it automatically.
	WithVaccination bool
}

// DataContainer owns the raw counts and derives the engineered frame
// the forecaster fits on. The raw frame is never modified; ReindexData
// always restricts from the original, so a container can be refit over
// different windows.
type DataContainer struct {
	raw     *timeseries.Frame
	working *timeseries.Frame
	data    *timeseries.Frame
	desc    frequency.Descriptor
	mode    features.Mode
	window  int
	lag     float64
	vacc    bool
}

// NewContainer validates the raw schema, resolves the frequency and
// checks the index is usable at it.
func NewContainer(raw *timeseries.Frame, opts ContainerOptions) (*DataContainer, error) {
	if raw == nil {
		return nil, errors.New("nil raw frame")
	}
	mode, err := features.ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	vacc := opts.WithVaccination || raw.Has("V")
	if err := features.ValidateSchema(raw, vacc); err != nil {
		return nil, err
	}

	name := opts.Frequency
	if name == "" {
		code, err := frequency.Detect(raw.Dates())
		if err != nil {
			return nil, err
		}
		name = string(code)
	}
	desc, err := frequency.Get(name)
	if err != nil {
		return nil, err
	}
	if err := desc.Validate(raw.Dates()); err != nil {
		return nil, err
	}

	window := opts.Window
	if window == 0 {
		window = 7
	}
	if window < 1 {
		return nil, fmt.Errorf("smoothing window must be positive, got %d", opts.Window)
	}
	lag := opts.RecoveryLag
	if lag == 0 {
		lag = desc.RecoveryLag
	}
	if lag < 0 {
		return nil, fmt.Errorf("recovery lag cannot be negative, got %v", opts.RecoveryLag)
	}

	return &DataContainer{
		raw:     raw,
		working: raw,
		desc:    desc,
		mode:    mode,
		window:  window,
		lag:     lag,
		vacc:    vacc,
	}, nil
}

// ReindexData restricts the working range to [start, stop], given as
// YYYY-MM-DD strings. Empty strings keep the corresponding end of the
// full range. Daily series are densified to one row per calendar day
// with forward fill; other frequencies are sliced without densifying.
func (c *DataContainer) ReindexData(start, stop string) error {
	first := c.raw.Date(0)
	last := c.raw.Date(c.raw.Len() - 1)

	from, err := parseBound(start, first)
	if err != nil {
		return err
	}
	to, err := parseBound(stop, last)
	if err != nil {
		return err
	}
	if from.After(to) {
		return errors.New("Start date is after stop date")
	}
	if from.Before(first) {
		return errors.New("Start date is before first date on confirmed cases")
	}
	if to.After(last) {
		return errors.New("Stop date is after last date of updated cases")
	}

	if c.desc.Code == frequency.Daily {
		re, err := c.raw.ReindexDaily(from, to)
		if err != nil {
			return err
		}
		c.working = re
	} else {
		c.working = c.raw.Between(from, to)
	}
	c.data = nil
	return nil
}

func parseBound(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Process smooths the working range and engineers the model features
// from it. The first window rows fall away with smoothing enabled.
func (c *DataContainer) Process() error {
	working := c.working
	if c.window > 1 {
		sm := working.RollingMean(c.window)
		if sm.Len() <= c.window {
			return fmt.Errorf("%d rows is too short for a %d period smoothing window", sm.Len(), c.window)
		}
		working = sm.Slice(c.window, sm.Len())
	}
	data, err := features.Engineer(working, features.Options{
		Mode:            c.mode,
		RecoveryLag:     c.lag,
		WithVaccination: c.vacc,
	})
	if err != nil {
		return err
	}
	c.data = data
	return nil
}

// Raw returns the original counts.
func (c *DataContainer) Raw() *timeseries.Frame { return c.raw }

// Data returns the engineered frame, or nil before Process.
func (c *DataContainer) Data() *timeseries.Frame { return c.data }

// Frequency returns the resolved frequency descriptor.
func (c *DataContainer) Frequency() frequency.Descriptor { return c.desc }

// Mode returns the count interpretation mode.
func (c *DataContainer) Mode() features.Mode { return c.mode }

// HasVaccination reports whether the SIRDV variant is active.
func (c *DataContainer) HasVaccination() bool { return c.vacc }
