// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

// Package frequency maps observation frequencies (daily, business-day,
// weekly, monthly, annual) to the constants the modeling pipeline needs,
// and infers the frequency of a date index from its spacing.
package frequency

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Code identifies a supported observation frequency.
type Code string

const (
	Daily    Code = "D"
	Business Code = "B"
	Weekly   Code = "W"
	MonthEnd Code = "ME"
	YearEnd  Code = "YE"
)

// Descriptor carries the frequency-dependent constants used by the rest
// of the pipeline.
type Descriptor struct {
	Code Code

	// RecoveryLag is the recovery shift measured in index periods.
	// Fractional values interpolate between neighboring shifts.
	RecoveryLag float64

	// DefaultMaxLag is the ceiling for VAR lag-order selection.
	DefaultMaxLag int

	// MinObservations is the minimum number of rows needed to fit.
	MinObservations int

	PeriodsPerYear float64
}

var ErrUnsupported = errors.New("Unsupported frequency")

var registry = map[Code]Descriptor{
	Daily:    {Code: Daily, RecoveryLag: 14, DefaultMaxLag: 14, MinObservations: 30, PeriodsPerYear: 365.25},
	Business: {Code: Business, RecoveryLag: 10, DefaultMaxLag: 10, MinObservations: 60, PeriodsPerYear: 252},
	Weekly:   {Code: Weekly, RecoveryLag: 2, DefaultMaxLag: 8, MinObservations: 26, PeriodsPerYear: 365.0 / 7.0},
	MonthEnd: {Code: MonthEnd, RecoveryLag: 14.0 / 30.0, DefaultMaxLag: 6, MinObservations: 24, PeriodsPerYear: 12},
	YearEnd:  {Code: YearEnd, RecoveryLag: 14.0 / 365.0, DefaultMaxLag: 3, MinObservations: 10, PeriodsPerYear: 1},
}

// aliases maps legacy codes and human-readable names onto canonical codes.
var aliases = map[string]Code{
	"d": Daily, "daily": Daily,
	"b": Business, "bday": Business, "businessday": Business, "business day": Business,
	"w": Weekly, "weekly": Weekly,
	"me": MonthEnd, "m": MonthEnd, "monthly": MonthEnd,
	"ye": YearEnd, "y": YearEnd, "a": YearEnd, "annual": YearEnd, "yearly": YearEnd,
}

// Get resolves a frequency name to its descriptor. Canonical codes,
// legacy aliases ("M", "Y", "A") and friendly names ("daily", "business
// day", ...) are accepted, case-insensitively.
func Get(name string) (Descriptor, error) {
	code, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
	return registry[code], nil
}

// Validate checks that dates form a usable index for this frequency:
// strictly increasing, no duplicates, and long enough to fit on.
func (d Descriptor) Validate(dates []time.Time) error {
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return fmt.Errorf("dates must be strictly increasing (violation at row %d)", i)
		}
	}
	if len(dates) < d.MinObservations {
		return fmt.Errorf("%s frequency requires at least %d observations, got %d", d.Code, d.MinObservations, len(dates))
	}
	return nil
}

// Next returns the index date that follows t at this frequency.
// Month-end and year-end frequencies snap to the period end.
func (c Code) Next(t time.Time) time.Time {
	switch c {
	case Business:
		t = t.AddDate(0, 0, 1)
		for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			t = t.AddDate(0, 0, 1)
		}
		return t
	case Weekly:
		return t.AddDate(0, 0, 7)
	case MonthEnd:
		return time.Date(t.Year(), t.Month()+2, 1, 0, 0, 0, 0, t.Location()).AddDate(0, 0, -1)
	case YearEnd:
		return time.Date(t.Year()+1, time.December, 31, 0, 0, 0, 0, t.Location())
	default:
		return t.AddDate(0, 0, 1)
	}
}

// PeriodEnd returns the end of the period containing t, used as the bin
// key when resampling to this frequency. Weeks end on Sunday.
func (c Code) PeriodEnd(t time.Time) time.Time {
	switch c {
	case Weekly:
		offset := (7 - int(t.Weekday())) % 7
		return t.AddDate(0, 0, offset)
	case MonthEnd:
		return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location()).AddDate(0, 0, -1)
	case YearEnd:
		return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location())
	default:
		return t
	}
}
