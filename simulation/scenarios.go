// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

// Package simulation walks the epidemic recurrence over every
// combination of forecast bounds and aggregates the scenario paths.
package simulation

import "strings"

// Level picks one band of a forecast interval.
type Level string

const (
	LevelLower Level = "lower"
	LevelPoint Level = "point"
	LevelUpper Level = "upper"
)

// Levels returns the bands in enumeration order.
func Levels() []Level {
	return []Level{LevelLower, LevelPoint, LevelUpper}
}

// Scenario assigns one band to each rate. Rates keep the order they
// were enumerated in, first rate outermost.
type Scenario struct {
	Rates  []string
	Levels []Level
}

// Key is the scenario name: the band of each rate joined with "|".
func (s Scenario) Key() string {
	parts := make([]string, len(s.Levels))
	for i, l := range s.Levels {
		parts[i] = string(l)
	}
	return strings.Join(parts, "|")
}

// Level returns the band assigned to a rate.
func (s Scenario) Level(rate string) (Level, bool) {
	for i, r := range s.Rates {
		if r == rate {
			return s.Levels[i], true
		}
	}
	return "", false
}

// Scenarios enumerates the full Cartesian product of bands over the
// given rates: 3^len(rates) scenarios, with the last rate varying
// fastest.
func Scenarios(rates []string) []Scenario {
	if len(rates) == 0 {
		return nil
	}
	levels := Levels()
	count := 1
	for range rates {
		count *= len(levels)
	}
	out := make([]Scenario, count)
	for i := 0; i < count; i++ {
		assign := make([]Level, len(rates))
		rest := i
		for j := len(rates) - 1; j >= 0; j-- {
			assign[j] = levels[rest%len(levels)]
			rest /= len(levels)
		}
		own := make([]string, len(rates))
		copy(own, rates)
		out[i] = Scenario{Rates: own, Levels: assign}
	}
	return out
}
