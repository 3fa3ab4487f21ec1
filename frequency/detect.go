// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package frequency

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrIrregular = errors.New("irregular frequency")

// Detect infers the observation frequency from the median spacing of a
// date index. Weekday-only indexes with weekend jumps read as
// business-day data. Spacings that fall between the supported bands
// (for example every 10 days) are reported as irregular.
func Detect(dates []time.Time) (Code, error) {
	if len(dates) < 2 {
		return "", fmt.Errorf("frequency detection requires at least 2 data points, got %d", len(dates))
	}

	gaps := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		gaps = append(gaps, dates[i].Sub(dates[i-1]).Hours()/24)
	}
	sort.Float64s(gaps)
	g := median(gaps)

	switch {
	case g <= 3:
		if hasWeekend(dates) {
			return Daily, nil
		}
		// A pure weekday index only counts as business-day data once a
		// weekend jump shows up; a short intra-week run stays daily.
		for _, gap := range gaps {
			if gap >= 3 {
				return Business, nil
			}
		}
		return Daily, nil
	case g <= 10:
		return Weekly, nil
	case g >= 25 && g <= 45:
		return MonthEnd, nil
	case g >= 300:
		return YearEnd, nil
	default:
		return "", fmt.Errorf("%w: median spacing of %.1f days does not match a supported frequency", ErrIrregular, g)
	}
}

// median of a sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func hasWeekend(dates []time.Time) bool {
	for _, t := range dates {
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return true
		}
	}
	return false
}
