// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

// Package cache persists simulation results keyed by a fingerprint of
// the run inputs, so repeated runs over unchanged data are free.
package cache

import "github.com/d-setiawan/sird-forecasting-go/simulation"

// Store is a keyed result cache. Load reports whether the key was
// present; a failed backend should surface its error so callers can
// decide to treat it as a miss.
type Store interface {
	Load(key string) (*simulation.Results, bool, error)
	Save(key string, r *simulation.Results) error
}
