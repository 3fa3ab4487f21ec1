// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package cache

import (
	"sync"

	"github.com/d-setiawan/sird-forecasting-go/simulation"
)

// MemoryStore keeps results in process memory. Stored results are
// shared by pointer, callers must not mutate them.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*simulation.Results
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*simulation.Results)}
}

func (s *MemoryStore) Load(key string) (*simulation.Results, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.entries[key]
	return r, ok, nil
}

func (s *MemoryStore) Save(key string, r *simulation.Results) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = r
	return nil
}

// Len reports the number of cached runs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
