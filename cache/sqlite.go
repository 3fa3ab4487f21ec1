// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/d-setiawan/sird-forecasting-go/simulation"
)

// SQLiteStore persists results in a local sqlite database, one row per
// cache key with the encoded results as payload.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates the database file and schema when missing.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open result cache: %w", err)
	}

	// WAL keeps readers unblocked while a run is being saved.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS results (
	key        TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	payload    BLOB NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create results table: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping result cache: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(key string) (*simulation.Results, bool, error) {
	var payload []byte
	err := s.db.QueryRow("SELECT payload FROM results WHERE key = ?", key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load cached results: %w", err)
	}
	res, err := decodeResults(payload)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

func (s *SQLiteStore) Save(key string, r *simulation.Results) error {
	payload, err := encodeResults(r)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
INSERT INTO results (key, run_id, created_at, payload) VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	run_id = excluded.run_id,
	created_at = excluded.created_at,
	payload = excluded.payload`,
		key, r.RunID, r.CreatedAt.Format(time.RFC3339Nano), payload)
	if err != nil {
		return fmt.Errorf("save cached results: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
