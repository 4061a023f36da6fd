// Package store persists named settings presets and per-run statistics to
// SQLite, so a realtime session can save/restore a tuning and review past
// runs.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dougsko/spectrowave/pkg/config"
)

// RunStats summarizes one pipeline run for later review.
type RunStats struct {
	ID              int64
	StartedAt       time.Time
	EndedAt         time.Time
	FramesProcessed uint64
	Overruns        uint64
}

// SettingsStore is the SQLite-backed preset and run-statistics store.
type SettingsStore struct {
	db     *sql.DB
	dbPath string
}

// New opens (creating if needed) a SettingsStore at dbPath.
func New(dbPath string) (*SettingsStore, error) {
	if dbPath == "" {
		dbPath = "./spectrowave.db"
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("store: create db directory: %w", err)
		}
	}

	connString := dbPath + "?_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on"
	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	s := &SettingsStore{db: db, dbPath: dbPath}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create tables: %w", err)
	}
	return s, nil
}

func (s *SettingsStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS presets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		settings_json TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		frames_processed INTEGER NOT NULL DEFAULT 0,
		overruns INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SavePreset inserts or updates a named settings bundle.
func (s *SettingsStore) SavePreset(name string, settings config.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("store: marshal settings: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO presets (name, settings_json)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			settings_json = excluded.settings_json,
			updated_at = CURRENT_TIMESTAMP
	`, name, string(data))
	return err
}

// LoadPreset returns the named preset's settings.
func (s *SettingsStore) LoadPreset(name string) (config.Settings, error) {
	var raw string
	err := s.db.QueryRow(`SELECT settings_json FROM presets WHERE name = ?`, name).Scan(&raw)
	if err == sql.ErrNoRows {
		return config.Settings{}, fmt.Errorf("store: no such preset %q", name)
	}
	if err != nil {
		return config.Settings{}, fmt.Errorf("store: load preset: %w", err)
	}

	var settings config.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return config.Settings{}, fmt.Errorf("store: unmarshal preset: %w", err)
	}
	return settings, nil
}

// ListPresets returns all saved preset names.
func (s *SettingsStore) ListPresets() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM presets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// BeginRun records the start of a pipeline run and returns its ID.
func (s *SettingsStore) BeginRun(startedAt time.Time) (int64, error) {
	result, err := s.db.Exec(`INSERT INTO runs (started_at) VALUES (?)`, startedAt)
	if err != nil {
		return 0, fmt.Errorf("store: begin run: %w", err)
	}
	return result.LastInsertId()
}

// EndRun records the final statistics for a run.
func (s *SettingsStore) EndRun(id int64, endedAt time.Time, framesProcessed, overruns uint64) error {
	_, err := s.db.Exec(`
		UPDATE runs SET ended_at = ?, frames_processed = ?, overruns = ?
		WHERE id = ?
	`, endedAt, framesProcessed, overruns, id)
	return err
}

// RecentRuns returns the most recent runs, newest first.
func (s *SettingsStore) RecentRuns(limit int) ([]RunStats, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, COALESCE(ended_at, started_at), frames_processed, overruns
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunStats
	for rows.Next() {
		var r RunStats
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.EndedAt, &r.FramesProcessed, &r.Overruns); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database connection.
func (s *SettingsStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
