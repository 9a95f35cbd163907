// Package storage provides SQLite-based persistence for completed runs and
// per-level times. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Run is one completed pass through the whole level list.
type Run struct {
	ID          int64
	RunID       string // uuid, shared with the run's level_times rows
	Player      string
	Ticks       int64 // total running ticks
	Resets      int
	Levels      int
	TickMS      int // simulation period the run was played at
	CompletedAt time.Time
}

// Duration returns the run's wall-clock length at its tick rate.
func (r Run) Duration() time.Duration {
	return time.Duration(r.Ticks) * time.Duration(r.TickMS) * time.Millisecond
}

// LevelTime is the time taken to clear one level within a run.
type LevelTime struct {
	ID         int64
	RunID      string
	LevelID    string
	LevelIndex int
	Ticks      int64
	Resets     int
	CreatedAt  time.Time
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			player TEXT NOT NULL DEFAULT '',
			ticks INTEGER NOT NULL,
			resets INTEGER NOT NULL DEFAULT 0,
			levels INTEGER NOT NULL,
			tick_ms INTEGER NOT NULL DEFAULT 20,
			completed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(ticks ASC, resets ASC);

		CREATE TABLE IF NOT EXISTS level_times (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			level_id TEXT NOT NULL,
			level_index INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			resets INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_level_times_level ON level_times(level_id, ticks ASC);
		CREATE INDEX IF NOT EXISTS idx_level_times_run ON level_times(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a completed run. An empty RunID is filled with a new one.
// Returns the stored run ID.
func (s *Store) SaveRun(r Run) (string, error) {
	if r.RunID == "" {
		r.RunID = NewRunID()
	}
	if r.TickMS <= 0 {
		r.TickMS = 20
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, player, ticks, resets, levels, tick_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Player, r.Ticks, r.Resets, r.Levels, r.TickMS,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}
	return r.RunID, nil
}

// SaveLevelTime records the time taken to clear one level.
func (s *Store) SaveLevelTime(lt LevelTime) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO level_times (run_id, level_id, level_index, ticks, resets)
		 VALUES (?, ?, ?, ?, ?)`,
		lt.RunID, lt.LevelID, lt.LevelIndex, lt.Ticks, lt.Resets,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save level time: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// TopRuns retrieves the fastest N runs. Ties on ticks go to fewer resets.
func (s *Store) TopRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, player, ticks, resets, levels, tick_ms, completed_at
		 FROM runs
		 ORDER BY ticks ASC, resets ASC, id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var completedAt any
		if err := rows.Scan(&r.ID, &r.RunID, &r.Player, &r.Ticks, &r.Resets, &r.Levels, &r.TickMS, &completedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CompletedAt = parseTime(completedAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// RunByID retrieves a run by its run ID. Returns nil if it does not exist.
func (s *Store) RunByID(runID string) (*Run, error) {
	var r Run
	var completedAt any

	err := s.db.QueryRow(
		`SELECT id, run_id, player, ticks, resets, levels, tick_ms, completed_at
		 FROM runs WHERE run_id = ?`,
		runID,
	).Scan(&r.ID, &r.RunID, &r.Player, &r.Ticks, &r.Resets, &r.Levels, &r.TickMS, &completedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	r.CompletedAt = parseTime(completedAt)
	return &r, nil
}

// LevelTimes returns the level times recorded for one run, in level order.
func (s *Store) LevelTimes(runID string) ([]LevelTime, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, level_id, level_index, ticks, resets, created_at
		 FROM level_times
		 WHERE run_id = ?
		 ORDER BY level_index ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query level times: %w", err)
	}
	defer rows.Close()
	return scanLevelTimes(rows)
}

// BestLevelTimes returns the fastest recorded clear of each level, keyed by
// level ID.
func (s *Store) BestLevelTimes() (map[string]LevelTime, error) {
	rows, err := s.db.Query(
		`SELECT lt.id, lt.run_id, lt.level_id, lt.level_index, lt.ticks, lt.resets, lt.created_at
		 FROM level_times lt
		 WHERE lt.id = (
			SELECT id FROM level_times
			WHERE level_id = lt.level_id
			ORDER BY ticks ASC, resets ASC, id ASC
			LIMIT 1
		 )`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query best level times: %w", err)
	}
	defer rows.Close()

	times, err := scanLevelTimes(rows)
	if err != nil {
		return nil, err
	}

	best := make(map[string]LevelTime, len(times))
	for _, lt := range times {
		best[lt.LevelID] = lt
	}
	return best, nil
}

func scanLevelTimes(rows *sql.Rows) ([]LevelTime, error) {
	var out []LevelTime
	for rows.Next() {
		var lt LevelTime
		var createdAt any
		if err := rows.Scan(&lt.ID, &lt.RunID, &lt.LevelID, &lt.LevelIndex, &lt.Ticks, &lt.Resets, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		lt.CreatedAt = parseTime(createdAt)
		out = append(out, lt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// ClearRuns deletes all runs and level times.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM level_times; DELETE FROM runs;"); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// Stats contains aggregated statistics over all runs.
type Stats struct {
	Runs       int
	BestTicks  int64
	AvgTicks   float64
	AvgResets  float64
	LastPlayed time.Time
}

// GetStats retrieves aggregated statistics for all completed runs.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MIN(ticks), 0), COALESCE(AVG(ticks), 0),
		        COALESCE(AVG(resets), 0), MAX(completed_at)
		 FROM runs`,
	).Scan(&stats.Runs, &stats.BestTicks, &stats.AvgTicks, &stats.AvgResets, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// parseTime handles both time.Time and string datetime columns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
