package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// HistoryStore persists run metadata and per-generation statistics in SQLite.
// It records what happened during a run; populations themselves are not stored.
type HistoryStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// RunInfo describes a stored run.
type RunInfo struct {
	ID        int64
	Seed      int64
	Config    string
	StartedAt time.Time
}

// OpenHistory opens (creating if needed) the database at path.
func OpenHistory(ctx context.Context, path string) (*HistoryStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &HistoryStore{path: path, db: db}, nil
}

// StartRun records a new run and returns its id.
func (s *HistoryStore) StartRun(ctx context.Context, seed int64, configYAML string, startedAt time.Time) (int64, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO runs (seed, config, started_at)
		VALUES (?, ?, ?)
	`, seed, configYAML, startedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Run returns the stored metadata for runID.
func (s *HistoryStore) Run(ctx context.Context, runID int64) (RunInfo, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunInfo{}, false, err
	}

	info := RunInfo{ID: runID}
	var started string
	err = db.QueryRowContext(ctx, `SELECT seed, config, started_at FROM runs WHERE id = ?`, runID).
		Scan(&info.Seed, &info.Config, &started)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunInfo{}, false, nil
		}
		return RunInfo{}, false, err
	}

	info.StartedAt, err = time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return RunInfo{}, false, fmt.Errorf("decode run %d start time: %w", runID, err)
	}
	return info, true, nil
}

// SaveGeneration stores the stats of one generation of runID. Saving the same
// generation twice replaces the earlier row.
func (s *HistoryStore) SaveGeneration(ctx context.Context, runID int64, g GenerationStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (
			run_id, generation, ticks, step_cap,
			best_fitness, best_steps, best_reached,
			mean_fitness, std_fitness, median_fitness,
			reached, wall, obstacle, exhausted, step_capped
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			ticks = excluded.ticks,
			step_cap = excluded.step_cap,
			best_fitness = excluded.best_fitness,
			best_steps = excluded.best_steps,
			best_reached = excluded.best_reached,
			mean_fitness = excluded.mean_fitness,
			std_fitness = excluded.std_fitness,
			median_fitness = excluded.median_fitness,
			reached = excluded.reached,
			wall = excluded.wall,
			obstacle = excluded.obstacle,
			exhausted = excluded.exhausted,
			step_capped = excluded.step_capped
	`, runID, g.Generation, g.Ticks, g.StepCap,
		g.BestFitness, g.BestSteps, g.BestReached,
		g.MeanFitness, g.StdFitness, g.MedianFitness,
		g.Reached, g.Wall, g.Obstacle, g.Exhausted, g.StepCapped)
	return err
}

// Generations returns the stored stats of runID ordered by generation.
func (s *HistoryStore) Generations(ctx context.Context, runID int64) ([]GenerationStats, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, ticks, step_cap,
			best_fitness, best_steps, best_reached,
			mean_fitness, std_fitness, median_fitness,
			reached, wall, obstacle, exhausted, step_capped
		FROM generations
		WHERE run_id = ?
		ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GenerationStats
	for rows.Next() {
		var g GenerationStats
		if err := rows.Scan(
			&g.Generation, &g.Ticks, &g.StepCap,
			&g.BestFitness, &g.BestSteps, &g.BestReached,
			&g.MeanFitness, &g.StdFitness, &g.MedianFitness,
			&g.Reached, &g.Wall, &g.Obstacle, &g.Exhausted, &g.StepCapped,
		); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Path returns the database path.
func (s *HistoryStore) Path() string {
	return s.path
}

// Close closes the database. It is safe to call more than once.
func (s *HistoryStore) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *HistoryStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("history store is closed")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			seed INTEGER NOT NULL,
			config TEXT NOT NULL,
			started_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			generation INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			step_cap INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			best_steps INTEGER NOT NULL,
			best_reached INTEGER NOT NULL,
			mean_fitness REAL NOT NULL,
			std_fitness REAL NOT NULL,
			median_fitness REAL NOT NULL,
			reached INTEGER NOT NULL,
			wall INTEGER NOT NULL,
			obstacle INTEGER NOT NULL,
			exhausted INTEGER NOT NULL,
			step_capped INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
