// Package history records batch runs in PostgreSQL.
//
// History is optional: it is only opened when a database URL is configured.
// A Store implements batch.Recorder and backs the /api/runs endpoints.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/pdftables/internal/batch"
	"github.com/JonMunkholm/pdftables/internal/config"
	"github.com/JonMunkholm/pdftables/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 50

var schema = []string{
	`CREATE TABLE IF NOT EXISTS conversion_runs (
		id          UUID PRIMARY KEY,
		input_dir   TEXT NOT NULL,
		output_dir  TEXT NOT NULL,
		format      TEXT NOT NULL,
		layout      TEXT NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL,
		files       INT NOT NULL,
		failed      INT NOT NULL,
		tables      INT NOT NULL,
		cells       INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS conversion_files (
		run_id      UUID NOT NULL REFERENCES conversion_runs(id) ON DELETE CASCADE,
		position    INT NOT NULL,
		file        TEXT NOT NULL,
		output      TEXT,
		tables      INT NOT NULL,
		cells       INT NOT NULL,
		rewritten   INT NOT NULL,
		recovered   INT NOT NULL,
		code        TEXT,
		message     TEXT,
		duration_ms BIGINT NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS conversion_runs_started_at_idx ON conversion_runs (started_at DESC)`,
}

// Run is a recorded batch run.
type Run struct {
	ID         string    `json:"id"`
	InputDir   string    `json:"input_dir"`
	OutputDir  string    `json:"output_dir"`
	Format     string    `json:"format"`
	Layout     string    `json:"layout"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Files      int       `json:"files"`
	Failed     int       `json:"failed"`
	Tables     int       `json:"tables"`
	Cells      int       `json:"cells"`

	// Results is only filled by GetRun.
	Results []File `json:"results,omitempty"`
}

// File is the recorded outcome of one file of a run.
type File struct {
	File       string `json:"file"`
	Output     string `json:"output,omitempty"`
	Tables     int    `json:"tables"`
	Cells      int    `json:"cells"`
	Rewritten  int    `json:"rewritten"`
	Recovered  int    `json:"recovered"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Store persists runs in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ batch.Recorder = (*Store)(nil)

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewStore(pool), nil
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the history tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// RecordRun stores a report and its file results in one transaction.
func (s *Store) RecordRun(ctx context.Context, r *batch.Report) error {
	stats := r.Stats()

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO conversion_runs
				(id, input_dir, output_dir, format, layout, started_at, duration_ms, files, failed, tables, cells)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			pgtype.UUID{Bytes: r.RunID, Valid: true},
			r.InputDir, r.OutputDir, r.Format, r.Layout,
			pgtype.Timestamptz{Time: r.StartedAt, Valid: true},
			r.Duration.Milliseconds(),
			len(r.Files), r.Failed(), r.Tables(), stats.Cells,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		if len(r.Files) == 0 {
			return nil
		}

		b := &pgx.Batch{}
		for i, f := range r.Files {
			b.Queue(
				`INSERT INTO conversion_files
					(run_id, position, file, output, tables, cells, rewritten, recovered, code, message, duration_ms)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				pgtype.UUID{Bytes: r.RunID, Valid: true},
				i, f.File, toPgText(f.Output),
				f.Tables, f.Stats.Cells, f.Stats.Rewritten, f.Stats.Recovered,
				toPgText(f.Code), toPgText(f.Message),
				f.Duration.Milliseconds(),
			)
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("insert file results: %w", err)
		}
		return nil
	})
}

const runColumns = `id, input_dir, output_dir, format, layout, started_at, duration_ms, files, failed, tables, cells`

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+runColumns+` FROM conversion_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns one run with its file results. Returns core.ErrInvalidID
// for a malformed ID and core.ErrRunNotFound if no such run exists.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	pgID := toPgUUID(id)
	if !pgID.Valid {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidID, id)
	}

	run, err := scanRun(s.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM conversion_runs WHERE id = $1`, pgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT file, output, tables, cells, rewritten, recovered, code, message, duration_ms
		FROM conversion_files WHERE run_id = $1 ORDER BY position`, pgID)
	if err != nil {
		return nil, fmt.Errorf("get file results: %w", err)
	}
	defer rows.Close()

	run.Results = make([]File, 0, run.Files)
	for rows.Next() {
		var (
			f                     File
			output, code, message pgtype.Text
		)
		if err := rows.Scan(&f.File, &output, &f.Tables, &f.Cells, &f.Rewritten, &f.Recovered,
			&code, &message, &f.DurationMS); err != nil {
			return nil, err
		}
		f.Output = output.String
		f.Code = code.String
		f.Message = message.String
		run.Results = append(run.Results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return run, nil
}

func scanRun(row pgx.Row) (*Run, error) {
	var (
		run       Run
		id        pgtype.UUID
		startedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &run.InputDir, &run.OutputDir, &run.Format, &run.Layout,
		&startedAt, &run.DurationMS, &run.Files, &run.Failed, &run.Tables, &run.Cells)
	if err != nil {
		return nil, err
	}
	run.ID = pgUUIDToString(id)
	run.StartedAt = startedAt.Time
	return &run, nil
}
