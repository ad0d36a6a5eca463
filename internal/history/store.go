// Package history records pipeline runs in PostgreSQL.
//
// History is optional: the CLI and server only open a pool when
// DATABASE_URL is set, and a failure to record a run is logged rather than
// failing the run.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/mobcsv/internal/core"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
}

// Run is one recorded pipeline execution.
type Run struct {
	ID        uuid.UUID
	Source    string // "cli" or "http"
	Input     string
	Output    string
	Rule      string
	Read      int
	Accepted  int
	Rejected  int
	StartedAt time.Time
	Duration  time.Duration
	Error     string // Empty on success
}

// NewRun builds a Run from a pipeline result. res may be nil when the run
// failed before producing one.
func NewRun(id uuid.UUID, source, input, output string, started time.Time, res *core.Result, runErr error) Run {
	run := Run{
		ID:        id,
		Source:    source,
		Input:     input,
		Output:    output,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
	}
	if res != nil {
		run.Rule = res.Rule
		run.Read = res.Read
		run.Accepted = res.Accepted
		run.Rejected = res.Rejected
		run.Duration = res.Duration
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	return run
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS mobcsv_runs (
	id            UUID PRIMARY KEY,
	source        TEXT NOT NULL,
	input         TEXT NOT NULL,
	output        TEXT NOT NULL,
	rule          TEXT NOT NULL,
	rows_read     INTEGER NOT NULL,
	rows_accepted INTEGER NOT NULL,
	rows_rejected INTEGER NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL,
	error         TEXT
)`

const insertRunSQL = `
INSERT INTO mobcsv_runs (
	id, source, input, output, rule,
	rows_read, rows_accepted, rows_rejected,
	started_at, duration_ms, error
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const recentRunsSQL = `
SELECT id, source, input, output, rule,
       rows_read, rows_accepted, rows_rejected,
       started_at, duration_ms, error
FROM mobcsv_runs
ORDER BY started_at DESC
LIMIT $1`

// Store reads and writes run history.
type Store struct {
	db DBTX
}

// NewStore creates a Store over db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the runs table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create mobcsv_runs: %w", err)
	}
	return nil
}

// Record inserts a run.
func (s *Store) Record(ctx context.Context, run Run) error {
	_, err := s.db.Exec(ctx, insertRunSQL,
		pgtype.UUID{Bytes: [16]byte(run.ID), Valid: true},
		run.Source,
		run.Input,
		run.Output,
		run.Rule,
		run.Read,
		run.Accepted,
		run.Rejected,
		run.StartedAt,
		run.Duration.Milliseconds(),
		toPgText(run.Error),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx, recentRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			id         pgtype.UUID
			durationMS int64
			errText    pgtype.Text
			run        Run
		)
		if err := rows.Scan(
			&id, &run.Source, &run.Input, &run.Output, &run.Rule,
			&run.Read, &run.Accepted, &run.Rejected,
			&run.StartedAt, &durationMS, &errText,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.ID = uuid.UUID(id.Bytes)
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.Error = errText.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
