package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Attempt outcomes.
const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// ErrRunNotFound is returned when a run ID has no journal row.
var ErrRunNotFound = errors.New("run not found")

// Run is one invocation of the send loop.
type Run struct {
	ID            string     `json:"id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Source        string     `json:"source,omitempty"`
	Message       string     `json:"message"`
	PacingSeconds int        `json:"pacing_seconds"`
	Total         int        `json:"total"`
	Status        string     `json:"status"`
	Counts
}

// Counts tallies attempt outcomes for a run.
type Counts struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Attempt is the outcome of processing one number within a run.
type Attempt struct {
	RunID   string    `json:"run_id"`
	Seq     int64     `json:"seq"`
	Index   int       `json:"index"`
	Number  string    `json:"number"`
	Outcome string    `json:"outcome"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, r Run) error {
	status := r.Status
	if status == "" {
		status = StatusRunning
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, source, message, pacing_seconds, total, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		formatTime(r.StartedAt),
		r.Source,
		r.Message,
		r.PacingSeconds,
		r.Total,
		status,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordAttempt appends one attempt row.
// Uses ON CONFLICT DO NOTHING so a replayed (run_id, seq) is ignored.
func (s *Store) RecordAttempt(ctx context.Context, a Attempt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (run_id, seq, idx, number, outcome, error, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		a.RunID,
		a.Seq,
		a.Index,
		a.Number,
		a.Outcome,
		a.Error,
		formatTime(a.At),
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// FinishRun stamps the final status and counts on a run.
func (s *Store) FinishRun(ctx context.Context, runID, status string, c Counts, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, status = ?, sent = ?, skipped = ?, failed = ?
		WHERE id = ?
	`,
		formatTime(at),
		status,
		c.Sent,
		c.Skipped,
		c.Failed,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// ListRuns returns the most recent runs first, at most limit rows.
// A limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, started_at, finished_at, source, message, pacing_seconds, total, status, sent, skipped, failed
		FROM runs
		ORDER BY started_at DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, source, message, pacing_seconds, total, status, sent, skipped, failed
		FROM runs
		WHERE id = ?
	`, runID)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", runID, ErrRunNotFound)
	}
	return r, err
}

// ReadAttempts returns every attempt of a run in processing order.
// Returns an empty slice (not nil) if the run has no attempts.
func (s *Store) ReadAttempts(ctx context.Context, runID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, idx, number, outcome, error, at
		FROM attempts
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []Attempt{}
	for rows.Next() {
		var (
			a  Attempt
			at string
		)
		if err := rows.Scan(&a.RunID, &a.Seq, &a.Index, &a.Number, &a.Outcome, &a.Error, &at); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if a.At, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// CountSent returns how many times number was successfully dispatched
// across every journaled run.
func (s *Store) CountSent(ctx context.Context, number string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attempts WHERE number = ? AND outcome = ?
	`, number, OutcomeSent).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sent: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r        Run
		started  string
		finished sql.NullString
	)
	err := sc.Scan(
		&r.ID, &started, &finished, &r.Source, &r.Message, &r.PacingSeconds,
		&r.Total, &r.Status, &r.Sent, &r.Skipped, &r.Failed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	if r.StartedAt, err = parseTime(started); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if finished.Valid {
		t, err := parseTime(finished.String)
		if err != nil {
			return Run{}, fmt.Errorf("scan run: %w", err)
		}
		r.FinishedAt = &t
	}
	return r, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
