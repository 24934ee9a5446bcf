// Package store persists genuine analysis results for later audit. It is a
// side effect of the session, never a correctness dependency: failures are
// reported to the caller, who logs and swallows them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fieldscope/fieldscope/internal/model"
)

// Store defines the durable event store contract.
type Store interface {
	// Persist writes one analysis record.
	Persist(ctx context.Context, rec model.AnalysisRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]model.AnalysisRecord, error)

	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS analysis_results (
	id              TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL,
	operator_id     TEXT NOT NULL,
	mode            TEXT NOT NULL,
	status          TEXT NOT NULL,
	headline        TEXT NOT NULL,
	reasoning       TEXT NOT NULL,
	action_required TEXT NOT NULL,
	repair_steps    TEXT NOT NULL DEFAULT '[]',
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_results_created_at
	ON analysis_results (created_at DESC);
`

// SQLite implements Store on a local SQLite database (pure-Go driver, no
// cgo), so persistence works in the field without a daemon.
type SQLite struct {
	db *sql.DB
}

// Open opens (and if needed bootstraps) the database at path.
func Open(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Persist writes one record.
func (s *SQLite) Persist(ctx context.Context, rec model.AnalysisRecord) error {
	steps, err := json.Marshal(rec.RepairSteps)
	if err != nil {
		return fmt.Errorf("encode repair steps: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_results
			(id, session_id, operator_id, mode, status, headline, reasoning, action_required, repair_steps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.OperatorID, string(rec.Mode), string(rec.Status),
		rec.Headline, rec.Reasoning, rec.ActionRequired, string(steps), createdAt,
	)
	if err != nil {
		return fmt.Errorf("persist result: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]model.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, operator_id, mode, status, headline, reasoning, action_required, repair_steps, created_at
		FROM analysis_results
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var records []model.AnalysisRecord
	for rows.Next() {
		var rec model.AnalysisRecord
		var mode, status, steps string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.OperatorID, &mode, &status,
			&rec.Headline, &rec.Reasoning, &rec.ActionRequired, &steps, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Mode = model.OperatingMode(mode)
		rec.Status = model.Status(status)
		if err := json.Unmarshal([]byte(steps), &rec.RepairSteps); err != nil {
			return nil, fmt.Errorf("decode repair steps: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
