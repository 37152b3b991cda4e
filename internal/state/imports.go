package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// RecordImport inserts a running import. ID and StartedAt are filled in
// when empty.
func (s *SQLStore) RecordImport(ctx context.Context, rec *core.ImportRecord) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if rec.ID == "" {
		rec.ID = generateID()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = core.ImportStatusRunning
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO imports (id, ticker, file, status, metric_count, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.Ticker, rec.File, string(rec.Status), rec.MetricCount, formatTime(rec.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	return nil
}

// CompleteImport marks an import completed, or failed when errMsg is set.
func (s *SQLStore) CompleteImport(ctx context.Context, id string, metricCount int, errMsg string) error {
	if s.db == nil {
		return ErrNotOpen
	}

	status := core.ImportStatusCompleted
	var errValue sql.NullString
	if errMsg != "" {
		status = core.ImportStatusFailed
		errValue = sql.NullString{String: errMsg, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE imports SET status = ?, metric_count = ?, completed_at = ?, error = ?
		WHERE id = ?`),
		string(status), metricCount, formatTime(time.Now()), errValue, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete import %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("import not found: %s", id)
	}
	return nil
}

// ListImports returns the most recent imports, newest first. An empty
// ticker lists imports for every company.
func (s *SQLStore) ListImports(ctx context.Context, ticker string, limit int) ([]*core.ImportRecord, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, ticker, file, status, metric_count, started_at, completed_at, error FROM imports`
	args := []any{}
	if ticker != "" {
		query += ` WHERE ticker = ?`
		args = append(args, ticker)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	defer rows.Close()

	var records []*core.ImportRecord
	for rows.Next() {
		rec := &core.ImportRecord{}
		var (
			status, startedAt string
			completedAt       sql.NullString
			errMsg            sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Ticker, &rec.File, &status, &rec.MetricCount, &startedAt, &completedAt, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		rec.Status = core.ImportStatus(status)
		rec.StartedAt = parseTime(startedAt)
		if completedAt.Valid {
			t := parseTime(completedAt.String)
			rec.CompletedAt = &t
		}
		if errMsg.Valid {
			rec.Error = errMsg.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}

	return records, nil
}
