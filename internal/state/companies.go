package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// SaveCompany stores the payload, replacing any company with the same ticker.
func (s *SQLStore) SaveCompany(ctx context.Context, c *core.Company) (*core.StoredCompany, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	if c == nil || c.Ticker == "" {
		return nil, fmt.Errorf("cannot save company: ticker is required")
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode company %s: %w", c.Ticker, err)
	}

	stored := &core.StoredCompany{
		Ticker:      c.Ticker,
		Company:     c.Company,
		UpdatedAt:   c.UpdatedAt,
		MetricCount: len(c.Metrics),
		SavedAt:     time.Now().UTC(),
	}
	if c.LastUpdatedWith != nil {
		stored.Source = c.LastUpdatedWith.Source
	}

	s.logger.Debug("saving company",
		slog.String("ticker", c.Ticker),
		slog.Int("metrics", stored.MetricCount))

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO companies (id, ticker, company, updated_at, source, metric_count, payload, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (ticker) DO UPDATE SET
			company = excluded.company,
			updated_at = excluded.updated_at,
			source = excluded.source,
			metric_count = excluded.metric_count,
			payload = excluded.payload,
			saved_at = excluded.saved_at`),
		generateID(), stored.Ticker, stored.Company, stored.UpdatedAt, stored.Source,
		stored.MetricCount, string(payload), formatTime(stored.SavedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save company %s: %w", c.Ticker, err)
	}

	err = s.db.QueryRowContext(ctx, s.rebind(`SELECT id FROM companies WHERE ticker = ?`), c.Ticker).Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back company %s: %w", c.Ticker, err)
	}

	return stored, nil
}

// GetCompany loads the payload selected by ticker or, when no ticker is
// given, by company name.
func (s *SQLStore) GetCompany(ctx context.Context, q core.Query) (*core.Company, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	if q.IsZero() {
		return nil, core.ErrQueryRequired
	}

	query := `SELECT payload FROM companies WHERE ticker = ?`
	arg := q.Ticker
	if q.Ticker == "" {
		query = `SELECT payload FROM companies WHERE company = ? ORDER BY saved_at DESC LIMIT 1`
		arg = q.Company
	}

	var payload string
	err := s.db.QueryRowContext(ctx, s.rebind(query), arg).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, q)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company (%s): %w", q, err)
	}

	var c core.Company
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, fmt.Errorf("failed to decode company (%s): %w", q, err)
	}
	return &c, nil
}

// ListCompanies returns a summary of every stored company, by ticker.
func (s *SQLStore) ListCompanies(ctx context.Context) ([]*core.StoredCompany, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticker, company, updated_at, source, metric_count, saved_at
		FROM companies ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []*core.StoredCompany
	for rows.Next() {
		c := &core.StoredCompany{}
		var savedAt string
		if err := rows.Scan(&c.ID, &c.Ticker, &c.Company, &c.UpdatedAt, &c.Source, &c.MetricCount, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		c.SavedAt = parseTime(savedAt)
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	return companies, nil
}

// DeleteCompany removes the company with the given ticker.
func (s *SQLStore) DeleteCompany(ctx context.Context, ticker string) error {
	if s.db == nil {
		return ErrNotOpen
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM companies WHERE ticker = ?`), ticker)
	if err != nil {
		return fmt.Errorf("failed to delete company %s: %w", ticker, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete company %s: %w", ticker, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: ticker=%s", core.ErrNotFound, ticker)
	}

	s.logger.Debug("deleted company", slog.String("ticker", ticker))
	return nil
}
