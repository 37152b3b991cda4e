package core

import (
	"context"
	"time"
)

// Store defines the interface for company payload persistence.
type Store interface {
	Open(driver, dsn string) error
	Close() error
	InitSchema() error

	// Company operations
	SaveCompany(ctx context.Context, c *Company) (*StoredCompany, error)
	GetCompany(ctx context.Context, q Query) (*Company, error)
	ListCompanies(ctx context.Context) ([]*StoredCompany, error)
	DeleteCompany(ctx context.Context, ticker string) error

	// Import history
	RecordImport(ctx context.Context, rec *ImportRecord) error
	CompleteImport(ctx context.Context, id string, metricCount int, errMsg string) error
	ListImports(ctx context.Context, ticker string, limit int) ([]*ImportRecord, error)
}

// Query selects one company by ticker or, failing that, by company name.
type Query struct {
	Ticker  string `json:"ticker,omitempty" koanf:"ticker"`
	Company string `json:"company,omitempty" koanf:"company"`
}

// IsZero reports whether neither selector is set.
func (q Query) IsZero() bool {
	return q.Ticker == "" && q.Company == ""
}

// String renders the query for logs and messages.
func (q Query) String() string {
	if q.Ticker != "" {
		return "ticker=" + q.Ticker
	}
	return "company=" + q.Company
}

// StoredCompany is the summary row for a persisted company.
type StoredCompany struct {
	ID          string
	Ticker      string
	Company     string
	UpdatedAt   string
	Source      string
	MetricCount int
	SavedAt     time.Time
}

// ImportStatus represents the state of a workbook import.
type ImportStatus string

// Import status constants.
const (
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// ImportRecord tracks one workbook import.
type ImportRecord struct {
	ID          string
	Ticker      string
	File        string
	Status      ImportStatus
	MetricCount int
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}
