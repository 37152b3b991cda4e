// Package workbook owns the current grid model of a running viewer. A refresh
// fetches a payload, materializes it and swaps the result in as one
// immutable snapshot, so readers never observe a partially built model.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leapstack-labs/leapgrid/internal/decorate"
	"github.com/leapstack-labs/leapgrid/internal/grid"
	"github.com/leapstack-labs/leapgrid/internal/source"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// ErrStale is returned when a refresh finished after a newer one was applied.
var ErrStale = errors.New("refresh superseded by a newer one")

// Snapshot is one materialized payload. It is never mutated after it is
// published.
type Snapshot struct {
	Model      core.GridModel
	Resolver   *decorate.Resolver
	Company    *core.Company
	Query      core.Query
	Generation uint64
	LoadedAt   time.Time
}

// Empty reports whether the snapshot is the "no data" state.
func (s *Snapshot) Empty() bool {
	return s == nil || s.Model.Empty()
}

// Decorate returns the cell decoration hook for the snapshot's model.
func (s *Snapshot) Decorate() decorate.DecorateFunc {
	if s == nil || s.Resolver == nil {
		return nil
	}
	return s.Resolver.Func()
}

// Config holds the dependencies of a Workbook.
type Config struct {
	Source       source.Source
	Query        core.Query
	DiscardStale bool
	Columns      []grid.ColumnOption
	Decorate     []decorate.Option
	Logger       *slog.Logger
}

// Workbook serializes the publication of snapshots built from a source.
type Workbook struct {
	source       source.Source
	discardStale bool
	columns      []grid.ColumnOption
	decorate     []decorate.Option
	logger       *slog.Logger

	tokens  atomic.Uint64
	current atomic.Pointer[Snapshot]

	mu      sync.Mutex
	query   core.Query
	applied uint64
	hooks   []func(*Snapshot)
}

// New creates a Workbook. Nothing is fetched until Refresh is called.
func New(cfg Config) (*Workbook, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("workbook requires a source")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Workbook{
		source:       cfg.Source,
		discardStale: cfg.DiscardStale,
		columns:      cfg.Columns,
		decorate:     cfg.Decorate,
		logger:       logger,
		query:        cfg.Query,
	}, nil
}

// Query returns the company selector used by the next refresh.
func (w *Workbook) Query() core.Query {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.query
}

// SetQuery changes the company selector. The current snapshot is kept until
// the next successful refresh.
func (w *Workbook) SetQuery(q core.Query) {
	w.mu.Lock()
	w.query = q
	w.mu.Unlock()
}

// OnSwap registers fn to be called after each published snapshot.
func (w *Workbook) OnSwap(fn func(*Snapshot)) {
	w.mu.Lock()
	w.hooks = append(w.hooks, fn)
	w.mu.Unlock()
}

// Current returns the published snapshot, or nil before the first refresh.
func (w *Workbook) Current() *Snapshot {
	return w.current.Load()
}

// Refresh fetches the payload for the current query and publishes it.
//
// A fetch failure is returned as is and leaves the current snapshot
// untouched. A payload without metrics publishes the empty model and
// returns core.ErrNoData. With DiscardStale set, a result that completes
// after a newer refresh was published is dropped with ErrStale.
func (w *Workbook) Refresh(ctx context.Context) (*Snapshot, error) {
	token := w.tokens.Add(1)
	q := w.Query()
	start := time.Now()

	w.logger.Debug("refreshing workbook", slog.String("query", q.String()), slog.Uint64("token", token))

	payload, err := w.source.Fetch(ctx, q)
	if err != nil {
		w.logger.Warn("refresh failed", slog.String("query", q.String()), slog.String("error", err.Error()))
		return nil, err
	}
	if !payload.Success {
		return nil, fmt.Errorf("failed to fetch company data: %s", payload.Message())
	}

	snap := &Snapshot{
		Company:  payload.Data,
		Query:    q,
		LoadedAt: time.Now(),
	}
	snap.Model = grid.Build(payload.Data, w.columns...)
	snap.Resolver = decorate.NewResolver(snap.Model, w.decorate...)

	if err := w.publish(token, snap); err != nil {
		return nil, err
	}

	w.logger.Info("workbook refreshed",
		slog.String("query", q.String()),
		slog.Int("rows", len(snap.Model.Rows)),
		slog.Int("columns", len(snap.Model.Columns)),
		slog.Duration("elapsed", time.Since(start)))

	if snap.Empty() {
		return snap, core.ErrNoData
	}
	return snap, nil
}

func (w *Workbook) publish(token uint64, snap *Snapshot) error {
	w.mu.Lock()
	if w.discardStale && token < w.applied {
		applied := w.applied
		w.mu.Unlock()
		w.logger.Debug("discarding stale refresh", slog.Uint64("token", token), slog.Uint64("applied", applied))
		return ErrStale
	}
	w.applied = token
	snap.Generation = token
	w.current.Store(snap)
	hooks := make([]func(*Snapshot), len(w.hooks))
	copy(hooks, w.hooks)
	w.mu.Unlock()

	for _, fn := range hooks {
		fn(snap)
	}
	return nil
}
