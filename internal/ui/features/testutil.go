// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/source"
	"github.com/leapstack-labs/leapgrid/internal/state"
	"github.com/leapstack-labs/leapgrid/internal/testutil"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/internal/workbook"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store        core.Store
	Workbook     *workbook.Workbook
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates an in-memory store holding the given companies
// and a workbook reading from it. The workbook queries the first company.
// Nothing is refreshed yet.
func SetupTestFixture(t *testing.T, companies ...*core.Company) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	store := SetupTestStore(t, companies...)

	var q core.Query
	if len(companies) > 0 {
		q.Ticker = companies[0].Ticker
	}
	wb, err := workbook.New(workbook.Config{
		Source:       source.NewStoreSource(store),
		Query:        q,
		DiscardStale: true,
		Logger:       logger,
	})
	require.NoError(t, err)

	notify := notifier.New()
	wb.OnSwap(func(s *workbook.Snapshot) { notify.Broadcast(s.Generation) })

	return &TestFixture{
		Store:        store,
		Workbook:     wb,
		Notifier:     notify,
		SessionStore: NewTestSessionStore(),
	}
}

// Refresh publishes a snapshot, failing the test on any error other than
// the no-data state.
func (f *TestFixture) Refresh(t *testing.T) *workbook.Snapshot {
	t.Helper()
	snap, err := f.Workbook.Refresh(context.Background())
	if err != nil {
		require.ErrorIs(t, err, core.ErrNoData)
	}
	return snap
}

// SetupTestStore creates an in-memory store holding the given companies.
func SetupTestStore(t *testing.T, companies ...*core.Company) core.Store {
	t.Helper()

	store := state.NewStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(state.DriverSQLite, ":memory:"))
	require.NoError(t, store.InitSchema())

	t.Cleanup(func() {
		_ = store.Close()
	})

	for _, c := range companies {
		_, err := store.SaveCompany(context.Background(), c)
		require.NoError(t, err)
	}

	return store
}

// RequestWithTimeout wraps a request with a context timeout.
func RequestWithTimeout(r *http.Request, timeout time.Duration) (*http.Request, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	return r.WithContext(ctx), cancel
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// SessionCookie returns the session cookie set by a response, if any.
func SessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "leapgrid" {
			return c
		}
	}
	return nil
}
