package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/leapgrid/internal/importer"
	"github.com/leapstack-labs/leapgrid/internal/testutil"
	"github.com/leapstack-labs/leapgrid/internal/ui/features"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

func newTestServer(t *testing.T, companies ...*core.Company) (*Server, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t, companies...)
	srv := NewServer(Config{
		Workbook:      fixture.Workbook,
		Store:         fixture.Store,
		Importer:      importer.New(importer.Config{Logger: testutil.NewTestLogger(t)}),
		Port:          8765,
		ImportDir:     t.TempDir(),
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        testutil.NewTestLogger(t),
	})
	return srv, fixture
}

func TestServer_Routes(t *testing.T) {
	srv, fixture := newTestServer(t, testutil.SampleCompany("ACME", "Acme Corp"))
	fixture.Refresh(t)

	handler, err := srv.Handler()
	require.NoError(t, err)
	ts := httptest.NewServer(handler)
	defer ts.Close()

	tests := []struct {
		method string
		path   string
		want   int
		body   string
	}{
		{http.MethodGet, "/", http.StatusOK, "Total Revenue"},
		{http.MethodGet, "/static/leapgrid.css", http.StatusOK, "table.grid"},
		{http.MethodGet, "/api/grid", http.StatusOK, `"header-calendar"`},
		{http.MethodGet, "/api/grid/cells?row=0", http.StatusOK, `"Calendar"`},
		{http.MethodGet, "/download", http.StatusOK, `"ticker": "ACME"`},
		{http.MethodGet, "/open?row=0&col=0", http.StatusNotFound, "cell has no link"},
		{http.MethodGet, "/refresh", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequestWithContext(context.Background(), tt.method, ts.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := client.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.body)
		})
	}
}

func TestServer_URL(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.Equal(t, "http://localhost:8765", srv.URL())
}

func TestServer_BroadcastsOnSwap(t *testing.T) {
	srv, fixture := newTestServer(t, testutil.SampleCompany("ACME", "Acme Corp"))

	ch := srv.Notifier().Subscribe()
	defer srv.Notifier().Unsubscribe(ch)

	snap := fixture.Refresh(t)

	select {
	case gen := <-ch:
		assert.Equal(t, snap.Generation, gen)
	case <-time.After(time.Second):
		t.Fatal("no broadcast after refresh")
	}
}

func TestIsWorkbookEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write xlsx", fsnotify.Event{Name: "/in/RDDT.xlsx", Op: fsnotify.Write}, true},
		{"create upper ext", fsnotify.Event{Name: "/in/RDDT.XLSX", Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: "/in/RDDT.xlsx", Op: fsnotify.Remove}, false},
		{"csv", fsnotify.Event{Name: "/in/RDDT.csv", Op: fsnotify.Write}, false},
		{"lock file", fsnotify.Event{Name: "/in/~$RDDT.xlsx", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isWorkbookEvent(tt.event))
		})
	}
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	cells := map[string]any{
		"E1": "2024Q1",
		"E2": "1Q24",
		"A4": "Income Statement",
		"A5": "Revenue", "B5": "Dollar", "C5": "10-K", "D5": "REV", "E5": 1500000,
	}
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestServer_WatchImports(t *testing.T) {
	srv, fixture := newTestServer(t)
	fixture.Workbook.SetQuery(core.Query{Ticker: "RDDT"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.watchImports(ctx) }()

	path := filepath.Join(srv.importDir, "RDDT.xlsx")
	require.Eventually(t, func() bool {
		if snap := fixture.Workbook.Current(); snap != nil && snap.Company.Ticker == "RDDT" {
			return true
		}
		writeWorkbook(t, path)
		return false
	}, 10*time.Second, 400*time.Millisecond)

	snap := fixture.Workbook.Current()
	require.Len(t, snap.Company.Metrics, 1)
	assert.Equal(t, "Income Statement", snap.Company.Metrics[0].Section.Name)

	cancel()
	assert.NoError(t, <-done)
}
