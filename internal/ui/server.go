// Package ui serves the grid viewer to browsers.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapgrid/internal/importer"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/internal/ui/router"
	"github.com/leapstack-labs/leapgrid/internal/workbook"
	"github.com/leapstack-labs/leapgrid/pkg/core"
	"golang.org/x/sync/errgroup"
)

// watchDebounce coalesces the burst of events a spreadsheet save produces.
const watchDebounce = 250 * time.Millisecond

// Server is the main UI server.
type Server struct {
	workbook     *workbook.Workbook
	store        core.Store
	importer     *importer.Importer
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
	importDir    string
	dev          bool
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Workbook      *workbook.Workbook
	Store         core.Store
	Importer      *importer.Importer
	Port          int
	Watch         bool
	ImportDir     string
	SessionSecret string
	Dev           bool
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance and subscribes it to the
// workbook's snapshot swaps.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		workbook:     cfg.Workbook,
		store:        cfg.Store,
		importer:     cfg.Importer,
		sessionStore: sessionStore,
		port:         cfg.Port,
		watch:        cfg.Watch,
		importDir:    cfg.ImportDir,
		dev:          cfg.Dev,
		logger:       logger,
		notifier:     notifier.New(),
	}
	cfg.Workbook.OnSwap(func(snap *workbook.Snapshot) {
		s.notifier.Broadcast(snap.Generation)
	})
	return s
}

// Handler builds the HTTP handler with middleware and all routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.workbook, s.sessionStore, s.notifier, s.logger, s.dev); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// URL is the address browsers should open.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", s.URL())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchImports(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchImports re-imports workbooks dropped into the import directory and
// refreshes the grid when the imported ticker is the one being viewed.
func (s *Server) watchImports(ctx context.Context) error {
	if s.importer == nil || s.store == nil {
		return fmt.Errorf("watching imports requires an importer and a store")
	}
	if err := os.MkdirAll(s.importDir, 0o750); err != nil {
		return fmt.Errorf("failed to create import directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.importDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.importDir, err)
	}
	s.logger.Info("watching for workbooks", "dir", s.importDir)

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isWorkbookEvent(event) {
				continue
			}

			path := event.Name
			mu.Lock()
			if t, ok := pending[path]; ok {
				t.Stop()
			}
			pending[path] = time.AfterFunc(watchDebounce, func() {
				mu.Lock()
				delete(pending, path)
				mu.Unlock()
				s.reimport(ctx, path)
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// isWorkbookEvent reports whether event is a write of an .xlsx file that is
// not an office lock file.
func isWorkbookEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Base(event.Name)
	return strings.EqualFold(filepath.Ext(name), ".xlsx") && !strings.HasPrefix(name, "~$")
}

func (s *Server) reimport(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	meta := importer.MetaFromPath(path)
	stored, err := s.importer.ImportToStore(ctx, s.store, path, meta)
	if err != nil {
		s.logger.Error("re-import failed", "file", path, "error", err)
		return
	}

	if q := s.workbook.Query(); q.Ticker != "" && !strings.EqualFold(q.Ticker, stored.Ticker) {
		s.logger.Debug("imported workbook is not being viewed", "ticker", stored.Ticker)
		return
	}
	if _, err := s.workbook.Refresh(ctx); err != nil && !errors.Is(err, workbook.ErrStale) {
		s.logger.Error("refresh after import failed", "ticker", stored.Ticker, "error", err)
	}
}
