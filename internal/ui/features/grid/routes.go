package grid

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/internal/workbook"
)

// SetupRoutes configures routes for the grid feature.
func SetupRoutes(
	router chi.Router,
	wb *workbook.Workbook,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(wb, sessionStore, notify, logger, isDev)

	router.Get("/", handlers.GridPage)
	router.Get("/updates", handlers.GridUpdates)
	router.Post("/refresh", handlers.Refresh)
	router.Get("/preview", handlers.Preview)
	router.Post("/preview/dismiss", handlers.DismissPreview)
	router.Get("/open", handlers.Open)
	router.Get("/download", handlers.Download)

	router.Get("/api/grid", handlers.APIGrid)
	router.Get("/api/grid/cells", handlers.APICells)

	return nil
}
