// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	gridFeature "github.com/leapstack-labs/leapgrid/internal/ui/features/grid"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/internal/ui/resources"
	"github.com/leapstack-labs/leapgrid/internal/workbook"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	wb *workbook.Workbook,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) error {
	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	if err := gridFeature.SetupRoutes(router, wb, sessionStore, notify, logger, isDev); err != nil {
		return err
	}

	return nil
}
