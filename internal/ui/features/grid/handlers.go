package grid

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapgrid/internal/decorate"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/internal/workbook"
	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

// Handlers provides HTTP handlers for the grid feature.
type Handlers struct {
	workbook     *workbook.Workbook
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	gates        *gateRegistry
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(wb *workbook.Workbook, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		workbook:     wb,
		sessionStore: sessionStore,
		notifier:     notify,
		gates:        newGateRegistry(),
		logger:       logger,
		isDev:        isDev,
	}
}

func (h *Handlers) viewData() ViewData {
	return ViewData{Snapshot: h.workbook.Current(), Query: h.workbook.Query()}
}

// GridPage renders the full viewer. Before the first refresh the grid
// renders its loading state and triggers one. A preview the session left
// open is rendered again, since its gate ignores hovers until dismissed.
func (h *Handlers) GridPage(w http.ResponseWriter, r *http.Request) {
	id := sessionID(h.sessionStore, w, r)

	data := h.viewData()
	data.Preview, data.PreviewOpen = h.gates.get(id).Current()
	if data.Snapshot == nil {
		data.Loading = true
		data.AutoRefresh = true
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := GridPage(data, h.isDev).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GridUpdates is the long-lived SSE endpoint. It sends nothing initially
// and re-renders the grid on every published snapshot.
func (h *Handlers) GridUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := h.sendView(sse, h.viewData()); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) sendView(sse *datastar.ServerSentEventGenerator, data ViewData) error {
	if err := sse.PatchElementTempl(View(data)); err != nil {
		return err
	}
	return sse.PatchElementTempl(Controls(data))
}

// Refresh pulls the payload and patches the grid with the result.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals RefreshSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Debug("refresh without signals", slog.String("error", err.Error()))
	}
	if q := signals.Query(); !q.IsZero() {
		h.workbook.SetQuery(q)
	}

	sse := datastar.NewSSE(w, r)

	loading := h.viewData()
	loading.Loading = true
	if err := sse.PatchElementTempl(View(loading)); err != nil {
		return
	}

	_, err := h.workbook.Refresh(r.Context())
	data := h.viewData()
	switch {
	case errors.Is(err, workbook.ErrStale):
		// A newer refresh already published; the update stream carries it.
		return
	case err == nil, errors.Is(err, core.ErrNoData):
	default:
		h.logger.Error("refresh failed", slog.String("query", data.Query.String()), slog.String("error", err.Error()))
		data.Error = err.Error()
	}

	if err := h.sendView(sse, data); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Preview opens the link preview for the hovered cell, unless the
// session already has one open.
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	id := sessionID(h.sessionStore, w, r)
	row, col, err := coordinates(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)

	snap := h.workbook.Current()
	if snap == nil {
		return
	}
	preview := decorate.Preview{Link: decorate.LinkAt(snap.Model, row, col), Row: row, Col: col}
	if !h.gates.get(id).Hover(preview) {
		return
	}
	if err := sse.PatchElementTempl(PreviewPane(preview, true)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// DismissPreview closes the session's open preview.
func (h *Handlers) DismissPreview(w http.ResponseWriter, r *http.Request) {
	id := sessionID(h.sessionStore, w, r)
	h.gates.get(id).Dismiss()

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(PreviewPane(decorate.Preview{}, false)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Open redirects to the link of the clicked cell.
func (h *Handlers) Open(w http.ResponseWriter, r *http.Request) {
	row, col, err := coordinates(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap := h.workbook.Current()
	if snap == nil {
		http.Error(w, NoDataMessage, http.StatusNotFound)
		return
	}
	link := decorate.LinkAt(snap.Model, row, col)
	if link == "" {
		http.Error(w, "cell has no link", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}

// Download sends the current payload as a JSON attachment.
func (h *Handlers) Download(w http.ResponseWriter, _ *http.Request) {
	snap := h.workbook.Current()
	if snap == nil || snap.Company == nil {
		http.Error(w, NoDataMessage, http.StatusNotFound)
		return
	}

	name := snap.Company.Ticker
	if name == "" {
		name = "company"
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"_data.json"))
	writeJSON(w, http.StatusOK, core.Payload{Success: true, Data: snap.Company})
}

// APIGrid returns the current model as JSON.
func (h *Handlers) APIGrid(w http.ResponseWriter, _ *http.Request) {
	resp := GridResponse{Rows: []core.GridRow{}, Columns: []core.GridColumn{}}
	if snap := h.workbook.Current(); !snap.Empty() {
		resp.Generation = snap.Generation
		resp.Rows = snap.Model.Rows
		resp.Columns = snap.Model.Columns
	}
	writeJSON(w, http.StatusOK, resp)
}

// APICells returns decorated cells as JSON. An optional row parameter
// restricts the response to one row.
func (h *Handlers) APICells(w http.ResponseWriter, r *http.Request) {
	resp := CellsResponse{Cells: []CellResponse{}}
	snap := h.workbook.Current()
	if snap.Empty() {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Generation = snap.Generation

	first, last := 0, len(snap.Model.Rows)-1
	if v := r.URL.Query().Get("row"); v != "" {
		row, err := strconv.Atoi(v)
		if err != nil || row < 0 || row > last {
			http.Error(w, fmt.Sprintf("invalid row %q", v), http.StatusBadRequest)
			return
		}
		first, last = row, row
	}

	decorateCell := snap.Decorate()
	for row := first; row <= last; row++ {
		for col := range snap.Model.Columns {
			d := decorateCell.At(snap.Model, row, col)
			resp.Cells = append(resp.Cells, CellResponse{Row: row, Col: col, CSS: d.Style.CSS(), Decoration: d})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func coordinates(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	row, err := strconv.Atoi(q.Get("row"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid row %q", q.Get("row"))
	}
	col, err := strconv.Atoi(q.Get("col"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid col %q", q.Get("col"))
	}
	return row, col, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
