// Package grid provides the grid viewer feature: the HTML page, the JSON
// API and the datastar refresh and link-preview endpoints.
package grid

import (
	"github.com/leapstack-labs/leapgrid/internal/decorate"
	"github.com/leapstack-labs/leapgrid/internal/workbook"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// RefreshSignals are the control panel inputs sent with a refresh.
type RefreshSignals struct {
	Ticker  string `json:"ticker"`
	Company string `json:"company"`
}

// Query returns the selector the signals describe.
func (s RefreshSignals) Query() core.Query {
	return core.Query{Ticker: s.Ticker, Company: s.Company}
}

// ViewData is everything the grid view renders.
type ViewData struct {
	Snapshot *workbook.Snapshot
	Query    core.Query

	// Loading marks a fetch in flight.
	Loading bool
	// AutoRefresh makes the client request a refresh as soon as the view
	// is mounted.
	AutoRefresh bool
	Error       string

	// Preview is the session's open link preview, if PreviewOpen.
	Preview     decorate.Preview
	PreviewOpen bool
}

// GridResponse is the body of GET /api/grid.
type GridResponse struct {
	Generation uint64            `json:"generation"`
	Rows       []core.GridRow    `json:"rows"`
	Columns    []core.GridColumn `json:"columns"`
}

// CellResponse is one decorated cell of GET /api/grid/cells.
type CellResponse struct {
	Row int    `json:"row"`
	Col int    `json:"col"`
	CSS string `json:"css"`
	decorate.Decoration
}

// CellsResponse is the body of GET /api/grid/cells.
type CellsResponse struct {
	Generation uint64         `json:"generation"`
	Cells      []CellResponse `json:"cells"`
}
