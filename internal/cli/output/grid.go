package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/leapgrid/internal/decorate"
	"github.com/leapstack-labs/leapgrid/internal/tui"
	"github.com/leapstack-labs/leapgrid/internal/workbook"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// NoDataMessage is printed for an empty grid.
const NoDataMessage = "No data available"

// GridOutput is the structured form of a decorated grid.
type GridOutput struct {
	Company    string          `json:"company,omitempty" yaml:"company,omitempty"`
	Ticker     string          `json:"ticker,omitempty" yaml:"ticker,omitempty"`
	Generation uint64          `json:"generation" yaml:"generation"`
	Columns    []string        `json:"columns" yaml:"columns"`
	Rows       []GridRowOutput `json:"rows" yaml:"rows"`
}

// GridRowOutput is one row of display text.
type GridRowOutput struct {
	ID    string   `json:"id" yaml:"id"`
	Type  string   `json:"type" yaml:"type"`
	Cells []string `json:"cells" yaml:"cells"`
}

// NewGridOutput decorates every cell of snap into display text.
func NewGridOutput(snap *workbook.Snapshot) GridOutput {
	return newGridOutput(snap, snap.Decorate())
}

func newGridOutput(snap *workbook.Snapshot, decorateCell decorate.DecorateFunc) GridOutput {
	out := GridOutput{Columns: []string{}, Rows: []GridRowOutput{}}
	if snap == nil {
		return out
	}
	out.Generation = snap.Generation
	if snap.Company != nil {
		out.Company = snap.Company.Company
		out.Ticker = snap.Company.Ticker
	}
	if snap.Empty() {
		return out
	}
	for _, c := range snap.Model.Columns {
		out.Columns = append(out.Columns, c.Name)
	}
	for ri, row := range snap.Model.Rows {
		cells := make([]string, len(snap.Model.Columns))
		for ci := range cells {
			cells[ci] = decorateCell.At(snap.Model, ri, ci).Text
		}
		out.Rows = append(out.Rows, GridRowOutput{ID: row.ID, Type: string(row.Type), Cells: cells})
	}
	return out
}

// Grid renders a snapshot with its own cell decoration.
func (r *Renderer) Grid(snap *workbook.Snapshot) error {
	return r.DecoratedGrid(snap, snap.Decorate())
}

// DecoratedGrid renders snap, drawing every cell as decorateCell returns
// it. Text output applies cell colors when writing to a terminal.
func (r *Renderer) DecoratedGrid(snap *workbook.Snapshot, decorateCell decorate.DecorateFunc) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON || mode == ModeYAML {
		return r.Data(newGridOutput(snap, decorateCell))
	}
	if snap.Empty() {
		r.Muted(NoDataMessage)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	if snap.Company != nil {
		t.SetTitle(gridTitle(snap.Company))
	}

	cols := snap.Model.Columns
	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		header[i] = c.Name
		if i >= core.FirstPeriodIndex {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	styled := mode == ModeText && r.isTTY
	for ri := range snap.Model.Rows {
		row := make(table.Row, len(cols))
		for ci := range cols {
			d := decorateCell.At(snap.Model, ri, ci)
			cell := d.Text
			if d.Style.Align != decorate.AlignRight {
				cell = strings.Repeat(" ", tui.Indent(d.Style)) + cell
			}
			if styled && cell != "" {
				cell = tui.StyleFor(r.lip, d.Style).Render(cell)
			}
			row[ci] = cell
		}
		t.AppendRow(row)
	}

	if mode == ModeMarkdown {
		t.RenderMarkdown()
		return nil
	}
	t.Render()
	return nil
}

func gridTitle(c *core.Company) string {
	if c.Ticker == "" {
		return c.Company
	}
	return fmt.Sprintf("%s (%s)", c.Company, c.Ticker)
}
