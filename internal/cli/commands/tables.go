package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapgrid/internal/cli/output"
)

// renderRecords prints rows as a table in the renderer's effective mode.
// JSON and YAML modes encode records instead of the string rows.
func renderRecords(r *output.Renderer, cols []string, rows [][]string, records any) error {
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Data(records)
	}

	if len(rows) == 0 {
		r.Muted("(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, values := range rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = v
		}
		t.AppendRow(row)
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		t.RenderMarkdown()
		r.Println("")
		return nil
	}
	t.Render()
	r.Println(fmt.Sprintf("(%d rows)", len(rows)))
	return nil
}
