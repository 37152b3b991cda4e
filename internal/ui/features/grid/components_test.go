package grid

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/decorate"
	"github.com/leapstack-labs/leapgrid/internal/ui/features/common"
	"github.com/leapstack-labs/leapgrid/internal/workbook"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

const script = `<script>alert("x")</script>`

func sampleModel(t *testing.T) core.GridModel {
	t.Helper()
	_, fixture := setupTestHandlers(t, acme())
	model := fixture.Refresh(t).Model
	model.Columns = append([]core.GridColumn(nil), model.Columns...)
	model.Rows = append([]core.GridRow(nil), model.Rows...)
	return model
}

func TestRenderTable_UsesDecorateFunc(t *testing.T) {
	model := sampleModel(t)
	var calls int
	hook := decorate.DecorateFunc(func(row core.GridRow, col int, raw core.Value) decorate.Decoration {
		calls++
		return decorate.Decoration{Text: "cell-" + raw.String()}
	})

	var buf bytes.Buffer
	p := common.Printer{W: &buf}
	renderTable(&p, model, hook)
	require.NoError(t, p.Err)

	assert.Equal(t, len(model.Rows)*len(model.Columns), calls)
	assert.Contains(t, buf.String(), "cell-Total Revenue")
	assert.NotContains(t, buf.String(), "$2.50")
}

func TestRenderTable_EscapesData(t *testing.T) {
	model := sampleModel(t)
	model.Columns[0].Name = script
	model.Rows[0].ID = `"><img src=x onerror=alert(1)>`
	hook := decorate.DecorateFunc(func(core.GridRow, int, core.Value) decorate.Decoration {
		return decorate.Decoration{
			Text:    script,
			Tooltip: `" onmouseover="alert(1)`,
			Link:    "https://example.com/?q=<x>",
			Style:   decorate.CellStyle{Background: `red"><script>`},
		}
	})

	var buf bytes.Buffer
	p := common.Printer{W: &buf}
	renderTable(&p, model, hook)
	require.NoError(t, p.Err)

	html := buf.String()
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<img")
	assert.NotContains(t, html, `" onmouseover="`)
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestPreviewPane_SanitizesLink(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		want    string
		wantNot string
	}{
		{"https link kept", "https://example.com/10q#rev", `src="https://example.com/10q#rev"`, "TemplFailedSanitizationURL"},
		{"javascript scheme replaced", "javascript:alert(1)", "TemplFailedSanitizationURL", `src="javascript:`},
		{"markup escaped", `https://example.com/"><script>`, "&#34;&gt;&lt;script&gt;", "<script>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := PreviewPane(decorate.Preview{Link: tt.link, Row: 1, Col: 2}, true).Render(context.Background(), &buf)
			require.NoError(t, err)

			assert.Contains(t, buf.String(), tt.want)
			assert.NotContains(t, buf.String(), tt.wantNot)
			assert.Contains(t, buf.String(), "Close")
		})
	}
}

func TestView_EscapesError(t *testing.T) {
	var buf bytes.Buffer
	err := View(ViewData{Snapshot: &workbook.Snapshot{}, Error: script}).Render(context.Background(), &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Error: &lt;script&gt;")
	assert.NotContains(t, buf.String(), "<script>")
}
