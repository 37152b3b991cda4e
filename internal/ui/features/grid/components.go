package grid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/leapgrid/internal/decorate"
	"github.com/leapstack-labs/leapgrid/internal/ui/features/common"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Element ids patched over SSE.
const (
	ControlsID = "controls"
	ViewID     = "grid"
	PreviewID  = "preview"
)

// NoDataMessage is shown for an empty model.
const NoDataMessage = "No data available"

// GridPage is the full viewer document. An open preview is drawn again so
// its Close button survives a reload.
func GridPage(data ViewData, isDev bool) templ.Component {
	title := "Grid"
	if data.Snapshot != nil && data.Snapshot.Company != nil && data.Snapshot.Company.Company != "" {
		title = data.Snapshot.Company.Company
	}
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range []templ.Component{Controls(data), View(data), PreviewPane(data.Preview, data.PreviewOpen)} {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
	return common.Page(common.PageData{Title: title, IsDev: isDev, Init: "@get('/updates')"}, body)
}

// Controls renders the control panel.
func Controls(data ViewData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		signals, err := json.Marshal(RefreshSignals{Ticker: data.Query.Ticker, Company: data.Query.Company})
		if err != nil {
			return err
		}

		p := common.Printer{W: w}
		p.Print(`<div`)
		p.Attr("id", ControlsID)
		p.Attr("data-signals", string(signals))
		p.Print(`>`)
		p.Print(`<label>Ticker <input data-bind:ticker></label>`)
		p.Print(`<label>Company <input data-bind:company></label>`)
		p.Print(`<button data-on:click="@post('/refresh')">Pull Data</button>`)
		p.Print(`<a href="/download" download>Download JSON</a>`)
		p.Print(`<span class="status">`)
		if s := data.Snapshot; s != nil && !s.Empty() {
			p.Text(s.Query.String())
			p.Printf(" &middot; generation %d &middot; loaded ", s.Generation)
			p.Text(s.LoadedAt.Format("15:04:05"))
		}
		p.Print(`</span></div>`)
		return p.Err
	})
}

// View renders the grid container. The loading and error states are shown
// above the last published table, if any.
func View(data ViewData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := common.Printer{W: w}
		snap := data.Snapshot

		p.Print(`<div`)
		p.Attr("id", ViewID)
		if data.AutoRefresh {
			p.Print(` data-init="@post('/refresh')"`)
		}
		p.Print(`>`)

		switch {
		case data.Loading:
			p.Print(`<div class="state">Loading&hellip;</div>`)
		case data.Error != "":
			p.Print(`<div class="state error">Error: `)
			p.Text(data.Error)
			p.Print(`</div>`)
		case snap.Empty():
			p.Print(`<div class="state">`)
			p.Text(NoDataMessage)
			p.Print(`</div>`)
		}

		if !snap.Empty() {
			renderTable(&p, snap.Model, snap.Decorate())
		}
		p.Print(`</div>`)
		return p.Err
	})
}

func renderTable(p *common.Printer, model core.GridModel, decorateCell decorate.DecorateFunc) {
	p.Print(`<table class="grid"><colgroup>`)
	for _, col := range model.Columns {
		p.Printf(`<col style="width:%dpx">`, col.Width)
	}
	p.Print(`</colgroup><thead><tr>`)
	for _, col := range model.Columns {
		p.Print(`<th>`)
		p.Text(col.Name)
		p.Print(`</th>`)
	}
	p.Print(`</tr></thead><tbody>`)

	for r, row := range model.Rows {
		p.Print(`<tr`)
		p.Attr("id", row.ID)
		p.Attr("data-type", string(row.Type))
		p.Print(`>`)
		for c := range model.Columns {
			renderCell(p, r, c, decorateCell.At(model, r, c))
		}
		p.Print(`</tr>`)
	}
	p.Print(`</tbody></table>`)
}

func renderCell(p *common.Printer, row, col int, d decorate.Decoration) {
	p.Print(`<td`)
	p.Attr("style", d.Style.CSS())
	if title := cellTitle(d); title != "" {
		p.Attr("title", title)
	}
	if d.Link != "" {
		coords := url.Values{"row": {common.Itoa(row)}, "col": {common.Itoa(col)}}.Encode()
		p.Print(` class="linked"`)
		p.Attr("data-on:mouseenter", "@get('/preview?"+coords+"')")
		p.Attr("data-on:click", "window.open('/open?"+coords+"', '_blank')")
	}
	p.Print(`>`)
	if d.Comment != "" {
		p.Print(`<span class="comment"></span>`)
	}
	p.Text(d.Text)
	p.Print(`</td>`)
}

func cellTitle(d decorate.Decoration) string {
	switch {
	case d.Tooltip != "" && d.Comment != "":
		return fmt.Sprintf("%s\n%s", d.Tooltip, d.Comment)
	case d.Tooltip != "":
		return d.Tooltip
	}
	return d.Comment
}

// PreviewPane renders the link preview popover, or its empty placeholder.
func PreviewPane(preview decorate.Preview, open bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := common.Printer{W: w}
		if !open {
			p.Printf(`<div id="%s"></div>`, PreviewID)
			return p.Err
		}
		p.Printf(`<div id="%s" data-row="%d" data-col="%d">`, PreviewID, preview.Row, preview.Col)
		p.Print(`<header><a`)
		p.URLAttr("href", preview.Link)
		p.Print(` target="_blank" rel="noopener">`)
		p.Text(preview.Link)
		p.Print(`</a><button data-on:click="@post('/preview/dismiss')">Close</button></header>`)
		p.Print(`<iframe`)
		p.URLAttr("src", preview.Link)
		p.Print(` sandbox></iframe></div>`)
		return p.Err
	})
}
