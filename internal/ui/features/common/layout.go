// Package common provides the page shell and small helpers shared by UI
// features.
package common

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/leapgrid/internal/ui/resources"
)

// PageData describes the document shell around a feature's content.
type PageData struct {
	Title string
	IsDev bool
	// Init is an optional datastar expression run when the page loads.
	Init string
}

// Page wraps body in the HTML document shell.
func Page(data PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var p Printer
		p.W = w
		p.Print("<!doctype html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		p.Print("<title>")
		p.Text(data.Title)
		p.Print(" - LeapGrid</title><link rel=\"stylesheet\"")
		p.URLAttr("href", resources.StaticPath(resources.Stylesheet))
		p.Print("><script type=\"module\"")
		p.URLAttr("src", resources.DatastarScript)
		p.Print("></script></head><body")
		if data.Init != "" {
			p.Attr("data-init", data.Init)
		}
		if data.IsDev {
			p.Print(" data-dev")
		}
		p.Print(">")
		if p.Err != nil {
			return p.Err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		p.Print("</body></html>")
		return p.Err
	})
}

// Itoa formats n in base 10.
func Itoa(n int) string {
	return strconv.Itoa(n)
}
