package common

import (
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Printer writes markup and remembers the first write error, so component
// bodies can emit many fragments and check once.
//
// Print and Printf write markup verbatim and must only receive literals and
// numbers. Anything derived from data goes through Text, Attr or URLAttr.
type Printer struct {
	W   io.Writer
	Err error
}

// Print writes s.
func (p *Printer) Print(s string) {
	if p.Err != nil {
		return
	}
	_, p.Err = io.WriteString(p.W, s)
}

// Printf writes a formatted fragment. Arguments are not escaped.
func (p *Printer) Printf(format string, args ...any) {
	if p.Err != nil {
		return
	}
	_, p.Err = fmt.Fprintf(p.W, format, args...)
}

// Text writes s as escaped HTML text.
func (p *Printer) Text(s string) {
	p.Print(templ.EscapeString(s))
}

// Attr writes ` name="value"` with value escaped.
func (p *Printer) Attr(name, value string) {
	p.Print(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// URLAttr writes a URL attribute. Unsafe schemes such as javascript: are
// replaced by templ's sanitized placeholder.
func (p *Printer) URLAttr(name, value string) {
	p.Attr(name, string(templ.URL(value)))
}
