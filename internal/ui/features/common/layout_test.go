package common

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage(t *testing.T) {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<main id="content"></main>`)
		return err
	})

	var buf bytes.Buffer
	err := Page(PageData{Title: "Acme <Corp>", Init: "@post('/refresh')"}, body).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, "<title>Acme &lt;Corp&gt; - LeapGrid</title>")
	assert.Contains(t, html, "/static/leapgrid.css")
	assert.Contains(t, html, `data-init="@post(&#39;/refresh&#39;)"`)
	assert.Contains(t, html, `<main id="content"></main></body></html>`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPrinter_StopsAtFirstError(t *testing.T) {
	p := Printer{W: failingWriter{}}
	p.Print("a")
	p.Printf("%d", 1)
	assert.EqualError(t, p.Err, "closed")
}

func TestPrinter_EscapesData(t *testing.T) {
	var buf bytes.Buffer
	p := Printer{W: &buf}
	p.Print("<a")
	p.Attr("title", `x" onclick="y`)
	p.URLAttr("href", "javascript:alert(1)")
	p.Print(">")
	p.Text("<b>&</b>")
	p.Print("</a>")
	require.NoError(t, p.Err)

	html := buf.String()
	assert.Contains(t, html, `title="x&#34; onclick=&#34;y"`)
	assert.NotContains(t, html, "javascript:")
	assert.Contains(t, html, ">&lt;b&gt;&amp;&lt;/b&gt;</a>")
}
