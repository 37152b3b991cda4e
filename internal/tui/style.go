package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/leapgrid/internal/decorate"
)

// Chrome styles.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	cursorStyle  = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
)

// namedColors maps the CSS color names used by workbook styling to ANSI
// colors. Hex colors are passed to lipgloss unchanged.
var namedColors = map[string]string{
	"black":  "0",
	"red":    "9",
	"green":  "10",
	"yellow": "11",
	"blue":   "12",
	"purple": "13",
	"cyan":   "14",
	"white":  "15",
	"gray":   "8",
	"grey":   "8",
}

// CharsPerPixel converts pixel widths and paddings into terminal cells.
const CharsPerPixel = 10

// Color converts a decoration color into a terminal color.
func Color(c string) lipgloss.TerminalColor {
	c = strings.TrimSpace(strings.ToLower(c))
	switch {
	case c == "":
		return lipgloss.NoColor{}
	case strings.HasPrefix(c, "#"):
		return lipgloss.Color(c)
	}
	if ansi, ok := namedColors[c]; ok {
		return lipgloss.Color(ansi)
	}
	return lipgloss.NoColor{}
}

// Style maps a resolved cell style onto a lipgloss style. Borders are not
// part of the style: vertical rules become column separators, a bottom rule
// becomes an underline.
func Style(s decorate.CellStyle) lipgloss.Style {
	return StyleFor(lipgloss.DefaultRenderer(), s)
}

// StyleFor is Style bound to a specific lipgloss renderer.
func StyleFor(r *lipgloss.Renderer, s decorate.CellStyle) lipgloss.Style {
	st := r.NewStyle()
	if !s.Transparent && s.Background != "" {
		st = st.Background(Color(s.Background))
	}
	if s.Color != "" {
		st = st.Foreground(Color(s.Color))
	}
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Align == decorate.AlignRight {
		st = st.Align(lipgloss.Right)
	}
	if !s.BorderBottom.IsZero() {
		st = st.Underline(true)
	}
	return st
}

// Indent returns the number of leading cells for a left padding.
func Indent(s decorate.CellStyle) int {
	return s.PaddingLeft / decorate.IndentUnit * 2
}

// Cell renders one decorated cell into exactly width terminal cells.
func Cell(d decorate.Decoration, width int) string {
	if width <= 0 {
		return ""
	}
	text := d.Text
	if d.Comment != "" {
		text += "*"
	}
	if d.Style.Align != decorate.AlignRight {
		text = strings.Repeat(" ", Indent(d.Style)) + text
	}
	return Style(d.Style).Width(width).Render(Truncate(text, width))
}

// Separator returns the glyph drawn between two adjacent cells.
func Separator(left, right decorate.Decoration) string {
	if !left.Style.BorderRight.IsZero() || !right.Style.BorderLeft.IsZero() {
		return "│"
	}
	return " "
}

// Truncate shortens s to at most width terminal cells, marking the cut.
func Truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return strings.Repeat(".", max(width, 0))
	}
	var b strings.Builder
	for _, r := range s {
		if lipgloss.Width(b.String()+string(r)) > width-1 {
			break
		}
		b.WriteRune(r)
	}
	return b.String() + "…"
}

// ColumnWidth converts a pixel column width into terminal cells.
func ColumnWidth(px int) int {
	w := px / CharsPerPixel
	if w < 4 {
		w = 4
	}
	return w
}
