package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/leapgrid/internal/decorate"
)

func TestColor(t *testing.T) {
	tests := []struct {
		in   string
		want lipgloss.TerminalColor
	}{
		{"", lipgloss.NoColor{}},
		{"#000080", lipgloss.Color("#000080")},
		{"white", lipgloss.Color("15")},
		{" Blue ", lipgloss.Color("12")},
		{"chartreuse", lipgloss.NoColor{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Color(tt.in))
		})
	}
}

func TestStyle(t *testing.T) {
	st := Style(decorate.CellStyle{
		Background:   "#000000",
		Color:        "white",
		Bold:         true,
		Align:        decorate.AlignRight,
		BorderBottom: decorate.Border{Width: 1, Color: "black"},
	})
	assert.True(t, st.GetBold())
	assert.True(t, st.GetUnderline())
	assert.Equal(t, lipgloss.Right, st.GetAlignHorizontal())
	assert.Equal(t, lipgloss.Color("#000000"), st.GetBackground())
	assert.Equal(t, lipgloss.Color("15"), st.GetForeground())

	transparent := Style(decorate.CellStyle{Background: "#000000", Transparent: true})
	assert.Equal(t, lipgloss.NoColor{}, transparent.GetBackground())
}

func TestCell_FixedWidth(t *testing.T) {
	tests := []struct {
		name string
		dec  decorate.Decoration
	}{
		{"short", decorate.Decoration{Text: "$2.50", Style: decorate.CellStyle{Align: decorate.AlignRight}}},
		{"long", decorate.Decoration{Text: "A very long metric name indeed"}},
		{"indented", decorate.Decoration{Text: "Child", Style: decorate.CellStyle{PaddingLeft: 2 * decorate.IndentUnit}}},
		{"commented", decorate.Decoration{Text: "1.0", Comment: "Comment: restated"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 12, lipgloss.Width(Cell(tt.dec, 12)))
		})
	}
	assert.Empty(t, Cell(decorate.Decoration{Text: "x"}, 0))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, 0, Indent(decorate.CellStyle{PaddingLeft: decorate.BasePaddingLeft}))
	assert.Equal(t, 4, Indent(decorate.CellStyle{PaddingLeft: 2 * decorate.IndentUnit}))
}

func TestSeparator(t *testing.T) {
	rule := decorate.Border{Width: 1, Color: "black"}
	plain := decorate.Decoration{}
	ruledRight := decorate.Decoration{Style: decorate.CellStyle{BorderRight: rule}}
	ruledLeft := decorate.Decoration{Style: decorate.CellStyle{BorderLeft: rule}}

	assert.Equal(t, " ", Separator(plain, plain))
	assert.Equal(t, "│", Separator(ruledRight, plain))
	assert.Equal(t, "│", Separator(plain, ruledLeft))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abc…", Truncate("abcdef", 4))
	assert.Equal(t, ".", Truncate("abcdef", 1))
}

func TestColumnWidth(t *testing.T) {
	assert.Equal(t, 25, ColumnWidth(250))
	assert.Equal(t, 12, ColumnWidth(120))
	assert.Equal(t, 4, ColumnWidth(10))
}
