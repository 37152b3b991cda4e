package decorate

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/leapgrid/internal/grid"
	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func testModel() core.GridModel {
	metric := func(name, unit string, v any) core.Metric {
		return core.Metric{
			Section:  core.HierarchyNode{Name: "Income Statement", Order: 1},
			Category: core.HierarchyNode{Name: "Revenue", Order: 2},
			Name:     core.NameNode{Name: name},
			Unit:     unit,
			Source:   core.Source{Value: "10-K", Link: "https://example.com/10k"},
			TagID:    strings.ToUpper(name),
			Values: []core.PeriodValue{
				{Period: "Q1", Fiscal: "1Q24", FiscalDate: "2024-03-31", Value: v},
				{Period: "Q2", Fiscal: "2Q24", FiscalDate: "2024-06-30", Value: 1.0},
			},
		}
	}
	return grid.Build(&core.Company{
		Ticker: "RDDT",
		Metrics: []core.Metric{
			metric("Revenue", "Dollar", 2500000.0),
			metric("Users", "Count", -45000.0),
		},
	})
}

func dataRow(unit string, cells map[string]core.Cell) core.GridRow {
	return core.GridRow{
		ID:         "data-X-0",
		Type:       core.RowData,
		Name:       "X",
		Unit:       unit,
		Source:     "10-Q",
		SourceLink: "https://example.com/src",
		Cells:      cells,
	}
}

func TestResolve_DollarFormatting(t *testing.T) {
	r := NewResolver(testModel())

	d := r.Resolve(dataRow("Dollar", nil), 4, core.Number(2.5))

	assert.Equal(t, "$2.50", d.Text)
	assert.True(t, d.Numeric)
	assert.Equal(t, AlignRight, d.Style.Align)
	assert.Equal(t, NumericPadRight, d.Style.PaddingRight)
}

func TestResolve_NegativeAccounting(t *testing.T) {
	r := NewResolver(testModel())

	tests := []struct {
		name string
		unit string
		v    float64
		want string
	}{
		{"plain negative", "Count", -45000, "(45,000.0)"},
		{"dollar negative", "Dollar", -1234.5, "($1,234.50)"},
		{"plain positive", "Count", 1234567.89, "1,234,567.9"},
		{"half rounds away from zero", "Count", 0.25, "0.3"},
		{"negative half", "Count", -0.25, "(0.3)"},
		{"zero", "Count", 0, "0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.Resolve(dataRow(tt.unit, nil), 5, core.Number(tt.v))
			assert.Equal(t, tt.want, d.Text)
			assert.NotContains(t, d.Text, "-")
		})
	}
}

func TestResolve_NumericFormattingOnlyInPeriodColumns(t *testing.T) {
	r := NewResolver(testModel())

	d := r.Resolve(dataRow("Count", nil), 1, core.Number(-5))

	assert.Equal(t, "-5", d.Text)
	assert.False(t, d.Numeric)
	assert.Equal(t, AlignLeft, d.Style.Align)
}

func TestResolve_TextPassesThrough(t *testing.T) {
	r := NewResolver(testModel())

	d := r.Resolve(dataRow("Dollar", nil), 4, core.Text("N/A"))

	assert.Equal(t, "N/A", d.Text)
	assert.False(t, d.Numeric)
}

func TestResolve_ColumnVerticalBorders(t *testing.T) {
	model := testModel()
	last := len(model.Rows) - 1
	cell := model.Rows[last].Cells["Q2"]
	cell.Styling = &core.Styling{Border: "left right"}
	model.Rows[last].Cells["Q2"] = cell

	r := NewResolver(model)

	assert.False(t, r.HasVerticalBorder(4))
	assert.True(t, r.HasVerticalBorder(5))
	for i, row := range model.Rows {
		d := r.At(model, i, 5)
		assert.False(t, d.Style.BorderLeft.IsZero(), "row %s", row.ID)
		assert.False(t, d.Style.BorderRight.IsZero(), "row %s", row.ID)

		other := r.At(model, i, 4)
		if row.Type != core.RowHeader && row.Type != core.RowSection {
			assert.True(t, other.Style.BorderLeft.IsZero(), "row %s", row.ID)
		}
	}
}

func TestResolve_SingleSideDoesNotBorderColumn(t *testing.T) {
	model := testModel()
	last := len(model.Rows) - 1
	cell := model.Rows[last].Cells["Q1"]
	cell.Styling = &core.Styling{Border: "left"}
	model.Rows[last].Cells["Q1"] = cell

	assert.False(t, NewResolver(model).HasVerticalBorder(4))
}

func TestResolve_RowTypeCascade(t *testing.T) {
	r := NewResolver(testModel())
	styled := &core.Styling{TextBold: true, Indents: 2, TextColor: "red", BackgroundColor: "yellow"}

	t.Run("header", func(t *testing.T) {
		d := r.Resolve(core.GridRow{Type: core.RowHeader, Styling: styled}, 0, core.Text("Calendar"))
		assert.Equal(t, HeaderBackground, d.Style.Background)
		assert.Equal(t, ReservedForeground, d.Style.Color)
		assert.True(t, d.Style.Bold)
		assert.Equal(t, Border{Width: 1, Color: HeaderBackground}, d.Style.BorderTop)
		assert.Equal(t, Border{Width: 1, Color: HeaderBackground}, d.Style.BorderRight)
		assert.Equal(t, BasePaddingLeft, d.Style.PaddingLeft)
	})

	t.Run("section", func(t *testing.T) {
		d := r.Resolve(core.GridRow{Type: core.RowSection, Styling: styled}, 0, core.Text("Income"))
		assert.Equal(t, SectionBackground, d.Style.Background)
		assert.Equal(t, ReservedForeground, d.Style.Color)
		assert.True(t, d.Style.Bold)
		assert.Equal(t, 2*IndentUnit, d.Style.PaddingLeft)
		assert.Equal(t, Border{Width: 1, Color: SectionBackground}, d.Style.BorderBottom)
	})

	t.Run("section without styling is not bold", func(t *testing.T) {
		d := r.Resolve(core.GridRow{Type: core.RowSection}, 0, core.Text("Income"))
		assert.False(t, d.Style.Bold)
	})

	t.Run("category bold by default", func(t *testing.T) {
		d := r.Resolve(core.GridRow{Type: core.RowCategory}, 0, core.Text("Revenue"))
		assert.True(t, d.Style.Bold)
		assert.Empty(t, d.Style.Background)
	})

	t.Run("subcategory uses row styling", func(t *testing.T) {
		d := r.Resolve(core.GridRow{Type: core.RowSubcategory, Styling: &core.Styling{Indents: 1}}, 0, core.Text("x"))
		assert.False(t, d.Style.Bold)
		assert.Equal(t, IndentUnit, d.Style.PaddingLeft)
	})

	t.Run("empty is transparent", func(t *testing.T) {
		d := r.Resolve(core.GridRow{Type: core.RowEmpty}, 3, core.Text(""))
		assert.True(t, d.Style.Transparent)
		assert.Contains(t, d.Style.CSS(), "background:transparent;")
	})
}

func TestResolve_DataColumnRules(t *testing.T) {
	r := NewResolver(testModel())
	row := dataRow("Count", map[string]core.Cell{
		"Q1": {Value: core.Number(1), Styling: &core.Styling{TextBold: true, TextColor: "#0000FF", Indents: 1}},
	})
	row.Styling = &core.Styling{TextBold: true, Indents: 3, TextColor: "green"}

	name := r.Resolve(row, 0, core.Text("X"))
	assert.True(t, name.Style.Bold)
	assert.Equal(t, 3*IndentUnit, name.Style.PaddingLeft)
	assert.Empty(t, name.Style.Color)

	src := r.Resolve(row, 2, core.Text("10-Q"))
	assert.Equal(t, SourceAccent, src.Style.Color)
	assert.False(t, src.Style.Bold)

	val := r.Resolve(row, 4, core.Number(1))
	assert.True(t, val.Style.Bold)
	assert.Equal(t, "#0000FF", val.Style.Color)
	assert.Equal(t, IndentUnit, val.Style.PaddingLeft)

	unstyled := r.Resolve(row, 5, core.Number(1))
	assert.False(t, unstyled.Style.Bold)
	assert.Equal(t, BasePaddingLeft, unstyled.Style.PaddingLeft)
}

func TestResolve_RowRules(t *testing.T) {
	r := NewResolver(testModel())
	row := dataRow("Count", nil)
	row.Styling = &core.Styling{Border: "top bottom"}

	for col := 0; col < 6; col++ {
		d := r.Resolve(row, col, core.Text(""))
		assert.Equal(t, Border{Width: 1, Color: RuleColor}, d.Style.BorderTop, "col %d", col)
		assert.Equal(t, Border{Width: 1, Color: RuleColor}, d.Style.BorderBottom, "col %d", col)
		assert.True(t, d.Style.BorderLeft.IsZero())
	}
}

func TestResolve_LinksAndComments(t *testing.T) {
	r := NewResolver(testModel())
	row := dataRow("Count", map[string]core.Cell{
		"Q1": {Value: core.Number(1), Link: "https://example.com/q1", Comment: "restated"},
	})

	src := r.Resolve(row, 2, core.Text("10-Q"))
	assert.Equal(t, "https://example.com/src", src.Link)
	assert.Equal(t, src.Link, src.Tooltip)

	val := r.Resolve(row, 4, core.Number(1))
	assert.Equal(t, "https://example.com/q1", val.Link)
	assert.Equal(t, "Comment: restated", val.Comment)

	name := r.Resolve(row, 0, core.Text("X"))
	assert.Empty(t, name.Link)
	assert.Empty(t, name.Tooltip)
}

func TestResolve_IsPure(t *testing.T) {
	r := NewResolver(testModel())
	row := dataRow("Dollar", nil)

	assert.Equal(t, r.Resolve(row, 4, core.Number(-3)), r.Resolve(row, 4, core.Number(-3)))
	assert.Equal(t, r.Resolve(row, 4, core.Number(-3)), r.Func()(row, 4, core.Number(-3)))
}

func TestDecorateFunc_At(t *testing.T) {
	model := testModel()
	r := NewResolver(model)

	for ri := range model.Rows {
		for ci := range model.Columns {
			assert.Equal(t, r.At(model, ri, ci), r.Func().At(model, ri, ci))
		}
	}

	var calls int
	upper := DecorateFunc(func(row core.GridRow, col int, raw core.Value) Decoration {
		calls++
		return Decoration{Text: strings.ToUpper(raw.String())}
	})
	assert.Equal(t, strings.ToUpper(model.Value(1, 0).String()), upper.At(model, 1, 0).Text)
	assert.Equal(t, Decoration{}, upper.At(model, -1, 0))
	assert.Equal(t, Decoration{}, upper.At(model, len(model.Rows), 0))
	assert.Equal(t, 1, calls, "out-of-range rows never reach the hook")

	var none DecorateFunc
	assert.Equal(t, Decoration{}, none.At(model, 0, 0))
}

func TestResolve_CustomCurrency(t *testing.T) {
	r := NewResolver(testModel(), WithCurrency("Euro", currency.EUR))

	d := r.Resolve(dataRow("Euro", nil), 4, core.Number(12))

	assert.Equal(t, "€12.00", d.Text)
}

func TestAt_ModelScenario(t *testing.T) {
	model := testModel()
	r := NewResolver(model)

	var revenue, users int
	for i, row := range model.Rows {
		switch row.Name {
		case "Revenue":
			if row.Type == core.RowData {
				revenue = i
			}
		case "Users":
			users = i
		}
	}
	require.NotZero(t, revenue)
	require.NotZero(t, users)

	assert.Equal(t, "$2.50", r.At(model, revenue, 4).Text)
	assert.Equal(t, "(45,000.0)", r.At(model, users, 4).Text)
	assert.Equal(t, Decoration{}, r.At(model, 99, 0))
}

func TestLinkAt(t *testing.T) {
	model := testModel()
	last := len(model.Rows) - 1
	cell := model.Rows[last].Cells["Q2"]
	cell.Link = "https://example.com/q2"
	model.Rows[last].Cells["Q2"] = cell

	assert.Equal(t, "https://example.com/10k", LinkAt(model, last, 2))
	assert.Equal(t, "https://example.com/q2", LinkAt(model, last, 5))
	assert.Empty(t, LinkAt(model, last, 4))
	assert.Empty(t, LinkAt(model, last, 0))
	assert.Empty(t, LinkAt(model, last, 3))
	assert.Empty(t, LinkAt(model, -1, 2))
	assert.Empty(t, LinkAt(model, last, 42))
}

func TestCellStyle_CSS(t *testing.T) {
	s := CellStyle{Background: "#000080", Color: "white", Bold: true, PaddingLeft: 24, Align: AlignRight, PaddingRight: 12}
	s.BorderTop = rule(RuleColor)

	css := s.CSS()

	assert.Contains(t, css, "background:#000080;")
	assert.Contains(t, css, "color:white;")
	assert.Contains(t, css, "font-weight:bold;")
	assert.Contains(t, css, "padding-left:24px;")
	assert.Contains(t, css, "padding-right:12px;")
	assert.Contains(t, css, "text-align:right;")
	assert.Contains(t, css, "border-top:1px solid black;")
	assert.Contains(t, css, "border-left:0px;")
}
