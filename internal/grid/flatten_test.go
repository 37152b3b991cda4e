package grid

import (
	"testing"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(name string, order int) core.HierarchyNode {
	return core.HierarchyNode{Name: name, Order: order}
}

func values(pairs ...any) []core.PeriodValue {
	out := make([]core.PeriodValue, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, core.PeriodValue{
			Period:     pairs[i].(string),
			Fiscal:     "F" + pairs[i].(string),
			FiscalDate: "2024-03-31T00:00:00",
			Value:      pairs[i+1],
		})
	}
	return out
}

func revenueMetric(name, tag string, vals []core.PeriodValue) core.Metric {
	return core.Metric{
		Section:  node("Income Statement", 1),
		Category: node("Revenue", 2),
		Name:     core.NameNode{Name: name},
		Unit:     "Dollar",
		Source:   core.Source{Value: "10-Q", Link: "https://example.com/10q"},
		TagID:    tag,
		Values:   vals,
	}
}

func rowTypes(rows []core.GridRow) []core.RowType {
	types := make([]core.RowType, len(rows))
	for i, r := range rows {
		types[i] = r.Type
	}
	return types
}

func TestFlatten_SingleMetric(t *testing.T) {
	metrics := []core.Metric{revenueMetric("Total Revenue", "REV", values("Q1-2024", 2500000.0))}

	rows := Flatten(metrics)

	require.Len(t, rows, 8)
	assert.Equal(t, []core.RowType{
		core.RowHeader, core.RowHeader, core.RowHeader,
		core.RowSection, core.RowEmpty,
		core.RowSection, core.RowCategory, core.RowData,
	}, rowTypes(rows))

	assert.Equal(t, "Document", rows[3].Name)
	assert.Equal(t, "Income Statement", rows[5].Name)
	assert.Equal(t, "Revenue", rows[6].Name)

	data := rows[7]
	assert.Equal(t, "Total Revenue", data.Name)
	assert.Equal(t, "Dollar", data.Unit)
	assert.Equal(t, "10-Q", data.Source)
	assert.Equal(t, "https://example.com/10q", data.SourceLink)
	assert.Equal(t, core.Number(2.5), data.Cells["Q1-2024"].Value)
}

func TestFlatten_HeaderRows(t *testing.T) {
	metrics := []core.Metric{revenueMetric("Total Revenue", "REV", values("2024Q1", 1.0, "2024Q2", 2.0))}

	rows := Flatten(metrics)

	calendar, fiscal, fiscalDate := rows[0], rows[1], rows[2]
	assert.Equal(t, "Calendar", calendar.Name)
	assert.Equal(t, "Unit", calendar.Unit)
	assert.Equal(t, "Tag ID", calendar.TagID)
	assert.Equal(t, core.Text("2024Q2"), calendar.Cells["2024Q2"].Value)
	assert.Equal(t, core.Text("F2024Q1"), fiscal.Cells["2024Q1"].Value)
	assert.Equal(t, core.Text("03/31/2024"), fiscalDate.Cells["2024Q1"].Value)
}

func TestFlatten_DeduplicatesHierarchy(t *testing.T) {
	metrics := []core.Metric{
		revenueMetric("Product Revenue", "PR", values("Q1", 10.0)),
		revenueMetric("Service Revenue", "SR", values("Q1", 20.0)),
	}

	rows := Flatten(metrics)

	var sections, categories, data int
	for _, r := range rows[5:] {
		switch r.Type {
		case core.RowSection:
			sections++
		case core.RowCategory:
			categories++
		case core.RowData:
			data++
		}
	}
	assert.Equal(t, 1, sections)
	assert.Equal(t, 1, categories)
	assert.Equal(t, 2, data)
}

func TestFlatten_SameNameDifferentOrderIsDistinct(t *testing.T) {
	a := revenueMetric("A", "A", values("Q1", 1.0))
	b := revenueMetric("B", "B", values("Q1", 2.0))
	b.Category = node("Revenue", 7)

	rows := Flatten([]core.Metric{a, b})

	var categories []string
	for _, r := range rows {
		if r.Type == core.RowCategory {
			categories = append(categories, r.ID)
		}
	}
	assert.Len(t, categories, 2)
}

func TestFlatten_NonContiguousNodeNotRepeated(t *testing.T) {
	a := revenueMetric("A", "A", values("Q1", 1.0))
	b := revenueMetric("B", "B", values("Q1", 2.0))
	b.Category = node("Costs", 3)
	c := revenueMetric("C", "C", values("Q1", 3.0))

	rows := Flatten([]core.Metric{a, b, c})

	var names []string
	for _, r := range rows[5:] {
		names = append(names, r.Name)
	}
	// Input order wins: C lands after Costs with no repeated Revenue row.
	assert.Equal(t, []string{"Income Statement", "Revenue", "A", "Costs", "B", "C"}, names)
}

func TestFlatten_EmptyRowAfter(t *testing.T) {
	m := revenueMetric("Total Revenue", "REV", values("Q1", 1.0))
	m.Category.EmptyRowAfter = true
	m.Name.EmptyRowAfter = true

	rows := Flatten([]core.Metric{m})

	require.Len(t, rows, 10)
	assert.Equal(t, core.RowCategory, rows[6].Type)
	assert.Equal(t, core.RowEmpty, rows[7].Type)
	assert.Equal(t, core.RowData, rows[8].Type)
	assert.Equal(t, core.RowEmpty, rows[9].Type)
}

func TestFlatten_EmptyNamesSkipped(t *testing.T) {
	m := revenueMetric("Total Revenue", "REV", values("Q1", 1.0))
	m.Category = core.HierarchyNode{}
	m.Subcategory = core.HierarchyNode{Order: 4}

	rows := Flatten([]core.Metric{m})

	assert.Equal(t, []core.RowType{
		core.RowHeader, core.RowHeader, core.RowHeader,
		core.RowSection, core.RowEmpty,
		core.RowSection, core.RowData,
	}, rowTypes(rows))
}

func TestFlatten_NoMetrics(t *testing.T) {
	rows := Flatten(nil)

	require.Len(t, rows, 5)
	for _, r := range rows[:3] {
		assert.Equal(t, core.RowHeader, r.Type)
		assert.Empty(t, r.Cells)
	}
	assert.Equal(t, "Document", rows[3].Name)
	assert.Equal(t, core.RowEmpty, rows[4].Type)
}

func TestFlatten_NullValueIsEmptyString(t *testing.T) {
	rows := Flatten([]core.Metric{revenueMetric("X", "X", values("Q1", nil))})

	cell := rows[len(rows)-1].Cells["Q1"]
	assert.True(t, cell.Value.IsEmpty())
	assert.False(t, cell.Value.IsNumber())
}

func TestFlatten_CurrencyString(t *testing.T) {
	rows := Flatten([]core.Metric{revenueMetric("X", "X", values("Q1", "$1,234.56"))})

	assert.Equal(t, core.Number(1234.56), rows[len(rows)-1].Cells["Q1"].Value)
}

func TestFlatten_CellMetadata(t *testing.T) {
	m := revenueMetric("X", "X", nil)
	m.Values = []core.PeriodValue{{
		Period:  "Q1",
		Value:   "=SUM(A1:A2)",
		Formula: core.StrPtr("=SUM(A1:A2)"),
		Comment: core.StrPtr("restated"),
		Link:    core.StrPtr("https://example.com/q1"),
		Styling: &core.Styling{TextColor: "#0000FF"},
	}}

	rows := Flatten([]core.Metric{m})
	cell := rows[len(rows)-1].Cells["Q1"]

	assert.Equal(t, "=SUM(A1:A2)", cell.Formula)
	assert.Equal(t, "restated", cell.Comment)
	assert.Equal(t, "https://example.com/q1", cell.Link)
	assert.Equal(t, "#0000FF", cell.Styling.TextColor)
}

func TestFlatten_MissingPeriodsPrefilled(t *testing.T) {
	first := revenueMetric("A", "A", values("Q1", 1.0, "Q2", 2.0))
	second := revenueMetric("B", "B", values("Q1", 3.0))

	rows := Flatten([]core.Metric{first, second})
	last := rows[len(rows)-1]

	cell, ok := last.Cell("Q2")
	require.True(t, ok)
	assert.True(t, cell.Value.IsEmpty())
}

func TestFlatten_UniqueIDs(t *testing.T) {
	// Same tag id on two metrics still yields distinct row ids.
	metrics := []core.Metric{
		revenueMetric("A", "DUP", values("Q1", 1.0)),
		revenueMetric("B", "DUP", values("Q1", 2.0)),
	}
	metrics[1].Name.EmptyRowAfter = true

	rows := Flatten(metrics)

	seen := make(map[string]bool)
	for _, r := range rows {
		assert.False(t, seen[r.ID], "duplicate id %q", r.ID)
		seen[r.ID] = true
	}
	assert.Equal(t, "section-document-0", rows[3].ID)
	assert.Equal(t, "empty-1", rows[4].ID)
	assert.Equal(t, "section-Income Statement-1-2", rows[5].ID)
	assert.Equal(t, "category-Revenue-2-3", rows[6].ID)
	assert.Equal(t, "data-DUP-4", rows[7].ID)
}

func TestFlatten_RowCountLaw(t *testing.T) {
	m1 := revenueMetric("A", "A", values("Q1", 1.0))
	m1.Subcategory = node("Products", 3)
	m1.Subcategory.EmptyRowAfter = true
	m2 := revenueMetric("B", "B", values("Q1", 2.0))
	m2.Subcategory = node("Products", 3)
	m2.Subsubcategory = node("Hardware", 4)
	m2.Name.EmptyRowAfter = true
	m3 := revenueMetric("C", "C", values("Q1", 3.0))
	m3.Section = node("Balance Sheet", 5)
	m3.Category = node("Assets", 6)

	metrics := []core.Metric{m1, m2, m3}
	rows := Flatten(metrics)

	// Distinct nodes: Income Statement, Revenue, Products, Hardware, Balance Sheet, Assets.
	distinct := 6
	// Spacers: after Products and after metric B.
	spacers := 2
	assert.Len(t, rows, 5+distinct+spacers+len(metrics))
}

func TestFlatten_DoesNotShareStateAcrossCalls(t *testing.T) {
	metrics := []core.Metric{revenueMetric("A", "A", values("Q1", 1.0))}

	first := Flatten(metrics)
	second := Flatten(metrics)

	assert.Equal(t, first, second)
}

func TestFormatFiscalDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-03-31", "03/31/2024"},
		{"2024-12-01T00:00:00", "12/01/2024"},
		{"2024-06-30 00:00:00", "06/30/2024"},
		{"", ""},
		{"FY2024", "FY2024"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFiscalDate(tt.in), tt.in)
	}
}
