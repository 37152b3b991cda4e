package grid

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Preamble labels.
const (
	CalendarLabel   = "Calendar"
	FiscalLabel     = "Fiscal"
	FiscalDateLabel = "Fiscal Date"
	DocumentLabel   = "Document"
)

// DocumentStyling is the styling of the fixed "Document" section row.
var DocumentStyling = core.Styling{
	TextBold:        true,
	BackgroundColor: "#000080",
	TextColor:       "white",
}

// hierarchyLevel describes one grouping level walked for every metric.
type hierarchyLevel struct {
	rowType core.RowType
	node    func(m *core.Metric) core.HierarchyNode
}

var hierarchyLevels = [...]hierarchyLevel{
	{core.RowSection, func(m *core.Metric) core.HierarchyNode { return m.Section }},
	{core.RowCategory, func(m *core.Metric) core.HierarchyNode { return m.Category }},
	{core.RowSubcategory, func(m *core.Metric) core.HierarchyNode { return m.Subcategory }},
	{core.RowSubsubcategory, func(m *core.Metric) core.HierarchyNode { return m.Subsubcategory }},
}

// flattenState is the accumulation state of a single Flatten pass.
type flattenState struct {
	rows    []core.GridRow
	seen    [len(hierarchyLevels)]map[core.HierarchyKey]struct{}
	periods []string
	next    int
}

func newFlattenState(metrics []core.Metric) *flattenState {
	s := &flattenState{
		rows:    make([]core.GridRow, 0, 5+len(metrics)*2),
		periods: Periods(metrics),
	}
	for i := range s.seen {
		s.seen[i] = make(map[core.HierarchyKey]struct{})
	}
	return s
}

func (s *flattenState) nextID(prefix string) string {
	id := fmt.Sprintf("%s-%d", prefix, s.next)
	s.next++
	return id
}

func (s *flattenState) spacer() {
	s.rows = append(s.rows, core.GridRow{ID: s.nextID("empty"), Type: core.RowEmpty})
}

// Flatten walks the metrics once, in input order, and emits the grid rows:
// the header and document preamble, each hierarchy node the first time its
// (name, order) pair is encountered, and exactly one data row per metric.
//
// The hierarchy Order field is carried as data; it never reorders rows.
func Flatten(metrics []core.Metric) []core.GridRow {
	s := newFlattenState(metrics)

	s.headers(metrics)
	docStyling := DocumentStyling
	s.rows = append(s.rows, core.GridRow{
		ID:      s.nextID("section-document"),
		Type:    core.RowSection,
		Name:    DocumentLabel,
		Styling: &docStyling,
	})
	s.spacer()

	for i := range metrics {
		m := &metrics[i]
		for level, hl := range hierarchyLevels {
			s.hierarchy(level, hl.rowType, hl.node(m))
		}
		s.data(m)
	}

	return s.rows
}

func (s *flattenState) headers(metrics []core.Metric) {
	calendar := core.GridRow{
		ID:     "header-calendar",
		Type:   core.RowHeader,
		Name:   CalendarLabel,
		Unit:   "Unit",
		Source: "Source",
		TagID:  "Tag ID",
	}
	fiscal := core.GridRow{ID: "header-fiscal", Type: core.RowHeader, Name: FiscalLabel}
	fiscalDate := core.GridRow{ID: "header-fiscalDate", Type: core.RowHeader, Name: FiscalDateLabel}

	if len(metrics) > 0 {
		values := metrics[0].Values
		calendar.Cells = make(map[string]core.Cell, len(values))
		fiscal.Cells = make(map[string]core.Cell, len(values))
		fiscalDate.Cells = make(map[string]core.Cell, len(values))
		for _, v := range values {
			calendar.Cells[v.Period] = core.Cell{Value: core.Text(v.Period)}
			fiscal.Cells[v.Period] = core.Cell{Value: core.Text(v.Fiscal)}
			fiscalDate.Cells[v.Period] = core.Cell{Value: core.Text(FormatFiscalDate(v.FiscalDate))}
		}
	}

	s.rows = append(s.rows, calendar, fiscal, fiscalDate)
}

func (s *flattenState) hierarchy(level int, rowType core.RowType, node core.HierarchyNode) {
	if node.Name == "" {
		return
	}
	key := node.Key()
	if _, ok := s.seen[level][key]; ok {
		return
	}

	s.rows = append(s.rows, core.GridRow{
		ID:      s.nextID(fmt.Sprintf("%s-%s-%d", rowType, node.Name, node.Order)),
		Type:    rowType,
		Name:    node.Name,
		Styling: node.Styling,
	})
	if node.EmptyRowAfter {
		s.spacer()
	}
	s.seen[level][key] = struct{}{}
}

func (s *flattenState) data(m *core.Metric) {
	row := core.GridRow{
		ID:         s.nextID("data-" + m.TagID),
		Type:       core.RowData,
		Name:       m.Name.Name,
		Unit:       m.Unit,
		Source:     m.Source.Value,
		SourceLink: m.Source.Link,
		TagID:      m.TagID,
		Styling:    m.Name.Styling,
		Cells:      make(map[string]core.Cell, len(s.periods)),
	}

	// Every period column is defined even when this metric lacks it.
	for _, p := range s.periods {
		row.Cells[p] = core.Cell{}
	}
	for _, v := range m.Values {
		row.Cells[v.Period] = core.Cell{
			Value:   Normalize(v.Value),
			Styling: v.Styling,
			Comment: core.Deref(v.Comment),
			Link:    core.Deref(v.Link),
			Formula: core.Deref(v.Formula),
		}
	}

	s.rows = append(s.rows, row)
	if m.Name.EmptyRowAfter {
		s.spacer()
	}
}

// FormatFiscalDate renders an ISO date (any time portion is discarded) as
// MM/DD/YYYY. Values that are not ISO dates are returned unchanged.
func FormatFiscalDate(s string) string {
	if s == "" {
		return ""
	}
	datePart := s
	if i := strings.IndexAny(datePart, "T "); i >= 0 {
		datePart = datePart[:i]
	}
	t, err := time.Parse(time.DateOnly, datePart)
	if err != nil {
		return s
	}
	return t.Format("01/02/2006")
}
