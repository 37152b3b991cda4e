package core

// RowType classifies a materialized grid row.
type RowType string

// Row type constants.
const (
	RowHeader         RowType = "header"
	RowSection        RowType = "section"
	RowCategory       RowType = "category"
	RowSubcategory    RowType = "subcategory"
	RowSubsubcategory RowType = "subsubcategory"
	RowData           RowType = "data"
	RowEmpty          RowType = "empty"
)

// Fixed descriptive column keys. Period columns follow them.
const (
	ColumnName   = "name"
	ColumnUnit   = "unit"
	ColumnSource = "source"
	ColumnTagID  = "tag_id"
)

// Column positions with special rendering rules.
const (
	NameColumnIndex   = 0
	SourceColumnIndex = 2
	// FirstPeriodIndex is the index of the first period column.
	FirstPeriodIndex = 4
)

// Cell is one period cell of a grid row together with its side-channel
// metadata.
type Cell struct {
	Value   Value    `json:"value"`
	Styling *Styling `json:"styling,omitempty"`
	Comment string   `json:"comment,omitempty"`
	Link    string   `json:"link,omitempty"`
	Formula string   `json:"formula,omitempty"`
}

// GridRow is one row of the flat grid.
//
// Cells is keyed by period identifier. Header rows carry only cell values,
// data rows carry the full metadata.
type GridRow struct {
	ID         string          `json:"id"`
	Type       RowType         `json:"type"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit,omitempty"`
	Source     string          `json:"source,omitempty"`
	SourceLink string          `json:"source_link,omitempty"`
	TagID      string          `json:"tag_id,omitempty"`
	Styling    *Styling        `json:"styling,omitempty"`
	Cells      map[string]Cell `json:"cells,omitempty"`
}

// Field returns the value displayed under the given column key.
func (r *GridRow) Field(key string) Value {
	switch key {
	case ColumnName:
		return Text(r.Name)
	case ColumnUnit:
		return Text(r.Unit)
	case ColumnSource:
		return Text(r.Source)
	case ColumnTagID:
		return Text(r.TagID)
	}
	return r.Cells[key].Value
}

// Cell returns the period cell for key and whether it exists.
func (r *GridRow) Cell(key string) (Cell, bool) {
	c, ok := r.Cells[key]
	return c, ok
}

// GridColumn describes one grid column.
type GridColumn struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Width int    `json:"width"`
}

// GridModel is the complete materialized grid handed to a renderer.
type GridModel struct {
	Rows    []GridRow    `json:"rows"`
	Columns []GridColumn `json:"columns"`
}

// Empty reports whether the model is the "no data" state.
func (m GridModel) Empty() bool {
	return len(m.Rows) == 0 && len(m.Columns) == 0
}

// Value returns the displayed value at (row, col), or the empty Value when
// either index is out of range.
func (m GridModel) Value(row, col int) Value {
	if row < 0 || row >= len(m.Rows) || col < 0 || col >= len(m.Columns) {
		return Value{}
	}
	return m.Rows[row].Field(m.Columns[col].Key)
}
