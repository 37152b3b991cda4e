// Package decorate resolves the visual decoration of grid cells.
//
// A Resolver is built once per materialized grid. It precomputes which
// columns carry permanent vertical borders and is otherwise stateless, so
// Resolve may be called concurrently for any visible cell.
package decorate

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Decoration is everything a renderer needs to draw one cell.
type Decoration struct {
	Text    string    `json:"text"`
	Style   CellStyle `json:"style"`
	Tooltip string    `json:"tooltip,omitempty"`
	Link    string    `json:"link,omitempty"`
	Comment string    `json:"comment,omitempty"`
	Numeric bool      `json:"numeric,omitempty"`
}

// DecorateFunc is the rendering hook handed to a grid renderer. Renderers
// call it for every visible cell and draw whatever it returns.
type DecorateFunc func(row core.GridRow, col int, raw core.Value) Decoration

// At decorates the cell at (row, col) of model.
func (f DecorateFunc) At(model core.GridModel, row, col int) Decoration {
	if f == nil || row < 0 || row >= len(model.Rows) {
		return Decoration{}
	}
	return f(model.Rows[row], col, model.Value(row, col))
}

// Option configures a Resolver.
type Option func(*options)

type options struct {
	lang       language.Tag
	currencies map[string]currency.Unit
}

// WithLanguage sets the locale used for number grouping.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) { o.lang = tag }
}

// WithCurrency renders rows whose unit equals unit as amounts of cur.
func WithCurrency(unit string, cur currency.Unit) Option {
	return func(o *options) { o.currencies[unit] = cur }
}

// Resolver decorates the cells of one grid model.
type Resolver struct {
	columns         []core.GridColumn
	verticalBorders []bool
	numbers         *NumberFormatter
}

// NewResolver precomputes the per-column vertical border flags for model.
func NewResolver(model core.GridModel, opts ...Option) *Resolver {
	o := options{lang: language.AmericanEnglish, currencies: make(map[string]currency.Unit)}
	for _, opt := range opts {
		opt(&o)
	}

	return &Resolver{
		columns:         model.Columns,
		verticalBorders: columnBorders(model),
		numbers:         NewNumberFormatter(o.lang, o.currencies),
	}
}

// columnBorders flags every column for which any row requests both a left
// and a right border on its cell.
func columnBorders(model core.GridModel) []bool {
	flags := make([]bool, len(model.Columns))
	for i, col := range model.Columns {
		for r := range model.Rows {
			cell, ok := model.Rows[r].Cells[col.Key]
			if !ok {
				continue
			}
			if cell.Styling.HasBorder("left") && cell.Styling.HasBorder("right") {
				flags[i] = true
				break
			}
		}
	}
	return flags
}

// HasVerticalBorder reports whether column col renders permanent left and
// right borders.
func (r *Resolver) HasVerticalBorder(col int) bool {
	return col >= 0 && col < len(r.verticalBorders) && r.verticalBorders[col]
}

// Columns returns the columns the resolver was built for.
func (r *Resolver) Columns() []core.GridColumn { return r.columns }

// Func returns Resolve as a DecorateFunc.
func (r *Resolver) Func() DecorateFunc { return r.Resolve }

// At decorates the cell at (row, col) of model.
func (r *Resolver) At(model core.GridModel, row, col int) Decoration {
	return r.Func().At(model, row, col)
}

// Resolve decorates one cell. It performs no I/O and mutates nothing.
func (r *Resolver) Resolve(row core.GridRow, col int, raw core.Value) Decoration {
	d := Decoration{
		Text:  raw.String(),
		Style: CellStyle{PaddingLeft: BasePaddingLeft, Align: AlignLeft},
	}

	var cell core.Cell
	if col >= core.FirstPeriodIndex && col < len(r.columns) {
		cell = row.Cells[r.columns[col].Key]
	}

	if col >= core.FirstPeriodIndex && raw.IsNumber() {
		d.Text = r.numbers.Format(raw.Float(), row.Unit)
		d.Numeric = true
		d.Style.Align = AlignRight
		d.Style.PaddingRight = NumericPadRight
	}

	d.Link = linkFor(row, col, cell)
	d.Tooltip = d.Link
	if col >= core.FirstPeriodIndex && cell.Comment != "" {
		d.Comment = "Comment: " + cell.Comment
	}

	if r.HasVerticalBorder(col) {
		d.Style.BorderLeft = rule(RuleColor)
		d.Style.BorderRight = rule(RuleColor)
	}

	switch row.Type {
	case core.RowHeader:
		d.Style.Background = HeaderBackground
		d.Style.Color = ReservedForeground
		d.Style.Bold = true
		d.Style.Outline(rule(HeaderBackground))
	case core.RowSection:
		d.Style.Background = SectionBackground
		d.Style.Color = ReservedForeground
		d.Style.Outline(rule(SectionBackground))
		applyRowStyling(&d.Style, row.Styling)
	case core.RowCategory:
		d.Style.Bold = true
		applyRowStyling(&d.Style, row.Styling)
		applyRowRules(&d.Style, row.Styling)
	case core.RowSubcategory, core.RowSubsubcategory:
		applyRowStyling(&d.Style, row.Styling)
		applyRowRules(&d.Style, row.Styling)
	case core.RowEmpty:
		d.Style.Transparent = true
	default:
		switch {
		case col == core.NameColumnIndex:
			applyRowStyling(&d.Style, row.Styling)
		case col == core.SourceColumnIndex:
			d.Style.Color = SourceAccent
		case col >= core.FirstPeriodIndex && cell.Styling != nil:
			if cell.Styling.TextBold {
				d.Style.Bold = true
			}
			if cell.Styling.TextColor != "" {
				d.Style.Color = cell.Styling.TextColor
			}
			if cell.Styling.Indents > 0 {
				d.Style.PaddingLeft = cell.Styling.Indents * IndentUnit
			}
		}
		applyRowRules(&d.Style, row.Styling)
	}

	return d
}

func applyRowStyling(style *CellStyle, s *core.Styling) {
	if s == nil {
		return
	}
	if s.TextBold {
		style.Bold = true
	}
	if s.Indents > 0 {
		style.PaddingLeft = s.Indents * IndentUnit
	}
}

// applyRowRules draws full-width top and bottom rules requested by the row.
func applyRowRules(style *CellStyle, s *core.Styling) {
	if s.HasBorder("top") {
		style.BorderTop = rule(RuleColor)
	}
	if s.HasBorder("bottom") {
		style.BorderBottom = rule(RuleColor)
	}
}

func linkFor(row core.GridRow, col int, cell core.Cell) string {
	switch {
	case col == core.SourceColumnIndex:
		return row.SourceLink
	case col >= core.FirstPeriodIndex:
		return cell.Link
	}
	return ""
}

// LinkAt returns the link behind the cell at (row, col), or "" when the cell
// has none. Only the source column and period columns carry links.
func LinkAt(model core.GridModel, row, col int) string {
	if row < 0 || row >= len(model.Rows) || col < 0 || col >= len(model.Columns) {
		return ""
	}
	r := model.Rows[row]
	return linkFor(r, col, r.Cells[model.Columns[col].Key])
}
