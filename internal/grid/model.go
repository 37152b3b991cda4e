package grid

import "github.com/leapstack-labs/leapgrid/pkg/core"

// Default column widths in pixels.
const (
	DefaultNameWidth   = 250
	DefaultFixedWidth  = 100
	DefaultPeriodWidth = 120
)

// fixedColumns are the four descriptive columns preceding the periods.
var fixedColumns = [...]core.GridColumn{
	{Key: core.ColumnName, Name: "Name", Width: DefaultNameWidth},
	{Key: core.ColumnUnit, Name: "Unit", Width: DefaultFixedWidth},
	{Key: core.ColumnSource, Name: "Source", Width: DefaultFixedWidth},
	{Key: core.ColumnTagID, Name: "Tag ID", Width: DefaultFixedWidth},
}

type columnConfig struct {
	widths map[string]int
}

// ColumnOption customizes column construction.
type ColumnOption func(*columnConfig)

// WithWidth overrides the width of the column with the given key.
func WithWidth(key string, width int) ColumnOption {
	return func(c *columnConfig) {
		if width > 0 {
			c.widths[key] = width
		}
	}
}

// WithWidths overrides the widths of several columns at once.
func WithWidths(widths map[string]int) ColumnOption {
	return func(c *columnConfig) {
		for k, w := range widths {
			if w > 0 {
				c.widths[k] = w
			}
		}
	}
}

// BuildColumns returns the four fixed descriptive columns followed by one
// column per period, in the given order.
func BuildColumns(periods []string, opts ...ColumnOption) []core.GridColumn {
	cfg := columnConfig{widths: make(map[string]int)}
	for _, opt := range opts {
		opt(&cfg)
	}

	cols := make([]core.GridColumn, 0, len(fixedColumns)+len(periods))
	cols = append(cols, fixedColumns[:]...)
	for _, p := range periods {
		cols = append(cols, core.GridColumn{Key: p, Name: p, Width: DefaultPeriodWidth})
	}
	for i := range cols {
		if w, ok := cfg.widths[cols[i].Key]; ok {
			cols[i].Width = w
		}
	}
	return cols
}

// Periods returns the period identifiers of the first metric, in order.
func Periods(metrics []core.Metric) []string {
	if len(metrics) == 0 {
		return nil
	}
	periods := make([]string, len(metrics[0].Values))
	for i, v := range metrics[0].Values {
		periods[i] = v.Period
	}
	return periods
}

// Build materializes a company into the grid model. A nil company or one
// without metrics yields the empty model, the "no data" state.
func Build(company *core.Company, opts ...ColumnOption) core.GridModel {
	if !company.HasData() {
		return core.GridModel{}
	}
	return core.GridModel{
		Rows:    Flatten(company.Metrics),
		Columns: BuildColumns(Periods(company.Metrics), opts...),
	}
}
