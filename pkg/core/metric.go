package core

import "strings"

// Styling is the visual treatment attached to a hierarchy node (whole row)
// or to a single period value (one cell).
type Styling struct {
	TextColor       string `json:"text_color,omitempty"`
	TextBold        bool   `json:"text_bold,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	Indents         int    `json:"indents,omitempty"`
	// Border holds composable side tokens, e.g. "top bottom left right".
	Border string `json:"border,omitempty"`
}

// HasBorder reports whether the border tokens mention the given side.
func (s *Styling) HasBorder(side string) bool {
	if s == nil || s.Border == "" {
		return false
	}
	return strings.Contains(s.Border, side)
}

// HierarchyNode is one grouping level of a metric: section, category,
// subcategory or sub-subcategory.
type HierarchyNode struct {
	Name          string   `json:"name"`
	Order         int      `json:"order"`
	Styling       *Styling `json:"styling,omitempty"`
	EmptyRowAfter bool     `json:"empty_row_after,omitempty"`
}

// HierarchyKey identifies a hierarchy node for de-duplication.
type HierarchyKey struct {
	Name  string
	Order int
}

// Key returns the (name, order) identity of the node.
func (n HierarchyNode) Key() HierarchyKey {
	return HierarchyKey{Name: n.Name, Order: n.Order}
}

// NameNode is the metric's own label node.
type NameNode struct {
	Name          string   `json:"name"`
	Order         int      `json:"order"`
	Link          string   `json:"link,omitempty"`
	Styling       *Styling `json:"styling,omitempty"`
	EmptyRowAfter bool     `json:"empty_row_after,omitempty"`
}

// Source describes where a metric's figures were taken from.
type Source struct {
	Value   string   `json:"value"`
	Link    string   `json:"link,omitempty"`
	Styling *Styling `json:"styling,omitempty"`
}

// PeriodValue is a metric's value for one reporting period.
//
// Value is whatever the upstream produced: a float64, a string or nil.
type PeriodValue struct {
	Period     string   `json:"period"`
	Fiscal     string   `json:"fiscal"`
	FiscalDate string   `json:"fiscal_date"`
	Value      any      `json:"value"`
	Formula    *string  `json:"formula,omitempty"`
	Comment    *string  `json:"comment,omitempty"`
	Link       *string  `json:"link,omitempty"`
	Styling    *Styling `json:"styling,omitempty"`
}

// Metric is one financial line item with values across reporting periods.
//
// All metrics of a company share the same ordered list of periods. The grid
// columns are derived from the first metric only; misaligned period lists
// are a caller error and are not detected.
type Metric struct {
	Section        HierarchyNode `json:"section"`
	Category       HierarchyNode `json:"category"`
	Subcategory    HierarchyNode `json:"subcategory"`
	Subsubcategory HierarchyNode `json:"subsubcategory"`
	Name           NameNode      `json:"name"`
	Unit           string        `json:"unit"`
	Source         Source        `json:"source"`
	TagID          string        `json:"tag_id"`
	Values         []PeriodValue `json:"values"`
}

// UpdateSource records which filing a company model was last updated with.
type UpdateSource struct {
	Source   string `json:"source"`
	FileLink string `json:"file_link,omitempty"`
}

// Company is the full hierarchical payload for one company.
type Company struct {
	Company         string        `json:"company"`
	Ticker          string        `json:"ticker"`
	UpdatedAt       string        `json:"updated_at,omitempty"`
	LastUpdatedWith *UpdateSource `json:"last_updated_with,omitempty"`
	Metrics         []Metric      `json:"metrics"`
}

// HasData reports whether the company carries any metrics.
func (c *Company) HasData() bool {
	return c != nil && len(c.Metrics) > 0
}

// Payload is the envelope returned by a data-fetch collaborator.
type Payload struct {
	Success bool     `json:"success"`
	Data    *Company `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Detail  string   `json:"detail,omitempty"`
}

// Message returns the failure text carried by the envelope, if any.
func (p *Payload) Message() string {
	switch {
	case p.Error != "":
		return p.Error
	case p.Detail != "":
		return p.Detail
	case !p.Success:
		return "request was not successful"
	}
	return ""
}

// StrPtr returns a pointer to s, or nil when s is empty.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
