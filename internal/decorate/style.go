package decorate

import (
	"fmt"
	"strings"
)

// Reserved palette.
const (
	HeaderBackground   = "#000000"
	SectionBackground  = "#000080"
	ReservedForeground = "white"
	SourceAccent       = "blue"
	RuleColor          = "black"
)

// Layout constants in pixels.
const (
	IndentUnit       = 24
	BasePaddingLeft  = 12
	NumericPadRight  = 12
	DefaultRuleWidth = 1
)

// Alignment values.
const (
	AlignLeft  = "left"
	AlignRight = "right"
)

// Border is one side of a cell outline. The zero Border means no border.
type Border struct {
	Width int    `json:"width,omitempty"`
	Color string `json:"color,omitempty"`
}

// IsZero reports whether the border is absent.
func (b Border) IsZero() bool { return b.Width == 0 }

func (b Border) css() string {
	if b.IsZero() {
		return "0px"
	}
	return fmt.Sprintf("%dpx solid %s", b.Width, b.Color)
}

func rule(color string) Border {
	return Border{Width: DefaultRuleWidth, Color: color}
}

// CellStyle is the resolved visual treatment of one cell.
type CellStyle struct {
	Background   string `json:"background,omitempty"`
	Color        string `json:"color,omitempty"`
	Bold         bool   `json:"bold,omitempty"`
	PaddingLeft  int    `json:"padding_left"`
	PaddingRight int    `json:"padding_right,omitempty"`
	Align        string `json:"align,omitempty"`
	BorderTop    Border `json:"border_top"`
	BorderBottom Border `json:"border_bottom"`
	BorderLeft   Border `json:"border_left"`
	BorderRight  Border `json:"border_right"`
	Transparent  bool   `json:"transparent,omitempty"`
}

// Outline sets all four borders.
func (s *CellStyle) Outline(b Border) {
	s.BorderTop, s.BorderBottom, s.BorderLeft, s.BorderRight = b, b, b, b
}

// CSS renders the style as an inline style attribute value.
func (s CellStyle) CSS() string {
	var b strings.Builder
	switch {
	case s.Transparent:
		b.WriteString("background:transparent;")
	case s.Background != "":
		fmt.Fprintf(&b, "background:%s;", s.Background)
	}
	if s.Color != "" {
		fmt.Fprintf(&b, "color:%s;", s.Color)
	}
	if s.Bold {
		b.WriteString("font-weight:bold;")
	}
	fmt.Fprintf(&b, "padding-left:%dpx;", s.PaddingLeft)
	if s.PaddingRight > 0 {
		fmt.Fprintf(&b, "padding-right:%dpx;", s.PaddingRight)
	}
	if s.Align != "" {
		fmt.Fprintf(&b, "text-align:%s;", s.Align)
	}
	fmt.Fprintf(&b, "border-top:%s;border-bottom:%s;border-left:%s;border-right:%s;",
		s.BorderTop.css(), s.BorderBottom.css(), s.BorderLeft.css(), s.BorderRight.css())
	return b.String()
}
