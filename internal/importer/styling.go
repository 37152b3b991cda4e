package importer

import (
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/xuri/excelize/v2"
)

// Text colors assigned by cell role.
const (
	hardcodedColor = "#0000FF"
	formulaColor   = "#000000"
	defaultFill    = "#FFFFFF"
	noBorder       = "none"
)

// borderNames indexes excelize border style ids.
var borderNames = []string{
	"none", "thin", "medium", "dashed", "dotted", "thick", "double", "hair",
	"mediumDashed", "dashDot", "mediumDashDot", "dashDotDot", "mediumDashDotDot", "slantDashDot",
}

var borderSides = []string{"left", "right", "top", "bottom"}

// styling extracts the display styling of a cell. Sources and hard-coded
// values are blue, formulas black.
func (s *sheet) styling(row, col int, isSource, isFormula bool) *core.Styling {
	styling := &core.Styling{
		TextColor:       formulaColor,
		BackgroundColor: defaultFill,
		Border:          noBorder,
	}
	if isSource || !isFormula {
		styling.TextColor = hardcodedColor
	}

	style := s.style(cellName(col, row))
	if style == nil {
		return styling
	}

	if style.Font != nil {
		styling.TextBold = style.Font.Bold
	}
	if style.Fill.Type == "pattern" && len(style.Fill.Color) > 0 {
		styling.BackgroundColor = hexColor(style.Fill.Color[0])
	}
	if style.Alignment != nil {
		styling.Indents = style.Alignment.Indent
	}
	if border := borderTokens(style.Border); border != "" {
		styling.Border = border
	}

	return styling
}

func (s *sheet) style(ref string) *excelize.Style {
	id, err := s.file.GetCellStyle(s.name, ref)
	if err != nil {
		s.logger.Debug("failed to read cell style", slog.String("cell", ref), slog.Any("error", err))
		return nil
	}
	if cached, ok := s.styles[id]; ok {
		return cached
	}
	style, err := s.file.GetStyle(id)
	if err != nil {
		s.logger.Debug("failed to read style", slog.Int("id", id), slog.Any("error", err))
		style = nil
	}
	s.styles[id] = style
	return style
}

// borderTokens renders the set sides as "left: thin, top: medium".
func borderTokens(borders []excelize.Border) string {
	var parts []string
	for _, side := range borderSides {
		for _, b := range borders {
			if b.Type != side || b.Style <= 0 {
				continue
			}
			name := "thin"
			if b.Style < len(borderNames) {
				name = borderNames[b.Style]
			}
			parts = append(parts, side+": "+name)
			break
		}
	}
	return strings.Join(parts, ", ")
}

// hexColor normalizes ARGB or RGB hex to "#RRGGBB".
func hexColor(c string) string {
	c = strings.ToUpper(strings.TrimPrefix(c, "#"))
	switch len(c) {
	case 8:
		return "#" + c[2:]
	case 6:
		return "#" + c
	}
	return defaultFill
}
