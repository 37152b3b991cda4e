package decorate

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DollarUnit is the metric unit rendered as currency.
const DollarUnit = "Dollar"

// NumberFormatter renders period values in accounting style: grouped, with a
// fixed number of decimals, and negatives wrapped in parentheses.
type NumberFormatter struct {
	printer    *message.Printer
	currencies map[string]string
}

// NewNumberFormatter returns a formatter for the given language. "Dollar"
// maps to USD; additional unit to currency mappings may be supplied.
func NewNumberFormatter(tag language.Tag, units map[string]currency.Unit) *NumberFormatter {
	p := message.NewPrinter(tag)
	f := &NumberFormatter{
		printer:    p,
		currencies: map[string]string{DollarUnit: p.Sprint(currency.NarrowSymbol(currency.USD))},
	}
	for unit, cur := range units {
		f.currencies[unit] = p.Sprint(currency.NarrowSymbol(cur))
	}
	return f
}

// Format renders v for a row whose unit is unit.
func (f *NumberFormatter) Format(v float64, unit string) string {
	abs := math.Abs(v)

	var text string
	if sym, ok := f.currencies[unit]; ok {
		text = sym + f.decimal(abs, 2)
	} else {
		text = f.decimal(abs, 1)
	}

	if v < 0 {
		return "(" + text + ")"
	}
	return text
}

func (f *NumberFormatter) decimal(abs float64, places int32) string {
	// Half away from zero, then print with grouping at a fixed scale.
	rounded := decimal.NewFromFloat(abs).Round(places).InexactFloat64()
	return f.printer.Sprint(number.Decimal(rounded, number.Scale(int(places))))
}
