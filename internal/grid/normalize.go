// Package grid materializes a company's metric hierarchy into a flat,
// positionally addressed grid of rows and columns.
package grid

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/shopspring/decimal"
)

// ScaleThreshold is the magnitude at which values are displayed in millions.
const ScaleThreshold = 1_000_000

var (
	millions        = decimal.NewFromInt(ScaleThreshold)
	currencyCleaner = strings.NewReplacer("$", "", ",", "")
)

// Normalize converts a raw metric value into its canonical display value.
//
//   - nil becomes the empty string ("no value", distinct from zero)
//   - "$1,234.56" and "1,234.56" parse as numbers; unparseable strings pass through
//   - any number with magnitude >= 1,000,000 is expressed in millions,
//     rounded to one decimal digit
//
// Normalize never fails.
func Normalize(raw any) core.Value {
	switch v := raw.(type) {
	case nil:
		return core.Value{}
	case core.Value:
		if v.IsNumber() {
			return scale(v.Float())
		}
		return normalizeString(v.String())
	case string:
		return normalizeString(v)
	case *string:
		if v == nil {
			return core.Value{}
		}
		return normalizeString(*v)
	case float64:
		return scale(v)
	case float32:
		return scale(float64(v))
	case int:
		return scale(float64(v))
	case int8:
		return scale(float64(v))
	case int16:
		return scale(float64(v))
	case int32:
		return scale(float64(v))
	case int64:
		return scale(float64(v))
	case uint:
		return scale(float64(v))
	case uint8:
		return scale(float64(v))
	case uint16:
		return scale(float64(v))
	case uint32:
		return scale(float64(v))
	case uint64:
		return scale(float64(v))
	case json.Number:
		return normalizeString(v.String())
	case bool:
		return core.Text(strconv.FormatBool(v))
	default:
		return core.Text(fmt.Sprint(v))
	}
}

func normalizeString(s string) core.Value {
	cleaned := s
	if strings.HasPrefix(s, "$") {
		cleaned = currencyCleaner.Replace(s)
	} else {
		cleaned = strings.ReplaceAll(s, ",", "")
	}

	f, ok := parseLeadingFloat(cleaned)
	if !ok {
		return core.Text(s)
	}
	return scale(f)
}

func scale(f float64) core.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return core.Text(strconv.FormatFloat(f, 'f', -1, 64))
	}
	if math.Abs(f) < ScaleThreshold {
		return core.Number(f)
	}
	return core.Number(decimal.NewFromFloat(f).Div(millions).Round(1).InexactFloat64())
}

// parseLeadingFloat parses the longest numeric prefix of s, after leading
// whitespace: "12.5abc" yields 12.5, "abc" yields false.
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			expDigits++
		}
		if expDigits > 0 {
			end = j
		}
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
