package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// amountPattern matches an optional currency marker followed by either a
// comma-grouped number or a bare number, each with up to two decimals.
// Group 1 is the numeric part.
var amountPattern = regexp.MustCompile(`(?:₹|\$|INR)?\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?)`)

// ParseAmount returns the first monetary amount in text, rounded to two
// decimals. Thousands separators are ignored.
func ParseAmount(text string) (float64, bool) {
	stripped := strings.ReplaceAll(text, ",", "")
	loc := findAmount(stripped)
	if loc == nil {
		return 0, false
	}
	value, err := decimal.NewFromString(stripped[loc[2]:loc[3]])
	if err != nil {
		return 0, false
	}
	return value.Round(2).InexactFloat64(), true
}

// findAmount returns the submatch indexes of the first amount in s whose
// match does not start right after a digit.
func findAmount(s string) []int {
	for off := 0; off < len(s); {
		loc := amountPattern.FindStringSubmatchIndex(s[off:])
		if loc == nil {
			return nil
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += off
			}
		}
		start := loc[0]
		if start > 0 && isDigit(s[start-1]) {
			_, size := utf8.DecodeRuneInString(s[start:])
			off = start + max(size, 1)
			continue
		}
		return loc
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// round2 rounds a monetary value to two decimals.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
