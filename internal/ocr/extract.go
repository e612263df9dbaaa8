package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

var numericRun = regexp.MustCompile(`\d+\.?\d*`)

// ExtractNumericValue parses a currency-like string ("$1,234.56", "-$ 150.00",
// "1500") into a signed float. It strips the currency symbol, thousands
// separators and whitespace, honours a leading minus sign, and takes the first
// contiguous numeric run. The second return value is false when no numeric
// value could be found.
func ExtractNumericValue(s string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	negative := strings.HasPrefix(cleaned, "-")
	if negative {
		cleaned = cleaned[1:]
	}

	run := numericRun.FindString(cleaned)
	if run == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(run, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		value = -value
	}
	return value, true
}

// FormatCurrency renders a value as "$1,234.56" ("-$150.00" when negative).
// Output must round-trip through ExtractNumericValue.
func FormatCurrency(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	s := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "$" + b.String() + frac
}
