package ocr

import (
	"regexp"
	"sort"
	"strings"
)

// fieldRule maps an OCR label keyword to its canonical field name. Rules are
// kept in an explicit ordered table and matched longest-keyword-first so that
// "property management" beats "management" and "total income" beats "income"
// regardless of map traversal order.
type fieldRule struct {
	keyword   string
	canonical string
}

var fieldRules = []fieldRule{
	{"rental income", "Rental Income"},
	{"total income", "Total Income"},
	{"income", "Income"},
	{"total expenses", "Total Expenses"},
	{"expenses", "Expenses"},
	{"net cash flow", "Net Cash Flow"},
	{"cash flow", "Cash Flow"},
	{"maintenance", "Maintenance"},
	{"insurance", "Insurance"},
	{"property tax", "Property Tax"},
	{"utilities", "Utilities"},
	{"property management", "Property Management"},
	{"management", "Management"},
	{"roof repair", "Roof Repair"},
	{"plumbing repair", "Plumbing Repair"},
	{"hvac service", "HVAC Service"},
	{"repair", "Repair"},
	{"service", "Service"},
}

// textRule is the text-fallback flavour of fieldRule: a pattern run against
// the lowered raw text with the amount in the first capture group.
type textRule struct {
	pattern   *regexp.Regexp
	canonical string
}

var textRules = []textRule{
	{regexp.MustCompile(`rental\s+income[:\s]*\$?([\d,]+\.?\d*)`), "Rental Income"},
	{regexp.MustCompile(`total\s+income[:\s]*\$?([\d,]+\.?\d*)`), "Total Income"},
	{regexp.MustCompile(`income[:\s]*\$?([\d,]+\.?\d*)`), "Income"},
	{regexp.MustCompile(`total\s+expenses?[:\s]*-?\$?([\d,]+\.?\d*)`), "Total Expenses"},
	{regexp.MustCompile(`expenses?[:\s]*-?\$?([\d,]+\.?\d*)`), "Expenses"},
	{regexp.MustCompile(`net\s+cash\s+flow[:\s]*\$?([\d,]+\.?\d*)`), "Net Cash Flow"},
	{regexp.MustCompile(`cash\s+flow[:\s]*\$?([\d,]+\.?\d*)`), "Cash Flow"},
	{regexp.MustCompile(`maintenance[:\s]*-?\$?([\d,]+\.?\d*)`), "Maintenance"},
	{regexp.MustCompile(`insurance[:\s]*-?\$?([\d,]+\.?\d*)`), "Insurance"},
	{regexp.MustCompile(`property\s+tax[:\s]*-?\$?([\d,]+\.?\d*)`), "Property Tax"},
	{regexp.MustCompile(`utilities?[:\s]*-?\$?([\d,]+\.?\d*)`), "Utilities"},
	{regexp.MustCompile(`property\s+management[:\s]*-?\$?([\d,]+\.?\d*)`), "Property Management"},
	{regexp.MustCompile(`management[:\s]*-?\$?([\d,]+\.?\d*)`), "Management"},
	{regexp.MustCompile(`roof\s+repair[:\s]*-?\$?([\d,]+\.?\d*)`), "Roof Repair"},
	{regexp.MustCompile(`plumbing\s+repair[:\s]*-?\$?([\d,]+\.?\d*)`), "Plumbing Repair"},
	{regexp.MustCompile(`hvac\s+service[:\s]*-?\$?([\d,]+\.?\d*)`), "HVAC Service"},
	{regexp.MustCompile(`repair[:\s]*-?\$?([\d,]+\.?\d*)`), "Repair"},
	{regexp.MustCompile(`service[:\s]*-?\$?([\d,]+\.?\d*)`), "Service"},
}

// currencyShape recognises values like "$1,234.56" or "150.00" in label/value
// lines of raw OCR text.
var (
	currencyShape     = regexp.MustCompile(`\$?[\d,]+\.\d{2}`)
	currencyLineShape = regexp.MustCompile(`^-?\$?[\d,]+\.\d{2}`)
)

// Normalize turns raw OCR output into a normalized field set. Structured
// key/value pairs from form detection take precedence; when they yield
// nothing and raw text is available, the text fallback parser runs instead.
// An empty result is not an error: downstream treats missing fields as zero.
func Normalize(fields map[string]string, rawText string) map[string]string {
	if len(fields) > 0 {
		if out := NormalizeFields(fields); len(out) > 0 {
			return out
		}
	}
	if rawText != "" {
		return ParseFieldsFromText(rawText)
	}
	return map[string]string{}
}

// NormalizeFields applies the rule table to each OCR label independently.
// Labels are matched case-insensitively; the matched value is re-rendered as
// a currency string. When two labels map to the same canonical key, a label
// containing "total" or "rental" wins over a previously kept generic match.
func NormalizeFields(fields map[string]string) map[string]string {
	out := make(map[string]string)

	labels := make([]string, 0, len(fields))
	for label := range fields {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		canonical := matchLabel(label)
		if canonical == "" {
			continue
		}
		value, ok := ExtractNumericValue(fields[label])
		if !ok {
			continue
		}
		if _, taken := out[canonical]; taken {
			lower := strings.ToLower(label)
			if !strings.Contains(lower, "total") && !strings.Contains(lower, "rental") {
				continue
			}
		}
		out[canonical] = FormatCurrency(value)
	}
	return out
}

// matchLabel returns the canonical key for a label, preferring the longest
// (most specific) matching keyword, or "" when nothing matches.
func matchLabel(label string) string {
	lower := strings.ToLower(strings.TrimSpace(label))

	best := ""
	bestLen := 0
	for _, rule := range fieldRules {
		if strings.Contains(lower, rule.keyword) && len(rule.keyword) > bestLen {
			best = rule.canonical
			bestLen = len(rule.keyword)
		}
	}
	return best
}

// ParseFieldsFromText extracts label/value pairs from raw multi-line OCR text.
// It runs the pattern table over the whole text, then scans line by line:
// "Label: $123.45" lines are split on the first colon, and a bare label line
// is paired with the next line when that line looks like a currency amount.
func ParseFieldsFromText(rawText string) map[string]string {
	fields := make(map[string]string)
	if rawText == "" {
		return fields
	}

	lowered := strings.ToLower(rawText)
	for _, rule := range textRules {
		for _, m := range rule.pattern.FindAllStringSubmatch(lowered, -1) {
			if len(m) < 2 || m[1] == "" {
				continue
			}
			if value, ok := ExtractNumericValue(m[1]); ok {
				fields[rule.canonical] = FormatCurrency(value)
			}
		}
	}

	lines := strings.Split(rawText, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.Contains(line, ":") {
			parts := strings.SplitN(line, ":", 2)
			label := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if label != "" && currencyShape.MatchString(value) {
				fields[label] = value
			}
			continue
		}

		// OCR often emits the label and the amount on adjacent lines.
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if currencyLineShape.MatchString(next) {
				fields[line] = next
			}
		}
	}

	return fields
}
