package ocr

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

var statementDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)statement\s+date[:\s]+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)statement\s+date[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`(?i)date[:\s]+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)date[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
}

var statementDateFormats = []string{
	"January 2, 2006",
	"January 2 2006",
	"1/2/2006",
	"1-2-2006",
	"2/1/2006",
}

// ExtractStatementDate finds the statement date of a document. Extracted
// fields take precedence over the raw text; a matched date is normalized to
// ISO form when one of the known formats parses it, and returned verbatim
// otherwise. Returns "" when no date is found.
func ExtractStatementDate(rawText string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := fields[key]
		if key == "" || value == "" {
			continue
		}
		lower := strings.ToLower(key)
		if (strings.Contains(lower, "statement") && strings.Contains(lower, "date")) || lower == "date" {
			return value
		}
	}

	if rawText == "" {
		return ""
	}

	for _, pattern := range statementDatePatterns {
		m := pattern.FindStringSubmatch(rawText)
		if m == nil {
			continue
		}
		dateStr := strings.TrimSpace(m[1])
		for _, format := range statementDateFormats {
			if parsed, err := time.Parse(format, dateStr); err == nil {
				return parsed.Format("2006-01-02")
			}
		}
		// Unknown format: better a verbatim date than none.
		return dateStr
	}

	return ""
}
