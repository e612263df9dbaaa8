package cashflow

import (
	"math"
	"sort"
	"strings"

	"propertyflow/server/internal/models"
	"propertyflow/server/internal/ocr"
)

var incomeKeywords = []string{
	"rental income", "total income", "income", "revenue", "rental revenue",
	"monthly income", "rental", "rent", "gross income",
}

// Individual expense categories. A document's expenses are the sum of every
// matching field; the "total expenses" field is only consulted when none of
// these matched.
var expenseKeywords = []string{
	"maintenance", "insurance", "property tax", "utilities", "management",
	"roof repair", "plumbing repair", "hvac service", "repair", "service",
	"tax", "property management", "cleaning", "lawn", "snow", "trash",
	"water", "electric", "gas", "sewer", "advertising", "legal", "accounting",
}

// AggregateDocuments recomputes a property's total rental income and total
// expenses from the full document set. The recomputation is total and
// idempotent: it never applies deltas, so re-running it on an unchanged set
// yields identical results.
func AggregateDocuments(docs []models.Document) (totalIncome, totalExpenses float64) {
	for _, doc := range docs {
		income, expenses := documentTotals(doc.ExtractedData.Fields)
		totalIncome += income
		totalExpenses += expenses
	}
	return totalIncome, totalExpenses
}

type expenseEntry struct {
	value   float64
	keyword string
}

// documentTotals derives one (income, expenses) pair from a single document's
// normalized fields.
//
// Income: one value per document. A key containing "total" or "rental"
// overrides a previously chosen generic match; otherwise the first positive
// match is kept. Keys naming a total-expense figure are never income.
//
// Expenses: every matching category is summed by absolute value, except that
// a value equal to one already summed under a textually related keyword (one
// keyword a substring of the other) is skipped: that is one line item picked
// up twice by overlapping vocabulary, e.g. "Property Management" and
// "Management". Two genuinely distinct expenses that happen to share an
// amount under related labels collapse too; that tolerance is intentional.
func documentTotals(fields map[string]string) (float64, float64) {
	if len(fields) == 0 {
		return 0, 0
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var income, expenses float64
	var processed []expenseEntry

	for _, key := range keys {
		keyLower := strings.ToLower(strings.TrimSpace(key))
		value := strings.TrimSpace(fields[key])

		if strings.Contains(keyLower, "total") && strings.Contains(keyLower, "expense") {
			continue
		}

		if containsAny(keyLower, incomeKeywords) {
			if parsed, ok := ocr.ExtractNumericValue(value); ok && parsed > 0 {
				if strings.Contains(keyLower, "total") || strings.Contains(keyLower, "rental") {
					if income == 0 || strings.Contains(keyLower, "total") {
						income = parsed
					}
				} else if income == 0 {
					income = parsed
				}
			}
		}

		matched := longestKeyword(keyLower, expenseKeywords)
		if matched == "" {
			continue
		}
		parsed, ok := ocr.ExtractNumericValue(value)
		if !ok {
			continue
		}
		absValue := math.Abs(parsed)

		duplicate := false
		for _, entry := range processed {
			if entry.value == absValue &&
				(strings.Contains(matched, entry.keyword) || strings.Contains(entry.keyword, matched)) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			processed = append(processed, expenseEntry{value: absValue, keyword: matched})
			expenses += absValue
		}
	}

	// No individual categories matched: fall back to the total-expenses field.
	if expenses == 0 {
		for _, key := range keys {
			keyLower := strings.ToLower(strings.TrimSpace(key))
			if strings.Contains(keyLower, "total") && strings.Contains(keyLower, "expense") {
				if parsed, ok := ocr.ExtractNumericValue(fields[key]); ok {
					expenses = math.Abs(parsed)
					break
				}
			}
		}
	}

	return income, expenses
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// longestKeyword returns the most specific (longest) keyword contained in s,
// or "" when none match.
func longestKeyword(s string, keywords []string) string {
	best := ""
	for _, kw := range keywords {
		if strings.Contains(s, kw) && len(kw) > len(best) {
			best = kw
		}
	}
	return best
}
