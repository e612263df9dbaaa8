package cashflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"propertyflow/server/internal/models"
)

func doc(fields map[string]string) models.Document {
	return models.Document{
		ExtractedData: models.ExtractedData{
			Status: models.StatusOCRSuccess,
			Fields: fields,
		},
	}
}

func TestAggregateDocuments_SingleStatement(t *testing.T) {
	docs := []models.Document{doc(map[string]string{
		"Rental Income": "$1,500.00",
		"Maintenance":   "$200.00",
		"Insurance":     "$300.00",
	})}

	income, expenses := AggregateDocuments(docs)
	assert.Equal(t, 1500.0, income)
	assert.Equal(t, 500.0, expenses)
}

func TestAggregateDocuments_TotalOverridesGenericIncome(t *testing.T) {
	docs := []models.Document{doc(map[string]string{
		"Income":       "$800.00",
		"Total Income": "$1,200.00",
	})}

	income, _ := AggregateDocuments(docs)
	assert.Equal(t, 1200.0, income)
}

func TestAggregateDocuments_NegativeExpensesSummedByAbsValue(t *testing.T) {
	docs := []models.Document{doc(map[string]string{
		"Maintenance": "-$200.00",
		"Utilities":   "$150.00",
	})}

	_, expenses := AggregateDocuments(docs)
	assert.Equal(t, 350.0, expenses)
}

func TestAggregateDocuments_RelatedKeywordDeduplication(t *testing.T) {
	// "Property Management" and "Management" with the same amount are one
	// line item seen twice by overlapping vocabulary.
	docs := []models.Document{doc(map[string]string{
		"Property Management": "$100.00",
		"Management":          "$100.00",
	})}

	_, expenses := AggregateDocuments(docs)
	assert.Equal(t, 100.0, expenses)

	// Same amount under unrelated keywords is two real expenses.
	docs = []models.Document{doc(map[string]string{
		"Maintenance": "$100.00",
		"Insurance":   "$100.00",
	})}

	_, expenses = AggregateDocuments(docs)
	assert.Equal(t, 200.0, expenses)

	// Different amounts under related keywords both count.
	docs = []models.Document{doc(map[string]string{
		"Property Management": "$100.00",
		"Management":          "$80.00",
	})}

	_, expenses = AggregateDocuments(docs)
	assert.Equal(t, 180.0, expenses)
}

func TestAggregateDocuments_TotalExpensesFallback(t *testing.T) {
	// No individual category matched: the total-expenses figure is used.
	docs := []models.Document{doc(map[string]string{
		"Rental Income":  "$1,000.00",
		"Total Expenses": "$500.00",
	})}

	income, expenses := AggregateDocuments(docs)
	assert.Equal(t, 1000.0, income)
	assert.Equal(t, 500.0, expenses)

	// With categories present the total is ignored, not double counted.
	docs = []models.Document{doc(map[string]string{
		"Maintenance":    "$200.00",
		"Total Expenses": "$500.00",
	})}

	_, expenses = AggregateDocuments(docs)
	assert.Equal(t, 200.0, expenses)
}

func TestAggregateDocuments_SumsAcrossDocuments(t *testing.T) {
	docs := []models.Document{
		doc(map[string]string{"Rental Income": "$1,000.00", "Maintenance": "$200.00"}),
		doc(map[string]string{"Rental Income": "$1,000.00", "Insurance": "$300.00"}),
	}

	income, expenses := AggregateDocuments(docs)
	assert.Equal(t, 2000.0, income)
	assert.Equal(t, 500.0, expenses)

	// A document without income still contributes its expenses, and dropping
	// it rolls exactly its contribution back.
	docA := doc(map[string]string{"Rental Income": "$1,000.00", "Maintenance": "$200.00"})
	docB := doc(map[string]string{"Insurance": "$300.00"})

	income, expenses = AggregateDocuments([]models.Document{docA, docB})
	assert.Equal(t, 1000.0, income)
	assert.Equal(t, 500.0, expenses)

	income, expenses = AggregateDocuments([]models.Document{docA})
	assert.Equal(t, 1000.0, income)
	assert.Equal(t, 200.0, expenses)
}

func TestAggregateDocuments_Idempotent(t *testing.T) {
	docs := []models.Document{
		doc(map[string]string{"Rental Income": "$1,500.00", "Maintenance": "$200.00"}),
		doc(map[string]string{"Total Expenses": "$500.00"}),
	}

	income1, expenses1 := AggregateDocuments(docs)
	income2, expenses2 := AggregateDocuments(docs)
	assert.Equal(t, income1, income2)
	assert.Equal(t, expenses1, expenses2)
}

func TestAggregateDocuments_EmptyInputs(t *testing.T) {
	income, expenses := AggregateDocuments(nil)
	assert.Equal(t, 0.0, income)
	assert.Equal(t, 0.0, expenses)

	income, expenses = AggregateDocuments([]models.Document{doc(nil)})
	assert.Equal(t, 0.0, income)
	assert.Equal(t, 0.0, expenses)
}
