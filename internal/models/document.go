package models

import "time"

type DocumentType string

const (
	DocTypePropertyDocument  DocumentType = "property_document"
	DocTypeMonthlyStatement  DocumentType = "monthly_statement"
	DocTypePropertyInsurance DocumentType = "property_insurance"
	DocTypePropertyTax       DocumentType = "property_tax"
	DocTypeMortgageStatement DocumentType = "mortgage_statement"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocTypePropertyDocument, DocTypeMonthlyStatement, DocTypePropertyInsurance,
		DocTypePropertyTax, DocTypeMortgageStatement:
		return true
	}
	return false
}

type ExtractionStatus string

const (
	StatusUploaded      ExtractionStatus = "uploaded"
	StatusOCRSuccess    ExtractionStatus = "ocr_success"
	StatusOCRFailed     ExtractionStatus = "ocr_failed"
	StatusNotConfigured ExtractionStatus = "aws_credentials_not_configured"
)

// ExtractedData holds the OCR outcome for a document. Fields maps canonical
// field names (e.g. "Rental Income", "Maintenance") to formatted currency
// strings. It is written once at ingestion and only changes through an
// explicit user edit.
type ExtractedData struct {
	Status  ExtractionStatus  `json:"status"`
	Fields  map[string]string `json:"extracted_fields,omitempty"`
	RawText string            `json:"raw_text,omitempty"`
	Error   string            `json:"error,omitempty"`
	Notes   string            `json:"notes,omitempty"`
}

type Document struct {
	ID            string        `json:"id" gorm:"primaryKey"`
	PropertyID    string        `json:"property_id" gorm:"index"`
	DocumentType  DocumentType  `json:"document_type"`
	Filename      string        `json:"filename"`
	FilePath      string        `json:"file_path"`
	FileSize      int64         `json:"file_size"`
	ContentType   string        `json:"content_type"`
	ExtractedData ExtractedData `json:"extracted_data" gorm:"serializer:json"`
	StatementDate string        `json:"statement_date,omitempty"`
	UploadedAt    time.Time     `json:"uploaded_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
