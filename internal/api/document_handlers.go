package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"propertyflow/server/internal/auth"
	"propertyflow/server/internal/database"
	"propertyflow/server/internal/models"
	"propertyflow/server/internal/ocr"
)

// Extensions Textract can analyze.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

type UpdateExtractedDataRequest struct {
	ExtractedFields map[string]string `json:"extracted_fields" binding:"required"`
	Notes           string            `json:"notes"`
}

func (h *Handler) UploadDocument(c *gin.Context) {
	propertyID := c.PostForm("property_id")
	docType := models.DocumentType(c.PostForm("document_type"))
	if propertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property_id is required"})
		return
	}
	if !docType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document_type"})
		return
	}

	property, err := h.db.GetProperty(propertyID, auth.CurrentUserID(c))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.WithError(err).Error("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	path, err := h.store.Save(propertyID, fileHeader.Filename, data)
	if err != nil {
		h.logger.WithError(err).Error("Failed to store uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	extracted := h.analyzeDocument(c, data)
	statementDate := ocr.ExtractStatementDate(extracted.RawText, extracted.Fields)

	now := time.Now().UTC()
	doc := &models.Document{
		ID:            uuid.NewString(),
		PropertyID:    propertyID,
		DocumentType:  docType,
		Filename:      fileHeader.Filename,
		FilePath:      path,
		FileSize:      int64(len(data)),
		ContentType:   fileHeader.Header.Get("Content-Type"),
		ExtractedData: extracted,
		StatementDate: statementDate,
		UploadedAt:    now,
		UpdatedAt:     now,
	}
	if err := h.db.CreateDocument(doc); err != nil {
		h.logger.WithError(err).Error("Failed to create document")
		if rmErr := h.store.Remove(path); rmErr != nil {
			h.logger.WithError(rmErr).Warn("Failed to remove stored file")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	var income, expenses float64
	if extracted.Status == models.StatusOCRSuccess && len(extracted.Fields) > 0 {
		income, expenses = h.cashflow.Recompute(propertyID)
	}

	if h.notifier != nil {
		go h.notifier.NotifyDocumentProcessed(property, doc, income, expenses)
	}

	h.logger.WithFields(map[string]interface{}{
		"document_id": doc.ID,
		"property_id": propertyID,
		"status":      extracted.Status,
	}).Info("Processed document upload")

	c.JSON(http.StatusCreated, doc)
}

// analyzeDocument runs OCR when an engine is configured and the file is small
// enough, and always returns a usable ExtractedData. OCR faults are recorded
// on the document, never returned to the uploader as request errors.
func (h *Handler) analyzeDocument(c *gin.Context, data []byte) models.ExtractedData {
	if h.engine == nil {
		return models.ExtractedData{
			Status: models.StatusNotConfigured,
			Notes:  "AWS credentials not configured; document stored without OCR",
		}
	}
	if int64(len(data)) > h.cfg.Uploads.MaxOCRBytes {
		return models.ExtractedData{
			Status: models.StatusUploaded,
			Notes:  "File exceeds the OCR size limit; document stored without OCR",
		}
	}

	result, err := h.engine.AnalyzeDocument(c.Request.Context(), data)
	if err != nil {
		h.logger.WithError(err).Error("OCR analysis failed")
		return models.ExtractedData{
			Status: models.StatusOCRFailed,
			Error:  err.Error(),
		}
	}

	rawText := strings.Join(result.Lines, "\n")
	return models.ExtractedData{
		Status:  models.StatusOCRSuccess,
		Fields:  ocr.Normalize(result.Fields, rawText),
		RawText: rawText,
	}
}

func (h *Handler) GetOCRStatus(c *gin.Context) {
	configured := h.engine != nil
	message := "OCR is configured"
	if !configured {
		message = "AWS credentials not configured; uploads are stored without OCR"
	}

	c.JSON(http.StatusOK, gin.H{
		"configured": configured,
		"endpoint":   h.cfg.OCR.Endpoint,
		"region":     h.cfg.OCR.Region,
		"message":    message,
	})
}

// getOwnedDocument loads a document and checks the property it belongs to is
// owned by the caller. Writes the error response itself and returns nil when
// the caller should stop.
func (h *Handler) getOwnedDocument(c *gin.Context) *models.Document {
	doc, err := h.db.GetDocument(c.Param("document_id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return nil
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get document"})
		return nil
	}

	if _, err := h.db.GetProperty(doc.PropertyID, auth.CurrentUserID(c)); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		} else {
			h.logger.WithError(err).Error("Failed to get property")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get document"})
		}
		return nil
	}

	return doc
}

func (h *Handler) GetParsedDocument(c *gin.Context) {
	doc := h.getOwnedDocument(c)
	if doc == nil {
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateExtractedData replaces a document's extracted fields with a manual
// edit and recomputes the property totals from the new values.
func (h *Handler) UpdateExtractedData(c *gin.Context) {
	doc := h.getOwnedDocument(c)
	if doc == nil {
		return
	}

	var req UpdateExtractedDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update payload"})
		return
	}

	data := doc.ExtractedData
	data.Fields = req.ExtractedFields
	if req.Notes != "" {
		data.Notes = req.Notes
	}

	updated, err := h.db.UpdateDocumentExtractedData(doc.ID, data)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update extracted data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document"})
		return
	}

	income, expenses := h.cashflow.Recompute(doc.PropertyID)

	c.JSON(http.StatusOK, gin.H{
		"document":      updated,
		"rental_income": income,
		"expenses":      expenses,
	})
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	doc := h.getOwnedDocument(c)
	if doc == nil {
		return
	}

	if err := h.db.DeleteDocument(doc.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	if err := h.store.Remove(doc.FilePath); err != nil {
		h.logger.WithError(err).WithField("path", doc.FilePath).Warn("Failed to remove stored file")
	}

	income, expenses := h.cashflow.Recompute(doc.PropertyID)

	c.JSON(http.StatusOK, gin.H{
		"message":       "Document deleted",
		"rental_income": income,
		"expenses":      expenses,
	})
}
