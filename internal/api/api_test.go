package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertyflow/server/config"
	"propertyflow/server/internal/auth"
	"propertyflow/server/internal/cashflow"
	"propertyflow/server/internal/database"
	"propertyflow/server/internal/models"
	"propertyflow/server/internal/notify"
	"propertyflow/server/internal/ocr"
	"propertyflow/server/internal/storage"
)

type stubEngine struct {
	result *ocr.Result
	err    error
}

func (s *stubEngine) AnalyzeDocument(ctx context.Context, document []byte) (*ocr.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func setupTestServer(t *testing.T, engine ocr.Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.Uploads.MaxOCRBytes = 5_000_000
	cfg.OCR.Endpoint = "http://localhost:8866/analyze"
	cfg.OCR.Region = "us-west-2"

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewStore(t.TempDir(), logger)
	require.NoError(t, err)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	flows := cashflow.NewService(db.GetDB(), logger)
	notifier := notify.NewService(logger, "", "")

	handler := NewHandler(db, logger, cfg, tokens, engine, store, flows, nil, notifier)

	router := gin.New()
	SetupRoutes(router, handler)
	return router
}

func doJSON(router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		encoded, _ := json.Marshal(payload)
		body = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine, email string) string {
	w := doJSON(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func createProperty(t *testing.T, router *gin.Engine, token, name string) models.Property {
	w := doJSON(router, http.MethodPost, "/api/properties", token, gin.H{
		"name": name,
		"address": gin.H{
			"street": "123 Main St",
			"city":   "Springfield",
			"state":  "IL",
			"zip":    "62701",
		},
		"purchase_price": 250000,
		"current_value":  300000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var property models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &property))
	return property
}

func uploadDocument(t *testing.T, router *gin.Engine, token, propertyID, docType, filename string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("property_id", propertyID))
	require.NoError(t, writer.WriteField("document_type", docType))
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test content"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ocr/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := setupTestServer(t, nil)

	w := doJSON(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestAuthFlow(t *testing.T) {
	router := setupTestServer(t, nil)

	token := registerAndLogin(t, router, "owner@example.com")

	// Duplicate registration
	w := doJSON(router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "owner@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Wrong password
	w = doJSON(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "owner@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Protected endpoint
	w = doJSON(router, http.MethodGet, "/api/auth/protected", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "owner@example.com")

	w = doJSON(router, http.MethodGet, "/api/auth/protected", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPropertyCRUD(t *testing.T) {
	router := setupTestServer(t, nil)
	token := registerAndLogin(t, router, "owner@example.com")

	property := createProperty(t, router, token, "Duplex on Main")

	w := doJSON(router, http.MethodGet, "/api/properties", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var listed []models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Duplex on Main", listed[0].Name)

	w = doJSON(router, http.MethodPatch, "/api/properties/"+property.ID, token, gin.H{
		"name": "Renamed",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var updated models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "Springfield", updated.Address.City)

	// Another user cannot see or touch it
	other := registerAndLogin(t, router, "other@example.com")
	w = doJSON(router, http.MethodGet, "/api/properties/"+property.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(router, http.MethodDelete, "/api/properties/"+property.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/properties/"+property.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, http.MethodGet, "/api/properties/"+property.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortfolioSummary(t *testing.T) {
	router := setupTestServer(t, &stubEngine{result: &ocr.Result{
		Fields: map[string]string{
			"Rental Income": "$1,500.00",
			"Maintenance":   "$200.00",
		},
	}})
	token := registerAndLogin(t, router, "owner@example.com")

	property := createProperty(t, router, token, "Duplex on Main")
	createProperty(t, router, token, "Cottage")

	w := uploadDocument(t, router, token, property.ID, "monthly_statement", "march.pdf")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/api/properties/summary", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var summary models.PortfolioSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.TotalProperties)
	assert.Equal(t, 600000.0, summary.TotalValue)
	assert.Equal(t, 1500.0, summary.TotalIncome)
	assert.Equal(t, 200.0, summary.TotalExpenses)
	assert.Equal(t, 1300.0, summary.NetCashFlow)
}

func TestUploadDocument_OCRSuccess(t *testing.T) {
	router := setupTestServer(t, &stubEngine{result: &ocr.Result{
		Fields: map[string]string{
			"Rental Income": "$1,500.00",
			"Maintenance":   "$200.00",
		},
		Lines: []string{"Statement Date: March 15, 2024"},
	}})
	token := registerAndLogin(t, router, "owner@example.com")
	property := createProperty(t, router, token, "Duplex on Main")

	w := uploadDocument(t, router, token, property.ID, "monthly_statement", "march.pdf")
	require.Equal(t, http.StatusCreated, w.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, models.StatusOCRSuccess, doc.ExtractedData.Status)
	assert.Equal(t, "$1,500.00", doc.ExtractedData.Fields["Rental Income"])
	assert.Equal(t, "2024-03-15", doc.StatementDate)

	// Totals were recomputed
	w = doJSON(router, http.MethodGet, "/api/properties/"+property.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, 1500.0, stored.RentalIncome)
	assert.Equal(t, 200.0, stored.Expenses)

	// Parsed document endpoint returns the same fields
	w = doJSON(router, http.MethodGet, "/api/ocr/parsed/"+doc.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rental Income")

	// Deleting the document rolls the totals back
	w = doJSON(router, http.MethodDelete, "/api/documents/"+doc.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/properties/"+property.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, 0.0, stored.RentalIncome)
	assert.Equal(t, 0.0, stored.Expenses)
}

func TestUploadDocument_EngineFailure(t *testing.T) {
	router := setupTestServer(t, &stubEngine{err: errors.New("textract unavailable")})
	token := registerAndLogin(t, router, "owner@example.com")
	property := createProperty(t, router, token, "Duplex on Main")

	// A failed analysis still stores the document
	w := uploadDocument(t, router, token, property.ID, "monthly_statement", "march.pdf")
	require.Equal(t, http.StatusCreated, w.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, models.StatusOCRFailed, doc.ExtractedData.Status)
	assert.Contains(t, doc.ExtractedData.Error, "textract unavailable")
}

func TestUploadDocument_NotConfigured(t *testing.T) {
	router := setupTestServer(t, nil)
	token := registerAndLogin(t, router, "owner@example.com")
	property := createProperty(t, router, token, "Duplex on Main")

	w := uploadDocument(t, router, token, property.ID, "monthly_statement", "march.pdf")
	require.Equal(t, http.StatusCreated, w.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, models.StatusNotConfigured, doc.ExtractedData.Status)

	w = doJSON(router, http.MethodGet, "/api/ocr/status", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"configured":false`)
}

func TestUploadDocument_Validation(t *testing.T) {
	router := setupTestServer(t, nil)
	token := registerAndLogin(t, router, "owner@example.com")
	property := createProperty(t, router, token, "Duplex on Main")

	w := uploadDocument(t, router, token, property.ID, "not_a_type", "march.pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadDocument(t, router, token, property.ID, "monthly_statement", "malware.exe")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadDocument(t, router, token, "no-such-property", "monthly_statement", "march.pdf")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateExtractedData(t *testing.T) {
	router := setupTestServer(t, &stubEngine{result: &ocr.Result{
		Fields: map[string]string{"Rental Income": "$1,500.00"},
	}})
	token := registerAndLogin(t, router, "owner@example.com")
	property := createProperty(t, router, token, "Duplex on Main")

	w := uploadDocument(t, router, token, property.ID, "monthly_statement", "march.pdf")
	require.Equal(t, http.StatusCreated, w.Code)
	var doc models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	w = doJSON(router, http.MethodPut, "/api/ocr/update/"+doc.ID, token, gin.H{
		"extracted_fields": gin.H{
			"Rental Income": "$1,600.00",
			"Maintenance":   "$250.00",
		},
		"notes": "manual correction",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Document     models.Document `json:"document"`
		RentalIncome float64         `json:"rental_income"`
		Expenses     float64         `json:"expenses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "$1,600.00", resp.Document.ExtractedData.Fields["Rental Income"])
	assert.Equal(t, 1600.0, resp.RentalIncome)
	assert.Equal(t, 250.0, resp.Expenses)

	// Another user cannot read or edit the document
	other := registerAndLogin(t, router, "other@example.com")
	w = doJSON(router, http.MethodGet, "/api/ocr/parsed/"+doc.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(router, http.MethodPut, "/api/ocr/update/"+doc.ID, other, gin.H{
		"extracted_fields": gin.H{"Rental Income": "$1.00"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
