package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Result is what the OCR engine hands back for one document: key/value pairs
// when form detection found structured fields, plus the line-oriented text of
// the whole page. Either part may be empty.
type Result struct {
	Fields map[string]string
	Lines  []string
}

// Engine is the external OCR collaborator. Implementations must treat the
// document bytes as opaque and never mutate them.
type Engine interface {
	AnalyzeDocument(ctx context.Context, document []byte) (*Result, error)
}

// TextractGateway talks to the Textract REST gateway that fronts AWS Textract
// for this deployment. The gateway accepts a base64 document and returns the
// detected key/value sets and text lines.
type TextractGateway struct {
	endpoint  string
	region    string
	accessKey string
	secretKey string
	client    *http.Client
	logger    *logrus.Logger
}

func NewTextractGateway(endpoint, region, accessKey, secretKey string, logger *logrus.Logger) *TextractGateway {
	return &TextractGateway{
		endpoint:  endpoint,
		region:    region,
		accessKey: accessKey,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 60 * time.Second},
		logger:    logger,
	}
}

type analyzeRequest struct {
	Document     string   `json:"document"`
	FeatureTypes []string `json:"feature_types"`
	Region       string   `json:"region"`
}

type analyzeResponse struct {
	KeyValues []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"key_values"`
	Lines []string `json:"lines"`
	Error string   `json:"error"`
}

func (g *TextractGateway) AnalyzeDocument(ctx context.Context, document []byte) (*Result, error) {
	payload, err := json.Marshal(analyzeRequest{
		Document:     base64.StdEncoding.EncodeToString(document),
		FeatureTypes: []string{"FORMS", "TABLES"},
		Region:       g.region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Aws-Access-Key-Id", g.accessKey)
	req.Header.Set("X-Aws-Secret-Access-Key", g.secretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("textract gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("textract gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode textract response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("textract analysis failed: %s", parsed.Error)
	}

	result := &Result{
		Fields: make(map[string]string, len(parsed.KeyValues)),
		Lines:  parsed.Lines,
	}
	for _, kv := range parsed.KeyValues {
		if kv.Key != "" && kv.Value != "" {
			result.Fields[kv.Key] = kv.Value
		}
	}

	g.logger.WithFields(logrus.Fields{
		"fields": len(result.Fields),
		"lines":  len(result.Lines),
	}).Info("Textract analysis completed")

	return result, nil
}
