package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"propertyflow/server/internal/models"
	"propertyflow/server/internal/ocr"
)

// Service posts document-processing notifications to a Telegram chat. When no
// bot token or chat id is configured every call is a no-op, so callers can
// notify unconditionally.
type Service struct {
	logger   *logrus.Logger
	client   *http.Client
	botToken string
	chatID   string
}

func NewService(logger *logrus.Logger, botToken, chatID string) *Service {
	return &Service{
		logger:   logger,
		botToken: botToken,
		chatID:   chatID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Service) Enabled() bool {
	return s.botToken != "" && s.chatID != ""
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(message string) error {
	if !s.Enabled() {
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)
	payload := map[string]interface{}{
		"chat_id":    s.chatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyDocumentProcessed sends a summary of a processed document and the
// property totals it produced. Failures are logged and swallowed: the upload
// already succeeded by the time a notification goes out.
func (s *Service) NotifyDocumentProcessed(property *models.Property, doc *models.Document, income, expenses float64) {
	if !s.Enabled() {
		return
	}

	statusLine := "✅ OCR succeeded"
	switch doc.ExtractedData.Status {
	case models.StatusOCRFailed:
		statusLine = "⚠️ OCR failed"
	case models.StatusNotConfigured:
		statusLine = "ℹ️ OCR not configured"
	case models.StatusUploaded:
		statusLine = "📎 Stored without OCR"
	}

	message := fmt.Sprintf(
		"<b>Document Processed</b>\n\n"+
			"🏠 %s\n"+
			"📄 %s (%s)\n"+
			"%s\n"+
			"💵 Income: %s\n"+
			"💸 Expenses: %s",
		property.Name,
		doc.Filename,
		doc.DocumentType,
		statusLine,
		ocr.FormatCurrency(income),
		ocr.FormatCurrency(expenses),
	)

	if err := s.SendMessage(message); err != nil {
		s.logger.WithError(err).Error("Failed to send Telegram notification")
	}
}
