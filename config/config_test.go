package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:3000")
	assert.Equal(t, "database/propertyflow.db", cfg.Database.Path)
	assert.Equal(t, 60, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, "uploads", cfg.Uploads.Dir)
	assert.Equal(t, int64(5000000), cfg.Uploads.MaxOCRBytes)
	assert.Equal(t, "us-west-2", cfg.OCR.Region)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com,https://admin.example.com")
	t.Setenv("JWT_EXPIRE_MINUTES", "15")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9001", cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 15, cfg.Auth.TokenTTLMinutes)
}

func TestOCRConfigured(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.OCRConfigured())

	cfg.OCR.AccessKeyID = "key"
	assert.False(t, cfg.OCRConfigured())

	cfg.OCR.SecretAccessKey = "secret"
	assert.True(t, cfg.OCRConfigured())
}
