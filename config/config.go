package config

import "github.com/caarlos0/env/v6"

type Config struct {
	Server struct {
		// Port the HTTP server listens on
		Port string `env:"PORT" envDefault:"8000"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:3001"`
	}

	Database struct {
		// Path to the sqlite database file
		Path string `env:"DATABASE_PATH" envDefault:"database/propertyflow.db"`
	}

	Auth struct {
		// Secret used to sign access tokens
		JWTSecret string `env:"JWT_SECRET_KEY" envDefault:"supersecretkey"`

		// Access token lifetime in minutes
		TokenTTLMinutes int `env:"JWT_EXPIRE_MINUTES" envDefault:"60"`
	}

	Uploads struct {
		// Directory uploaded documents are stored under
		Dir string `env:"UPLOAD_DIR" envDefault:"uploads"`

		// Largest document the OCR engine accepts (AnalyzeDocument limit)
		MaxOCRBytes int64 `env:"OCR_MAX_FILE_BYTES" envDefault:"5000000"`
	}

	OCR struct {
		// Endpoint of the Textract REST gateway
		Endpoint string `env:"TEXTRACT_ENDPOINT" envDefault:"http://textract-gateway:8866/analyze"`

		// AWS region passed through to Textract
		Region string `env:"AWS_REGION" envDefault:"us-west-2"`

		AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
		SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	}

	Geocoding struct {
		// Disable outbound Nominatim lookups (tests, offline deployments)
		Disabled bool `env:"GEOCODING_DISABLED" envDefault:"false"`
	}

	Notifications struct {
		// Telegram bot credentials; notifications are off when unset
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OCRConfigured reports whether AWS credentials are present; without them the
// upload path records documents with a not-configured status instead of
// calling the engine.
func (c *Config) OCRConfigured() bool {
	return c.OCR.AccessKeyID != "" && c.OCR.SecretAccessKey != ""
}
