package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertyflow/server/config"
	"propertyflow/server/internal/api"
	"propertyflow/server/internal/auth"
	"propertyflow/server/internal/cashflow"
	"propertyflow/server/internal/database"
	"propertyflow/server/internal/geocoding"
	"propertyflow/server/internal/notify"
	"propertyflow/server/internal/ocr"
	"propertyflow/server/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", cfg.Database.Path)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	store, err := storage.NewStore(cfg.Uploads.Dir, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize upload store")
	}

	// A nil engine means uploads are stored with a not-configured status. The
	// interface must stay nil when no gateway exists, so assign conditionally.
	var engine ocr.Engine
	if cfg.OCRConfigured() {
		engine = ocr.NewTextractGateway(cfg.OCR.Endpoint, cfg.OCR.Region,
			cfg.OCR.AccessKeyID, cfg.OCR.SecretAccessKey, logger)
		logger.Info("OCR engine configured")
	} else {
		logger.Warn("AWS credentials not configured; documents will be stored without OCR")
	}

	var geocoder *geocoding.Geocoder
	if !cfg.Geocoding.Disabled {
		cacheDir := filepath.Join(os.TempDir(), "propertyflow", "geocode_cache")
		geocoder = geocoding.NewGeocoder(logger, cacheDir)
	}

	notifier := notify.NewService(logger, cfg.Notifications.BotToken, cfg.Notifications.ChatID)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	flows := cashflow.NewService(db.GetDB(), logger)

	handler := api.NewHandler(db, logger, cfg, tokens, engine, store, flows, geocoder, notifier)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
