package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertyflow/server/config"
	"propertyflow/server/internal/auth"
	"propertyflow/server/internal/cashflow"
	"propertyflow/server/internal/database"
	"propertyflow/server/internal/geocoding"
	"propertyflow/server/internal/notify"
	"propertyflow/server/internal/ocr"
	"propertyflow/server/internal/storage"
)

type Handler struct {
	db       *database.Database
	logger   *logrus.Logger
	cfg      *config.Config
	tokens   *auth.TokenManager
	engine   ocr.Engine
	store    *storage.Store
	cashflow *cashflow.Service
	geocoder *geocoding.Geocoder
	notifier *notify.Service
}

func NewHandler(db *database.Database, logger *logrus.Logger, cfg *config.Config,
	tokens *auth.TokenManager, engine ocr.Engine, store *storage.Store,
	flows *cashflow.Service, geocoder *geocoding.Geocoder, notifier *notify.Service) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:       db,
		logger:   logger,
		cfg:      cfg,
		tokens:   tokens,
		engine:   engine,
		store:    store,
		cashflow: flows,
		geocoder: geocoder,
		notifier: notifier,
	}
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Property CashFlow Dashboard API"})
}

func (h *Handler) Health(c *gin.Context) {
	dbStatus := "connected"
	if err := h.db.Ping(); err != nil {
		h.logger.WithError(err).Error("Database ping failed")
		dbStatus = "disconnected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbStatus,
	})
}
