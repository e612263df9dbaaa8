package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"propertyflow/server/internal/auth"
	"propertyflow/server/internal/database"
	"propertyflow/server/internal/models"
)

type CreatePropertyRequest struct {
	Name          string         `json:"name" binding:"required"`
	Address       models.Address `json:"address" binding:"required"`
	PurchasePrice float64        `json:"purchase_price"`
	CurrentValue  float64        `json:"current_value"`
}

// UpdatePropertyRequest carries a partial update; nil fields are untouched.
// Rental income and expenses are deliberately absent: those columns belong to
// the aggregator.
type UpdatePropertyRequest struct {
	Name          *string         `json:"name"`
	Address       *models.Address `json:"address"`
	PurchasePrice *float64        `json:"purchase_price"`
	CurrentValue  *float64        `json:"current_value"`
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property payload"})
		return
	}

	now := time.Now().UTC()
	property := &models.Property{
		ID:            uuid.NewString(),
		OwnerID:       auth.CurrentUserID(c),
		Name:          req.Name,
		Address:       req.Address,
		PurchasePrice: req.PurchasePrice,
		CurrentValue:  req.CurrentValue,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.db.CreateProperty(property); err != nil {
		h.logger.WithError(err).Error("Failed to create property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	h.geocodeProperty(property.ID, property.Address)

	h.logger.WithFields(map[string]interface{}{
		"property_id": property.ID,
		"owner_id":    property.OwnerID,
	}).Info("Created property")
	c.JSON(http.StatusCreated, property)
}

// geocodeProperty resolves coordinates in the background. Geocoding is
// decoration only, so failures never affect the request that triggered it.
func (h *Handler) geocodeProperty(propertyID string, address models.Address) {
	if h.geocoder == nil {
		return
	}
	go func() {
		lat, lon, err := h.geocoder.GeocodeAddress(address.Street, address.City, address.State, address.Zip)
		if err != nil {
			h.logger.WithError(err).WithField("property_id", propertyID).Debug("Geocoding failed")
			return
		}
		if err := h.db.SetPropertyCoordinates(propertyID, lat, lon); err != nil {
			h.logger.WithError(err).WithField("property_id", propertyID).Error("Failed to store coordinates")
		}
	}()
}

func (h *Handler) ListProperties(c *gin.Context) {
	properties, err := h.db.GetPropertiesByOwner(auth.CurrentUserID(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list properties"})
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *Handler) GetProperty(c *gin.Context) {
	property, err := h.db.GetProperty(c.Param("id"), auth.CurrentUserID(c))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property payload"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.PurchasePrice != nil {
		updates["purchase_price"] = *req.PurchasePrice
	}
	if req.CurrentValue != nil {
		updates["current_value"] = *req.CurrentValue
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	property, err := h.db.UpdateProperty(c.Param("id"), auth.CurrentUserID(c), updates)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to update property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}

	if req.Address != nil {
		h.geocodeProperty(property.ID, property.Address)
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	propertyID := c.Param("id")
	ownerID := auth.CurrentUserID(c)

	// Collect file paths before the cascade removes the document rows.
	docs, err := h.db.GetDocumentsByProperty(propertyID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list property documents")
	}

	err = h.db.DeleteProperty(propertyID, ownerID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}

	for _, doc := range docs {
		if err := h.store.Remove(doc.FilePath); err != nil {
			h.logger.WithError(err).WithField("path", doc.FilePath).Warn("Failed to remove stored file")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

func (h *Handler) GetPortfolioSummary(c *gin.Context) {
	summary, err := h.db.GetPortfolioSummary(auth.CurrentUserID(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get portfolio summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get portfolio summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
