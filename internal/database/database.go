package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"propertyflow/server/internal/models"
)

var ErrNotFound = errors.New("record not found")

type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// GetDB exposes the underlying gorm handle for components that manage their
// own transactions.
func (d *Database) GetDB() *gorm.DB {
	return d.db
}

func (d *Database) RunMigrations() error {
	return d.db.AutoMigrate(&models.User{}, &models.Property{}, &models.Document{})
}

func (d *Database) Ping() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- users ---

func (d *Database) CreateUser(user *models.User) error {
	return d.db.Create(user).Error
}

func (d *Database) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := d.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// --- properties ---

func (d *Database) CreateProperty(property *models.Property) error {
	return d.db.Create(property).Error
}

func (d *Database) GetPropertiesByOwner(ownerID string) ([]models.Property, error) {
	var properties []models.Property
	err := d.db.Where("owner_id = ?", ownerID).Order("created_at").Find(&properties).Error
	return properties, err
}

// GetProperty fetches a property only when it belongs to the given owner.
func (d *Database) GetProperty(propertyID, ownerID string) (*models.Property, error) {
	var property models.Property
	err := d.db.Where("id = ? AND owner_id = ?", propertyID, ownerID).First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// UpdateProperty applies a partial update and stamps updated_at. The address
// column is serialized by hand because map-based updates bypass gorm's JSON
// serializer.
func (d *Database) UpdateProperty(propertyID, ownerID string, updates map[string]interface{}) (*models.Property, error) {
	if addr, ok := updates["address"].(models.Address); ok {
		encoded, err := json.Marshal(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to encode address: %w", err)
		}
		updates["address"] = string(encoded)
	}
	updates["updated_at"] = time.Now().UTC()
	result := d.db.Model(&models.Property{}).
		Where("id = ? AND owner_id = ?", propertyID, ownerID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return d.GetProperty(propertyID, ownerID)
}

func (d *Database) DeleteProperty(propertyID, ownerID string) error {
	result := d.db.Where("id = ? AND owner_id = ?", propertyID, ownerID).Delete(&models.Property{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) SetPropertyCoordinates(propertyID string, lat, lon float64) error {
	return d.db.Model(&models.Property{}).Where("id = ?", propertyID).Updates(map[string]interface{}{
		"latitude":  lat,
		"longitude": lon,
	}).Error
}

// GetPortfolioSummary aggregates across all of an owner's properties.
func (d *Database) GetPortfolioSummary(ownerID string) (models.PortfolioSummary, error) {
	var summary models.PortfolioSummary
	err := d.db.Raw(`
        SELECT
            COUNT(*) AS total_properties,
            COALESCE(SUM(current_value), 0) AS total_value,
            COALESCE(SUM(rental_income), 0) AS total_income,
            COALESCE(SUM(expenses), 0) AS total_expenses
        FROM properties
        WHERE owner_id = ?
    `, ownerID).Scan(&summary).Error
	if err != nil {
		return summary, err
	}
	summary.NetCashFlow = summary.TotalIncome - summary.TotalExpenses
	return summary, nil
}

// --- documents ---

func (d *Database) CreateDocument(doc *models.Document) error {
	return d.db.Create(doc).Error
}

func (d *Database) GetDocument(documentID string) (*models.Document, error) {
	var doc models.Document
	err := d.db.Where("id = ?", documentID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Database) GetDocumentsByProperty(propertyID string) ([]models.Document, error) {
	var docs []models.Document
	err := d.db.Where("property_id = ?", propertyID).Order("uploaded_at").Find(&docs).Error
	return docs, err
}

func (d *Database) UpdateDocumentExtractedData(documentID string, data models.ExtractedData) (*models.Document, error) {
	doc, err := d.GetDocument(documentID)
	if err != nil {
		return nil, err
	}
	doc.ExtractedData = data
	doc.UpdatedAt = time.Now().UTC()
	if err := d.db.Save(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Database) DeleteDocument(documentID string) error {
	result := d.db.Where("id = ?", documentID).Delete(&models.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
