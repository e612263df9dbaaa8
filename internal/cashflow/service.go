package cashflow

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"propertyflow/server/internal/models"
)

// Service recomputes property totals from the stored document set. Updates
// for the same property are serialized through a per-property mutex so that
// two concurrent uploads cannot interleave their read-modify-write cycles.
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *Service) propertyLock(propertyID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[propertyID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[propertyID] = lock
	}
	return lock
}

// Recompute re-derives a property's rental_income and expenses from all of
// its documents and persists them inside one transaction. A failed recompute
// degrades to zeroed totals and is logged, never surfaced: a stale or zeroed
// total is preferable to a crashed upload or delete request.
func (s *Service) Recompute(propertyID string) (income, expenses float64) {
	lock := s.propertyLock(propertyID)
	lock.Lock()
	defer lock.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var docs []models.Document
		if err := tx.Where("property_id = ?", propertyID).Order("uploaded_at").Find(&docs).Error; err != nil {
			return fmt.Errorf("failed to load documents: %w", err)
		}

		income, expenses = AggregateDocuments(docs)
		if income < 0 {
			income = 0
		}
		if expenses < 0 {
			expenses = 0
		}

		result := tx.Model(&models.Property{}).Where("id = ?", propertyID).Updates(map[string]interface{}{
			"rental_income": income,
			"expenses":      expenses,
			"updated_at":    time.Now().UTC(),
		})
		if result.Error != nil {
			return fmt.Errorf("failed to update property totals: %w", result.Error)
		}
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("property_id", propertyID).Error("Cash flow recompute failed")
		return 0, 0
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": propertyID,
		"income":      income,
		"expenses":    expenses,
	}).Info("Recomputed property totals")

	return income, expenses
}
