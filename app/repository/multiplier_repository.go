package repository

import (
	"gorm.io/gorm"

	"github.com/synapse-bot/synapse/app/models"
)

// multiplierRepository implements the MultiplierRepository interface
type multiplierRepository struct {
	db *gorm.DB
}

// NewMultiplierRepository creates a new multiplier repository instance
func NewMultiplierRepository(db *gorm.DB) MultiplierRepository {
	return &multiplierRepository{db: db}
}

// All returns every multiplier rule; the configuration cache indexes them
func (r *multiplierRepository) All() ([]models.ChannelMultiplier, error) {
	var rules []models.ChannelMultiplier
	err := r.db.Find(&rules).Error
	return rules, err
}
