package repository

import (
	"gorm.io/gorm"

	"github.com/synapse-bot/synapse/app/models"
)

// seasonRepository implements the SeasonRepository interface
type seasonRepository struct {
	db *gorm.DB
}

// NewSeasonRepository creates a new season repository instance
func NewSeasonRepository(db *gorm.DB) SeasonRepository {
	return &seasonRepository{db: db}
}

// ActiveForGuild returns the guild's active season, or nil without error
// when the guild runs seasonless
func (r *seasonRepository) ActiveForGuild(guildID string) (*models.Season, error) {
	return models.GetActiveSeason(r.db, guildID)
}
