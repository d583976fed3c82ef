package repository

import (
	"gorm.io/gorm"

	"github.com/synapse-bot/synapse/app/models"
)

// achievementRepository implements the AchievementRepository interface
type achievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository creates a new achievement repository instance
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

// ActiveTemplates returns all active templates in a stable order. Evaluation
// order matters for series gating, so templates are sorted by id.
func (r *achievementRepository) ActiveTemplates() ([]models.AchievementTemplate, error) {
	var templates []models.AchievementTemplate
	err := r.db.Where("active = ?", true).Order("id").Find(&templates).Error
	return templates, err
}

// EarnedIDs returns the set of template ids an actor already earned
func (r *achievementRepository) EarnedIDs(actorID uint) (map[uint]bool, error) {
	var grants []models.AchievementGrant
	if err := r.db.Where("actor_id = ?", actorID).Find(&grants).Error; err != nil {
		return nil, err
	}

	earned := make(map[uint]bool, len(grants))
	for _, grant := range grants {
		earned[grant.TemplateID] = true
	}
	return earned, nil
}

// GrantsByActor returns an actor's grants, newest first
func (r *achievementRepository) GrantsByActor(actorID uint) ([]models.AchievementGrant, error) {
	var grants []models.AchievementGrant
	err := r.db.Where("actor_id = ?", actorID).Order("id DESC").Find(&grants).Error
	return grants, err
}
