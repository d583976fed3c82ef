package repository

import (
	"gorm.io/gorm"

	"github.com/synapse-bot/synapse/app/models"
)

// actorRepository implements the ActorRepository interface
type actorRepository struct {
	db *gorm.DB
}

// NewActorRepository creates a new actor repository instance
func NewActorRepository(db *gorm.DB) ActorRepository {
	return &actorRepository{db: db}
}

// GetByID retrieves an actor profile by primary key
func (r *actorRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByDiscordID retrieves an actor profile by Discord snowflake
func (r *actorRepository) GetByDiscordID(discordID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("discord_id = ?", discordID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Leaderboard returns the top actors ordered by XP
func (r *actorRepository) Leaderboard(limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []models.User
	err := r.db.Order("xp DESC").Limit(limit).Find(&users).Error
	return users, err
}

// Count returns the total number of known actors
func (r *actorRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}
