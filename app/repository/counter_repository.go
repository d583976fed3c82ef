package repository

import (
	"gorm.io/gorm"

	"github.com/synapse-bot/synapse/app/models"
)

// counterRepository implements the CounterRepository interface
type counterRepository struct {
	db *gorm.DB
}

// NewCounterRepository creates a new counter repository instance
func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

// Increment bumps a counter by one via an atomic upsert
func (r *counterRepository) Increment(actorID uint, eventKind, period string) error {
	return models.IncrementCounter(r.db, actorID, eventKind, period)
}

// Set overwrites a counter with an authoritative value
func (r *counterRepository) Set(actorID uint, eventKind, period string, count int64) error {
	return models.SetCounter(r.db, actorID, eventKind, period, count)
}

// Get reads one counter value; missing counters read as zero
func (r *counterRepository) Get(actorID uint, eventKind, period string) (int64, error) {
	var counter models.EventCounter
	err := r.db.Where("actor_id = ? AND event_kind = ? AND period = ?", actorID, eventKind, period).
		First(&counter).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return counter.Count, nil
}

// ForActor returns all counters of one actor
func (r *counterRepository) ForActor(actorID uint) ([]models.EventCounter, error) {
	var counters []models.EventCounter
	err := r.db.Where("actor_id = ?", actorID).
		Order("event_kind, period").
		Find(&counters).Error
	return counters, err
}

// AllForPeriod returns every counter for one period across all actors
func (r *counterRepository) AllForPeriod(period string) ([]models.EventCounter, error) {
	var counters []models.EventCounter
	err := r.db.Where("period = ?", period).Find(&counters).Error
	return counters, err
}
