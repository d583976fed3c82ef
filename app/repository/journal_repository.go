package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/synapse-bot/synapse/app/models"
)

// journalRepository implements the JournalRepository interface
type journalRepository struct {
	db *gorm.DB
}

// NewJournalRepository creates a new journal repository instance
func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

// EventCountsByActor aggregates the journal into per-kind totals for one actor
func (r *journalRepository) EventCountsByActor(actorID uint) (map[string]int64, error) {
	var rows []struct {
		EventKind string
		Total     int64
	}
	err := r.db.Model(&models.ActivityEvent{}).
		Select("event_kind, COUNT(*) AS total").
		Where("actor_id = ?", actorID).
		Group("event_kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.EventKind] = row.Total
	}
	return counts, nil
}

// KindCounts aggregates the whole journal per actor and kind. This is the
// authoritative count that reconciliation compares lifetime counters against.
func (r *journalRepository) KindCounts() ([]ActorKindCount, error) {
	var rows []ActorKindCount
	err := r.db.Model(&models.ActivityEvent{}).
		Select("actor_id, event_kind, COUNT(*) AS count").
		Group("actor_id, event_kind").
		Scan(&rows).Error
	return rows, err
}

// RecentByActor returns the newest journal entries for one actor
func (r *journalRepository) RecentByActor(actorID uint, limit int) ([]models.ActivityEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	var events []models.ActivityEvent
	err := r.db.Where("actor_id = ?", actorID).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// CountSince counts journal entries newer than the given time
func (r *journalRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.ActivityEvent{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// XPSince sums the XP granted by journal entries newer than the given time
func (r *journalRepository) XPSince(since time.Time) (int64, error) {
	var total *int64
	err := r.db.Model(&models.ActivityEvent{}).
		Select("SUM(xp_delta)").
		Where("created_at >= ?", since).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

// DeleteOlderThan prunes journal rows past the retention window and returns
// the number of removed rows
func (r *journalRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&models.ActivityEvent{})
	return result.RowsAffected, result.Error
}
