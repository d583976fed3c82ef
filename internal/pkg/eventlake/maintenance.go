package eventlake

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/synapse-bot/synapse/app/models"
)

// ReconcileLifetimeCounters recomputes every (actor, event_kind) lifetime
// counter from a fresh count of matching journal rows and overwrites
// stored counters that drifted. This is the authoritative repair for the
// non-transactional counter upserts; it is idempotent and safe to run at
// any time. Returns the number of corrected counters.
func ReconcileLifetimeCounters(db *gorm.DB) (int, error) {
	var rows []struct {
		ActorID   uint
		EventKind string
		Total     int64
	}
	err := db.Model(&models.ActivityEvent{}).
		Select("actor_id, event_kind, COUNT(*) AS total").
		Group("actor_id, event_kind").
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate journal: %w", err)
	}

	authoritative := make(map[string]int64, len(rows))
	for _, row := range rows {
		authoritative[counterKey(row.ActorID, row.EventKind)] = row.Total
	}

	var stored []models.EventCounter
	if err := db.Where("period = ?", models.PeriodLifetime).Find(&stored).Error; err != nil {
		return 0, fmt.Errorf("failed to load lifetime counters: %w", err)
	}

	corrected := 0

	// Fix drifted counters, including ones whose journal rows were pruned.
	for _, counter := range stored {
		key := counterKey(counter.ActorID, counter.EventKind)
		want := authoritative[key]
		if counter.Count != want {
			if err := models.SetCounter(db, counter.ActorID, counter.EventKind, models.PeriodLifetime, want); err != nil {
				return corrected, fmt.Errorf("failed to correct counter for actor %d kind %s: %w", counter.ActorID, counter.EventKind, err)
			}
			corrected++
		}
		delete(authoritative, key)
	}

	// Create counters for journal rows whose upsert was lost entirely.
	for _, row := range rows {
		want, ok := authoritative[counterKey(row.ActorID, row.EventKind)]
		if !ok {
			continue
		}
		if err := models.SetCounter(db, row.ActorID, row.EventKind, models.PeriodLifetime, want); err != nil {
			return corrected, fmt.Errorf("failed to create counter for actor %d kind %s: %w", row.ActorID, row.EventKind, err)
		}
		corrected++
	}

	if corrected > 0 {
		log.Warnf("[EventLake] Reconciliation corrected %d lifetime counters", corrected)
	}
	return corrected, nil
}

// PruneJournal deletes journal rows older than the retention window. After
// pruning, reconciliation realigns lifetime counters with the remaining
// journal rows.
func PruneJournal(db *gorm.DB, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := db.Where("created_at < ?", cutoff).Delete(&models.ActivityEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Infof("[EventLake] Pruned %d journal entries older than %s", result.RowsAffected, cutoff.Format("2006-01-02"))
	}
	return result.RowsAffected, nil
}

func counterKey(actorID uint, eventKind string) string {
	return fmt.Sprintf("%d|%s", actorID, eventKind)
}
