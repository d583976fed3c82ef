package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter periods. Day periods use the form "day:YYYY-MM-DD".
const (
	PeriodLifetime  = "lifetime"
	PeriodSeason    = "season"
	PeriodDayPrefix = "day:"
)

// DayPeriod returns the day-scoped period string for a timestamp.
func DayPeriod(t time.Time) string {
	return PeriodDayPrefix + t.Format("2006-01-02")
}

// EventCounter is a mutable read-side aggregate: how many events of a kind
// an actor produced within a period. It is maintained outside the journal
// transaction and repaired by reconciliation, so it may briefly drift from
// the journal.
type EventCounter struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   uint      `gorm:"not null;uniqueIndex:idx_counter_key,priority:1" json:"actor_id"`
	EventKind string    `gorm:"size:64;not null;uniqueIndex:idx_counter_key,priority:2" json:"event_kind"`
	Period    string    `gorm:"size:32;not null;uniqueIndex:idx_counter_key,priority:3" json:"period"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IncrementCounter bumps a counter by one with an atomic insert-or-add.
// A read-then-write would lose updates under concurrent writers for the
// same actor, so the increment happens inside the upsert.
func IncrementCounter(db *gorm.DB, actorID uint, eventKind, period string) error {
	counter := EventCounter{
		ActorID:   actorID,
		EventKind: eventKind,
		Period:    period,
		Count:     1,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "actor_id"}, {Name: "event_kind"}, {Name: "period"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("count + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&counter).Error
}

// SetCounter overwrites a counter with an authoritative value. Used by
// reconciliation after recounting the journal.
func SetCounter(db *gorm.DB, actorID uint, eventKind, period string, count int64) error {
	counter := EventCounter{
		ActorID:   actorID,
		EventKind: eventKind,
		Period:    period,
		Count:     count,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "actor_id"}, {Name: "event_kind"}, {Name: "period"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      count,
			"updated_at": time.Now(),
		}),
	}).Create(&counter).Error
}
