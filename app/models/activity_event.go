package models

import (
	"encoding/json"
	"time"
)

// Source systems for journal entries.
const (
	SourceDiscord = "discord"
	SourceAdmin   = "admin"
)

// ActivityEvent is one row of the append-only activity journal. Rows are
// only ever inserted; the journal is the source of truth that the counter
// table and statistics are derived from.
//
// The composite unique index over (source_system, natural_key) is the
// idempotency contract: redelivered gateway events carry the same natural
// key and collide here. MySQL and sqlite both allow any number of NULL
// natural keys under a unique index, so events without natural uniqueness
// (voice ticks, synthetic entries) insert freely.
type ActivityEvent struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	ActorID      uint      `gorm:"not null;index" json:"actor_id"`
	EventKind    string    `gorm:"size:64;not null;index" json:"event_kind"`
	SeasonID     *uint     `gorm:"index" json:"season_id,omitempty"`
	SourceSystem string    `gorm:"size:32;not null;default:discord;uniqueIndex:idx_activity_source_natural,priority:1" json:"source_system"`
	NaturalKey   *string   `gorm:"size:191;uniqueIndex:idx_activity_source_natural,priority:2" json:"natural_key,omitempty"`
	XPDelta      int64     `gorm:"not null;default:0" json:"xp_delta"`
	StarDelta    int64     `gorm:"not null;default:0" json:"star_delta"`
	Attributes   string    `gorm:"type:text" json:"attributes"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// SetAttributes serializes event metadata into the attributes blob.
// The blob carries derived booleans and counts only, never message text.
func (e *ActivityEvent) SetAttributes(attrs map[string]interface{}) error {
	if len(attrs) == 0 {
		e.Attributes = ""
		return nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	e.Attributes = string(data)
	return nil
}

// GetAttributes deserializes the attributes blob.
func (e *ActivityEvent) GetAttributes() map[string]interface{} {
	if e.Attributes == "" {
		return map[string]interface{}{}
	}
	attrs := map[string]interface{}{}
	if err := json.Unmarshal([]byte(e.Attributes), &attrs); err != nil {
		return map[string]interface{}{}
	}
	return attrs
}
