package models

import (
	"time"

	"gorm.io/gorm"
)

// Season is a bounded competitive window. Per-season stats reset with each
// season while the lifetime totals on User keep accumulating.
type Season struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	GuildID   string     `gorm:"size:32;not null;index" json:"guild_id"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	Active    bool       `gorm:"not null;default:false;index" json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SeasonStats holds one actor's counters for one season.
type SeasonStats struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SeasonID          uint      `gorm:"not null;uniqueIndex:idx_season_actor,priority:1" json:"season_id"`
	ActorID           uint      `gorm:"not null;uniqueIndex:idx_season_actor,priority:2" json:"actor_id"`
	SeasonStars       int64     `gorm:"not null;default:0" json:"season_stars"`
	MessagesSent      int64     `gorm:"not null;default:0" json:"messages_sent"`
	ReactionsGiven    int64     `gorm:"not null;default:0" json:"reactions_given"`
	ReactionsReceived int64     `gorm:"not null;default:0" json:"reactions_received"`
	ThreadsCreated    int64     `gorm:"not null;default:0" json:"threads_created"`
	VoiceTicks        int64     `gorm:"not null;default:0" json:"voice_ticks"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BumpKind increments the counter field mapped from an event kind.
// Kinds without a dedicated counter (manual awards, synthetic entries)
// leave the row unchanged.
func (s *SeasonStats) BumpKind(eventKind string) {
	switch eventKind {
	case "message":
		s.MessagesSent++
	case "reaction_given":
		s.ReactionsGiven++
	case "reaction_received":
		s.ReactionsReceived++
	case "thread_create":
		s.ThreadsCreated++
	case "voice_tick":
		s.VoiceTicks++
	}
}

// StatFields exposes the per-season counters as a name → value map for
// achievement predicate evaluation.
func (s *SeasonStats) StatFields() map[string]int64 {
	return map[string]int64{
		"messages_sent":      s.MessagesSent,
		"reactions_given":    s.ReactionsGiven,
		"reactions_received": s.ReactionsReceived,
		"threads_created":    s.ThreadsCreated,
		"voice_ticks":        s.VoiceTicks,
		"season_stars":       s.SeasonStars,
	}
}

// GetActiveSeason returns the currently active season for a guild, or nil
// when the guild runs without seasons.
func GetActiveSeason(db *gorm.DB, guildID string) (*Season, error) {
	var season Season
	err := db.Where("guild_id = ? AND active = ?", guildID, true).First(&season).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &season, nil
}

// GetOrCreateSeasonStats loads the stats row for an actor in a season,
// creating an empty row on first activity.
func GetOrCreateSeasonStats(db *gorm.DB, seasonID, actorID uint) (*SeasonStats, error) {
	var stats SeasonStats
	err := db.Where("season_id = ? AND actor_id = ?", seasonID, actorID).First(&stats).Error
	if err == nil {
		return &stats, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	stats = SeasonStats{SeasonID: seasonID, ActorID: actorID}
	if err := db.Create(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
