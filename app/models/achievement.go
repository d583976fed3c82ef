package models

import (
	"encoding/json"
	"time"
)

// Achievement trigger types. Templates with an unknown type are skipped
// during evaluation instead of erroring.
const (
	TriggerStatThreshold = "stat_threshold"
	TriggerXPMilestone   = "xp_milestone"
	TriggerStarMilestone = "star_milestone"
	TriggerLevelReached  = "level_reached"
	TriggerLevelInterval = "level_interval"
	TriggerEventCount    = "event_count"
	TriggerFirstEvent    = "first_event"
	TriggerMemberTenure  = "member_tenure"
	TriggerInviteCount   = "invite_count"
	TriggerManual        = "manual"
)

// AchievementTemplate is an admin-defined achievement: a trigger predicate
// plus the reward granted when it fires. Templates can form a series via
// SeriesID/SeriesOrder; later tiers stay locked until the previous tier
// has been earned.
type AchievementTemplate struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GuildID     string    `gorm:"size:32;not null;index" json:"guild_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	TriggerType string    `gorm:"size:32;not null" json:"trigger_type"`
	Config      string    `gorm:"type:text" json:"config"`
	SeriesID    *uint     `gorm:"index" json:"series_id,omitempty"`
	SeriesOrder int       `gorm:"not null;default:1" json:"series_order"`
	XPReward    int64     `gorm:"not null;default:0" json:"xp_reward"`
	GoldReward  int64     `gorm:"not null;default:0" json:"gold_reward"`
	Active      bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ConfigMap deserializes the trigger configuration. Malformed JSON yields
// an empty map; the predicate then simply fails to fire.
func (t *AchievementTemplate) ConfigMap() map[string]interface{} {
	if t.Config == "" {
		return map[string]interface{}{}
	}
	cfg := map[string]interface{}{}
	if err := json.Unmarshal([]byte(t.Config), &cfg); err != nil {
		return map[string]interface{}{}
	}
	return cfg
}

// AchievementGrant records that an actor earned a template. The composite
// unique index makes repeated grants impossible.
type AchievementGrant struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorID    uint      `gorm:"not null;uniqueIndex:idx_grant_actor_template,priority:1" json:"actor_id"`
	TemplateID uint      `gorm:"not null;uniqueIndex:idx_grant_actor_template,priority:2" json:"template_id"`
	CreatedAt  time.Time `json:"created_at"`
}
