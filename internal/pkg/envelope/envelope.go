// Package envelope defines the normalized representation of a gateway
// interaction. An envelope is built once per gateway callback, consumed by
// the reward pipeline, and discarded.
package envelope

import (
	"time"
)

// Kind identifies the interaction type of an envelope.
type Kind string

const (
	KindMessage           Kind = "message"
	KindReactionGiven     Kind = "reaction_given"
	KindReactionReceived  Kind = "reaction_received"
	KindThreadCreate      Kind = "thread_create"
	KindVoiceTick         Kind = "voice_tick"
	KindManualAward       Kind = "manual_award"
	KindLevelUp           Kind = "level_up"
	KindAchievementEarned Kind = "achievement_earned"
)

// Attribute keys. Attributes carry derived booleans and counts only,
// never raw message text.
const (
	AttrMessageLength     = "message_length"
	AttrHasCodeBlock      = "has_code_block"
	AttrHasLink           = "has_link"
	AttrHasAttachment     = "has_attachment"
	AttrEmojiCount        = "emoji_count"
	AttrReactorID         = "reactor_id"
	AttrTargetID          = "target_id"
	AttrUniqueReactors    = "unique_reactor_count"
	AttrMessageAgeSeconds = "message_age_seconds"
	AttrXP                = "xp"
	AttrStars             = "stars"
	AttrGold              = "gold"
	AttrReason            = "reason"
	AttrDisplayName       = "display_name"
	AttrNewLevel          = "new_level"
	AttrTemplateID        = "template_id"
)

// Envelope is the normalized form of any interaction event. NaturalKey is
// the caller-supplied idempotency token; it stays empty for events without
// natural uniqueness (voice ticks).
type Envelope struct {
	ActorID     string                 `json:"actor_id"`
	Kind        Kind                   `json:"event_kind"`
	ChannelID   string                 `json:"channel_id"`
	ChannelType string                 `json:"channel_type"`
	GuildID     string                 `json:"guild_id"`
	NaturalKey  string                 `json:"natural_key,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at"`
}

// Int reads an integer attribute. Missing or mistyped values read as zero;
// gateway event shapes vary across kinds, so absent metadata is normal.
func (e *Envelope) Int(key string) int {
	switch v := e.Attributes[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		// JSON numbers decode as float64
		return int(v)
	default:
		return 0
	}
}

// Int64 reads an integer attribute as int64.
func (e *Envelope) Int64(key string) int64 {
	switch v := e.Attributes[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Float reads a float attribute, defaulting to zero.
func (e *Envelope) Float(key string) float64 {
	switch v := e.Attributes[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// Bool reads a boolean attribute, defaulting to false.
func (e *Envelope) Bool(key string) bool {
	if v, ok := e.Attributes[key].(bool); ok {
		return v
	}
	return false
}

// String reads a string attribute, defaulting to "".
func (e *Envelope) String(key string) string {
	if v, ok := e.Attributes[key].(string); ok {
		return v
	}
	return ""
}
