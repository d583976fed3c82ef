package models

import (
	"time"
)

// Channel types recognized for multiplier defaults.
const (
	ChannelTypeText         = "text"
	ChannelTypeVoice        = "voice"
	ChannelTypeForum        = "forum"
	ChannelTypeStage        = "stage"
	ChannelTypeAnnouncement = "announcement"
)

// ChannelMultiplier tunes XP/star payouts per channel. A row either targets
// one exact channel (ChannelID set) or acts as the default for a channel
// type (ChannelType set). Exact-channel rows win over type defaults;
// without either the pipeline falls back to (1.0, 1.0).
type ChannelMultiplier struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	GuildID        string    `gorm:"size:32;not null;index" json:"guild_id"`
	ChannelID      *string   `gorm:"size:32;index" json:"channel_id,omitempty"`
	ChannelType    *string   `gorm:"size:32;index" json:"channel_type,omitempty"`
	EventKind      string    `gorm:"size:64;not null" json:"event_kind"`
	XPMultiplier   float64   `gorm:"not null;default:1" json:"xp_multiplier"`
	StarMultiplier float64   `gorm:"not null;default:1" json:"star_multiplier"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
