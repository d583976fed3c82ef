package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the durable profile of a community member: the running XP, level,
// gold and lifetime star totals that every reward application mutates.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	DiscordID     string    `gorm:"size:32;not null;uniqueIndex" json:"discord_id"`
	DisplayName   string    `gorm:"size:255" json:"display_name"`
	XP            int64     `gorm:"not null;default:0" json:"xp"`
	Level         int       `gorm:"not null;default:1" json:"level"`
	Gold          int64     `gorm:"not null;default:0" json:"gold"`
	LifetimeStars int64     `gorm:"not null;default:0" json:"lifetime_stars"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GetOrCreateUser loads the profile for a Discord id, creating a fresh
// level-1 profile on first contact. Runs on the caller's transaction.
func GetOrCreateUser(db *gorm.DB, discordID, displayName string) (*User, error) {
	var user User
	err := db.Where("discord_id = ?", discordID).First(&user).Error
	if err == nil {
		if displayName != "" && user.DisplayName != displayName {
			user.DisplayName = displayName
		}
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = User{
		DiscordID:   discordID,
		DisplayName: displayName,
		Level:       1,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
