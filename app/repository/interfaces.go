package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/synapse-bot/synapse/app/models"
)

// ActorRepository defines the interface for actor-profile database operations
type ActorRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByDiscordID(discordID string) (*models.User, error)
	Leaderboard(limit int) ([]models.User, error)
	Count() (int64, error)
}

// JournalRepository defines the interface for activity-journal operations.
// The journal is append-only; inserts happen inside the event lake's
// transaction, so this interface only covers the read and maintenance side.
type JournalRepository interface {
	EventCountsByActor(actorID uint) (map[string]int64, error)
	KindCounts() ([]ActorKindCount, error)
	RecentByActor(actorID uint, limit int) ([]models.ActivityEvent, error)
	CountSince(since time.Time) (int64, error)
	XPSince(since time.Time) (int64, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// CounterRepository defines the interface for the event counter aggregate
type CounterRepository interface {
	Increment(actorID uint, eventKind, period string) error
	Set(actorID uint, eventKind, period string, count int64) error
	Get(actorID uint, eventKind, period string) (int64, error)
	ForActor(actorID uint) ([]models.EventCounter, error)
	AllForPeriod(period string) ([]models.EventCounter, error)
}

// AchievementRepository defines the interface for achievement templates and grants
type AchievementRepository interface {
	ActiveTemplates() ([]models.AchievementTemplate, error)
	EarnedIDs(actorID uint) (map[uint]bool, error)
	GrantsByActor(actorID uint) ([]models.AchievementGrant, error)
}

// MultiplierRepository defines the interface for channel multiplier rules
type MultiplierRepository interface {
	All() ([]models.ChannelMultiplier, error)
}

// SeasonRepository defines the interface for season lookups
type SeasonRepository interface {
	ActiveForGuild(guildID string) (*models.Season, error)
}

// SettingRepository defines the interface for application settings
type SettingRepository interface {
	All() (map[string]string, error)
	GetValue(key string) (string, error)
	SetValue(key, value string) error
}

// ActorKindCount is one row of the journal's per-actor per-kind aggregation,
// used by reconciliation to recompute lifetime counters.
type ActorKindCount struct {
	ActorID   uint
	EventKind string
	Count     int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	Actor       ActorRepository
	Journal     JournalRepository
	Counter     CounterRepository
	Achievement AchievementRepository
	Multiplier  MultiplierRepository
	Season      SeasonRepository
	Setting     SettingRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Actor:       NewActorRepository(db),
		Journal:     NewJournalRepository(db),
		Counter:     NewCounterRepository(db),
		Achievement: NewAchievementRepository(db),
		Multiplier:  NewMultiplierRepository(db),
		Season:      NewSeasonRepository(db),
		Setting:     NewSettingRepository(db),
	}
}

// AllSettings satisfies the reward configuration cache's store contract.
func (r *Repositories) AllSettings() (map[string]string, error) {
	return r.Setting.All()
}

// AllMultipliers satisfies the reward configuration cache's store contract.
func (r *Repositories) AllMultipliers() ([]models.ChannelMultiplier, error) {
	return r.Multiplier.All()
}

// ActiveAchievements satisfies the reward configuration cache's store contract.
func (r *Repositories) ActiveAchievements() ([]models.AchievementTemplate, error) {
	return r.Achievement.ActiveTemplates()
}
