// Package rewardconfig serves reward-tuning parameters from memory. The
// cache is partitioned (settings, multipliers, achievements); reloading one
// partition never blocks reads of another, and a failed reload keeps the
// last-known-good snapshot: staleness is preferred over unavailability.
package rewardconfig

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2/log"

	"github.com/synapse-bot/synapse/app/models"
	"github.com/synapse-bot/synapse/internal/pkg/envelope"
)

// Partition names a reloadable slice of the cache.
type Partition string

const (
	PartitionSettings     Partition = "settings"
	PartitionMultipliers  Partition = "multipliers"
	PartitionAchievements Partition = "achievements"
)

// Store is the durable backing of the cache. Its only contract is "read all
// rows in partition X"; *repository.Repositories satisfies it.
type Store interface {
	AllSettings() (map[string]string, error)
	AllMultipliers() ([]models.ChannelMultiplier, error)
	ActiveAchievements() ([]models.AchievementTemplate, error)
}

type multiplierPair struct {
	xp    float64
	stars float64
}

// Cache is the in-memory configuration snapshot. Reads happen on every
// event from many goroutines; each partition has its own RWMutex so a
// reload of one partition only contends with readers of that partition.
type Cache struct {
	store Store

	settingsMu sync.RWMutex
	settings   map[string]string

	multipliersMu sync.RWMutex
	byChannel     map[string]multiplierPair
	byType        map[string]multiplierPair

	achievementsMu sync.RWMutex
	achievements   map[string][]models.AchievementTemplate
}

// NewCache creates an empty cache bound to a store. Call Load before use.
func NewCache(store Store) *Cache {
	return &Cache{
		store:        store,
		settings:     map[string]string{},
		byChannel:    map[string]multiplierPair{},
		byType:       map[string]multiplierPair{},
		achievements: map[string][]models.AchievementTemplate{},
	}
}

// Load populates every partition. Used at startup, where a failure is fatal
// unlike later invalidations.
func (c *Cache) Load() error {
	for _, partition := range []Partition{PartitionSettings, PartitionMultipliers, PartitionAchievements} {
		if err := c.Invalidate(partition); err != nil {
			return fmt.Errorf("failed to load partition %s: %w", partition, err)
		}
	}
	return nil
}

// Invalidate reloads exactly the named partition from the store. The
// blocking read happens before the partition lock is taken, so readers are
// only held up for the snapshot swap itself.
func (c *Cache) Invalidate(partition Partition) error {
	switch partition {
	case PartitionSettings:
		settings, err := c.store.AllSettings()
		if err != nil {
			return err
		}
		c.settingsMu.Lock()
		c.settings = settings
		c.settingsMu.Unlock()

	case PartitionMultipliers:
		rules, err := c.store.AllMultipliers()
		if err != nil {
			return err
		}
		byChannel := make(map[string]multiplierPair)
		byType := make(map[string]multiplierPair)
		for _, rule := range rules {
			pair := multiplierPair{xp: rule.XPMultiplier, stars: rule.StarMultiplier}
			if rule.ChannelID != nil && *rule.ChannelID != "" {
				byChannel[multiplierKey(*rule.ChannelID, rule.EventKind)] = pair
			} else if rule.ChannelType != nil && *rule.ChannelType != "" {
				byType[multiplierKey(*rule.ChannelType, rule.EventKind)] = pair
			}
		}
		c.multipliersMu.Lock()
		c.byChannel = byChannel
		c.byType = byType
		c.multipliersMu.Unlock()

	case PartitionAchievements:
		templates, err := c.store.ActiveAchievements()
		if err != nil {
			return err
		}
		byGuild := make(map[string][]models.AchievementTemplate)
		for _, template := range templates {
			byGuild[template.GuildID] = append(byGuild[template.GuildID], template)
		}
		c.achievementsMu.Lock()
		c.achievements = byGuild
		c.achievementsMu.Unlock()

	default:
		return fmt.Errorf("unknown config partition: %s", partition)
	}

	return nil
}

// ResolveMultipliers returns the XP and star multipliers for a channel and
// event kind. A channel-specific override wins over the channel-type
// default; absent both, the multipliers are (1.0, 1.0).
func (c *Cache) ResolveMultipliers(channelID, channelType string, kind envelope.Kind) (float64, float64) {
	c.multipliersMu.RLock()
	defer c.multipliersMu.RUnlock()

	if pair, ok := c.byChannel[multiplierKey(channelID, string(kind))]; ok {
		return pair.xp, pair.stars
	}
	if pair, ok := c.byType[multiplierKey(channelType, string(kind))]; ok {
		return pair.xp, pair.stars
	}
	return 1.0, 1.0
}

// ActiveAchievements returns the active templates for a guild in stable
// (id) order. The returned slice is a copy and safe to range over while
// the partition reloads.
func (c *Cache) ActiveAchievements(guildID string) []models.AchievementTemplate {
	c.achievementsMu.RLock()
	defer c.achievementsMu.RUnlock()

	templates := c.achievements[guildID]
	out := make([]models.AchievementTemplate, len(templates))
	copy(out, templates)
	return out
}

// GetString returns a settings value, or def when the key is absent.
func (c *Cache) GetString(key, def string) string {
	c.settingsMu.RLock()
	defer c.settingsMu.RUnlock()

	if val, ok := c.settings[key]; ok {
		return val
	}
	return def
}

// GetInt returns a settings value as int. Absent or malformed values fall
// back to def rather than erroring.
func (c *Cache) GetInt(key string, def int) int {
	raw := c.GetString(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnf("[RewardConfig] Setting %s has non-integer value %q, using default %d", key, raw, def)
		return def
	}
	return val
}

// GetFloat returns a settings value as float64 with default fallback.
func (c *Cache) GetFloat(key string, def float64) float64 {
	raw := c.GetString(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warnf("[RewardConfig] Setting %s has non-float value %q, using default %g", key, raw, def)
		return def
	}
	return val
}

// GetBool returns a settings value as bool with default fallback.
func (c *Cache) GetBool(key string, def bool) bool {
	raw := c.GetString(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warnf("[RewardConfig] Setting %s has non-boolean value %q, using default %t", key, raw, def)
		return def
	}
	return val
}

func multiplierKey(scope, kind string) string {
	return scope + "|" + kind
}
