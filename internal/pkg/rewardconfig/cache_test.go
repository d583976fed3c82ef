package rewardconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-bot/synapse/app/models"
	"github.com/synapse-bot/synapse/internal/pkg/envelope"
)

type stubStore struct {
	settings    map[string]string
	multipliers []models.ChannelMultiplier
	templates   []models.AchievementTemplate
	settingsErr error
}

func (s *stubStore) AllSettings() (map[string]string, error) {
	if s.settingsErr != nil {
		return nil, s.settingsErr
	}
	return s.settings, nil
}

func (s *stubStore) AllMultipliers() ([]models.ChannelMultiplier, error) {
	return s.multipliers, nil
}

func (s *stubStore) ActiveAchievements() ([]models.AchievementTemplate, error) {
	return s.templates, nil
}

func strPtr(s string) *string { return &s }

func TestCacheTypedAccessors(t *testing.T) {
	cache := NewCache(&stubStore{settings: map[string]string{
		"level_base":      "200",
		"level_factor":    "1.5",
		"feature_enabled": "true",
		"broken_int":      "not-a-number",
		"broken_float":    "nope",
	}})
	require.NoError(t, cache.Load())

	assert.Equal(t, 200, cache.GetInt("level_base", 100))
	assert.Equal(t, 1.5, cache.GetFloat("level_factor", 1.25))
	assert.Equal(t, true, cache.GetBool("feature_enabled", false))
	assert.Equal(t, "200", cache.GetString("level_base", ""))

	// Absent keys fall back to the default.
	assert.Equal(t, 42, cache.GetInt("missing", 42))
	assert.Equal(t, 0.5, cache.GetFloat("missing", 0.5))
	assert.Equal(t, true, cache.GetBool("missing", true))
	assert.Equal(t, "def", cache.GetString("missing", "def"))

	// Malformed values fall back instead of erroring.
	assert.Equal(t, 7, cache.GetInt("broken_int", 7))
	assert.Equal(t, 1.25, cache.GetFloat("broken_float", 1.25))
}

func TestCacheResolveMultipliers(t *testing.T) {
	cache := NewCache(&stubStore{multipliers: []models.ChannelMultiplier{
		{ChannelID: strPtr("chan-help"), EventKind: "message", XPMultiplier: 2.0, StarMultiplier: 1.5},
		{ChannelType: strPtr("help"), EventKind: "message", XPMultiplier: 1.5, StarMultiplier: 1.0},
		{ChannelType: strPtr("spam"), EventKind: "message", XPMultiplier: 0.25, StarMultiplier: 0.0},
	}})
	require.NoError(t, cache.Load())

	// Channel override wins over channel-type default.
	xp, stars := cache.ResolveMultipliers("chan-help", "help", envelope.KindMessage)
	assert.Equal(t, 2.0, xp)
	assert.Equal(t, 1.5, stars)

	// Type default applies when the channel has no override.
	xp, stars = cache.ResolveMultipliers("chan-other", "help", envelope.KindMessage)
	assert.Equal(t, 1.5, xp)
	assert.Equal(t, 1.0, stars)

	// No rule at all means neutral multipliers.
	xp, stars = cache.ResolveMultipliers("chan-other", "general", envelope.KindMessage)
	assert.Equal(t, 1.0, xp)
	assert.Equal(t, 1.0, stars)

	// Rules are scoped per event kind.
	xp, stars = cache.ResolveMultipliers("chan-help", "help", envelope.KindReactionReceived)
	assert.Equal(t, 1.0, xp)
	assert.Equal(t, 1.0, stars)
}

func TestCacheInvalidateReloadsPartition(t *testing.T) {
	store := &stubStore{settings: map[string]string{"level_base": "100"}}
	cache := NewCache(store)
	require.NoError(t, cache.Load())
	assert.Equal(t, 100, cache.GetInt("level_base", 0))

	store.settings = map[string]string{"level_base": "250"}
	require.NoError(t, cache.Invalidate(PartitionSettings))
	assert.Equal(t, 250, cache.GetInt("level_base", 0))
}

func TestCacheInvalidateKeepsSnapshotOnError(t *testing.T) {
	store := &stubStore{settings: map[string]string{"level_base": "100"}}
	cache := NewCache(store)
	require.NoError(t, cache.Load())

	store.settingsErr = errors.New("connection lost")
	require.Error(t, cache.Invalidate(PartitionSettings))

	// Readers keep seeing the last-known-good snapshot.
	assert.Equal(t, 100, cache.GetInt("level_base", 0))
}

func TestCacheInvalidateUnknownPartition(t *testing.T) {
	cache := NewCache(&stubStore{})
	assert.Error(t, cache.Invalidate(Partition("bogus")))
}

func TestCacheActiveAchievementsReturnsCopy(t *testing.T) {
	cache := NewCache(&stubStore{templates: []models.AchievementTemplate{
		{ID: 1, GuildID: "guild-a", Name: "First Words"},
		{ID: 2, GuildID: "guild-a", Name: "Conversationalist"},
		{ID: 3, GuildID: "guild-b", Name: "Other Guild"},
	}})
	require.NoError(t, cache.Load())

	templates := cache.ActiveAchievements("guild-a")
	require.Len(t, templates, 2)
	assert.Equal(t, uint(1), templates[0].ID)
	assert.Equal(t, uint(2), templates[1].ID)

	// Mutating the returned slice must not leak into the cache.
	templates[0].Name = "changed"
	again := cache.ActiveAchievements("guild-a")
	assert.Equal(t, "First Words", again[0].Name)

	assert.Empty(t, cache.ActiveAchievements("guild-unknown"))
}
