package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/synapse-bot/synapse/app/models"
	"github.com/synapse-bot/synapse/internal/pkg/antigaming"
	"github.com/synapse-bot/synapse/internal/pkg/envelope"
	"github.com/synapse-bot/synapse/internal/pkg/rewardconfig"
)

type stubStore struct{}

func (stubStore) AllSettings() (map[string]string, error) { return map[string]string{}, nil }

func (stubStore) AllMultipliers() ([]models.ChannelMultiplier, error) { return nil, nil }

func (stubStore) ActiveAchievements() ([]models.AchievementTemplate, error) { return nil, nil }

func testService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Season{},
		&models.SeasonStats{},
		&models.ActivityEvent{},
		&models.EventCounter{},
		&models.AchievementTemplate{},
		&models.AchievementGrant{},
	))

	cfg := rewardconfig.NewCache(stubStore{})
	require.NoError(t, cfg.Load())

	return NewService(db, cfg, antigaming.NewTracker()), db
}

func TestProcessAppliesReward(t *testing.T) {
	service, db := testService(t)

	e := &envelope.Envelope{
		ActorID:    "actor-1",
		Kind:       envelope.KindMessage,
		NaturalKey: "msg_1",
		Attributes: map[string]interface{}{
			envelope.AttrMessageLength: 600,
			envelope.AttrHasCodeBlock:  true,
			envelope.AttrDisplayName:   "Alice",
		},
	}

	res, wasDuplicate, err := service.Process(context.Background(), e)
	require.NoError(t, err)
	assert.False(t, wasDuplicate)
	assert.Equal(t, int64(31), res.XP)

	actor, err := models.GetOrCreateUser(db, "actor-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(31), actor.XP)
	assert.Equal(t, "Alice", actor.DisplayName)
}

func TestProcessDuplicateDelivery(t *testing.T) {
	service, db := testService(t)

	e := &envelope.Envelope{
		ActorID:    "actor-1",
		Kind:       envelope.KindMessage,
		NaturalKey: "msg_999",
	}

	_, wasDuplicate, err := service.Process(context.Background(), e)
	require.NoError(t, err)
	assert.False(t, wasDuplicate)

	_, wasDuplicate, err = service.Process(context.Background(), e)
	require.NoError(t, err)
	assert.True(t, wasDuplicate)

	actor, err := models.GetOrCreateUser(db, "actor-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(15), actor.XP, "exactly one application")
}

func TestProcessLevelUpUsesPersistedProgress(t *testing.T) {
	service, db := testService(t)

	_, err := models.GetOrCreateUser(db, "actor-1", "Alice")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).
		Where("discord_id = ?", "actor-1").
		Update("xp", 120).Error)

	e := &envelope.Envelope{
		ActorID:    "actor-1",
		Kind:       envelope.KindMessage,
		NaturalKey: "msg_2",
	}

	res, _, err := service.Process(context.Background(), e)
	require.NoError(t, err)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.NewLevel)

	actor, err := models.GetOrCreateUser(db, "actor-1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, actor.Level)
	assert.Equal(t, int64(50), actor.Gold)
}

func TestProcessRejectsInvalidEvents(t *testing.T) {
	service, _ := testService(t)

	_, _, err := service.Process(context.Background(), &envelope.Envelope{Kind: envelope.KindMessage})
	assert.Error(t, err)

	_, _, err = service.Process(context.Background(), &envelope.Envelope{ActorID: "actor-1"})
	assert.Error(t, err)
}
