package eventlake

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/synapse-bot/synapse/app/models"
	"github.com/synapse-bot/synapse/internal/pkg/envelope"
	"github.com/synapse-bot/synapse/internal/pkg/reward"
	"github.com/synapse-bot/synapse/internal/pkg/rewardconfig"
)

type stubStore struct {
	templates []models.AchievementTemplate
}

func (s *stubStore) AllSettings() (map[string]string, error) { return map[string]string{}, nil }

func (s *stubStore) AllMultipliers() ([]models.ChannelMultiplier, error) { return nil, nil }

func (s *stubStore) ActiveAchievements() ([]models.AchievementTemplate, error) {
	return s.templates, nil
}

// testDB opens an isolated in-memory database with the same error
// translation the production MySQL setup uses, so duplicate-key detection
// behaves identically.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection only: every pooled connection would otherwise get its
	// own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Season{},
		&models.SeasonStats{},
		&models.ActivityEvent{},
		&models.EventCounter{},
		&models.AchievementTemplate{},
		&models.AchievementGrant{},
		&models.ChannelMultiplier{},
		&models.Setting{},
	))
	return db
}

func testWriter(t *testing.T, db *gorm.DB, templates ...models.AchievementTemplate) *Writer {
	t.Helper()
	cfg := rewardconfig.NewCache(&stubStore{templates: templates})
	require.NoError(t, cfg.Load())
	return NewWriter(db, cfg)
}

func messageEvent(actorID, naturalKey string) *envelope.Envelope {
	return &envelope.Envelope{
		ActorID:    actorID,
		Kind:       envelope.KindMessage,
		NaturalKey: naturalKey,
	}
}

func TestApplyIdempotency(t *testing.T) {
	db := testDB(t)
	writer := testWriter(t, db)
	res := reward.Result{XP: 31, Stars: 1}

	_, wasDuplicate, err := writer.Apply(context.Background(), messageEvent("actor-1", "msg_100"), res, "Alice")
	require.NoError(t, err)
	assert.False(t, wasDuplicate)

	_, wasDuplicate, err = writer.Apply(context.Background(), messageEvent("actor-1", "msg_100"), res, "Alice")
	require.NoError(t, err)
	assert.True(t, wasDuplicate, "redelivered natural key must report duplicate")

	actor, err := models.GetOrCreateUser(db, "actor-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(31), actor.XP, "duplicate delivery must not double-credit")
	assert.Equal(t, int64(1), actor.LifetimeStars)

	var journalCount int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).Count(&journalCount).Error)
	assert.Equal(t, int64(1), journalCount)
}

func TestApplyWithoutNaturalKeyInsertsEveryTime(t *testing.T) {
	db := testDB(t)
	writer := testWriter(t, db)
	res := reward.Result{XP: 0, Stars: 1}

	tick := &envelope.Envelope{ActorID: "actor-1", Kind: envelope.KindVoiceTick}
	for i := 0; i < 2; i++ {
		_, wasDuplicate, err := writer.Apply(context.Background(), tick, res, "")
		require.NoError(t, err)
		assert.False(t, wasDuplicate)
	}

	var journalCount int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).Count(&journalCount).Error)
	assert.Equal(t, int64(2), journalCount)

	actor, err := models.GetOrCreateUser(db, "actor-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), actor.LifetimeStars)
}

func TestApplyLevelUpWritesSyntheticEntry(t *testing.T) {
	db := testDB(t)
	writer := testWriter(t, db)
	res := reward.Result{XP: 15, LeveledUp: true, NewLevel: 2, GoldBonus: 50}

	_, wasDuplicate, err := writer.Apply(context.Background(), messageEvent("actor-1", "msg_200"), res, "Alice")
	require.NoError(t, err)
	require.False(t, wasDuplicate)

	actor, err := models.GetOrCreateUser(db, "actor-1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, actor.Level)
	assert.Equal(t, int64(50), actor.Gold)

	var levelUps []models.ActivityEvent
	require.NoError(t, db.Where("event_kind = ?", string(envelope.KindLevelUp)).Find(&levelUps).Error)
	require.Len(t, levelUps, 1)
	attrs := levelUps[0].GetAttributes()
	assert.EqualValues(t, 2, attrs[envelope.AttrNewLevel])
}

func TestApplySeasonStats(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&models.Season{GuildID: "guild-1", Name: "Season 1", Active: true}).Error)
	writer := testWriter(t, db)

	e := messageEvent("actor-1", "msg_300")
	e.GuildID = "guild-1"

	_, _, err := writer.Apply(context.Background(), e, reward.Result{XP: 15, Stars: 2}, "Alice")
	require.NoError(t, err)

	actor, err := models.GetOrCreateUser(db, "actor-1", "")
	require.NoError(t, err)

	var stats models.SeasonStats
	require.NoError(t, db.Where("actor_id = ?", actor.ID).First(&stats).Error)
	assert.Equal(t, int64(2), stats.SeasonStars)
	assert.Equal(t, int64(1), stats.MessagesSent)
}

func TestApplyGrantsAchievements(t *testing.T) {
	db := testDB(t)
	writer := testWriter(t, db, models.AchievementTemplate{
		ID:          1,
		GuildID:     "guild-1",
		Name:        "First Words",
		TriggerType: models.TriggerFirstEvent,
		Config:      `{"event_type": "message"}`,
		SeriesOrder: 1,
		XPReward:    25,
		GoldReward:  10,
		Active:      true,
	})

	e := messageEvent("actor-1", "msg_400")
	e.GuildID = "guild-1"

	applied, wasDuplicate, err := writer.Apply(context.Background(), e, reward.Result{XP: 15, Stars: 1}, "Alice")
	require.NoError(t, err)
	require.False(t, wasDuplicate)
	assert.Equal(t, []uint{1}, applied.Achievements)

	actor, err := models.GetOrCreateUser(db, "actor-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(15+25), actor.XP, "achievement XP reward is applied with the event")
	assert.Equal(t, int64(10), actor.Gold)

	var grants []models.AchievementGrant
	require.NoError(t, db.Find(&grants).Error)
	require.Len(t, grants, 1)
	assert.Equal(t, uint(1), grants[0].TemplateID)

	var synthetic int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).
		Where("event_kind = ?", string(envelope.KindAchievementEarned)).
		Count(&synthetic).Error)
	assert.Equal(t, int64(1), synthetic)

	// A second qualifying event must not grant the achievement again.
	e2 := messageEvent("actor-1", "msg_401")
	e2.GuildID = "guild-1"
	applied, _, err = writer.Apply(context.Background(), e2, reward.Result{XP: 15, Stars: 1}, "Alice")
	require.NoError(t, err)
	assert.Empty(t, applied.Achievements)

	require.NoError(t, db.Find(&grants).Error)
	assert.Len(t, grants, 1)
}

func TestApplyBumpsCounters(t *testing.T) {
	db := testDB(t)
	writer := testWriter(t, db)

	_, _, err := writer.Apply(context.Background(), messageEvent("actor-1", "msg_500"), reward.Result{XP: 15}, "Alice")
	require.NoError(t, err)

	actor, err := models.GetOrCreateUser(db, "actor-1", "")
	require.NoError(t, err)

	var counters []models.EventCounter
	require.NoError(t, db.Where("actor_id = ?", actor.ID).Find(&counters).Error)
	require.Len(t, counters, 3, "lifetime, season and day counters")

	byPeriod := map[string]int64{}
	for _, counter := range counters {
		byPeriod[counter.Period] = counter.Count
	}
	assert.Equal(t, int64(1), byPeriod[models.PeriodLifetime])
	assert.Equal(t, int64(1), byPeriod[models.PeriodSeason])
	assert.Equal(t, int64(1), byPeriod[models.DayPeriod(time.Now())])
}

func getCounter(db *gorm.DB, actorID uint, eventKind string) (int64, error) {
	var counter models.EventCounter
	err := db.Where("actor_id = ? AND event_kind = ? AND period = ?",
		actorID, eventKind, models.PeriodLifetime).First(&counter).Error
	if err != nil {
		return 0, err
	}
	return counter.Count, nil
}

func TestReconcileLifetimeCounters(t *testing.T) {
	db := testDB(t)
	writer := testWriter(t, db)

	for _, key := range []string{"msg_600", "msg_601", "msg_602"} {
		_, _, err := writer.Apply(context.Background(), messageEvent("actor-1", key), reward.Result{XP: 15}, "Alice")
		require.NoError(t, err)
	}

	actor, err := models.GetOrCreateUser(db, "actor-1", "")
	require.NoError(t, err)

	// Sabotage the counter and invent an orphan with no journal rows.
	require.NoError(t, models.SetCounter(db, actor.ID, string(envelope.KindMessage), models.PeriodLifetime, 99))
	require.NoError(t, models.SetCounter(db, actor.ID, "thread_create", models.PeriodLifetime, 7))

	corrected, err := ReconcileLifetimeCounters(db)
	require.NoError(t, err)
	assert.Equal(t, 2, corrected)

	count, err := getCounter(db, actor.ID, string(envelope.KindMessage))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "counter converges to the journal count")

	count, err = getCounter(db, actor.ID, "thread_create")
	require.NoError(t, err)
	assert.Zero(t, count, "orphaned counter is zeroed")

	// A second run finds nothing to fix.
	corrected, err = ReconcileLifetimeCounters(db)
	require.NoError(t, err)
	assert.Zero(t, corrected)
}

func TestReconcileCreatesMissingCounters(t *testing.T) {
	db := testDB(t)

	actor, err := models.GetOrCreateUser(db, "actor-1", "Alice")
	require.NoError(t, err)

	// Journal rows exist but the counter upsert never happened.
	entry := models.ActivityEvent{ActorID: actor.ID, EventKind: "message"}
	require.NoError(t, db.Create(&entry).Error)

	corrected, err := ReconcileLifetimeCounters(db)
	require.NoError(t, err)
	assert.Equal(t, 1, corrected)

	count, err := getCounter(db, actor.ID, "message")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPruneJournal(t *testing.T) {
	db := testDB(t)

	actor, err := models.GetOrCreateUser(db, "actor-1", "Alice")
	require.NoError(t, err)

	old := models.ActivityEvent{ActorID: actor.ID, EventKind: "message"}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&models.ActivityEvent{}).
		Where("id = ?", old.ID).
		Update("created_at", time.Now().AddDate(-2, 0, 0)).Error)

	fresh := models.ActivityEvent{ActorID: actor.ID, EventKind: "message"}
	require.NoError(t, db.Create(&fresh).Error)

	pruned, err := PruneJournal(db, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	var remaining int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)

	// Disabled retention deletes nothing.
	pruned, err = PruneJournal(db, 0)
	require.NoError(t, err)
	assert.Zero(t, pruned)
}
