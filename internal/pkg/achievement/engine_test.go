package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/synapse-bot/synapse/app/models"
)

func template(id uint, triggerType, config string) models.AchievementTemplate {
	return models.AchievementTemplate{
		ID:          id,
		GuildID:     "guild-1",
		TriggerType: triggerType,
		Config:      config,
		SeriesOrder: 1,
		Active:      true,
	}
}

func TestEvaluateXPMilestone(t *testing.T) {
	templates := []models.AchievementTemplate{
		template(1, models.TriggerXPMilestone, `{"value": 1000}`),
	}

	assert.Empty(t, Evaluate(templates, &Context{XP: 999}, nil))
	assert.Equal(t, []uint{1}, Evaluate(templates, &Context{XP: 1000}, map[uint]bool{}))
	assert.Equal(t, []uint{1}, Evaluate(templates, &Context{XP: 5000}, map[uint]bool{}))
}

func TestEvaluateStarMilestoneScopes(t *testing.T) {
	templates := []models.AchievementTemplate{
		template(1, models.TriggerStarMilestone, `{"scope": "season", "value": 50}`),
		template(2, models.TriggerStarMilestone, `{"scope": "lifetime", "value": 200}`),
		template(3, models.TriggerStarMilestone, `{"value": 10}`),
	}

	ctx := &Context{SeasonStars: 60, LifetimeStars: 150}
	// Template 3 has no scope and never fires.
	assert.Equal(t, []uint{1}, Evaluate(templates, ctx, nil))

	ctx = &Context{SeasonStars: 60, LifetimeStars: 250}
	assert.Equal(t, []uint{1, 2}, Evaluate(templates, ctx, nil))
}

func TestEvaluateStatThreshold(t *testing.T) {
	templates := []models.AchievementTemplate{
		template(1, models.TriggerStatThreshold, `{"field": "messages_sent", "value": 100}`),
	}

	ctx := &Context{Stats: map[string]int64{"messages_sent": 99}}
	assert.Empty(t, Evaluate(templates, ctx, nil))

	ctx = &Context{Stats: map[string]int64{"messages_sent": 100}}
	assert.Equal(t, []uint{1}, Evaluate(templates, ctx, nil))
}

func TestEvaluateLevelTriggers(t *testing.T) {
	templates := []models.AchievementTemplate{
		template(1, models.TriggerLevelReached, `{"value": 5}`),
		template(2, models.TriggerLevelInterval, `{"interval": 10}`),
	}

	// Level interval requires an actual level-up on this event.
	ctx := &Context{Level: 10, LeveledUp: false}
	assert.Equal(t, []uint{1}, Evaluate(templates, ctx, nil))

	ctx = &Context{Level: 10, PreviousLevel: 9, LeveledUp: true}
	assert.Equal(t, []uint{1, 2}, Evaluate(templates, ctx, nil))

	ctx = &Context{Level: 11, PreviousLevel: 10, LeveledUp: true}
	assert.Equal(t, []uint{1}, Evaluate(templates, ctx, nil))
}

func TestEvaluateEventCountTriggers(t *testing.T) {
	templates := []models.AchievementTemplate{
		template(1, models.TriggerFirstEvent, `{"event_type": "thread_create"}`),
		template(2, models.TriggerEventCount, `{"event_type": "message", "count": 500}`),
	}

	ctx := &Context{EventCounts: map[string]int64{"message": 499}}
	assert.Empty(t, Evaluate(templates, ctx, nil))

	ctx = &Context{EventCounts: map[string]int64{"message": 500, "thread_create": 1}}
	assert.Equal(t, []uint{1, 2}, Evaluate(templates, ctx, nil))
}

func TestEvaluateSkipsEarned(t *testing.T) {
	templates := []models.AchievementTemplate{
		template(1, models.TriggerXPMilestone, `{"value": 100}`),
		template(2, models.TriggerXPMilestone, `{"value": 200}`),
	}

	earned := map[uint]bool{1: true}
	assert.Equal(t, []uint{2}, Evaluate(templates, &Context{XP: 300}, earned))
}

func TestEvaluateSeriesGating(t *testing.T) {
	seriesID := uint(7)
	tierOne := template(1, models.TriggerXPMilestone, `{"value": 100}`)
	tierOne.SeriesID = &seriesID
	tierOne.SeriesOrder = 1
	tierTwo := template(2, models.TriggerXPMilestone, `{"value": 200}`)
	tierTwo.SeriesID = &seriesID
	tierTwo.SeriesOrder = 2

	templates := []models.AchievementTemplate{tierOne, tierTwo}

	// Both thresholds met, but tier two stays locked until tier one is earned.
	ctx := &Context{XP: 1000}
	assert.Equal(t, []uint{1}, Evaluate(templates, ctx, nil))

	assert.Equal(t, []uint{2}, Evaluate(templates, ctx, map[uint]bool{1: true}))
}

func TestEvaluateSeriesMissingPredecessorLocks(t *testing.T) {
	seriesID := uint(7)
	tierTwo := template(2, models.TriggerXPMilestone, `{"value": 200}`)
	tierTwo.SeriesID = &seriesID
	tierTwo.SeriesOrder = 2

	// The tier-one template was deleted; tier two must stay locked.
	assert.Empty(t, Evaluate([]models.AchievementTemplate{tierTwo}, &Context{XP: 1000}, nil))
}

func TestEvaluateSkipsUnknownAndManualTriggers(t *testing.T) {
	templates := []models.AchievementTemplate{
		template(1, models.TriggerManual, `{}`),
		template(2, "made_up_trigger", `{}`),
		template(3, models.TriggerMemberTenure, `{"days": 30}`),
		template(4, models.TriggerXPMilestone, `{"value": 10}`),
	}

	assert.Equal(t, []uint{4}, Evaluate(templates, &Context{XP: 100}, nil))
}

func TestEvaluateMalformedConfig(t *testing.T) {
	templates := []models.AchievementTemplate{
		template(1, models.TriggerXPMilestone, `not json at all`),
		template(2, models.TriggerEventCount, `{"count": "many"}`),
	}

	assert.Empty(t, Evaluate(templates, &Context{XP: 100000}, nil))
}

func TestEvaluateStableOrder(t *testing.T) {
	templates := []models.AchievementTemplate{
		template(3, models.TriggerXPMilestone, `{"value": 1}`),
		template(1, models.TriggerXPMilestone, `{"value": 1}`),
		template(2, models.TriggerXPMilestone, `{"value": 1}`),
	}

	// Results follow template order, not id order.
	assert.Equal(t, []uint{3, 1, 2}, Evaluate(templates, &Context{XP: 10}, nil))
}
