// Package achievement evaluates admin-defined achievement templates against
// a point-in-time snapshot of an actor's stats. Predicates are pure; the
// persistence layer supplies the snapshot and records the grants.
package achievement

import (
	"github.com/synapse-bot/synapse/app/models"
)

// Context is the snapshot trigger predicates evaluate against. It is built
// fresh per event from the actor's just-updated stats and never persisted.
type Context struct {
	XP            int64
	Level         int
	PreviousLevel int
	LeveledUp     bool
	SeasonStars   int64
	LifetimeStars int64
	Stats         map[string]int64
	EventCounts   map[string]int64
}

// HandlerFunc is a pure trigger predicate: template config in, fire or not.
type HandlerFunc func(cfg map[string]interface{}, ctx *Context) bool

// handlers maps trigger types to predicates. Manual achievements are
// deliberately absent: they are only ever granted directly, never
// auto-evaluated. member_tenure and invite_count are explicit stubs; the
// gateway does not feed tenure or invite data yet.
var handlers = map[string]HandlerFunc{
	models.TriggerStatThreshold: statThreshold,
	models.TriggerXPMilestone:   xpMilestone,
	models.TriggerStarMilestone: starMilestone,
	models.TriggerLevelReached:  levelReached,
	models.TriggerLevelInterval: levelInterval,
	models.TriggerEventCount:    eventCount,
	models.TriggerFirstEvent:    firstEvent,
	models.TriggerMemberTenure:  neverFires,
	models.TriggerInviteCount:   neverFires,
}

// Evaluate runs all templates in their given (stable) order and returns
// the ids of newly-triggered achievements, in template order. Already
// earned templates are skipped, later series tiers stay locked until their
// immediate predecessor is earned, and unknown trigger types are skipped
// silently.
func Evaluate(templates []models.AchievementTemplate, ctx *Context, earned map[uint]bool) []uint {
	var triggered []uint

	for _, template := range templates {
		if earned[template.ID] {
			continue
		}
		if !seriesUnlocked(&template, templates, earned) {
			continue
		}

		handler, ok := handlers[template.TriggerType]
		if !ok {
			continue
		}
		if handler(template.ConfigMap(), ctx) {
			triggered = append(triggered, template.ID)
		}
	}

	return triggered
}

// seriesUnlocked applies series gating: a template past the first tier
// requires its immediate predecessor (same series, order-1) to be earned.
// A missing predecessor keeps the tier locked.
func seriesUnlocked(template *models.AchievementTemplate, templates []models.AchievementTemplate, earned map[uint]bool) bool {
	if template.SeriesID == nil || template.SeriesOrder <= 1 {
		return true
	}

	for _, candidate := range templates {
		if candidate.SeriesID != nil &&
			*candidate.SeriesID == *template.SeriesID &&
			candidate.SeriesOrder == template.SeriesOrder-1 {
			return earned[candidate.ID]
		}
	}
	return false
}
