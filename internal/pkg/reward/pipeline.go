// Package reward computes the deterministic reward for an interaction
// event: multiplier resolution, quality scoring, anti-gaming adjustment,
// caps and level-up detection. Calculate performs no I/O; given the same
// envelope, configuration snapshot and tracker state it always produces
// the same result, which is what makes gateway redelivery safe to retry.
package reward

import (
	"math"
	"time"

	"github.com/synapse-bot/synapse/internal/pkg/antigaming"
	"github.com/synapse-bot/synapse/internal/pkg/envelope"
	"github.com/synapse-bot/synapse/internal/pkg/quality"
	"github.com/synapse-bot/synapse/internal/pkg/rewardconfig"
)

// Result is the outcome of one pipeline run. All numeric fields are
// non-negative; NewLevel is set iff LeveledUp.
type Result struct {
	XP           int64  `json:"xp"`
	Stars        int64  `json:"stars"`
	LeveledUp    bool   `json:"leveled_up"`
	NewLevel     int    `json:"new_level,omitempty"`
	GoldBonus    int64  `json:"gold_bonus"`
	Achievements []uint `json:"achievements_earned,omitempty"`
}

// BaseValues returns the fixed base XP and stars for an event kind.
// Administrative and derived kinds carry no base reward.
func BaseValues(kind envelope.Kind) (int64, int64) {
	switch kind {
	case envelope.KindMessage:
		return 15, 1
	case envelope.KindThreadCreate:
		return 20, 2
	case envelope.KindReactionGiven:
		return 2, 1
	case envelope.KindReactionReceived:
		return 3, 1
	case envelope.KindVoiceTick:
		return 0, 1
	default:
		return 0, 0
	}
}

// RequiredXP is the canonical level curve: base * factor^level. Both the
// bot and the dashboard must use this one function so the two never
// diverge on what a level costs.
func RequiredXP(level int, base, factor float64) int64 {
	if level < 0 {
		level = 0
	}
	return int64(base * math.Pow(factor, float64(level)))
}

// Calculate runs the full pipeline for one event against the actor's
// current XP and level. At most one level is granted per event, even when
// the XP gain crosses several thresholds.
func Calculate(e *envelope.Envelope, cfg *rewardconfig.Cache, tracker *antigaming.Tracker, currentXP int64, currentLevel int) Result {
	var result Result

	// Manual awards are exact admin grants: no multipliers, no quality,
	// no anti-gaming. They still count toward leveling.
	if e.Kind == envelope.KindManualAward {
		result.XP = clampNonNegative(e.Int64(envelope.AttrXP))
		result.Stars = clampNonNegative(e.Int64(envelope.AttrStars))
		result.GoldBonus = clampNonNegative(e.Int64(envelope.AttrGold))
		applyLevelUp(&result, cfg, currentXP, currentLevel)
		return result
	}

	xpMult, starMult := cfg.ResolveMultipliers(e.ChannelID, e.ChannelType, e.Kind)
	qualityMod := quality.Score(e, cfg)
	baseXP, baseStars := BaseValues(e.Kind)

	adjustedStars := baseStars
	starFactor := 1.0
	selfReaction := false
	uniqueReactors := 0

	switch e.Kind {
	case envelope.KindReactionReceived:
		reactor := e.String(envelope.AttrReactorID)
		uniqueReactors = e.Int(envelope.AttrUniqueReactors)
		selfReaction = reactor != "" && reactor == e.ActorID

		pairCapped := false
		if !selfReaction && reactor != "" {
			maxPerDay := cfg.GetInt(rewardconfig.KeyMaxPairInteractionsPerDay, rewardconfig.DefaultMaxPairInteractionsPerDay)
			pairCapped = tracker.IsPairCapped(reactor, e.ActorID, maxPerDay)
		}

		if selfReaction {
			baseXP = 0
		}
		adjustedStars = int64(antigaming.AdjustStars(int(baseStars), uniqueReactors, selfReaction, pairCapped))

	case envelope.KindReactionGiven:
		target := e.String(envelope.AttrTargetID)
		if target != "" && target == e.ActorID {
			// Reacting to yourself earns nothing from either side.
			baseXP = 0
			adjustedStars = 0
		} else if target != "" {
			starFactor = tracker.DiminishingFactor(e.ActorID, target)
		}
	}

	result.XP = int64(math.Floor(float64(baseXP) * xpMult * qualityMod))
	result.Stars = int64(math.Floor(float64(adjustedStars) * starMult * starFactor))

	if e.Kind == envelope.KindReactionReceived {
		age := time.Duration(e.Int(envelope.AttrMessageAgeSeconds)) * time.Second
		result.XP = antigaming.CapVelocityXP(result.XP, uniqueReactors, age)
	}

	result.XP = clampNonNegative(result.XP)
	result.Stars = clampNonNegative(result.Stars)

	applyLevelUp(&result, cfg, currentXP, currentLevel)
	return result
}

// applyLevelUp grants at most a single level when the event's XP pushes the
// actor across the next threshold.
func applyLevelUp(result *Result, cfg *rewardconfig.Cache, currentXP int64, currentLevel int) {
	if result.XP <= 0 {
		return
	}

	base := cfg.GetFloat(rewardconfig.KeyLevelBase, rewardconfig.DefaultLevelBase)
	factor := cfg.GetFloat(rewardconfig.KeyLevelFactor, rewardconfig.DefaultLevelFactor)
	if currentXP+result.XP >= RequiredXP(currentLevel, base, factor) {
		result.LeveledUp = true
		result.NewLevel = currentLevel + 1
		result.GoldBonus += int64(cfg.GetInt(rewardconfig.KeyGoldPerLevelUp, rewardconfig.DefaultGoldPerLevelUp))
	}
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
