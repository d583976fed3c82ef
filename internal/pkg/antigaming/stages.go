package antigaming

import (
	"time"
)

// Reaction-stage constants.
const (
	// ViralReactorThreshold is the unique-reactor count above which star
	// gains diminish and the XP velocity cap can apply.
	ViralReactorThreshold = 10
	// VelocityXPCap bounds XP on fresh viral messages.
	VelocityXPCap = 5
	// FreshMessageAge is how young a message must be for the velocity cap.
	FreshMessageAge = 5 * time.Minute
)

// AdjustStars applies the reaction-received star rules in order:
// self-reactions and capped pairs yield zero; stars cannot exceed the
// number of distinct reactors; above ViralReactorThreshold unique reactors
// the payout follows 10 + (unique-10)/2 instead of scaling linearly.
func AdjustStars(baseStars, uniqueReactors int, selfReaction, pairCapped bool) int {
	if selfReaction || pairCapped {
		return 0
	}

	stars := baseStars
	if stars > uniqueReactors {
		stars = uniqueReactors
	}
	if uniqueReactors > ViralReactorThreshold {
		stars = ViralReactorThreshold + (uniqueReactors-ViralReactorThreshold)/2
	}
	if stars < 0 {
		stars = 0
	}
	return stars
}

// CapVelocityXP clamps XP on messages that go viral within minutes of
// being posted, blunting coordinated brigading of fresh messages.
func CapVelocityXP(xp int64, uniqueReactors int, messageAge time.Duration) int64 {
	if uniqueReactors > ViralReactorThreshold && messageAge < FreshMessageAge && xp > VelocityXPCap {
		return VelocityXPCap
	}
	return xp
}
