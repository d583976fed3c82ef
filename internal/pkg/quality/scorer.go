// Package quality computes the multiplicative XP modifier for message
// events from the message's shape: length, code blocks, links, attachments
// and emoji density.
package quality

import (
	"github.com/synapse-bot/synapse/internal/pkg/envelope"
	"github.com/synapse-bot/synapse/internal/pkg/rewardconfig"
)

// Floor is the minimum modifier Score returns. Quality alone never zeroes
// out a message's XP.
const Floor = 0.1

// Score returns the quality modifier for an event. Non-message kinds score
// exactly 1.0, a deliberate no-op rather than an error.
//
// Adjustments compose multiplicatively in a fixed order; the emoji spam
// penalty applies last so that long low-effort emoji spam still nets
// little XP.
func Score(e *envelope.Envelope, cfg *rewardconfig.Cache) float64 {
	if e.Kind != envelope.KindMessage {
		return 1.0
	}

	modifier := 1.0

	// Length tiers are mutually exclusive.
	length := e.Int(envelope.AttrMessageLength)
	if length > cfg.GetInt(rewardconfig.KeyQualityLongThreshold, rewardconfig.DefaultQualityLongThreshold) {
		modifier *= cfg.GetFloat(rewardconfig.KeyQualityLongBonus, rewardconfig.DefaultQualityLongBonus)
	} else if length > cfg.GetInt(rewardconfig.KeyQualityMediumThreshold, rewardconfig.DefaultQualityMediumThreshold) {
		modifier *= cfg.GetFloat(rewardconfig.KeyQualityMediumBonus, rewardconfig.DefaultQualityMediumBonus)
	}

	if e.Bool(envelope.AttrHasCodeBlock) {
		modifier *= cfg.GetFloat(rewardconfig.KeyQualityCodeBonus, rewardconfig.DefaultQualityCodeBonus)
	}

	if e.Bool(envelope.AttrHasLink) {
		modifier *= cfg.GetFloat(rewardconfig.KeyQualityLinkBonus, rewardconfig.DefaultQualityLinkBonus)
	}

	if e.Bool(envelope.AttrHasAttachment) {
		modifier *= cfg.GetFloat(rewardconfig.KeyQualityAttachmentBonus, rewardconfig.DefaultQualityAttachmentBonus)
	}

	if e.Int(envelope.AttrEmojiCount) > cfg.GetInt(rewardconfig.KeyQualityEmojiSpamThreshold, rewardconfig.DefaultQualityEmojiSpamThreshold) {
		modifier *= cfg.GetFloat(rewardconfig.KeyQualityEmojiSpamPenalty, rewardconfig.DefaultQualityEmojiSpamPenalty)
	}

	if modifier < Floor {
		modifier = Floor
	}
	return modifier
}
