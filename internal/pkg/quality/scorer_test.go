package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-bot/synapse/app/models"
	"github.com/synapse-bot/synapse/internal/pkg/envelope"
	"github.com/synapse-bot/synapse/internal/pkg/rewardconfig"
)

type emptyStore struct{}

func (emptyStore) AllSettings() (map[string]string, error) { return map[string]string{}, nil }
func (emptyStore) AllMultipliers() ([]models.ChannelMultiplier, error) { return nil, nil }
func (emptyStore) ActiveAchievements() ([]models.AchievementTemplate, error) { return nil, nil }

func defaultConfig(t *testing.T) *rewardconfig.Cache {
	t.Helper()
	cfg := rewardconfig.NewCache(emptyStore{})
	require.NoError(t, cfg.Load())
	return cfg
}

func messageEvent(attrs map[string]interface{}) *envelope.Envelope {
	return &envelope.Envelope{
		ActorID:    "actor-1",
		Kind:       envelope.KindMessage,
		Attributes: attrs,
	}
}

func TestScoreLongMessageWithCode(t *testing.T) {
	cfg := defaultConfig(t)

	// 600 chars with a code block: 1.5 (long) * 1.4 (code) = 2.1
	score := Score(messageEvent(map[string]interface{}{
		envelope.AttrMessageLength: 600,
		envelope.AttrHasCodeBlock:  true,
	}), cfg)
	assert.InDelta(t, 2.1, score, 1e-9)
}

func TestScoreEmojiSpamPenalty(t *testing.T) {
	cfg := defaultConfig(t)

	// Short message with 8 emojis: no length bonus, 0.5 spam penalty.
	score := Score(messageEvent(map[string]interface{}{
		envelope.AttrMessageLength: 50,
		envelope.AttrEmojiCount:    8,
	}), cfg)
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestScoreLengthTiersAreExclusive(t *testing.T) {
	cfg := defaultConfig(t)

	// Medium tier only.
	score := Score(messageEvent(map[string]interface{}{
		envelope.AttrMessageLength: 300,
	}), cfg)
	assert.InDelta(t, 1.2, score, 1e-9)

	// Long tier replaces, never stacks with, the medium tier.
	score = Score(messageEvent(map[string]interface{}{
		envelope.AttrMessageLength: 900,
	}), cfg)
	assert.InDelta(t, 1.5, score, 1e-9)
}

func TestScoreBonusesCompose(t *testing.T) {
	cfg := defaultConfig(t)

	score := Score(messageEvent(map[string]interface{}{
		envelope.AttrMessageLength: 600,
		envelope.AttrHasCodeBlock:  true,
		envelope.AttrHasLink:       true,
		envelope.AttrHasAttachment: true,
	}), cfg)
	assert.InDelta(t, 1.5*1.4*1.25*1.1, score, 1e-9)
}

func TestScoreNeverBelowFloor(t *testing.T) {
	cfg := rewardconfig.NewCache(&floorStore{})
	require.NoError(t, cfg.Load())

	// With a brutal configured penalty the floor still holds.
	score := Score(messageEvent(map[string]interface{}{
		envelope.AttrMessageLength: 10,
		envelope.AttrEmojiCount:    50,
	}), cfg)
	assert.Equal(t, Floor, score)
}

type floorStore struct{}

func (floorStore) AllSettings() (map[string]string, error) {
	return map[string]string{
		rewardconfig.KeyQualityEmojiSpamPenalty: "0.01",
	}, nil
}
func (floorStore) AllMultipliers() ([]models.ChannelMultiplier, error) { return nil, nil }
func (floorStore) ActiveAchievements() ([]models.AchievementTemplate, error) { return nil, nil }

func TestScoreNonMessageKinds(t *testing.T) {
	cfg := defaultConfig(t)

	for _, kind := range []envelope.Kind{
		envelope.KindReactionGiven,
		envelope.KindReactionReceived,
		envelope.KindThreadCreate,
		envelope.KindVoiceTick,
	} {
		e := &envelope.Envelope{ActorID: "actor-1", Kind: kind}
		assert.Equal(t, 1.0, Score(e, cfg), "kind %s", kind)
	}
}

func TestScoreMissingAttributes(t *testing.T) {
	cfg := defaultConfig(t)

	// No attributes at all reads as a short plain message.
	assert.Equal(t, 1.0, Score(messageEvent(nil), cfg))
}
