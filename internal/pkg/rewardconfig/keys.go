package rewardconfig

// Settings keys understood by the reward pipeline, with their fallback
// defaults. Values live in the settings table and are tuned through the
// admin dashboard; every accessor falls back to the default when a key is
// absent or malformed.
const (
	KeyQualityLongThreshold      = "quality_long_threshold"
	KeyQualityLongBonus          = "quality_long_bonus"
	KeyQualityMediumThreshold    = "quality_medium_threshold"
	KeyQualityMediumBonus        = "quality_medium_bonus"
	KeyQualityCodeBonus          = "quality_code_bonus"
	KeyQualityLinkBonus          = "quality_link_bonus"
	KeyQualityAttachmentBonus    = "quality_attachment_bonus"
	KeyQualityEmojiSpamThreshold = "quality_emoji_spam_threshold"
	KeyQualityEmojiSpamPenalty   = "quality_emoji_spam_penalty"

	KeyMaxPairInteractionsPerDay = "antigaming_max_pair_per_day"

	KeyLevelBase      = "level_base"
	KeyLevelFactor    = "level_factor"
	KeyGoldPerLevelUp = "gold_per_level_up"

	KeyRetentionDays = "retention_days"
)

// Literal fallback defaults.
const (
	DefaultQualityLongThreshold      = 500
	DefaultQualityLongBonus          = 1.5
	DefaultQualityMediumThreshold    = 200
	DefaultQualityMediumBonus        = 1.2
	DefaultQualityCodeBonus          = 1.4
	DefaultQualityLinkBonus          = 1.25
	DefaultQualityAttachmentBonus    = 1.1
	DefaultQualityEmojiSpamThreshold = 5
	DefaultQualityEmojiSpamPenalty   = 0.5

	DefaultMaxPairInteractionsPerDay = 3

	DefaultLevelBase      = 100.0
	DefaultLevelFactor    = 1.25
	DefaultGoldPerLevelUp = 50

	DefaultRetentionDays = 365
)
