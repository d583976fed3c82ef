// Package eventlake turns a computed reward into durable state exactly once
// per natural event key. The database's uniqueness constraint, not any
// in-memory check, is the single source of truth for "have I seen this
// before", so multiple process instances and redelivered gateway events
// always agree.
package eventlake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/synapse-bot/synapse/app/models"
	"github.com/synapse-bot/synapse/internal/pkg/achievement"
	"github.com/synapse-bot/synapse/internal/pkg/envelope"
	"github.com/synapse-bot/synapse/internal/pkg/reward"
	"github.com/synapse-bot/synapse/internal/pkg/rewardconfig"
)

// Writer applies reward results to durable storage.
type Writer struct {
	db  *gorm.DB
	cfg *rewardconfig.Cache
}

// NewWriter creates a writer over a database handle and the shared
// configuration cache (needed for achievement templates).
func NewWriter(db *gorm.DB, cfg *rewardconfig.Cache) *Writer {
	return &Writer{db: db, cfg: cfg}
}

// Apply durably applies a pipeline result. The returned bool reports a
// duplicate delivery: the event's natural key already exists in the
// journal, nothing was mutated, and the caller must not retry.
//
// Everything except the counter upserts happens in one transaction: the
// journal insert, the actor's XP/level/gold, season stats and achievement
// grants commit or roll back together. Counters are a derived read-side
// cache maintained outside the transaction and repaired by reconciliation.
func (w *Writer) Apply(ctx context.Context, e *envelope.Envelope, res reward.Result, displayName string) (reward.Result, bool, error) {
	duplicate := false

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := models.GetOrCreateUser(tx, e.ActorID, displayName)
		if err != nil {
			return fmt.Errorf("failed to load actor %s: %w", e.ActorID, err)
		}

		season, err := models.GetActiveSeason(tx, e.GuildID)
		if err != nil {
			return fmt.Errorf("failed to load active season: %w", err)
		}

		entry, err := buildEntry(e, actor.ID, season, res)
		if err != nil {
			return err
		}

		if e.NaturalKey != "" {
			// Savepoint-scoped insert: a duplicate natural key rolls back
			// only this nested scope, the outer transaction commits
			// unchanged and the caller sees was_duplicate=true.
			insertErr := tx.Transaction(func(nested *gorm.DB) error {
				return nested.Create(entry).Error
			})
			if insertErr != nil {
				if errors.Is(insertErr, gorm.ErrDuplicatedKey) {
					duplicate = true
					return nil
				}
				return fmt.Errorf("journal insert failed: %w", insertErr)
			}
		} else {
			// No natural uniqueness (voice ticks): the caller is trusted
			// to deliver at most once per tick.
			if err := tx.Create(entry).Error; err != nil {
				return fmt.Errorf("journal insert failed: %w", err)
			}
		}

		previousLevel := actor.Level

		actor.XP += res.XP
		actor.LifetimeStars += res.Stars
		actor.Gold += res.GoldBonus
		if res.LeveledUp {
			actor.Level = res.NewLevel
			if err := w.appendSynthetic(tx, actor.ID, season, envelope.KindLevelUp, map[string]interface{}{
				envelope.AttrNewLevel: res.NewLevel,
			}); err != nil {
				return err
			}
		}

		var stats *models.SeasonStats
		if season != nil {
			stats, err = models.GetOrCreateSeasonStats(tx, season.ID, actor.ID)
			if err != nil {
				return fmt.Errorf("failed to load season stats: %w", err)
			}
			stats.SeasonStars += res.Stars
			stats.BumpKind(string(e.Kind))
			if err := tx.Save(stats).Error; err != nil {
				return fmt.Errorf("failed to update season stats: %w", err)
			}
		}

		newlyEarned, err := w.evaluateAchievements(tx, e, actor, stats, previousLevel, res.LeveledUp, season)
		if err != nil {
			return err
		}
		res.Achievements = newlyEarned

		if err := tx.Save(actor).Error; err != nil {
			return fmt.Errorf("failed to update actor %s: %w", e.ActorID, err)
		}

		return nil
	})
	if err != nil {
		return res, false, err
	}
	if duplicate {
		return res, true, nil
	}

	w.bumpCounters(e, time.Now())
	return res, false, nil
}

// evaluateAchievements builds the context snapshot from the just-updated
// actor state, runs the trigger engine and records every new grant with
// its reward. Runs inside the outer transaction.
func (w *Writer) evaluateAchievements(tx *gorm.DB, e *envelope.Envelope, actor *models.User, stats *models.SeasonStats, previousLevel int, leveledUp bool, season *models.Season) ([]uint, error) {
	templates := w.cfg.ActiveAchievements(e.GuildID)
	if len(templates) == 0 {
		return nil, nil
	}

	earned, err := loadEarnedSet(tx, actor.ID)
	if err != nil {
		return nil, err
	}
	counts, err := loadEventCounts(tx, actor.ID)
	if err != nil {
		return nil, err
	}

	actx := &achievement.Context{
		XP:            actor.XP,
		Level:         actor.Level,
		PreviousLevel: previousLevel,
		LeveledUp:     leveledUp,
		LifetimeStars: actor.LifetimeStars,
		Stats:         buildStatFields(actor, stats),
		EventCounts:   counts,
	}
	if stats != nil {
		actx.SeasonStars = stats.SeasonStars
	}

	newlyEarned := achievement.Evaluate(templates, actx, earned)
	if len(newlyEarned) == 0 {
		return nil, nil
	}

	byID := make(map[uint]models.AchievementTemplate, len(templates))
	for _, template := range templates {
		byID[template.ID] = template
	}

	for _, id := range newlyEarned {
		template := byID[id]
		grant := models.AchievementGrant{ActorID: actor.ID, TemplateID: id}
		if err := tx.Create(&grant).Error; err != nil {
			return nil, fmt.Errorf("failed to record achievement grant %d: %w", id, err)
		}
		actor.XP += template.XPReward
		actor.Gold += template.GoldReward

		if err := w.appendSynthetic(tx, actor.ID, season, envelope.KindAchievementEarned, map[string]interface{}{
			envelope.AttrTemplateID: id,
		}); err != nil {
			return nil, err
		}
	}

	return newlyEarned, nil
}

// appendSynthetic inserts a derived journal entry (level-up, achievement
// earned). Synthetic entries have no natural key and always insert.
func (w *Writer) appendSynthetic(tx *gorm.DB, actorID uint, season *models.Season, kind envelope.Kind, attrs map[string]interface{}) error {
	entry := models.ActivityEvent{
		ActorID:      actorID,
		EventKind:    string(kind),
		SourceSystem: models.SourceDiscord,
	}
	if season != nil {
		entry.SeasonID = &season.ID
	}
	if err := entry.SetAttributes(attrs); err != nil {
		return fmt.Errorf("failed to serialize %s attributes: %w", kind, err)
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append %s entry: %w", kind, err)
	}
	return nil
}

// bumpCounters upserts the lifetime, season and day counters for the
// event. Failures are logged and never fail the already-committed reward:
// counters self-heal through reconciliation.
func (w *Writer) bumpCounters(e *envelope.Envelope, now time.Time) {
	actor, err := models.GetOrCreateUser(w.db, e.ActorID, "")
	if err != nil {
		log.Errorf("[EventLake] Counter update skipped, actor %s unavailable: %v", e.ActorID, err)
		return
	}

	periods := []string{models.PeriodLifetime, models.PeriodSeason, models.DayPeriod(now)}
	for _, period := range periods {
		if err := models.IncrementCounter(w.db, actor.ID, string(e.Kind), period); err != nil {
			log.Errorf("[EventLake] Counter upsert failed for actor %d kind %s period %s: %v", actor.ID, e.Kind, period, err)
		}
	}
}

func buildEntry(e *envelope.Envelope, actorID uint, season *models.Season, res reward.Result) (*models.ActivityEvent, error) {
	sourceSystem := models.SourceDiscord
	if e.Kind == envelope.KindManualAward {
		sourceSystem = models.SourceAdmin
	}

	entry := &models.ActivityEvent{
		ActorID:      actorID,
		EventKind:    string(e.Kind),
		SourceSystem: sourceSystem,
		XPDelta:      res.XP,
		StarDelta:    res.Stars,
	}
	if season != nil {
		entry.SeasonID = &season.ID
	}
	if e.NaturalKey != "" {
		key := e.NaturalKey
		entry.NaturalKey = &key
	}
	if err := entry.SetAttributes(e.Attributes); err != nil {
		return nil, fmt.Errorf("failed to serialize event attributes: %w", err)
	}
	return entry, nil
}

func buildStatFields(actor *models.User, stats *models.SeasonStats) map[string]int64 {
	fields := map[string]int64{
		"xp":             actor.XP,
		"level":          int64(actor.Level),
		"gold":           actor.Gold,
		"lifetime_stars": actor.LifetimeStars,
	}
	if stats != nil {
		for name, value := range stats.StatFields() {
			fields[name] = value
		}
	}
	return fields
}

func loadEarnedSet(tx *gorm.DB, actorID uint) (map[uint]bool, error) {
	var grants []models.AchievementGrant
	if err := tx.Where("actor_id = ?", actorID).Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to load earned achievements: %w", err)
	}
	earned := make(map[uint]bool, len(grants))
	for _, grant := range grants {
		earned[grant.TemplateID] = true
	}
	return earned, nil
}

func loadEventCounts(tx *gorm.DB, actorID uint) (map[string]int64, error) {
	var rows []struct {
		EventKind string
		Total     int64
	}
	err := tx.Model(&models.ActivityEvent{}).
		Select("event_kind, COUNT(*) AS total").
		Where("actor_id = ?", actorID).
		Group("event_kind").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate event counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.EventKind] = row.Total
	}
	return counts, nil
}
