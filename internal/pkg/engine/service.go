// Package engine wires the pure reward pipeline to durable storage: it
// snapshots the actor, runs the calculation and hands the result to the
// event lake for exactly-once application.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/synapse-bot/synapse/app/models"
	"github.com/synapse-bot/synapse/internal/pkg/antigaming"
	"github.com/synapse-bot/synapse/internal/pkg/envelope"
	"github.com/synapse-bot/synapse/internal/pkg/eventlake"
	"github.com/synapse-bot/synapse/internal/pkg/reward"
	"github.com/synapse-bot/synapse/internal/pkg/rewardconfig"
)

// ApplyTimeout bounds the event lake transaction. A timed-out transaction
// aborts with no partial state and the gateway's redelivery retries it
// safely under the idempotency contract.
const ApplyTimeout = 10 * time.Second

// Service processes normalized gateway events into applied rewards. One
// instance is shared by every worker; the configuration cache and the
// anti-gaming tracker are injected at startup rather than held as package
// globals so tests can run isolated instances.
type Service struct {
	db      *gorm.DB
	cfg     *rewardconfig.Cache
	tracker *antigaming.Tracker
	writer  *eventlake.Writer
}

// NewService creates a reward service over shared process dependencies.
func NewService(db *gorm.DB, cfg *rewardconfig.Cache, tracker *antigaming.Tracker) *Service {
	return &Service{
		db:      db,
		cfg:     cfg,
		tracker: tracker,
		writer:  eventlake.NewWriter(db, cfg),
	}
}

// Process computes and durably applies the reward for one event. The bool
// reports a duplicate delivery, which is a normal outcome, not an error.
func (s *Service) Process(ctx context.Context, e *envelope.Envelope) (reward.Result, bool, error) {
	if e.ActorID == "" || e.Kind == "" {
		return reward.Result{}, false, fmt.Errorf("invalid event: actor_id and event_kind are required")
	}

	// Snapshot the actor's progress for the level-up check. New actors
	// start at level 1 with no XP; the profile row itself is created
	// inside the apply transaction.
	currentXP := int64(0)
	currentLevel := 1
	var actor models.User
	err := s.db.WithContext(ctx).Where("discord_id = ?", e.ActorID).First(&actor).Error
	if err == nil {
		currentXP = actor.XP
		currentLevel = actor.Level
	} else if err != gorm.ErrRecordNotFound {
		return reward.Result{}, false, fmt.Errorf("failed to snapshot actor %s: %w", e.ActorID, err)
	}

	result := reward.Calculate(e, s.cfg, s.tracker, currentXP, currentLevel)

	applyCtx, cancel := context.WithTimeout(ctx, ApplyTimeout)
	defer cancel()

	applied, wasDuplicate, err := s.writer.Apply(applyCtx, e, result, e.String(envelope.AttrDisplayName))
	if err != nil {
		return reward.Result{}, false, err
	}
	if wasDuplicate {
		log.Debugf("[Engine] Duplicate delivery for %s/%s, no mutation applied", e.Kind, e.NaturalKey)
	}
	return applied, wasDuplicate, nil
}
