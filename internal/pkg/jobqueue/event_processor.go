package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

// processRewardEventJob runs the reward pipeline for one queued gateway
// event. A duplicate delivery completes the job normally: the journal's
// uniqueness constraint already guaranteed nothing was double-credited,
// so retries and sweeper requeues are always safe.
func (q *Queue) processRewardEventJob(ctx context.Context, job *Job) error {
	payload, err := RewardEventJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid reward event payload: %w", err)
	}

	result, wasDuplicate, err := q.service.Process(ctx, &payload.Envelope)
	if err != nil {
		return fmt.Errorf("reward processing failed: %w", err)
	}

	if wasDuplicate {
		log.Debugf("[JobQueue] Job %s was a duplicate delivery (key=%s)", job.ID, payload.Envelope.NaturalKey)
		return nil
	}

	log.Debugf("[JobQueue] Job %s applied: actor=%s kind=%s xp=%d stars=%d leveled_up=%t",
		job.ID, payload.Envelope.ActorID, payload.Envelope.Kind, result.XP, result.Stars, result.LeveledUp)
	return nil
}
