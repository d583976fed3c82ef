package jobqueue

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/synapse-bot/synapse/internal/pkg/database"
	"github.com/synapse-bot/synapse/internal/pkg/eventlake"
	"github.com/synapse-bot/synapse/internal/pkg/rewardconfig"
)

// processReconcileJob recomputes lifetime counters from the journal.
func (q *Queue) processReconcileJob(job *Job) error {
	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	corrected, err := eventlake.ReconcileLifetimeCounters(db)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	log.Infof("[JobQueue] Reconcile job %s corrected %d counters", job.ID, corrected)
	return nil
}

// processRetentionJob prunes journal rows past the retention window.
func (q *Queue) processRetentionJob(job *Job) error {
	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	retentionDays := q.cfg.GetInt(rewardconfig.KeyRetentionDays, rewardconfig.DefaultRetentionDays)
	pruned, err := eventlake.PruneJournal(db, retentionDays)
	if err != nil {
		return fmt.Errorf("retention failed: %w", err)
	}

	log.Infof("[JobQueue] Retention job %s pruned %d entries", job.ID, pruned)
	return nil
}
