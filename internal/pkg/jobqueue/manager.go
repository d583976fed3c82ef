package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/synapse-bot/synapse/internal/pkg/engine"
	"github.com/synapse-bot/synapse/internal/pkg/rewardconfig"
)

// Manager manages the global job queue and its periodic maintenance jobs.
type Manager struct {
	queue           *Queue
	reconcileTicker *time.Ticker
	retentionTicker *time.Ticker
	stopCh          chan struct{}
	wg              sync.WaitGroup
	mu              sync.Mutex
	running         bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// InitManager wires the global manager with its process dependencies.
// Must run before GetManager.
func InitManager(workers int, service *engine.Service, cfg *rewardconfig.Cache) *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			queue:  NewQueue(workers, service, cfg),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetManager returns the global job queue manager
func GetManager() *Manager {
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and the periodic maintenance schedule
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	// Counters drift only when an upsert is lost, so an hourly repair is
	// plenty; retention runs daily.
	m.reconcileTicker = time.NewTicker(1 * time.Hour)
	m.retentionTicker = time.NewTicker(24 * time.Hour)
	m.wg.Add(1)
	go m.maintenanceWorker()
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping")
	close(m.stopCh)
	m.running = false
	if m.reconcileTicker != nil {
		m.reconcileTicker.Stop()
	}
	if m.retentionTicker != nil {
		m.retentionTicker.Stop()
	}
	m.queue.Stop()
	m.wg.Wait()
}

// maintenanceWorker enqueues reconcile and retention jobs on schedule
func (m *Manager) maintenanceWorker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			return
		case <-m.reconcileTicker.C:
			if _, err := m.queue.EnqueueJob(JobTypeReconcile, nil); err != nil {
				log.Errorf("[JobQueue Manager] Failed to enqueue reconcile job: %v", err)
			}
		case <-m.retentionTicker.C:
			if _, err := m.queue.EnqueueJob(JobTypeRetention, nil); err != nil {
				log.Errorf("[JobQueue Manager] Failed to enqueue retention job: %v", err)
			}
		}
	}
}
