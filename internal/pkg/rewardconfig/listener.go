package rewardconfig

import (
	"github.com/gofiber/fiber/v2/log"

	"github.com/synapse-bot/synapse/internal/pkg/cache"
)

// InvalidationChannel is the pub/sub channel carrying partition names.
// The dashboard publishes here after persisting a config change.
const InvalidationChannel = "synapse:config:invalidate"

// PublishInvalidation notifies all running instances that a partition
// changed in durable storage.
func PublishInvalidation(partition Partition) error {
	return cache.Publish(InvalidationChannel, string(partition))
}

// ListenForInvalidations subscribes to the invalidation channel and reloads
// partitions as notifications arrive. Reload errors are logged and the
// stale snapshot keeps serving. Runs until the subscription closes; start
// it on its own goroutine.
func (c *Cache) ListenForInvalidations() {
	sub := cache.Subscribe(InvalidationChannel)
	defer sub.Close()

	log.Infof("[RewardConfig] Listening for config invalidations on %s", InvalidationChannel)

	for msg := range sub.Channel() {
		partition := Partition(msg.Payload)
		if err := c.Invalidate(partition); err != nil {
			log.Errorf("[RewardConfig] Reload of partition %s failed, serving stale data: %v", partition, err)
			continue
		}
		log.Infof("[RewardConfig] Reloaded partition %s", partition)
	}
}
