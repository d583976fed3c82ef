package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/synapse-bot/synapse/app/models"
	"github.com/synapse-bot/synapse/internal/pkg/cache"
	"github.com/synapse-bot/synapse/internal/pkg/database"
)

const (
	CacheKeyActorsTotal = "statistics:actors:total"
	CacheKeyEventsDaily = "statistics:events:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyXPDaily     = "statistics:xp:daily:%s"     // Format with date YYYY-MM-DD
	CacheExpiration     = 30 * time.Minute
)

// StatisticsData holds the dashboard overview numbers
type StatisticsData struct {
	TotalActors int
	TodayEvents int
	TodayXP     int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cache is due for a refresh
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cache when the interval has passed
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// UpdateStatisticsCache updates all statistics in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	// Count known actors
	var totalActors int64
	if err := db.Model(&models.User{}).Count(&totalActors).Error; err != nil {
		log.Printf("Error counting actors: %v", err)
		return err
	}

	// Count today's journal entries
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	var todayEvents int64
	if err := db.Model(&models.ActivityEvent{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&todayEvents).Error; err != nil {
		log.Printf("Error counting today's events: %v", err)
		return err
	}

	// Sum today's granted XP
	var todayXP *int64
	if err := db.Model(&models.ActivityEvent{}).
		Select("SUM(xp_delta)").
		Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).
		Scan(&todayXP).Error; err != nil {
		log.Printf("Error summing today's XP: %v", err)
		return err
	}
	var xpValue int64
	if todayXP != nil {
		xpValue = *todayXP
	}

	if err := cache.Set(CacheKeyActorsTotal, strconv.FormatInt(totalActors, 10), CacheExpiration); err != nil {
		log.Printf("Error caching actor total: %v", err)
		return err
	}
	if err := cache.Set(fmt.Sprintf(CacheKeyEventsDaily, today), strconv.FormatInt(todayEvents, 10), CacheExpiration); err != nil {
		log.Printf("Error caching today's events: %v", err)
		return err
	}
	if err := cache.Set(fmt.Sprintf(CacheKeyXPDaily, today), strconv.FormatInt(xpValue, 10), CacheExpiration); err != nil {
		log.Printf("Error caching today's XP: %v", err)
		return err
	}

	return nil
}

// GetTotalActors returns the number of known actors from cache or database
func GetTotalActors() int {
	return cachedCount(CacheKeyActorsTotal, func() (int64, error) {
		var count int64
		err := database.GetDB().Model(&models.User{}).Count(&count).Error
		return count, err
	})
}

// GetTodayEvents returns the number of journal entries written today
func GetTodayEvents() int {
	today := time.Now().Format("2006-01-02")
	return cachedCount(fmt.Sprintf(CacheKeyEventsDaily, today), func() (int64, error) {
		todayStart, _ := time.Parse("2006-01-02", today)
		var count int64
		err := database.GetDB().Model(&models.ActivityEvent{}).
			Where("created_at BETWEEN ? AND ?", todayStart, todayStart.Add(24*time.Hour)).
			Count(&count).Error
		return count, err
	})
}

// GetTodayXP returns the XP granted today
func GetTodayXP() int {
	today := time.Now().Format("2006-01-02")
	return cachedCount(fmt.Sprintf(CacheKeyXPDaily, today), func() (int64, error) {
		todayStart, _ := time.Parse("2006-01-02", today)
		var total *int64
		err := database.GetDB().Model(&models.ActivityEvent{}).
			Select("SUM(xp_delta)").
			Where("created_at BETWEEN ? AND ?", todayStart, todayStart.Add(24*time.Hour)).
			Scan(&total).Error
		if err != nil || total == nil {
			return 0, err
		}
		return *total, nil
	})
}

// cachedCount reads a counter from the cache, falling back to the database
// and repopulating the cache on a miss
func cachedCount(key string, load func() (int64, error)) int {
	val, err := cache.Get(key)
	if err != nil {
		count, lerr := load()
		if lerr != nil {
			log.Printf("Error loading statistic %s: %v", key, lerr)
			return 0
		}
		if cerr := cache.Set(key, strconv.FormatInt(count, 10), CacheExpiration); cerr != nil {
			log.Printf("Error caching statistic %s: %v", key, cerr)
		}
		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return int(count)
}

// GetStatisticsData returns all statistics data as StatisticsData structure
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalActors: GetTotalActors(),
		TodayEvents: GetTodayEvents(),
		TodayXP:     GetTodayXP(),
	}
}
