package apiv1

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/synapse-bot/synapse/app/repository"
	"github.com/synapse-bot/synapse/internal/pkg/engine"
	"github.com/synapse-bot/synapse/internal/pkg/envelope"
	"github.com/synapse-bot/synapse/internal/pkg/jobqueue"
	"github.com/synapse-bot/synapse/internal/pkg/rewardconfig"
	"github.com/synapse-bot/synapse/internal/pkg/statistics"
)

// APIServer serves the admin and ingestion endpoints
type APIServer struct {
	service  *engine.Service
	validate *validator.Validate
}

// NewAPIServer creates a new API server instance
func NewAPIServer(service *engine.Service) *APIServer {
	return &APIServer{
		service:  service,
		validate: validator.New(),
	}
}

// Pong is the ping endpoint response body
type Pong struct {
	Ping string `json:"ping"`
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// EventRequest is the ingestion payload for one gateway event
type EventRequest struct {
	ActorID     string                 `json:"actor_id" validate:"required"`
	Kind        string                 `json:"event_kind" validate:"required"`
	ChannelID   string                 `json:"channel_id"`
	ChannelType string                 `json:"channel_type"`
	GuildID     string                 `json:"guild_id"`
	NaturalKey  string                 `json:"natural_key"`
	Attributes  map[string]interface{} `json:"attributes"`
}

// PostEvent accepts a normalized gateway event and enqueues it for the
// worker pool. Processing is asynchronous; delivery duplicates are resolved
// by the journal, so callers may retry freely.
func (s *APIServer) PostEvent(c *fiber.Ctx) error {
	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	manager := jobqueue.GetManager()
	if manager == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service_unavailable", "message": "Job queue not running"})
	}

	job, err := manager.GetQueue().EnqueueRewardEvent(&jobqueue.RewardEventJobPayload{
		Envelope: envelope.Envelope{
			ActorID:     req.ActorID,
			Kind:        envelope.Kind(req.Kind),
			ChannelID:   req.ChannelID,
			ChannelType: req.ChannelType,
			GuildID:     req.GuildID,
			NaturalKey:  req.NaturalKey,
			Attributes:  req.Attributes,
		},
	})
	if err != nil {
		log.Printf("failed to enqueue event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to enqueue event"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job_id": job.ID, "status": string(job.Status)})
}

// AwardRequest is the manual award payload
type AwardRequest struct {
	ActorID     string `json:"actor_id" validate:"required"`
	DisplayName string `json:"display_name"`
	XP          int64  `json:"xp" validate:"gte=0"`
	Stars       int64  `json:"stars" validate:"gte=0"`
	Gold        int64  `json:"gold" validate:"gte=0"`
	Reason      string `json:"reason" validate:"required,min=1,max=500"`
}

// PostAward applies a manual award synchronously so the moderator sees the
// outcome immediately. Each call gets a fresh natural key; manual awards are
// intentionally not idempotent across requests.
func (s *APIServer) PostAward(c *fiber.Ctx) error {
	var req AwardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}
	if req.XP == 0 && req.Stars == 0 && req.Gold == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Award must grant at least one of xp, stars or gold"})
	}

	e := &envelope.Envelope{
		ActorID:    req.ActorID,
		Kind:       envelope.KindManualAward,
		NaturalKey: "award-" + uuid.NewString(),
		Attributes: map[string]interface{}{
			envelope.AttrXP:          req.XP,
			envelope.AttrStars:       req.Stars,
			envelope.AttrGold:        req.Gold,
			envelope.AttrReason:      req.Reason,
			envelope.AttrDisplayName: req.DisplayName,
		},
	}

	result, wasDuplicate, err := s.service.Process(c.Context(), e)
	if err != nil {
		log.Printf("manual award failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Award could not be applied"})
	}
	if wasDuplicate {
		// Fresh UUID keys should never collide; treat it as a conflict.
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Award was already applied"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"xp":           result.XP,
		"stars":        result.Stars,
		"gold":         result.GoldBonus,
		"leveled_up":   result.LeveledUp,
		"new_level":    result.NewLevel,
		"achievements": result.Achievements,
	})
}

// GetActor returns an actor profile with lifetime counters and recent journal entries
func (s *APIServer) GetActor(c *fiber.Ctx, discordID string) error {
	if discordID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Actor id missing"})
	}

	repos := repository.GetGlobalFactory().GetRepositories()
	actor, err := repos.Actor.GetByDiscordID(discordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown actor"})
		}
		log.Printf("actor lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Actor lookup failed"})
	}

	counters, err := repos.Counter.ForActor(actor.ID)
	if err != nil {
		log.Printf("counter lookup failed for actor %d: %v", actor.ID, err)
		counters = nil
	}
	counterView := make([]fiber.Map, 0, len(counters))
	for _, counter := range counters {
		counterView = append(counterView, fiber.Map{
			"event_kind": counter.EventKind,
			"period":     counter.Period,
			"count":      counter.Count,
		})
	}

	recent, err := repos.Journal.RecentByActor(actor.ID, 20)
	if err != nil {
		log.Printf("journal lookup failed for actor %d: %v", actor.ID, err)
		recent = nil
	}
	recentView := make([]fiber.Map, 0, len(recent))
	for _, entry := range recent {
		recentView = append(recentView, fiber.Map{
			"event_kind": entry.EventKind,
			"xp_delta":   entry.XPDelta,
			"star_delta": entry.StarDelta,
			"created_at": entry.CreatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"discord_id":     actor.DiscordID,
		"display_name":   actor.DisplayName,
		"xp":             actor.XP,
		"level":          actor.Level,
		"gold":           actor.Gold,
		"lifetime_stars": actor.LifetimeStars,
		"counters":       counterView,
		"recent_events":  recentView,
	})
}

// GetLeaderboard returns the top actors by XP
func (s *APIServer) GetLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	actors, err := repository.GetGlobalFactory().GetActorRepository().Leaderboard(limit)
	if err != nil {
		log.Printf("leaderboard query failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Leaderboard unavailable"})
	}

	entries := make([]fiber.Map, 0, len(actors))
	for rank, actor := range actors {
		entries = append(entries, fiber.Map{
			"rank":           rank + 1,
			"discord_id":     actor.DiscordID,
			"display_name":   actor.DisplayName,
			"xp":             actor.XP,
			"level":          actor.Level,
			"lifetime_stars": actor.LifetimeStars,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"leaderboard": entries})
}

// GetSettings returns all reward settings
func (s *APIServer) GetSettings(c *fiber.Ctx) error {
	settings, err := repository.GetGlobalFactory().GetSettingRepository().All()
	if err != nil {
		log.Printf("settings query failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Settings unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"settings": settings})
}

// SettingRequest is the body of a setting update
type SettingRequest struct {
	Key   string `json:"key" validate:"required,min=1,max=255"`
	Value string `json:"value" validate:"required"`
}

// PutSetting updates one setting and broadcasts a cache invalidation so
// every running instance reloads the settings partition.
func (s *APIServer) PutSetting(c *fiber.Ctx) error {
	var req SettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	if err := repository.GetGlobalFactory().GetSettingRepository().SetValue(req.Key, req.Value); err != nil {
		log.Printf("setting update failed for %s: %v", req.Key, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Setting could not be saved"})
	}

	if err := rewardconfig.PublishInvalidation(rewardconfig.PartitionSettings); err != nil {
		// Instances keep serving the previous value until the next reload.
		log.Printf("failed to publish settings invalidation: %v", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"key": req.Key, "value": req.Value})
}

// PostReconcile enqueues a counter reconciliation run
func (s *APIServer) PostReconcile(c *fiber.Ctx) error {
	manager := jobqueue.GetManager()
	if manager == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service_unavailable", "message": "Job queue not running"})
	}

	job, err := manager.GetQueue().EnqueueJob(jobqueue.JobTypeReconcile, nil)
	if err != nil {
		log.Printf("failed to enqueue reconcile job: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to enqueue reconciliation"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"job_id": job.ID, "status": string(job.Status)})
}

// GetStatistics returns the cached activity overview
func (s *APIServer) GetStatistics(c *fiber.Ctx) error {
	data := statistics.GetStatisticsData()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"total_actors": data.TotalActors,
		"today_events": data.TodayEvents,
		"today_xp":     data.TodayXP,
	})
}
