package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	apiv1 "github.com/synapse-bot/synapse/internal/api/v1"
	"github.com/synapse-bot/synapse/internal/pkg/cache"
	"github.com/synapse-bot/synapse/internal/pkg/engine"
	"github.com/synapse-bot/synapse/internal/pkg/env"
	"github.com/synapse-bot/synapse/internal/pkg/middleware"
)

type ApiRouter struct {
	service *engine.Service
}

func NewApiRouter(service *engine.Service) *ApiRouter {
	return &ApiRouter{service: service}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// Rate-limit state lives in Redis so all instances share one limit.
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes, admin key required
	v1 := api.Group("/v1", middleware.AdminAPIKeyMiddleware())
	apiServer := apiv1.NewAPIServer(h.service)
	apiv1.RegisterHandlers(v1, apiServer)
}

// newLimiterStorage builds a Redis storage on database 1 (cache uses DB 0),
// reusing the connection parameters of the main cache client.
func newLimiterStorage() *redisstorage.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if client := cache.GetClient(); client != nil {
		if h, p, err := net.SplitHostPort(client.Options().Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := client.Options().Password; p != "" {
			password = p
		}
	}

	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}
