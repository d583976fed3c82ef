package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/synapse-bot/synapse/app/repository"
	"github.com/synapse-bot/synapse/internal/pkg/antigaming"
	"github.com/synapse-bot/synapse/internal/pkg/cache"
	"github.com/synapse-bot/synapse/internal/pkg/database"
	"github.com/synapse-bot/synapse/internal/pkg/engine"
	"github.com/synapse-bot/synapse/internal/pkg/env"
	"github.com/synapse-bot/synapse/internal/pkg/jobqueue"
	"github.com/synapse-bot/synapse/internal/pkg/rewardconfig"
	"github.com/synapse-bot/synapse/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	factory := repository.InitGlobalFactory(db)

	// Reward configuration is served from memory; Redis pub/sub keeps every
	// instance's copy in sync with setting updates.
	cfg := rewardconfig.NewCache(factory.GetRepositories())
	if err := cfg.Load(); err != nil {
		log.Fatalf("failed to load reward configuration: %v", err)
	}
	go cfg.ListenForInvalidations()

	tracker := antigaming.NewTracker()
	service := engine.NewService(db, cfg, tracker)

	// Gateway events flow through the Redis-backed worker pool.
	manager := jobqueue.InitManager(3, service, cfg)
	manager.Start()

	app := fiber.New(fiber.Config{
		AppName: "synapse",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app, service)

	return app
}
