package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/synapse-bot/synapse/internal/pkg/engine"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App, service *engine.Service) {
	setup(app, NewApiRouter(service))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
