package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterHandlers attaches all v1 routes to the given router group.
// Authentication is enforced by the router, not here.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	router.Post("/events", s.PostEvent)
	router.Post("/awards", s.PostAward)

	router.Get("/actors/:id", func(c *fiber.Ctx) error {
		return s.GetActor(c, c.Params("id"))
	})
	router.Get("/leaderboard", s.GetLeaderboard)
	router.Get("/statistics", s.GetStatistics)

	router.Get("/settings", s.GetSettings)
	router.Put("/settings", s.PutSetting)

	router.Post("/reconcile", s.PostReconcile)
}
