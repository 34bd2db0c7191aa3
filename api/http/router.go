package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/shortlist/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app. Everything except the
// probes goes through auth.
func Register(app *fiber.App, health *handlers.HealthHandler, jobs *handlers.JobsHandler, auth fiber.Handler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	v1.Get("/usage", auth, jobs.Usage)

	jg := v1.Group("/jobs", auth)
	jg.Post("", jobs.Submit)
	jg.Get("", jobs.List)
	jg.Get("/:id", jobs.Get)
	jg.Get("/:id/candidates", jobs.Candidates)
}
