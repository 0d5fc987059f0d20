package routers

import (
	"learnfront/middleware"
	authRoutes "learnfront/routers/authRoutes"
	courseRoutes "learnfront/routers/courseRoutes"
	"learnfront/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes mounts every route group on app
func SetupRoutes(app *fiber.App, svc *services.Services, limiter *middleware.RateLimiter, enrollPerMinute int) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", fiber.Map{"sessions": svc.Sessions.Count()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authRoutes.SetupAuthRoutes(app, svc.Sessions)
	courseRoutes.SetupCatalogRoutes(app, limiter, enrollPerMinute)
	courseRoutes.SetupLearnerRoutes(app, svc.Sessions)
	courseRoutes.SetupTutorRoutes(app, svc.Sessions)
}
