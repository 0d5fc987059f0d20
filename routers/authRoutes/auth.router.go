package authRoutes

import (
	controllers "learnfront/controllers/auth"
	"learnfront/middleware"
	"learnfront/session"
	validators "learnfront/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, sessions *session.Manager) {
	authGroup := app.Group("/auth")
	authGroup.Post("/session", validators.CreateSession(), controllers.CreateSession)
	authGroup.Post("/logout", middleware.SessionMiddleware(sessions), controllers.Logout)
	authGroup.Get("/me", middleware.SessionMiddleware(sessions), controllers.Me)

	notificationGroup := app.Group("/notifications", middleware.SessionMiddleware(sessions))
	notificationGroup.Get("/", controllers.ListNotifications)
	notificationGroup.Delete("/:id", controllers.DismissNotification)
}
