package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that lets only sessions with role through.
// It must run after SessionMiddleware.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := CurrentSession(c)
		if s == nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: session not found", fiber.Map{"redirect": "/login"})
		}
		if s.Profile.Role != role {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}
		return c.Next()
	}
}
