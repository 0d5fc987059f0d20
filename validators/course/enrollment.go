package courseValidator

import (
	"learnfront/middleware"
	"learnfront/models/course"
	"learnfront/services"

	"github.com/gofiber/fiber/v2"
)

// Enroll stores the normalized profile form; field errors answer 422
func Enroll() fiber.Handler {
	return func(c *fiber.Ctx) error {
		form := new(course.ProfileForm)
		if err := c.BodyParser(form); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		normalized, err := services.App.Enrollment.Validate(*form)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}

		c.Locals("validatedEnrollment", &normalized)
		return c.Next()
	}
}
