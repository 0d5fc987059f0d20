package courseValidator

import (
	"learnfront/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// IDParam parses the :param route segment as a positive id and stores it in
// c.Locals(local) as a uint.
func IDParam(param, local, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(param))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" ID is required in the URL!", nil)
		}

		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+" ID!", nil)
		}

		c.Locals(local, uint(id))
		return c.Next()
	}
}

func CourseID() fiber.Handler {
	return IDParam("id", "courseID", "Course")
}

func ModuleID() fiber.Handler {
	return IDParam("module_id", "moduleID", "Module")
}

func ContentID() fiber.Handler {
	return IDParam("content_id", "contentID", "Content")
}

func StudentID() fiber.Handler {
	return IDParam("student_id", "studentID", "Student")
}
