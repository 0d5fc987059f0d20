package courseValidator

import (
	"learnfront/apiclient"
	"learnfront/middleware"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func StudentAction() fiber.Handler {
	return func(c *fiber.Ctx) error {
		action := apiclient.StudentAction(strings.ToLower(strings.TrimSpace(c.Params("action"))))
		switch action {
		case apiclient.ActivateStudent, apiclient.DeactivateStudent, apiclient.RemoveStudent:
		default:
			return middleware.ValidationErrorResponse(c, map[string]string{
				"action": "Action must be one of: activate, deactivate, remove!",
			})
		}
		c.Locals("studentAction", action)
		return c.Next()
	}
}
