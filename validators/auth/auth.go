package authValidator

import (
	"learnfront/middleware"
	"learnfront/session"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// CreateSession validates the token hand-off from the external login flow
func CreateSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Token string `json:"token"`
			session.Profile
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Token = strings.TrimSpace(reqData.Token)
		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		reqData.Role = strings.ToLower(strings.TrimSpace(reqData.Role))

		if reqData.Token == "" {
			errors["token"] = "Token is required!"
		}
		if reqData.Email != "" && !emailPattern.MatchString(reqData.Email) {
			errors["email"] = "Invalid email format!"
		}
		if reqData.Role != "" && reqData.Role != session.RoleStudent && reqData.Role != session.RoleTutor {
			errors["role"] = "Role must be student or tutor!"
		}
		if len(reqData.Name) > 100 {
			errors["name"] = "Name must not exceed 100 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		profile := reqData.Profile
		c.Locals("validatedToken", reqData.Token)
		c.Locals("validatedProfile", &profile)
		return c.Next()
	}
}
