package courseValidator

import (
	"learnfront/authoring"
	"learnfront/middleware"
	"learnfront/models/course"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func AddQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(course.Question)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Text = strings.TrimSpace(reqData.Text)
		reqData.Type = course.QuestionType(strings.ToLower(strings.TrimSpace(string(reqData.Type))))
		if reqData.Type == "" {
			reqData.Type = course.QuestionText
		}

		if len(reqData.Text) > 1000 {
			errors["question"] = "Question must not exceed 1000 characters!"
		}
		if len(reqData.Options) > 10 {
			errors["options"] = "A question can have at most 10 options!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

func QuestionIndex() fiber.Handler {
	return func(c *fiber.Ctx) error {
		i, err := strconv.Atoi(strings.TrimSpace(c.Params("index")))
		if err != nil || i < 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid question index!", nil)
		}
		c.Locals("questionIndex", i)
		return c.Next()
	}
}

func SubmitTest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(authoring.TestDraft)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.StartTime = strings.TrimSpace(reqData.StartTime)
		reqData.EndTime = strings.TrimSpace(reqData.EndTime)

		errors := make(map[string]string)
		if len(reqData.Name) > 200 {
			errors["name"] = "Name must not exceed 200 characters!"
		}
		if markupPattern.MatchString(reqData.Name) {
			errors["name"] = "Name contains invalid characters (e.g., <, >, {, })!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTest", reqData)
		return c.Next()
	}
}
