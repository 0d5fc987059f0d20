package courseValidator

import (
	"learnfront/middleware"
	"learnfront/models/course"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var markupPattern = regexp.MustCompile(`[<>{}]`)

func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(course.ModuleInput)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		checkTitle(errors, reqData.Title)
		checkDescription(errors, reqData.Description)
		if reqData.Order < 0 {
			errors["order"] = "Order must not be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// UpdateModule accepts any subset of title, description and order
func UpdateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(course.ModulePatch)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Title != nil {
			title := strings.TrimSpace(*reqData.Title)
			reqData.Title = &title
			checkTitle(errors, title)
		}
		if reqData.Description != nil {
			desc := strings.TrimSpace(*reqData.Description)
			reqData.Description = &desc
			checkDescription(errors, desc)
		}
		if reqData.Order != nil && *reqData.Order < 0 {
			errors["order"] = "Order must not be negative!"
		}
		if reqData.Title == nil && reqData.Description == nil && reqData.Order == nil {
			errors["module"] = "Nothing to update!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedModulePatch", reqData)
		return c.Next()
	}
}

func checkTitle(errors map[string]string, title string) {
	switch {
	case title == "":
		errors["title"] = "Title is required!"
	case len(title) > 200:
		errors["title"] = "Title must not exceed 200 characters!"
	case markupPattern.MatchString(title):
		errors["title"] = "Title contains invalid characters (e.g., <, >, {, })!"
	}
}

func checkDescription(errors map[string]string, desc string) {
	if len(desc) > 2000 {
		errors["description"] = "Description must not exceed 2000 characters!"
	}
}
