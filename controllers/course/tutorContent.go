package controllers

import (
	"learnfront/contenttype"
	"learnfront/middleware"
	"learnfront/models/course"

	"github.com/gofiber/fiber/v2"
)

func TutorCreateContent(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)
	kind, _ := c.Locals("contentKind").(contenttype.Kind)
	reqData, ok := c.Locals("validatedContent").(*course.ContentInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	content, err := ws.Authoring.AddContent(c.UserContext(), moduleID, kind, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content created successfully!", fiber.Map{
		"content": content,
		"display": render(c, ws, []course.Content{*content})[0],
	})
}

func TutorUpdateContent(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)
	contentID := c.Locals("contentID").(uint)
	kind, _ := c.Locals("contentKind").(contenttype.Kind)
	reqData, ok := c.Locals("validatedContent").(*course.ContentInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	content, err := ws.Authoring.EditContent(c.UserContext(), moduleID, contentID, kind, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content updated successfully!", fiber.Map{
		"content": content,
		"display": render(c, ws, []course.Content{*content})[0],
	})
}

func TutorDeleteContent(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)
	contentID := c.Locals("contentID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := ws.Authoring.DeleteContent(c.UserContext(), moduleID, contentID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content deleted successfully!", nil)
}
