package controllers

import (
	"learnfront/middleware"
	"learnfront/models/course"

	"github.com/gofiber/fiber/v2"
)

// TutorCreateModule adds a module to the course, opening the course's view
// if needed so the new module shows up in it.
func TutorCreateModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedModule").(*course.ModuleInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	view, err := ws.OpenView(c.UserContext(), courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	module, err := ws.Authoring.AddModule(c.UserContext(), view, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

func TutorUpdateModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	moduleID := c.Locals("moduleID").(uint)
	patch, ok := c.Locals("validatedModulePatch").(*course.ModulePatch)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	view, err := ws.OpenView(c.UserContext(), courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	module, err := ws.Authoring.EditModule(c.UserContext(), view, moduleID, *patch)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

func TutorDeleteModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	moduleID := c.Locals("moduleID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	view, err := ws.OpenView(c.UserContext(), courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := ws.Authoring.DeleteModule(c.UserContext(), view, moduleID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}
