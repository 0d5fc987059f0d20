package controllers

import (
	"learnfront/middleware"

	"github.com/gofiber/fiber/v2"
)

// OpenView opens the course's module view and starts its polling. A failed
// first load still leaves the view open.
func OpenView(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	store, err := ws.OpenView(c.UserContext(), courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return viewResponse(c, ws, store, fiber.StatusOK, "Course view opened!")
}

func GetView(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	store, ok := ws.View(courseID)
	if !ok {
		return viewNotOpen(c)
	}
	return viewResponse(c, ws, store, fiber.StatusOK, "Course view fetched successfully!")
}

func RefreshView(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	store, ok := ws.View(courseID)
	if !ok {
		return viewNotOpen(c)
	}
	if err := store.Refresh(c.UserContext()); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return viewResponse(c, ws, store, fiber.StatusOK, "Course view refreshed!")
}

// SelectModule loads a module's contents into the view. Only the latest
// selection is kept; an older one that finishes later answers 409.
func SelectModule(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	moduleID := c.Locals("moduleID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	store, ok := ws.View(courseID)
	if !ok {
		return viewNotOpen(c)
	}
	if _, err := store.SelectModule(c.UserContext(), moduleID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return viewResponse(c, ws, store, fiber.StatusOK, "Module selected!")
}

func CloseView(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if !ws.CloseView(courseID) {
		return viewNotOpen(c)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course view closed!", nil)
}

// ReloadContents re-fetches the selected module's contents
func ReloadContents(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	store, ok := ws.View(courseID)
	if !ok {
		return viewNotOpen(c)
	}
	if _, err := store.ReloadContents(c.UserContext()); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return viewResponse(c, ws, store, fiber.StatusOK, "Contents refreshed!")
}

func ClearSelection(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	store, ok := ws.View(courseID)
	if !ok {
		return viewNotOpen(c)
	}
	store.ClearSelection()
	return viewResponse(c, ws, store, fiber.StatusOK, "Selection cleared!")
}
