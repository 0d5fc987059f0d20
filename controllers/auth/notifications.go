package controllers

import (
	"learnfront/middleware"
	"learnfront/session"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func ListNotifications(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return middleware.ErrorResponse(c, session.ErrNoSession)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully!", s.Workspace().Notices.List())
}

func DismissNotification(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return middleware.ErrorResponse(c, session.ErrNoSession)
	}

	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Notification ID is required in the URL!", nil)
	}
	s.Workspace().Notices.Dismiss(id)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification dismissed!", nil)
}
