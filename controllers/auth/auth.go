package controllers

import (
	"learnfront/middleware"
	"learnfront/services"
	"learnfront/session"

	"github.com/gofiber/fiber/v2"
)

// CreateSession adopts a backend token issued by the external login flow
func CreateSession(c *fiber.Ctx) error {
	token, _ := c.Locals("validatedToken").(string)
	profile, ok := c.Locals("validatedProfile").(*session.Profile)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	s, err := services.App.Sessions.Login(token, *profile)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	jwtToken, err := middleware.IssueSession(c, s)
	if err != nil {
		services.App.Logger.Error("session token signing failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	redirect := "/dashboard"
	if s.IsTutor() {
		redirect = "/tutor"
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Signed in successfully!", fiber.Map{
		"token":      jwtToken,
		"redirect":   redirect,
		"profile":    s.Profile,
		"expires_at": s.ExpiresAt,
	})
}

func Logout(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return middleware.ErrorResponse(c, session.ErrNoSession)
	}

	if err := services.App.Sessions.Logout(s.ID); err != nil && err != session.ErrNoSession {
		services.App.Logger.Warn("session row not removed", "session_id", s.ID, "error", err)
	}
	middleware.ClearSession(c)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully!", fiber.Map{"redirect": "/login"})
}

func Me(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return middleware.ErrorResponse(c, session.ErrNoSession)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session fetched successfully!", fiber.Map{
		"profile":    s.Profile,
		"expires_at": s.ExpiresAt,
		"views":      s.Workspace().OpenViews(),
	})
}
