package controllers

import (
	"learnfront/middleware"
	"learnfront/models/course"
	"learnfront/services"
	"learnfront/session"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func ListCourses(c *fiber.Ctx) error {
	courses, err := services.App.Catalog.ListCourses(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

func GetCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	detail, err := services.App.Catalog.GetCourseDetail(c.UserContext(), courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", detail)
}

// Enroll creates the student's account, enrolls them and signs them in
func Enroll(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	form, ok := c.Locals("validatedEnrollment").(*course.ProfileForm)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := services.App.Enrollment.Submit(c.UserContext(), courseID, *form)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	profile := session.Profile{
		UserID: result.UserID,
		Name:   result.Name,
		Email:  result.Email,
		Role:   session.RoleStudent,
	}
	if profile.Name == "" {
		profile.Name = strings.TrimSpace(form.Name + " " + form.Surname)
	}
	if profile.Email == "" {
		profile.Email = form.Email
	}

	s, err := services.App.Sessions.Login(result.Token, profile)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	token, err := middleware.IssueSession(c, s)
	if err != nil {
		services.App.Logger.Error("session token signing failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	services.App.Logger.Info("student enrolled", "course_id", courseID, "user_id", profile.UserID)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", fiber.Map{
		"token":    token,
		"redirect": "/dashboard",
		"profile":  s.Profile,
	})
}
