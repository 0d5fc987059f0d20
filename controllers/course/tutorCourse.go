package controllers

import (
	"learnfront/middleware"
	"learnfront/models/course"

	"github.com/gofiber/fiber/v2"
)

func TutorMyCourses(c *fiber.Ctx) error {
	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	courses, err := ws.Authoring.MyCourses(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

func TutorListSubjects(c *fiber.Ctx) error {
	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	subjects, err := ws.Authoring.Subjects(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subjects fetched successfully!", subjects)
}

func TutorCreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*course.CourseInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	created, err := ws.Authoring.CreateCourse(c.UserContext(), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", created)
}

func TutorUpdateCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedCourse").(*course.CourseInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	updated, err := ws.Authoring.UpdateCourse(c.UserContext(), courseID, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", updated)
}

// TutorDeleteCourse also closes the course's view
func TutorDeleteCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := ws.Authoring.DeleteCourse(c.UserContext(), courseID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	ws.CloseView(courseID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}
