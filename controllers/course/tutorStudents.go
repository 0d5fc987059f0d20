package controllers

import (
	"learnfront/apiclient"
	"learnfront/middleware"

	"github.com/gofiber/fiber/v2"
)

func TutorListStudents(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	students, err := ws.Progress.LoadStudents(c.UserContext(), courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Students fetched successfully!", students)
}

// TutorSetStudent activates, deactivates or removes a student. The list is
// changed before the backend answers and restored if it refuses.
func TutorSetStudent(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	studentID := c.Locals("studentID").(uint)
	action := c.Locals("studentAction").(apiclient.StudentAction)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	switch action {
	case apiclient.ActivateStudent:
		err = ws.Progress.ActivateStudent(c.UserContext(), courseID, studentID)
	case apiclient.DeactivateStudent:
		err = ws.Progress.DeactivateStudent(c.UserContext(), courseID, studentID)
	default:
		err = ws.Progress.RemoveStudent(c.UserContext(), courseID, studentID)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student updated successfully!", ws.Progress.Students(courseID))
}
