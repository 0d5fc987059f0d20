package controllers

import (
	"learnfront/authoring"
	"learnfront/middleware"
	"learnfront/models/course"

	"github.com/gofiber/fiber/v2"
)

func TutorListQuestions(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", ws.Authoring.Questions(moduleID))
}

func TutorAddQuestion(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)
	q, ok := c.Locals("validatedQuestion").(*course.Question)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	questions, err := ws.Authoring.AddTestQuestion(moduleID, *q)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added!", questions)
}

func TutorRemoveQuestion(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)
	index := c.Locals("questionIndex").(int)

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	questions, err := ws.Authoring.RemoveQuestion(moduleID, index)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question removed!", questions)
}

func TutorSubmitTest(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)
	draft, ok := c.Locals("validatedTest").(*authoring.TestDraft)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ws, err := workspace(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := ws.Authoring.SubmitTest(c.UserContext(), moduleID, *draft); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Test created successfully!", nil)
}
