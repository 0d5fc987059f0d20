package middleware

import (
	"errors"
	"learnfront/apperrors"
	"learnfront/modulestore"
	"learnfront/session"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse answers with the status and message err maps to. Auth
// failures tell the browser where to go.
func ErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return authFailure(c, "Your session has expired. Please log in again.")
	case errors.Is(err, modulestore.ErrClosed):
		return JsonResponse(c, fiber.StatusGone, false, "This view was closed. Open it again.", nil)
	case errors.Is(err, modulestore.ErrSuperseded):
		return JsonResponse(c, fiber.StatusConflict, false, "A newer selection replaced this one.", nil)
	}

	e := apperrors.As(err)
	switch e.Kind {
	case apperrors.KindValidation:
		if e.Detail == "" && len(e.Fields) > 0 {
			return ValidationErrorResponse(c, e.Fields)
		}
		return JsonResponse(c, e.HTTPStatus(), false, e.Message(), e.Fields)
	case apperrors.KindAuth:
		return authFailure(c, e.Message())
	default:
		return JsonResponse(c, e.HTTPStatus(), false, e.Message(), nil)
	}
}
