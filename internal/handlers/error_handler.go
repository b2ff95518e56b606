package handlers

import (
	"errors"
	"log"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"clothingstore/internal/middleware"
	"clothingstore/internal/repositories"
	"clothingstore/internal/services"
)

// NewErrorHandler builds the centralized Fiber error handler. Every failure
// is translated into the standard envelope:
//
//	{"success": false, "error": {"name": ..., "message": ..., "stack"?: ...}}
//
// The stack capture is included only when includeStack is set (development
// configuration).
func NewErrorHandler(includeStack bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		name := "Error"
		status := fiber.StatusInternalServerError

		var validationErr *services.ValidationError
		var uploadErr *middleware.UploadRejectedError
		var fiberErr *fiber.Error

		switch {
		case errors.As(err, &validationErr):
			name = "ValidationError"
			status = fiber.StatusBadRequest
		case errors.As(err, &uploadErr):
			name = "UploadRejected"
			status = fiber.StatusBadRequest
		case errors.Is(err, repositories.ErrProductNotFound):
			name = "NotFoundError"
			status = fiber.StatusNotFound
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
		}

		if status >= fiber.StatusInternalServerError {
			log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
		}

		errorBody := fiber.Map{
			"name":    name,
			"message": err.Error(),
		}
		if includeStack {
			errorBody["stack"] = string(debug.Stack())
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   errorBody,
		})
	}
}
