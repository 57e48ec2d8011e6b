package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse is the envelope of every successful reply.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope of every failed reply.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Stack   string      `json:"stack,omitempty"`
}

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{Success: true, Data: data})
}

func SuccessWithMessage(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{Success: true, Message: message, Data: data})
}

// List replies with a count alongside the data, as list endpoints always have.
func List(c *fiber.Ctx, data interface{}, count int) error {
	return c.Status(fiber.StatusOK).JSON(SuccessResponse{Success: true, Count: &count, Data: data})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return SuccessWithMessage(c, fiber.StatusCreated, message, data)
}

// ErrorHandler renders every error returned by a handler. Internal detail is
// only exposed when development is true.
func ErrorHandler(logger *Logger, development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := StatusOf(err)
		message := PublicMessage(err)

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		resp := ErrorResponse{
			Success: false,
			Error:   http.StatusText(status),
			Message: message,
		}
		var appErr *AppError
		if errors.As(err, &appErr) {
			resp.Details = appErr.Details
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		if development {
			resp.Stack = err.Error()
		}

		return c.Status(status).JSON(resp)
	}
}
