package utils

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// AppError carries the HTTP status a failure should surface with.
type AppError struct {
	Status  int
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(message string, details ...interface{}) *AppError {
	e := &AppError{Status: http.StatusBadRequest, Message: message}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Status: http.StatusForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: message}
}

// NewInsufficientQuestionsError reports how many questions matched the filter.
func NewInsufficientQuestionsError(available int) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Only %d questions available. Please select fewer questions.", available),
		Details: map[string]int{"available": available},
	}
}

func NewStorageError(message string, err error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// StatusOf maps an error to the status the error handler responds with.
func StatusOf(err error) int {
	var appErr *AppError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &appErr):
		return appErr.Status
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show outside development mode.
func PublicMessage(err error) string {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Message
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "Resource not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return "Duplicate field value entered"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return "Invalid reference to related resource"
	default:
		return "Server Error"
	}
}
