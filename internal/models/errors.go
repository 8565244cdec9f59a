package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the application.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeDuplicateHandle  = "DUPLICATE_HANDLE"
	CodeDuplicateName    = "DUPLICATE_NAME"
	CodeInvalidCircleRef = "INVALID_CIRCLE_REFERENCE"
	CodeIntegrity        = "INTEGRITY_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewDuplicateHandleError reports a handle uniqueness violation at signup.
func NewDuplicateHandleError(handle string) *AppError {
	return &AppError{
		Code:    CodeDuplicateHandle,
		Message: fmt.Sprintf("handle %q is already taken", handle),
	}
}

// NewDuplicateNameError reports a circle (owner, name) uniqueness violation.
func NewDuplicateNameError(name string) *AppError {
	return &AppError{
		Code:    CodeDuplicateName,
		Message: fmt.Sprintf("circle %q already exists", name),
	}
}

// NewInvalidCircleRefError rejects a post referencing circles the author
// does not own. The whole create is rejected, never a partial subset.
func NewInvalidCircleRefError(circleID uint) *AppError {
	return &AppError{
		Code:    CodeInvalidCircleRef,
		Message: fmt.Sprintf("circle %d does not exist or is not owned by the author", circleID),
	}
}

// NewIntegrityError reports stored data violating a declared invariant.
// It aborts the current operation only; callers must log it and never
// silently work around it.
func NewIntegrityError(message string) *AppError {
	return &AppError{
		Code:    CodeIntegrity,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool     { return HasCode(err, CodeNotFound) }
func IsUnauthorized(err error) bool { return HasCode(err, CodeUnauthorized) }
func IsIntegrity(err error) bool    { return HasCode(err, CodeIntegrity) }

// StatusForError maps an application error to an HTTP status code.
// The mapping is a transport concern; core operations only return codes.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeValidation, CodeInvalidCircleRef:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeDuplicateHandle, CodeDuplicateName:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
