package utils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError - ошибка с кодом и HTTP статусом для ответа клиенту.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
}

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeConflict      = "CONFLICT"
	CodeInternalError = "INTERNAL_ERROR"
	CodeBadRequest    = "BAD_REQUEST"
	CodeBadGateway    = "BAD_GATEWAY"
)

func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource), Status: fiber.StatusNotFound}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Status: fiber.StatusBadRequest}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Status: fiber.StatusUnauthorized}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, Status: fiber.StatusForbidden}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Status: fiber.StatusConflict}
}

func NewBadGatewayError(message, details string) *AppError {
	return &AppError{Code: CodeBadGateway, Message: message, Details: details, Status: fiber.StatusBadGateway}
}

func NewInternalError(message, details string) *AppError {
	return &AppError{Code: CodeInternalError, Message: message, Details: details, Status: fiber.StatusInternalServerError}
}

// AppErrorResponse отправляет AppError в формате ErrorResponse
func AppErrorResponse(c *fiber.Ctx, appErr *AppError) error {
	return c.Status(appErr.Status).JSON(ErrorResponse{
		Success: false,
		Error:   appErr.Code,
		Message: appErr.Message,
		Details: nonEmpty(appErr.Details),
	})
}

func nonEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
