package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse sends a standard error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// BadRequestResponse sends a 400 validation error response
func BadRequestResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusBadRequest, "validation")
}

// ConflictResponse sends a 409 conflict response, optionally carrying the
// current state of the conflicting resource so the caller can reconcile.
func ConflictResponse(c *fiber.Ctx, message string, current interface{}) error {
	body := fiber.Map{
		"status":    fiber.StatusConflict,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      "conflict",
	}
	if current != nil {
		body["request"] = current
	}
	return c.Status(fiber.StatusConflict).JSON(body)
}

// ForbiddenResponse sends a 403 forbidden response
func ForbiddenResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusForbidden, "forbidden")
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}
