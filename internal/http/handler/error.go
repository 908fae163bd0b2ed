package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"healthdash/internal/auth"
	"healthdash/internal/http/middleware"
	"healthdash/internal/service"
	"healthdash/internal/storage"
	"healthdash/internal/summary"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError translates a use-case error into its HTTP response.
func writeServiceError(c *fiber.Ctx, err error) error {
	status, code, message := classify(err)
	return writeError(c, status, code, message)
}

func classify(err error) (status int, code, message string) {
	var ve *service.ValidationError
	var fe *fiber.Error

	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, "VALIDATION_FAILED", ve.Error()
	case errors.Is(err, service.ErrIDRequired):
		return fiber.StatusBadRequest, "INVALID_ID", "id is required"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, summary.ErrUnsupportedType):
		return fiber.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", "only image documents can be summarized"
	case errors.Is(err, service.ErrSummaryInProgress):
		return fiber.StatusConflict, "SUMMARY_IN_PROGRESS", "a summary for this document is already in progress"
	case errors.Is(err, summary.ErrRequestFailed):
		return fiber.StatusBadGateway, "SUMMARY_FAILED", "the summary service could not process the document"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, service.ErrNoSession):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token"
	case errors.Is(err, storage.ErrPresignUnsupported):
		return fiber.StatusNotImplemented, "PRESIGN_UNSUPPORTED", "download links are not available for this storage backend"
	case errors.As(err, &fe):
		return fe.Code, codeForStatus(fe.Code), messageForStatus(fe.Code)
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusUpgradeRequired:
		return "UPGRADE_REQUIRED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		if status < fiber.StatusInternalServerError {
			return "BAD_REQUEST"
		}
		return "INTERNAL_ERROR"
	}
}

func messageForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "bad request"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	case fiber.StatusNotFound:
		return "resource not found"
	case fiber.StatusMethodNotAllowed:
		return "method not allowed"
	case fiber.StatusUpgradeRequired:
		return "websocket upgrade required"
	case fiber.StatusRequestEntityTooLarge:
		return "request body too large"
	default:
		if status < fiber.StatusInternalServerError {
			return "bad request"
		}
		return "internal server error"
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeServiceError(c, err)
	}
}
