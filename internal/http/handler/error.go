package handler

import (
	"bytes"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"ocrweb/internal/http/middleware"
	"ocrweb/internal/view"
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

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NOT_FOUND", "SERVICE_UNAVAILABLE")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

var errorCodes = map[int]string{
	fiber.StatusBadRequest:            "BAD_REQUEST",
	fiber.StatusForbidden:             "FORBIDDEN",
	fiber.StatusNotFound:              "NOT_FOUND",
	fiber.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	fiber.StatusRequestEntityTooLarge: "REQUEST_TOO_LARGE",
}

// ErrorHandler returns a Fiber global error handler. Browsers get the HTML
// error page; clients preferring JSON (and every client when v is nil) get errorPayload.
// Messages of non-Fiber errors are logged, never shown.
func ErrorHandler(v *view.Renderer, logger *slog.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := ""
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			if fe.Message != utils.StatusMessage(status) {
				detail = fe.Message
			}
		} else {
			logger.Error("request_failed",
				"request_id", middleware.RequestIDFromCtx(c),
				"method", c.Method(),
				"path", c.Path(),
				"error", err.Error(),
			)
		}

		code, ok := errorCodes[status]
		if !ok {
			code = "INTERNAL_ERROR"
			if status < fiber.StatusInternalServerError {
				code = "REQUEST_ERROR"
			}
		}
		message := detail
		if message == "" {
			message = utils.StatusMessage(status)
		}

		if v == nil || c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
			return writeError(c, status, code, message)
		}

		var buf bytes.Buffer
		if rerr := v.Error(&buf, view.ErrorData{
			Status:    status,
			Title:     utils.StatusMessage(status),
			Detail:    detail,
			RequestID: middleware.RequestIDFromCtx(c),
		}); rerr != nil {
			return writeError(c, status, code, message)
		}
		c.Type("html", "utf-8")
		return c.Status(status).Send(buf.Bytes())
	}
}
