package handlers

import (
	"errors"
	"log/slog"

	"pharmacy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RequestError reports a malformed request before it reaches a service.
type RequestError struct {
	Message string
	Fields  map[string]string
}

func (e *RequestError) Error() string {
	return e.Message
}

// ErrorHandler maps errors returned by handlers to JSON responses. Domain validation errors
// become 400, missing records 404, anything unrecognised 500.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			reqErr    *RequestError
			domainErr *services.Error
			fiberErr  *fiber.Error
		)

		switch {
		case errors.As(err, &reqErr):
			body := fiber.Map{"error": "InvalidRequest", "detail": reqErr.Message}
			if len(reqErr.Fields) > 0 {
				body["fields"] = reqErr.Fields
			}
			return c.Status(fiber.StatusBadRequest).JSON(body)
		case errors.As(err, &domainErr):
			status := fiber.StatusBadRequest
			if domainErr.Kind == services.KindNotFound {
				status = fiber.StatusNotFound
			}
			return c.Status(status).JSON(fiber.Map{"error": domainErr.Code, "detail": domainErr.Message})
		case errors.As(err, &fiberErr):
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": "HTTPError", "detail": fiberErr.Message})
		default:
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":  "InternalError",
				"detail": "internal server error",
			})
		}
	}
}
