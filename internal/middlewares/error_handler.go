package middlewares

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrorHandler maps unhandled errors to the error pages served by the fiber
// Views engine. Internal errors are logged with an incident id that is also
// shown on the page, so a report can be matched to its log line.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	switch code {
	case fiber.StatusBadRequest:
		return ctx.Status(code).Render("error-bad-request", fiber.Map{})
	case fiber.StatusForbidden:
		return ctx.Status(code).Render("error-forbidden", fiber.Map{})
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return ctx.Status(fiber.StatusNotFound).Render("error-not-found", fiber.Map{})
	default:
		incidentID := uuid.NewString()
		slog.Error("unhandled error", "path", ctx.Path(), "code", code, "incident", incidentID, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).Render("error-internal", fiber.Map{
			"incidentID": incidentID,
		})
	}
}
