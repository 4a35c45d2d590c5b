package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docchat-be/internal/apperror"
	"docchat-be/internal/pkg/logger"
)

// ErrorHandlerMiddleware converts errors escaping the handlers into the
// structured envelope. Provider failures (500s) get a sanitized message in
// production; the underlying cause only goes to the log.
func ErrorHandlerMiddleware(log logger.ILogger, isProd bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Status >= fiber.StatusInternalServerError {
				log.Error("http", "request failed", map[string]interface{}{
					"path":  ctx.Path(),
					"error": err.Error(),
				})
				message := appErr.Message
				if isProd {
					message = "Internal server error"
				}
				return ctx.Status(appErr.Status).JSON(ErrorResponse(message))
			}
			return ctx.Status(appErr.Status).JSON(ErrorResponse(appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		message := err.Error()
		if isProd {
			message = "Internal server error"
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(message))
	}
}
