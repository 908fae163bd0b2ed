package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"healthdash/internal/logger"
)

// Logger logs one structured line per request with request_id, method, path, status
// and latency in milliseconds. Server errors are logged at error level.
func Logger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		handleError(c, err)

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()

		fields := []zap.Field{
			zap.String("request_id", rid),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("http_request", fields...)
		} else {
			log.Info("http_request", fields...)
		}
		return nil
	}
}

// LoggerWithWriter is Logger backed by a JSON logger on w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logger.New(w, "info", loc))
}

// handleError renders err through the app's error handler so the logged status is the
// one the client receives.
func handleError(c *fiber.Ctx, err error) {
	if err == nil {
		return
	}
	if herr := c.App().ErrorHandler(c, err); herr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}
