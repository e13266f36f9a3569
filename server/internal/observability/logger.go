// Package observability holds logging helpers shared by the server.
package observability

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
)

// NewLogger builds the process-wide slog logger. Dev mode logs human
// readable text at debug level; everything else logs JSON at info.
func NewLogger(dev bool) *slog.Logger {
	if dev {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// RequestLogger returns an echo middleware that assigns each request an ID
// and logs its outcome.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := uuid.NewString()
			c.Set(LogFieldRequestID, requestID)
			c.Response().Header().Set("X-Request-Id", requestID)

			started := time.Now()
			err := next(c)

			attrs := []any{
				slog.String(LogFieldRequestID, requestID),
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", c.Response().Status),
				slog.Int64(LogFieldDuration, time.Since(started).Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.Warn("http request failed", attrs...)
				return err
			}
			logger.Info("http request", attrs...)
			return nil
		}
	}
}
