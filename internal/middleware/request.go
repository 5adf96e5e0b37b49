package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

const (
	localRequestID = "request_id"
	localLogger    = "logger"
)

// RequestContext tags each request with a correlation id and a logger that
// carries it. A valid UUID in the incoming header is reused.
func RequestContext(log *slog.Logger) fiber.Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(c fiber.Ctx) error {
		id, err := uuid.Parse(c.Get(RequestIDHeader))
		if err != nil {
			id = uuid.New()
		}

		c.Set(RequestIDHeader, id.String())
		c.Locals(localRequestID, id)
		c.Locals(localLogger, log.With("request_id", id.String()))
		return c.Next()
	}
}

// RequestID returns the correlation id, or uuid.Nil outside RequestContext.
func RequestID(c fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(localRequestID).(uuid.UUID)
	return id
}

// Logger returns the request-scoped logger, falling back to slog.Default.
func Logger(c fiber.Ctx) *slog.Logger {
	if l, ok := c.Locals(localLogger).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
