package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type ctxKey int

const loggerKey ctxKey = iota

// Locals shared between handlers and the access log.
const (
	localRequestID  = "requestid" // set by the requestid middleware
	localLookupKind = "lookup_kind"
)

// RequestLogger stores a logger tagged with the request ID in the user
// context. WebSocket upgrades also carry the session they ask to resume.
func RequestLogger(base *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := base
		if rid, ok := c.Locals(localRequestID).(string); ok && rid != "" {
			l = l.With("request_id", rid)
		}
		if sid := c.Query("session"); sid != "" && c.Path() == "/ws" {
			l = l.With("session", sid)
		}
		c.SetUserContext(context.WithValue(c.UserContext(), loggerKey, l))
		return c.Next()
	}
}

// LoggerFromCtx returns the request logger, or the default logger outside
// a request.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
