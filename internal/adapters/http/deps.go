package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geovocab/internal/core/mapview"
	"github.com/samirrijal/geovocab/internal/core/ports"
)

// DefaultSessionTTL is how long a dropped session can be resumed.
const DefaultSessionTTL = 30 * time.Minute

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	API      ports.GeoVocabAPI
	Bus      ports.EventBus
	Sessions ports.SessionStore

	// Checks are reported by /v1/ready, keyed by name.
	Checks map[string]ports.Pinger

	// LimiterStorage backs the rate limiter. Nil keeps counters in memory.
	LimiterStorage fiber.Storage

	// BaseContext is cancelled on shutdown and aborts every session's lookups.
	BaseContext context.Context

	Timings    mapview.Timings
	SessionTTL time.Duration
	Version    string
	Logger     *slog.Logger
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d *Dependencies) sessionTTL() time.Duration {
	if d.SessionTTL > 0 {
		return d.SessionTTL
	}
	return DefaultSessionTTL
}

func (d *Dependencies) timings() mapview.Timings {
	if d.Timings == (mapview.Timings{}) {
		return mapview.DefaultTimings()
	}
	return d.Timings
}

func (d *Dependencies) baseContext() context.Context {
	if d.BaseContext != nil {
		return d.BaseContext
	}
	return context.Background()
}

func (d *Dependencies) version() string {
	if d.Version != "" {
		return d.Version
	}
	return "dev"
}
