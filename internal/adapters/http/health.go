package http

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const readyTimeout = 3 * time.Second

// HealthHandler reports liveness. It never touches a backend.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": deps.version(),
		})
	}
}

// ReadyHandler pings every configured backend concurrently and answers 503
// if any of them fails.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		var (
			mu     sync.Mutex
			checks = make(map[string]string, len(deps.Checks))
			g      errgroup.Group
		)
		for name, p := range deps.Checks {
			g.Go(func() error {
				err := p.Ping(ctx)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					checks[name] = "error: " + err.Error()
				} else {
					checks[name] = "ok"
				}
				return err
			})
		}

		if err := g.Wait(); err != nil {
			LoggerFromCtx(c.UserContext()).Warn("readiness check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": checks})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": checks})
	}
}
