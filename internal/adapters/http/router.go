package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/geovocab/internal/pkg/metrics"
)

const lookupTimeout = 15 * time.Second

// The page loads Leaflet from unpkg and tiles from OpenStreetMap.
const pageCSP = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"img-src 'self' data: https://*.tile.openstreetmap.org https://unpkg.com; " +
	"connect-src 'self' ws: wss:"

// SetupRoutes registers the page, WebSocket, proxy and GraphQL routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(requestid.New())
	app.Use(RequestLogger(deps.logger()))
	app.Use(AccessLog())
	app.Use(rateLimit(deps))
	app.Use(securityHeaders(deps))
	app.Use(ETag())
	app.Use(CachingMiddleware())

	app.Get("/", PageHandler())

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/words", timeout.NewWithContext(WordsHandler(deps), lookupTimeout))
	v1.Get("/location", timeout.NewWithContext(LocationHandler(deps), lookupTimeout))

	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), lookupTimeout))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}

// rateLimit allows 120 requests per minute per client IP. Counters live in
// deps.LimiterStorage when set, so replicas share them.
func rateLimit(deps *Dependencies) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage:    deps.LimiterStorage,
		Next: func(c *fiber.Ctx) bool {
			// scrapes are not limited
			return c.Path() == "/metrics"
		},
		KeyGenerator: func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			metrics.RateLimited.Inc()
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	})
}

func securityHeaders(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderXFrameOptions, "DENY")
		c.Set(fiber.HeaderReferrerPolicy, "strict-origin-when-cross-origin")
		c.Set("X-GeoVocab-Version", deps.version())
		if c.Path() == "/" {
			c.Set(fiber.HeaderContentSecurityPolicy, pageCSP)
		}
		return c.Next()
	}
}
