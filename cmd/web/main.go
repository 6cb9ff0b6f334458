package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/geovocab/internal/adapters/geovocabapi"
	handler "github.com/samirrijal/geovocab/internal/adapters/http"
	"github.com/samirrijal/geovocab/internal/adapters/memory"
	natsadapter "github.com/samirrijal/geovocab/internal/adapters/nats"
	"github.com/samirrijal/geovocab/internal/adapters/valkey"
	"github.com/samirrijal/geovocab/internal/core/ports"
	"github.com/samirrijal/geovocab/internal/pkg/config"
	"github.com/samirrijal/geovocab/internal/pkg/logging"
	"github.com/samirrijal/geovocab/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("geovocab-web")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Upstream geovocab API
	api, err := geovocabapi.New(cfg.API.BaseURL, geovocabapi.WithLogger(slog.Default()))
	if err != nil {
		log.Fatalf("geovocab api: %v", err)
	}

	checks := map[string]ports.Pinger{}

	// Event bus: NATS when configured, in process otherwise
	var bus ports.EventBus
	if cfg.NATS.URL != "" {
		nb, err := natsadapter.NewBus(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer nb.Close()
		bus = nb
		checks["nats"] = nb
	} else {
		slog.Info("nats not configured, using in-process event bus")
		bus = memory.NewBus()
	}

	// Session snapshots and rate limit counters: Valkey when configured
	var (
		sessions       ports.SessionStore
		limiterStorage fiber.Storage
		memSessions    *memory.SessionStore
	)
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			log.Fatalf("valkey: %v", err)
		}
		defer vc.Close()
		sessions = vc.Sessions()
		limiterStorage = vc.Storage(valkey.LimiterPrefix)
		checks["valkey"] = vc
	} else {
		slog.Info("valkey not configured, keeping sessions in memory")
		memSessions = memory.NewSessionStore()
		sessions = memSessions
	}

	deps := &handler.Dependencies{
		API:            api,
		Bus:            bus,
		Sessions:       sessions,
		Checks:         checks,
		LimiterStorage: limiterStorage,
		BaseContext:    ctx,
		SessionTTL:     time.Duration(cfg.Session.TTLMinutes) * time.Minute,
		Version:        version,
		Logger:         slog.Default(),
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "GeoVocab",
	})
	app.Use(recover.New())

	handler.SetupRoutes(app, deps)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("web server starting", "addr", addr, "api", api.BaseURL(), "version", version)
		return app.Listen(addr)
	})

	if memSessions != nil {
		g.Go(func() error {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if n := memSessions.Sweep(); n > 0 {
						slog.Debug("expired sessions swept", "count", n)
					}
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, draining connections...")

		// Give in-flight requests up to 10s to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
