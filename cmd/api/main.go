package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/flightgeo/internal/adapters/http"
	natsadapter "github.com/samirrijal/flightgeo/internal/adapters/nats"
	"github.com/samirrijal/flightgeo/internal/adapters/regions"
	"github.com/samirrijal/flightgeo/internal/adapters/valkey"
	"github.com/samirrijal/flightgeo/internal/core/ports"
	"github.com/samirrijal/flightgeo/internal/core/usecases"
	"github.com/samirrijal/flightgeo/internal/pkg/config"
	"github.com/samirrijal/flightgeo/internal/pkg/logging"
	"github.com/samirrijal/flightgeo/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("flightgeo-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Region catalog
	catalog, err := regions.New(cfg.Regions)
	if err != nil {
		log.Fatalf("regions: %v", err)
	}
	slog.Info("region catalog loaded", "regions", len(cfg.Regions))

	deps := &http.Dependencies{
		Service:   cfg.Service,
		RateLimit: cfg.Server.RateLimit,
	}

	// Cache (optional)
	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, region checks will not be cached", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// NATS (optional)
	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		nc, err := natsadapter.Connect(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, region checks will not be published", "error", err)
		} else {
			pub := natsadapter.NewPublisher(nc)
			defer pub.Close()
			publisher = pub
			deps.Events = natsadapter.NewSubscriber(nc)
			deps.NATS = nc
		}
	}

	// Use cases
	deps.Locations = usecases.NewLocationService(cache, publisher)
	deps.Regions = usecases.NewRegionService(catalog, deps.Locations)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // regions with tens of thousands of vertices still fit
		AppName:      "flightgeo API",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
