package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/flightgeo/internal/pkg/metrics"
)

// requestTimeout bounds every geometry and catalog request.
const requestTimeout = 5 * time.Second

// demoSunset is when the legacy /api/v1/demo probe goes away.
var demoSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	if deps.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return errTooManyRequests(c, "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	api := app.Group("/api/v1")
	api.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/api/v1/demo", SunsetDate: demoSunset, Alternative: "/v1/health"},
	}))

	api.Get("/", IndexHandler(deps))
	api.Get("/uid", UIDHandler(deps))
	api.Get("/demo", DemoHandler())

	api.Post("/distanceTo", timeout.NewWithContext(DistanceToHandler(deps), requestTimeout))
	api.Post("/isCloseTo", timeout.NewWithContext(IsCloseToHandler(deps), requestTimeout))
	api.Post("/nextPosition", timeout.NewWithContext(NextPositionHandler(deps), requestTimeout))
	api.Post("/isInRegion", timeout.NewWithContext(IsInRegionHandler(deps), requestTimeout))

	api.Get("/regions", timeout.NewWithContext(ListRegionsHandler(deps), requestTimeout))
	api.Get("/regions/:name", timeout.NewWithContext(GetRegionHandler(deps), requestTimeout))
	api.Post("/regions/:name/contains", timeout.NewWithContext(RegionContainsHandler(deps), requestTimeout))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	if deps.Events != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.Events)))
	}
}
