package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/xid"

	"url2pdf/internal/config"
	log "url2pdf/internal/infra/logging"
)

// Options carries the optional collaborators of the global middleware chain.
type Options struct {
	// Storage backs the rate limiter; nil means in-memory.
	Storage fiber.Storage
	// Ready reports readiness for /ops/ready; nil means always ready.
	Ready func(c *fiber.Ctx) bool
}

// Register attaches global middleware to the app.
func Register(app *fiber.App, cfg config.Config, opts ...Options) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	app.Use(cors.New())

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	app.Use(healthcheck.New(healthcheck.Config{
		LivenessEndpoint:  "/ops/health",
		ReadinessEndpoint: "/ops/ready",
		ReadinessProbe:    o.Ready,
	}))

	if cfg.RateLimiter.Enabled {
		app.Use(ClientRateLimit(cfg, o.Storage))
	}

	app.Use(func(c *fiber.Ctx) error {
		requestID, _ := c.Locals("requestid").(string)
		log.Info("Incoming request", "method", c.Method(), "path", c.Path(), "request_id", requestID)
		return c.Next()
	})
}
