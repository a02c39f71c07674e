package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/redis/go-redis/v9"

	"url2pdf/internal/auth"
	"url2pdf/internal/config"
	"url2pdf/internal/docs"
	"url2pdf/internal/http/handlers"
	"url2pdf/internal/http/middleware"
	"url2pdf/internal/infra/chrome"
	log "url2pdf/internal/infra/logging"
	"url2pdf/internal/infra/ratelimit"
)

// Deps are the collaborators wired into the app. Nil fields get defaults.
type Deps struct {
	Config   config.Config
	Renderer handlers.Renderer
	Issuer   *auth.Issuer
	Redis    *redis.Client
	Storage  fiber.Storage
}

// New creates and configures the Fiber app.
func New(d Deps) *fiber.App {
	if d.Renderer == nil {
		d.Renderer = chrome.NewLauncher(d.Config)
	}
	if d.Issuer == nil {
		d.Issuer = auth.NewIssuer(d.Config.Auth)
	}

	app := fiber.New(fiber.Config{
		Prefork:               d.Config.Server.Prefork,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	middleware.Register(app, d.Config, middleware.Options{
		Storage: d.Storage,
		Ready: func(c *fiber.Ctx) bool {
			return ratelimit.Ready(c.UserContext(), d.Redis)
		},
	})
	registerRoutes(app, d)

	// Ensure all responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Route "+c.Method()+":"+c.Path()+" not found")
	})

	return app
}

func registerRoutes(app *fiber.App, d Deps) {
	if err := docs.Register(app); err != nil {
		log.Error("API documentation disabled", "error", err)
	}
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(docs.Path, fiber.StatusFound)
	})

	app.Post("/login", handlers.NewAuthHandler(d.Issuer).HandleLogin)

	svc := handlers.NewPDFService(d.Config, d.Renderer)
	if d.Config.Auth.Required {
		app.Post("/gerar-pdf", middleware.RequireBearer(d.Issuer), svc.HandleConversion)
	} else {
		app.Post("/gerar-pdf", svc.HandleConversion)
	}
	app.Get("/chrome/stats", svc.HandleChromeStats)

	app.Get("/ops/monitor", monitor.New(monitor.Config{Title: "url2pdf"}))
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	log.Warn("Request failed", "path", c.Path(), "status", code, "message", msg, "error", err)
	return handlers.SendError(c, code, msg)
}
