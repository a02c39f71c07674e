package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"url2pdf/internal/auth"
	"url2pdf/internal/config"
	"url2pdf/internal/http/server"
	"url2pdf/internal/infra/chrome"
	log "url2pdf/internal/infra/logging"
	"url2pdf/internal/infra/ratelimit"
)

type cliFlags struct {
	config string
	port   string
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("url2pdf", flag.ContinueOnError)
	fs.StringVarP(&f.config, "config", "c", "", "path to YAML config (overrides CONFIG_PATH)")
	fs.StringVarP(&f.port, "port", "p", "", "listen port, e.g. :3000")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func loadConfig(f *cliFlags) config.Config {
	var cfg config.Config
	if f.config != "" {
		cfg = config.LoadFrom(f.config)
	} else {
		cfg = config.Load()
	}
	if f.port != "" {
		cfg.Server.Port = f.port
	}
	return cfg
}

func main() {
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	cfg := loadConfig(flags)
	log.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)
	if fallback := cfg.Auth.FallbackCredentials(); len(fallback) > 0 {
		log.Warn("Using built-in auth defaults, override them in production", "settings", fallback)
	}

	redisCfg := ratelimit.RedisConfig{Addr: cfg.Cache.RedisHost, DB: cfg.Cache.RateLimitDB}
	var store fiber.Storage
	if cfg.RateLimiter.Enabled {
		store = ratelimit.NewStore(redisCfg)
	}
	rdb := ratelimit.NewClient(redisCfg)

	app := server.New(server.Deps{
		Config:   cfg,
		Renderer: chrome.NewLauncher(cfg),
		Issuer:   auth.NewIssuer(cfg.Auth),
		Redis:    rdb,
		Storage:  store,
	})

	idleConnsClosed := make(chan struct{})
	startServer(app, cfg, idleConnsClosed)
	<-idleConnsClosed

	if rdb != nil {
		_ = rdb.Close()
	}
}

// startServer starts the Fiber app and blocks until a shutdown signal arrives.
func startServer(app *fiber.App, cfg config.Config, idleConnsClosed chan struct{}) {
	go func() {
		log.Info("Server listening", "addr", cfg.Server.Host+cfg.Server.Port)
		if err := app.Listen(cfg.Server.Host + cfg.Server.Port); err != nil {
			log.Error("Server error", "error", err)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigint)
	<-sigint

	log.Warn("Shutdown signal received, closing server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	close(idleConnsClosed)
	log.Info("Server stopped cleanly")
}
