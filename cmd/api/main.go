package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deep-research/config"
	"deep-research/internal/api/healthcheck"
	apireport "deep-research/internal/api/report"
	"deep-research/internal/app"
	"deep-research/internal/metrics"
	"deep-research/internal/middleware"
	"deep-research/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

func main() {
	cfg := config.Cfg
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal(err, "startup failed")
	}

	srv := fiber.New(fiber.Config{
		AppName:   cfg.Server.AppName,
		BodyLimit: cfg.Server.BodyLimit,
	})
	srv.Use(middleware.Recover())
	srv.Use(middleware.RequestID())
	srv.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Cors.AllowOrigins,
		AllowMethods: cfg.Cors.AllowMethods,
		AllowHeaders: cfg.Cors.AllowHeaders,
	}))

	// routes
	healthcheck.RegisterRoutes(srv, a.Health)
	srv.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := srv.Group(cfg.Server.APIPrefix, middleware.Limit(middleware.NewConnectionLimiter(cfg.Server.Concurrency)))
	apireport.RegisterRoutes(api, apireport.NewHandler(a.Service, a.Stager, cfg.Storage.MaxFileSize))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error(err, "shutdown error")
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("%s listening on %s (backend=%s)", cfg.Server.AppName, addr, cfg.Storage.Backend)
	if err := srv.Listen(addr, fiber.ListenConfig{DisableStartupMessage: cfg.Server.Mode == "release"}); err != nil {
		logger.Error(err, "server error")
	}
}
