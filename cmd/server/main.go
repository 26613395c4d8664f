// Command server exposes the rail-transit core's three external entry
// points (spec §6) over HTTP, adapted from the teacher's cmd/api/main.go:
// same fiber app shape (recover/logger/cors middleware, graceful shutdown
// on SIGINT/SIGTERM), generalized from a GTFS route-search API to the
// simulator/planner/optimizer surface and routed through internal/obslog
// rather than the standard log package.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/transitlab/railsim/internal/cache"
	"github.com/transitlab/railsim/internal/config"
	"github.com/transitlab/railsim/internal/httpapi"
	"github.com/transitlab/railsim/internal/obslog"
)

var log = obslog.New("server")

func main() {
	cfg := config.Load()
	log.Info("starting railsim API server")

	if cfg.CacheEnabled {
		if _, err := cache.GetClient(); err != nil {
			log.Warn("cache unavailable, continuing without it", "error", err)
		} else {
			defer cache.Close()
			log.Info("cache connection established")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "railsim API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Post("/v1/shortest-paths", httpapi.ShortestPaths)
	app.Post("/v1/simulate", httpapi.Simulate)
	app.Post("/v1/optimize", httpapi.Optimize)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "endpoint not found"})
	})

	addr := fmt.Sprintf(":%s", cfg.ServerPort)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down gracefully")
		if err := app.Shutdown(); err != nil {
			log.Error("error during shutdown", "error", err)
		}
	}()

	log.Info("server listening", "addr", addr)
	if err := app.Listen(addr); err != nil {
		log.Crit("server failed", "error", err)
		os.Exit(1)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Error("request error", "error", err)
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
