// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"time"

	"vendora/internal/config"
	"vendora/internal/repositories"
	"vendora/internal/routes"
	"vendora/internal/services/notification"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	config.LoadEnv()

	logger, err := zap.NewProduction()
	if !config.IsProduction() {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize databases (PostgreSQL + Redis)
	if err := repositories.InitDB(); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	sqlDB, err := repositories.DB.DB()
	if err != nil {
		logger.Fatal("failed to get database instance", zap.Error(err))
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database with connection pooling")

	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("failed to close database connection", zap.Error(err))
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				logger.Warn("failed to close redis connection", zap.Error(err))
			}
		}
	}()

	// Seed the platform settings row on first boot.
	if err := repositories.NewSettingsRepository(repositories.DB).Seed(); err != nil {
		logger.Fatal("failed to seed platform settings", zap.Error(err))
	}

	// Start the notification outbox worker. It claims pending events with
	// SKIP LOCKED, so running alongside other instances is safe.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker := notification.NewWorker(
		repositories.NewOutboxRepository(repositories.DB),
		notification.NewLogDispatcher(logger.Named("notifications")),
		logger.Named("outbox"),
	)
	go worker.Run(workerCtx)

	// Create Fiber app
	app := fiber.New()

	// CORS middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Use("/api/register", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	// Routes
	routes.SetupRoutes(app, repositories.DB, logger)

	// Start server
	logger.Fatal("server stopped", zap.Error(app.Listen(":"+config.GetEnv("PORT", "3000"))))
}
