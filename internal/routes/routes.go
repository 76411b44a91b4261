// Package routes defines the API routing configuration.
// It wires repositories, services and handlers together and applies
// authentication middleware to the protected groups.
package routes

import (
	"vendora/internal/handlers"
	"vendora/internal/middleware"
	"vendora/internal/repositories"
	"vendora/internal/services/deposit"
	"vendora/internal/services/ledger"
	"vendora/internal/services/rewards"
	"vendora/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB, logger *zap.Logger) {
	// Initialize repositories
	ledgerRepo := repositories.NewLedgerRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	// Initialize services in dependency order
	ledgerService := ledger.NewService(
		ledgerRepo,
		repositories.CacheService,
		logger.Named("ledger"),
		&ledger.NoopMetricsCollector{},
	)

	rewardsService := rewards.NewService(
		db,
		ledgerService,
		ledgerRepo,
		activityRepo,
		merchantRepo,
		userRepo,
		settingsRepo,
		repositories.CacheService,
		logger.Named("rewards"),
	)

	depositService := deposit.NewService(
		db,
		ledgerService,
		merchantRepo,
		appRepo,
		settingsRepo,
		repositories.CacheService,
		logger.Named("deposit"),
	)

	userService := user.NewService(
		db,
		userRepo,
		ledgerService,
		ledgerRepo,
		activityRepo,
		settingsRepo,
	)

	// Initialize handlers
	pointsHandler := handlers.NewPointsHandler(ledgerService)
	rewardsHandler := handlers.NewRewardsHandler(rewardsService)
	depositHandler := handlers.NewDepositHandler(depositService)
	adminHandler := handlers.NewAdminHandler(depositService)
	userHandler := handlers.NewUserHandler(userService)

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/register", userHandler.Register)
	api.Get("/health", handlers.Health)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Vendora API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	// Protected routes
	protected := api.Use(middleware.Auth)

	setupPointsRoutes(protected, pointsHandler, rewardsHandler)
	setupDepositRoutes(protected, depositHandler, rewardsHandler)
	setupAdminRoutes(app, pointsHandler, adminHandler)
}

func setupPointsRoutes(router fiber.Router, pointsHandler *handlers.PointsHandler, rewardsHandler *handlers.RewardsHandler) {
	points := router.Group("/points")
	points.Get("/balance", pointsHandler.GetBalance)
	points.Get("/history", pointsHandler.GetHistory)
	points.Post("/check-in", rewardsHandler.CheckIn)
	points.Post("/referral", rewardsHandler.Refer)

	merchants := router.Group("/merchants")
	merchants.Post("/:id/reveal-contact", rewardsHandler.RevealContact)
	merchants.Post("/promote", rewardsHandler.Promote)
}

func setupDepositRoutes(router fiber.Router, h *handlers.DepositHandler, rewardsHandler *handlers.RewardsHandler) {
	deposits := router.Group("/deposits")
	deposits.Post("/apply", h.Apply)
	deposits.Post("/topup", h.ApplyTopUp)
	deposits.Post("/refund", h.ApplyRefund)
	deposits.Delete("/refund/:id", h.CancelRefund)

	// Daily reward claims are gated on the paid escrow state but move
	// points, so they live next to the other deposit endpoints.
	deposits.Post("/daily-reward", rewardsHandler.ClaimDailyReward)
}

func setupAdminRoutes(app *fiber.App, pointsHandler *handlers.PointsHandler, adminHandler *handlers.AdminHandler) {
	admin := app.Group("/api/admin", middleware.Auth, middleware.AdminOnly)

	admin.Post("/points/adjust", pointsHandler.RecordAdjustment)
	admin.Post("/deposits/applications/:id/review", adminHandler.ReviewDepositApplication)
	admin.Post("/deposits/topups/:id/review", adminHandler.ReviewTopUp)
	admin.Post("/deposits/refunds/:id/review", adminHandler.ReviewRefund)
	admin.Post("/merchants/:id/violation", adminHandler.MarkViolation)
}
