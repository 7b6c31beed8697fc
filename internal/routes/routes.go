package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/aclauto/internal/cache"
	"github.com/example/aclauto/internal/config"
	"github.com/example/aclauto/internal/handlers"
	"github.com/example/aclauto/internal/middleware"
	"github.com/example/aclauto/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	statsCache := cache.NewPriceStatsCache(db, rdb)

	lifecycle := services.NewLifecycle(
		services.NewGormOrderStore(db),
		services.NewGormConditionStore(db),
	)

	authHandler := handlers.NewAuthHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, lifecycle, telegramService)
	reviewHandler := handlers.NewReviewHandler(db, lifecycle, statsCache, telegramService)
	conditionHandler := handlers.NewConditionHandler(db)
	statsHandler := handlers.NewPriceStatsHandler(db, statsCache)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Authenticated routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Put("/orders/:id", orderHandler.UpdateOrder)
	protected.Delete("/orders/:id", orderHandler.DeleteOrder)
	protected.Post("/orders/:id/submit", orderHandler.SubmitOrder)
	protected.Post("/orders/:id/payment", orderHandler.SubmitPayment)

	protected.Get("/conditions", conditionHandler.ListConditions)
	protected.Get("/conditions/:id", conditionHandler.GetCondition)

	protected.Get("/price-stats", statsHandler.ListStats)
	protected.Get("/price-stats/advisory", statsHandler.Advisory)

	// Admin routes
	admin := protected.Group("", middleware.RequireAdmin())

	admin.Post("/conditions", conditionHandler.CreateCondition)
	admin.Put("/conditions/:id", conditionHandler.UpdateCondition)
	admin.Delete("/conditions/:id", conditionHandler.DeleteCondition)

	admin.Put("/price-stats", statsHandler.UpsertStats)

	admin.Get("/admin/dashboard", adminHandler.DashboardStats)
	admin.Get("/admin/orders", adminHandler.ListAllOrders)
	admin.Get("/admin/orders/:id/review", reviewHandler.Review)
	admin.Post("/admin/orders/:id/approve", reviewHandler.Approve)
	admin.Post("/admin/orders/:id/reject", reviewHandler.Reject)
	admin.Post("/admin/orders/:id/finance-approve", reviewHandler.FinanceApprove)
	admin.Post("/admin/orders/:id/exit", reviewHandler.IssueExitPermit)
	admin.Post("/admin/orders/:id/complete", reviewHandler.Complete)
	admin.Post("/admin/orders/:id/cancel", reviewHandler.Cancel)
}
