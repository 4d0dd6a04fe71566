// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"kitchenledger/internal/domain/auth"
	"kitchenledger/internal/domain/catalog/ingredient"
	"kitchenledger/internal/domain/catalog/menu"
	"kitchenledger/internal/domain/inventory"
	"kitchenledger/internal/domain/orders"
	"kitchenledger/internal/domain/reports"
	"kitchenledger/internal/infrastructure/http/v1/handlers"
	"kitchenledger/internal/infrastructure/http/v1/middleware"
	"kitchenledger/internal/infrastructure/storage/postgres"
	"kitchenledger/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	JWTValidator middleware.JWTValidator

	// IdempotencyStore, when set, guards mutating endpoints that carry
	// an X-Idempotency-Key header.
	IdempotencyStore middleware.IdempotencyStore

	AuthService       *auth.Service
	IngredientService *ingredient.Service
	MenuService       *menu.Service
	OrderService      *orders.Service
	InventoryService  *inventory.Service
	ReportsService    *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	ingredientHandler := handlers.NewIngredientHandler(base, cfg.IngredientService)
	menuHandler := handlers.NewMenuHandler(base, cfg.MenuService)
	orderHandler := handlers.NewOrderHandler(base, cfg.OrderService, cfg.InventoryService)
	reportsHandler := handlers.NewReportsHandler(base, cfg.ReportsService)

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		// Public auth endpoints
		apiV1.POST("/auth/login", authHandler.Login)
		apiV1.POST("/auth/refresh", authHandler.Refresh)

		// Authenticated staff endpoints
		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		if cfg.IdempotencyStore != nil {
			protected.Use(middleware.Idempotency(cfg.IdempotencyStore))
		}
		{
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/auth/me", authHandler.Me)

			protected.GET("/ingredients", ingredientHandler.List)
			protected.GET("/ingredients/:id", ingredientHandler.Get)
			protected.GET("/menu", menuHandler.List)
			protected.GET("/menu/:id", menuHandler.Get)

			protected.POST("/orders", orderHandler.Place)
			protected.GET("/orders", orderHandler.List)
			protected.GET("/orders/:id", orderHandler.Get)
			protected.GET("/orders/:id/items", orderHandler.Items)
			protected.PUT("/orders/:id", orderHandler.Update)
			protected.POST("/orders/:id/deduct", orderHandler.Deduct)

			protected.GET("/reports/sales", reportsHandler.SalesSummary)

			// Admin-only catalog and account management
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/auth/register", authHandler.Register)
				admin.GET("/users", authHandler.ListUsers)
				admin.DELETE("/users/:id", authHandler.Deactivate)

				admin.POST("/ingredients", ingredientHandler.Create)
				admin.PUT("/ingredients/:id", ingredientHandler.Update)
				admin.DELETE("/ingredients/:id", ingredientHandler.Delete)
				admin.POST("/ingredients/:id/restock", ingredientHandler.Restock)

				admin.POST("/menu", menuHandler.Create)
				admin.PUT("/menu/:id", menuHandler.Update)
				admin.DELETE("/menu/:id", menuHandler.Delete)
				admin.POST("/menu/:id/image", menuHandler.UploadImage)
			}
		}
	}

	return router
}
