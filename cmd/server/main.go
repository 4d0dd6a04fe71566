// Package main is the entry point for the kitchenledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kitchenledger/internal/core/id"
	"kitchenledger/internal/domain/auth"
	"kitchenledger/internal/domain/catalog/ingredient"
	"kitchenledger/internal/domain/catalog/menu"
	"kitchenledger/internal/domain/inventory"
	"kitchenledger/internal/domain/orders"
	"kitchenledger/internal/domain/reports"
	"kitchenledger/internal/infrastructure/cache"
	v1 "kitchenledger/internal/infrastructure/http/v1"
	pgnumerator "kitchenledger/internal/infrastructure/numerator"
	"kitchenledger/internal/infrastructure/storage/objectstore"
	"kitchenledger/internal/infrastructure/storage/postgres"
	"kitchenledger/internal/infrastructure/storage/postgres/auth_repo"
	"kitchenledger/internal/infrastructure/storage/postgres/catalog_repo"
	"kitchenledger/internal/infrastructure/storage/postgres/order_repo"
	"kitchenledger/internal/infrastructure/storage/postgres/report_repo"
	"kitchenledger/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting kitchenledger server")

	// Database
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	// Infrastructure services
	numerator := pgnumerator.New(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	// Change events land in the outbox table; the worker binary relays
	// them to the admin UI.
	publisher := postgres.NewOutboxPublisher(txManager)

	// POS terminals retry timed-out order submissions; keyed requests
	// replay the stored response instead of writing a duplicate order.
	idempotencyStore := postgres.NewIdempotencyStore(txManager, getEnvDuration("IDEMPOTENCY_TTL", 10*time.Minute))

	// Object storage for menu item images (optional)
	var imageStore menu.ImageStore
	if bucket := getEnv("S3_BUCKET", ""); bucket != "" {
		store, err := objectstore.NewClient(ctx, objectstore.Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    bucket,
			BaseURL:   getEnv("S3_BASE_URL", ""),
		})
		if err != nil {
			log.Fatalw("failed to create object storage client", "error", err)
		}
		imageStore = store
		log.Infow("object storage enabled", "bucket", bucket)
	} else {
		log.Info("object storage not configured, image upload disabled")
	}

	// Repositories
	ingredientRepo := catalog_repo.NewIngredientRepo(txManager)
	menuRepo := catalog_repo.NewMenuRepo(txManager)

	// Order ingestion resolves recipe lines by ingredient name on every
	// order, so those lookups go through a LISTEN/NOTIFY backed cache.
	ingredientCache := cache.NewIngredientCache(pool.Pool, ingredientRepo)
	if err := ingredientCache.Start(ctx); err != nil {
		log.Fatalw("failed to start ingredient cache", "error", err)
	}
	defer ingredientCache.Stop()
	orderRepo := order_repo.NewOrderRepo(txManager)
	salesRepo := report_repo.NewSalesRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)
	tokenRepo := auth_repo.NewTokenRepo(txManager)

	// Domain services
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(userRepo, tokenRepo, txManager, jwtService, auth.DefaultServiceConfig())

	ingredientService := ingredient.NewService(ingredientRepo, numerator, auditService)
	menuService := menu.NewService(menuRepo, ingredientRepo, numerator, auditService, imageStore)
	orderService := orders.NewService(orderRepo, ingredientCache, numerator, &outboxNotifier{publisher: publisher})
	inventoryService := inventory.NewService(orderRepo, ingredientRepo)
	reportsService := reports.NewService(salesRepo)

	router := v1.NewRouter(v1.RouterConfig{
		Pool:              pool,
		Logger:            log,
		JWTValidator:      jwtService,
		IdempotencyStore:  idempotencyStore,
		AuthService:       authService,
		IngredientService: ingredientService,
		MenuService:       menuService,
		OrderService:      orderService,
		InventoryService:  inventoryService,
		ReportsService:    reportsService,
	})

	srv := &http.Server{
		Addr:         ":" + getEnv("PORT", "8080"),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}

	log.Info("server stopped")
}

// outboxNotifier publishes order change events via the outbox table.
type outboxNotifier struct {
	publisher *postgres.OutboxPublisher
}

func (n *outboxNotifier) Notify(ctx context.Context, aggregateType string, aggregateID id.ID, eventType string, payload any) error {
	return n.publisher.Publish(ctx, postgres.ChangeEvent{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s is not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
