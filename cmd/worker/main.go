// Package main is the entry point for the kitchenledger background worker.
// It drains the change-event outbox and cleans up expired refresh tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kitchenledger/internal/infrastructure/storage/postgres"
	"kitchenledger/internal/infrastructure/storage/postgres/auth_repo"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting kitchenledger worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	tokenRepo := auth_repo.NewTokenRepo(txManager)
	idempotencyStore := postgres.NewIdempotencyStore(txManager, getEnvDuration("IDEMPOTENCY_TTL", 10*time.Minute))

	// The relay marks change-feed entries delivered once handled. The
	// handler here just logs; a real deployment pushes to the admin UI.
	relay := postgres.NewOutboxRelay(pool.Pool, getEnvInt("OUTBOX_BATCH_SIZE", 100), &logOutboxHandler{log: log})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		relay.Run(ctx, getEnvDuration("OUTBOX_POLL_INTERVAL", 5*time.Second))
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runCleanup(ctx, log, tokenRepo, idempotencyStore, getEnvDuration("TOKEN_CLEANUP_INTERVAL", time.Hour))
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// runCleanup periodically removes expired refresh tokens and
// idempotency records.
func runCleanup(ctx context.Context, log *logger.Logger, tokenRepo *auth_repo.TokenRepo, idem *postgres.IdempotencyStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := tokenRepo.CleanupExpiredTokens(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Warnw("token cleanup failed", "error", err)
				}
			} else if removed > 0 {
				log.Infow("expired refresh tokens removed", "count", removed)
			}

			purged, err := idem.CleanupExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Warnw("idempotency cleanup failed", "error", err)
				}
			} else if purged > 0 {
				log.Infow("expired idempotency keys removed", "count", purged)
			}
		}
	}
}

// logOutboxHandler marks change-feed messages delivered by logging them.
type logOutboxHandler struct {
	log *logger.Logger
}

func (h *logOutboxHandler) Handle(_ context.Context, msg *postgres.OutboxMessage) error {
	h.log.Debugw("change event",
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"event_type", msg.EventType,
	)
	return nil
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

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
