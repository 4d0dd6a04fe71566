// Package cache provides caching infrastructure with PostgreSQL LISTEN/NOTIFY support.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"kitchenledger/internal/domain/catalog/ingredient"
	"kitchenledger/pkg/logger"
)

// Source is the lookup the cache falls through to on a miss.
// Implemented by the ingredient repository.
type Source interface {
	FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error)
}

// IngredientCache caches name-to-ingredient lookups with automatic
// invalidation via PostgreSQL LISTEN/NOTIFY. Order ingestion resolves
// every recipe line by ingredient name, so the same handful of catalog
// rows gets hit on every order; this keeps those lookups off the
// database between catalog edits.
type IngredientCache struct {
	pool   *pgxpool.Pool
	source Source

	mu     sync.RWMutex
	byName map[string]*ingredient.Ingredient

	// Lifecycle
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewIngredientCache creates a new ingredient lookup cache.
func NewIngredientCache(pool *pgxpool.Pool, source Source) *IngredientCache {
	return &IngredientCache{
		pool:   pool,
		source: source,
		byName: make(map[string]*ingredient.Ingredient),
	}
}

// FindByName returns the cached ingredient or falls through to the
// source. Misses, including "no such ingredient" errors, are not
// cached; the source error passes through unchanged.
func (c *IngredientCache) FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error) {
	c.mu.RLock()
	cached, ok := c.byName[name]
	c.mu.RUnlock()
	if ok {
		copied := *cached
		return &copied, nil
	}

	ing, err := c.source.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	stored := *ing
	c.byName[name] = &stored
	c.mu.Unlock()

	return ing, nil
}

// Start begins listening for NOTIFY events. Until started the cache
// still works, it just never invalidates.
func (c *IngredientCache) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.lifecycleMu.Lock()
	if c.started {
		c.lifecycleMu.Unlock()
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.lifecycleMu.Unlock()

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "ingredient cache started")
	return nil
}

// Stop gracefully stops the cache listener.
func (c *IngredientCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	logger.Info(context.Background(), "ingredient cache stopped")
}

// listenLoop listens for PostgreSQL NOTIFY events.
func (c *IngredientCache) listenLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		// Acquire dedicated connection for LISTEN
		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			time.Sleep(time.Second)
			continue
		}

		_, err = conn.Exec(c.ctx, "LISTEN ingredient_changed;")
		if err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			time.Sleep(time.Second)
			continue
		}

		logger.Info(c.ctx, "listening for ingredient_changed notifications")

		c.waitForNotifications(conn)
		conn.Release()
	}
}

// waitForNotifications blocks waiting for NOTIFY events.
func (c *IngredientCache) waitForNotifications(conn *pgxpool.Conn) {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		// Wait for notification with timeout for graceful shutdown
		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return // Shutting down
			}
			// Timeout is expected, continue listening
			continue
		}

		logger.Debug(c.ctx, "received notification",
			"channel", notification.Channel,
			"payload", notification.Payload)

		c.invalidate(notification.Payload)
	}
}

// invalidate drops the named entry, or everything when the payload is
// empty. The trigger sends the ingredient name; a rename notifies both
// the old and the new name.
func (c *IngredientCache) invalidate(payload string) {
	name := strings.TrimSpace(payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		c.byName = make(map[string]*ingredient.Ingredient)
		return
	}
	delete(c.byName, name)
}

// Stats returns cache statistics.
type Stats struct {
	Entries int
}

// GetStats returns current cache statistics.
func (c *IngredientCache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Entries: len(c.byName)}
}

// Warm preloads the cache with the given names, ignoring misses.
func (c *IngredientCache) Warm(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, err := c.FindByName(ctx, name); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("warm cache: %w", ctx.Err())
			}
			continue
		}
	}
	return nil
}
