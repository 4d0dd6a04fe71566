package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/infrastructure/storage/postgres"
)

// memoryIdempotencyStore keeps keys in memory with the same contract
// the database-backed store provides.
type memoryIdempotencyStore struct {
	acquired  []string
	hashes    map[string]string // key -> request hash of the first acquisition
	completed map[string]*postgres.IdempotencyReplay
	failed    map[string]*postgres.IdempotencyReplay
	acquireFn func(key string) (*postgres.IdempotencyReplay, error)
}

func newMemoryStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{
		hashes:    make(map[string]string),
		completed: make(map[string]*postgres.IdempotencyReplay),
		failed:    make(map[string]*postgres.IdempotencyReplay),
	}
}

func (m *memoryIdempotencyStore) AcquireKey(_ context.Context, key, _, _, requestHash string) (*postgres.IdempotencyReplay, error) {
	m.acquired = append(m.acquired, key)
	if m.acquireFn != nil {
		return m.acquireFn(key)
	}
	if stored, ok := m.hashes[key]; ok {
		if stored != requestHash {
			return nil, apperror.NewIdempotencyMismatch(key)
		}
		if replay, ok := m.completed[key]; ok {
			return replay, nil
		}
		return nil, apperror.NewIdempotencyConflict(key)
	}
	m.hashes[key] = requestHash
	return nil, nil
}

func (m *memoryIdempotencyStore) CompleteKey(_ context.Context, key string, statusCode int, contentType string, _ any) error {
	m.completed[key] = &postgres.IdempotencyReplay{StatusCode: statusCode, ContentType: contentType}
	return nil
}

func (m *memoryIdempotencyStore) FailKey(_ context.Context, key string, statusCode int, contentType string, _ any) error {
	m.failed[key] = &postgres.IdempotencyReplay{StatusCode: statusCode, ContentType: contentType}
	return nil
}

func idempotencyRouter(store IdempotencyStore, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(Idempotency(store))
	r.POST("/orders", handler)
	r.GET("/orders", handler)
	return r
}

func postOrders(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	store := newMemoryStore()
	handled := 0
	r := idempotencyRouter(store, func(c *gin.Context) {
		handled++
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := postOrders(r, "", `{"total":"5.00"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, handled)
	assert.Empty(t, store.acquired, "keyless requests never touch the store")
}

func TestIdempotency_IgnoresReads(t *testing.T) {
	store := newMemoryStore()
	r := idempotencyRouter(store, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(HeaderIdempotencyKey, "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.acquired)
}

func TestIdempotency_RetriedOrderIsNotPlacedTwice(t *testing.T) {
	store := newMemoryStore()
	placed := 0
	r := idempotencyRouter(store, func(c *gin.Context) {
		placed++
		// What handlers.BaseHandler.OK does on the success path.
		if key, exists := c.Get("idempotency_key"); exists {
			s := c.MustGet("idempotency_store").(IdempotencyStore)
			require.NoError(t, s.CompleteKey(c.Request.Context(), key.(string), http.StatusOK, "application/json", gin.H{"number": "ORD-2026-00001"}))
		}
		c.JSON(http.StatusOK, gin.H{"number": "ORD-2026-00001"})
	})

	body := `{"total":"12.50","paymentType":"cash"}`
	first := postOrders(r, "pos-7-retry", body)
	second := postOrders(r, "pos-7-retry", body)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, placed, "the retry must replay, not place a second order")
	assert.Len(t, store.acquired, 2)
}

func TestIdempotency_KeyReuseWithDifferentBodyIsRejected(t *testing.T) {
	store := newMemoryStore()
	placed := 0
	r := idempotencyRouter(store, func(c *gin.Context) {
		placed++
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	first := postOrders(r, "pos-7-retry", `{"total":"12.50"}`)
	second := postOrders(r, "pos-7-retry", `{"total":"99.00"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), apperror.CodeIdempotency)
	assert.Equal(t, 1, placed)
}

func TestIdempotency_PendingKeyConflicts(t *testing.T) {
	store := newMemoryStore()
	store.acquireFn = func(key string) (*postgres.IdempotencyReplay, error) {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	placed := 0
	r := idempotencyRouter(store, func(c *gin.Context) {
		placed++
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := postOrders(r, "in-flight", `{"total":"5.00"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, placed)
}

func TestIdempotency_BodyStaysReadableForHandler(t *testing.T) {
	store := newMemoryStore()
	var seen string
	r := idempotencyRouter(store, func(c *gin.Context) {
		raw, err := c.GetRawData()
		require.NoError(t, err)
		seen = string(raw)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	body := `{"total":"12.50"}`
	w := postOrders(r, "key-1", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, seen, "hashing must not consume the request body")
}

func TestIdempotency_ErrorResponseIsRecordedAgainstKey(t *testing.T) {
	store := newMemoryStore()
	r := idempotencyRouter(store, func(c *gin.Context) {
		_ = c.Error(apperror.NewValidation("order payload rejected"))
		c.Abort()
	})

	w := postOrders(r, "key-err", `{"total":"bad"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, store.failed, "key-err")
	assert.Equal(t, http.StatusBadRequest, store.failed["key-err"].StatusCode)
}
