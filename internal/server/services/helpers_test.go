package services

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/server/cache"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/ratelimit"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/memstore"
	"github.com/redis/go-redis/v9"
)

var (
	admin    = models.Identity{ID: 1, IsAdmin: true}
	supplier = models.Identity{ID: 2, IsSupplier: true}
	rival    = models.Identity{ID: 3, IsSupplier: true}
	customer = models.Identity{ID: 4, IsCustomer: true}
)

type recorded struct {
	UserID int64
	Action string
	Data   map[string]any
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []recorded
}

func (f *fakeRecorder) Record(ctx context.Context, userID int64, action string, data map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recorded{UserID: userID, Action: action, Data: data})
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type env struct {
	store  *memstore.Store
	mr     *miniredis.Miniredis
	events *fakeRecorder
	deps   Deps
}

func newEnv(t *testing.T, limiterOpts ...ratelimit.Option) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), DisableIdentity: true})
	t.Cleanup(func() { _ = rdb.Close() })

	store := memstore.New()
	rec := &fakeRecorder{}
	return &env{
		store:  store,
		mr:     mr,
		events: rec,
		deps: Deps{
			DB:       store,
			Repos:    store,
			Cache:    cache.New(rdb),
			Limiter:  ratelimit.NewLimiter(rdb, limiterOpts...),
			Events:   rec,
			CacheTTL: cache.DefaultTTL,
			Logger:   logging.Discard(),
		},
	}
}
