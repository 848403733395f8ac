/*
cache.go - Pluggable persistence for the fetched rate table

PURPOSE:
  The provider survives restarts by writing the serialized table through
  a small Get/Set interface. Two implementations: the local sqlite store
  (default, zero extra infrastructure) and redis (for setups that
  already run one and want the cache shared).
*/
package rates

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/warp/stay-engine/store/sqlite"
)

// Cache persists the serialized rate table between runs. A miss is not
// an error; Get reports it with the bool.
type Cache interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, doc string) error
}

// =============================================================================
// SQLITE CACHE
// =============================================================================

// StoreCache backs the cache with the application's sqlite store.
type StoreCache struct {
	Store *sqlite.Store
}

func NewStoreCache(store *sqlite.Store) *StoreCache {
	return &StoreCache{Store: store}
}

func (c *StoreCache) Get(ctx context.Context) (string, bool) {
	doc, ok, err := c.Store.GetRates(ctx)
	if err != nil || !ok {
		return "", false
	}
	return doc, true
}

func (c *StoreCache) Set(ctx context.Context, doc string) error {
	return c.Store.SaveRates(ctx, doc)
}

// =============================================================================
// REDIS CACHE
// =============================================================================

const redisRatesKey = "stay-engine:fx-rates"

// RedisCache backs the cache with a redis instance.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (c *RedisCache) Get(ctx context.Context) (string, bool) {
	val, err := c.client.Get(ctx, redisRatesKey).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, doc string) error {
	// No expiry: a stale table is still better than none, and the
	// provider owns the refresh policy.
	return c.client.Set(ctx, redisRatesKey, doc, 0).Err()
}
