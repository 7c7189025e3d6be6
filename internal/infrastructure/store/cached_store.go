package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/dscommerce/internal/domain/product"
)

// KeyProduct caches a product by id: product:{id} -> product JSON
const KeyProduct = "product:%d"

// DefaultCacheTTL applies when NewProductCache gets a non-positive ttl.
const DefaultCacheTTL = 5 * time.Minute

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// ProductCache holds product projections in Redis. Redis failures are
// logged and reported as a miss; they never fail the caller.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewProductCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ProductCache{rdb: rdb, ttl: ttl, log: log.With("component", "product-cache")}
}

func (pc *ProductCache) Get(ctx context.Context, id int64) (*product.Product, bool) {
	key := fmt.Sprintf(KeyProduct, id)

	b, err := pc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			pc.log.Warn("cache read failed", "key", key, "err", err)
		}
		return nil, false
	}

	var p product.Product
	if err := json.Unmarshal(b, &p); err != nil {
		pc.log.Warn("discarding unreadable cache entry", "key", key)
		return nil, false
	}
	return &p, true
}

func (pc *ProductCache) Set(ctx context.Context, p *product.Product) {
	key := fmt.Sprintf(KeyProduct, p.ID)
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := pc.rdb.Set(ctx, key, b, pc.ttl).Err(); err != nil {
		pc.log.Warn("cache write failed", "key", key, "err", err)
	}
}

// Evict drops the cached projection of product id.
func (pc *ProductCache) Evict(ctx context.Context, id int64) {
	key := fmt.Sprintf(KeyProduct, id)
	if err := pc.rdb.Del(ctx, key).Err(); err != nil {
		pc.log.Warn("cache evict failed", "key", key, "err", err)
	}
}

// CachedStore puts a read-through ProductCache in front of single-product
// reads. Writes go to the wrapped store first and then evict.
type CachedStore struct {
	Store
	cache *ProductCache
}

func NewCachedStore(next Store, cache *ProductCache) *CachedStore {
	return &CachedStore{Store: next, cache: cache}
}

func (cs *CachedStore) GetProduct(ctx context.Context, id int64) (*product.Product, bool, error) {
	if p, ok := cs.cache.Get(ctx, id); ok {
		return p, true, nil
	}

	p, ok, err := cs.Store.GetProduct(ctx, id)
	if err != nil || !ok {
		return p, ok, err
	}
	cs.cache.Set(ctx, p)
	return p, true, nil
}

func (cs *CachedStore) UpdateProduct(ctx context.Context, id int64, in product.Input) (*product.Product, bool, error) {
	p, ok, err := cs.Store.UpdateProduct(ctx, id, in)
	if err == nil && ok {
		cs.cache.Evict(ctx, id)
	}
	return p, ok, err
}

func (cs *CachedStore) TryDeleteProduct(ctx context.Context, id int64) (DeleteResult, error) {
	res, err := cs.Store.TryDeleteProduct(ctx, id)
	if err == nil && res == Deleted {
		cs.cache.Evict(ctx, id)
	}
	return res, err
}
