// Package cache layers Redis read-through caching over a
// sales.ProductStore. Redis trouble is never fatal: every miss or
// error falls back to the wrapped store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/awebbr/sistema-vendas/internal/redisx"
	"github.com/awebbr/sistema-vendas/internal/sales"
)

const notFoundMarker = "notfound"

type CachedProductStore struct {
	store sales.ProductStore
	rdb   *redis.Client
}

func NewCachedProductStore(store sales.ProductStore, rdb *redis.Client) *CachedProductStore {
	return &CachedProductStore{store: store, rdb: rdb}
}

func (c *CachedProductStore) FindByID(ctx context.Context, id int64) (*sales.Product, error) {
	key := fmt.Sprintf(redisx.KeyProduct, id)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, sales.ErrProductNotFound
		}
		var p sales.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		log.Printf("cache: bad product payload for %s, falling back to store", key)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("cache: redis error (continuing with store): %v", err)
	}

	p, err := c.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sales.ErrProductNotFound) {
			_ = c.rdb.Set(ctx, key, notFoundMarker, redisx.TTLNotFound).Err()
		}
		return nil, err
	}

	if body, err := json.Marshal(p); err == nil {
		_ = c.rdb.Set(ctx, key, body, redisx.TTLProductCache).Err()
	}
	return p, nil
}

func (c *CachedProductStore) FindAll(ctx context.Context) ([]sales.Product, error) {
	data, err := c.rdb.Get(ctx, redisx.KeyProductsAll).Bytes()
	if err == nil {
		var products []sales.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("cache: redis error (continuing with store): %v", err)
	}

	products, err := c.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if body, err := json.Marshal(products); err == nil {
		_ = c.rdb.Set(ctx, redisx.KeyProductsAll, body, redisx.TTLProductCache).Err()
	}
	return products, nil
}

func (c *CachedProductStore) Save(ctx context.Context, p *sales.Product) error {
	if err := c.store.Save(ctx, p); err != nil {
		return err
	}
	c.Invalidate(ctx, p.ID)
	return nil
}

func (c *CachedProductStore) DeleteByID(ctx context.Context, id int64) error {
	if err := c.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	c.Invalidate(ctx, id)
	return nil
}

// Invalidate drops the per-product key and the catalog key. Called
// after any mutation that may have changed price or stock.
func (c *CachedProductStore) Invalidate(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, fmt.Sprintf(redisx.KeyProduct, id), redisx.KeyProductsAll).Err(); err != nil {
		log.Printf("cache: invalidate product %d: %v", id, err)
	}
}
