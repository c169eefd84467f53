// Package cache keeps recently read listings in memory in front of the
// item repository.
package cache

import (
	"context"
	"strconv"
	"time"

	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"

	"github.com/karlseguin/ccache/v3"
)

// ItemCache is a read-through repository.ItemRepository. Entries live for
// ttl; GetFresh always goes to the backing repository and refreshes the entry.
type ItemCache struct {
	next  repository.ItemRepository
	cache *ccache.Cache[*domain.Item]
	ttl   time.Duration
}

func NewItemCache(next repository.ItemRepository, maxSize int64, ttl time.Duration) *ItemCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ItemCache{
		next:  next,
		cache: ccache.New(ccache.Configure[*domain.Item]().MaxSize(maxSize)),
		ttl:   ttl,
	}
}

func (c *ItemCache) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	key := itemKey(id)
	if entry := c.cache.Get(key); entry != nil && !entry.Expired() {
		logger.Debug("Item cache hit", "itemID", id)
		item := *entry.Value()
		return &item, nil
	}
	logger.Debug("Item cache miss", "itemID", id)
	return c.GetFresh(ctx, id)
}

func (c *ItemCache) GetFresh(ctx context.Context, id int32) (*domain.Item, error) {
	item, err := c.next.GetByID(ctx, id)
	if err != nil {
		c.cache.Delete(itemKey(id))
		return nil, err
	}
	stored := *item
	c.cache.Set(itemKey(id), &stored, c.ttl)
	return item, nil
}

func (c *ItemCache) Invalidate(id int32) {
	c.cache.Delete(itemKey(id))
}

func (c *ItemCache) Stop() {
	c.cache.Stop()
}

func itemKey(id int32) string {
	return "item:" + strconv.Itoa(int(id))
}
