package parse

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mgolovanova35-netizen/wishlist-backend/internal/domain"
)

const cacheKeyPrefix = "parse:"

// Cache memoizes extraction results per URL in Redis. A nil *Cache is a
// valid no-op cache, so the parser works unchanged when Redis is not
// configured. Cache errors are logged and treated as misses; extraction
// must never fail because the cache is down.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache creates a parse-result cache with the given TTL.
func NewCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached metadata for a URL, or false on a miss.
func (c *Cache) Get(ctx context.Context, pageURL string) (*domain.ProductMeta, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, cacheKeyPrefix+pageURL).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "parse cache read failed",
				slog.String("url", pageURL),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}

	var meta domain.ProductMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, false
	}
	return &meta, true
}

// Put stores the metadata for a URL.
func (c *Cache) Put(ctx context.Context, pageURL string, meta *domain.ProductMeta) {
	if c == nil {
		return
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, cacheKeyPrefix+pageURL, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "parse cache write failed",
			slog.String("url", pageURL),
			slog.String("error", err.Error()),
		)
	}
}
