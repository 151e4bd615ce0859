package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PriceCacheKey is the Redis key of the public price check for a barcode.
func PriceCacheKey(barcode string) string { return "price:" + barcode }

// PriceCache drops cached price checks after a product's price or stock changes.
type PriceCache interface {
	Invalidate(ctx context.Context, barcodes ...string)
}

type redisPriceCache struct {
	rdb *redis.Client // nil when Redis is not configured
}

// NewPriceCache returns a cache backed by rdb. A nil client yields a no-op cache.
func NewPriceCache(rdb *redis.Client) PriceCache {
	return &redisPriceCache{rdb: rdb}
}

// Invalidate is best effort: a stale entry still expires with its TTL.
func (c *redisPriceCache) Invalidate(ctx context.Context, barcodes ...string) {
	if c.rdb == nil || len(barcodes) == 0 {
		return
	}
	keys := make([]string, len(barcodes))
	for i, b := range barcodes {
		keys[i] = PriceCacheKey(b)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("barcodes", barcodes).Msg("price cache: invalidation failed")
	}
}
