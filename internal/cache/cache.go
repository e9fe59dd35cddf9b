package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/valyala/fastrand"

	"aoa/internal/logging"
)

// Cache stores computed estimate responses in redis. A nil *Cache is a valid
// no-op cache, so callers never guard their lookups.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns nil when no address is configured.
func New(cfg *Config) *Cache {
	if cfg == nil || cfg.Addr == "" {
		return nil
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
		}),
		ttl: cfg.TTL,
	}
}

// Key builds a stable cache key from the given fingerprint parts.
func Key(parts ...[]byte) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write(part)
	}
	return "estimate:" + hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logging.FromContext(ctx).Debugf("cache get %s: %v", key, err)
		return nil, false
	}
	return raw, true
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, c.jitteredTTL()).Err(); err != nil {
		logging.FromContext(ctx).Debugf("cache set %s: %v", key, err)
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// jitteredTTL spreads expirations over an extra tenth of the TTL so entries
// written together do not expire together.
func (c *Cache) jitteredTTL() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	spread := uint32(c.ttl / 10 / time.Millisecond)
	if spread == 0 {
		return c.ttl
	}
	return c.ttl + time.Duration(fastrand.Uint32n(spread))*time.Millisecond
}
