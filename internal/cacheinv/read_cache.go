package cacheinv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"clinic-erp-be/internal/pkg/logger"
)

// ReadCache holds read-path results per entity and tenant: a process-local
// go-cache layer in front of an optional shared redis layer. Keys follow
// "<entity_type>:<tenant>:<suffix>" so whole entities can be dropped by
// prefix.
type ReadCache struct {
	local *cache.Cache
	rdb   *redis.Client
	ttl   time.Duration
	log   logger.ILogger
}

func NewReadCache(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *ReadCache {
	return &ReadCache{
		local: cache.New(ttl, 2*ttl),
		rdb:   rdb,
		ttl:   ttl,
		log:   log,
	}
}

func Key(entityType, tenant, suffix string) string {
	return fmt.Sprintf("%s:%s:%s", entityType, tenant, suffix)
}

// Get unmarshals a cached value into dest, trying local then redis.
func (c *ReadCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if raw, found := c.local.Get(key); found {
		if err := json.Unmarshal(raw.([]byte), dest); err == nil {
			return true
		}
	}
	if c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	c.local.Set(key, raw, cache.DefaultExpiration)
	return true
}

func (c *ReadCache) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.local.Set(key, raw, cache.DefaultExpiration)
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("cacheinv", "redis set failed", map[string]interface{}{
				"key": key, "error": err.Error(),
			})
		}
	}
}

// DropEntity removes every key for one entity type, local and shared.
func (c *ReadCache) DropEntity(ctx context.Context, entityType string) {
	prefix := entityType + ":"
	for key := range c.local.Items() {
		if strings.HasPrefix(key, prefix) {
			c.local.Delete(key)
		}
	}
	if c.rdb == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("cacheinv", "redis scan failed", map[string]interface{}{
			"entity_type": entityType, "error": err.Error(),
		})
	}
}
