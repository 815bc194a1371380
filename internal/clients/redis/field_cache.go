package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

const fieldKeyPrefix = "fields:"

// FieldCache is a read-through cache in front of a FieldStore. Redis
// failures degrade to the inner store; inner store errors are returned
// unchanged and never cached.
type FieldCache struct {
	log   *logger.Logger
	rdb   goredis.UniversalClient
	inner templating.FieldStore
	ttl   time.Duration
}

func NewFieldCache(log *logger.Logger, rdb goredis.UniversalClient, inner templating.FieldStore, ttl time.Duration) *FieldCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &FieldCache{
		log:   log.With("client", "RedisFieldCache"),
		rdb:   rdb,
		inner: inner,
		ttl:   ttl,
	}
}

func (c *FieldCache) ListFields(ctx context.Context, moduleName string, filter templating.FieldFilter) ([]*types.FieldDefinition, error) {
	key := cacheKey(moduleName, filter)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var out []*types.FieldDefinition
		if jerr := json.Unmarshal(raw, &out); jerr == nil {
			if out == nil {
				out = []*types.FieldDefinition{}
			}
			return out, nil
		}
		c.log.Warn("Discarding undecodable field cache entry", "key", key)
	} else if !errors.Is(err, goredis.Nil) {
		c.log.Warn("Field cache read failed", "key", key, "error", err)
	}

	out, err := c.inner.ListFields(ctx, moduleName, filter)
	if err != nil {
		return nil, err
	}
	if raw, jerr := json.Marshal(out); jerr == nil {
		if serr := c.rdb.Set(ctx, key, raw, c.ttl).Err(); serr != nil {
			c.log.Warn("Field cache write failed", "key", key, "error", serr)
		}
	}
	return out, nil
}

// Invalidate drops every cached listing of moduleName.
func (c *FieldCache) Invalidate(ctx context.Context, moduleName string) error {
	pattern := fieldKeyPrefix + moduleName + ":*"
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func cacheKey(moduleName string, f templating.FieldFilter) string {
	return fieldKeyPrefix + moduleName + ":" + flag(f.AIEnabled) + flag(f.VariableEnabled) + flag(f.Visible)
}

func flag(b *bool) string {
	if b == nil {
		return "-"
	}
	return strconv.FormatBool(*b)[:1]
}
