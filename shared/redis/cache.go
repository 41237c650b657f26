package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/demobank/microservices/shared/logger"
)

// versionTTL bounds how long an invalidation marker outlives its entry.
const versionTTL = 24 * time.Hour

// ViewCache is a generic JSON-backed Redis cache for entity snapshots.
//
// Entries are filled only by readers and dropped by writers. Every
// invalidation bumps a per-key version; a reader records the version before
// loading from the store and its fill is discarded if the version moved in
// the meantime, so a slow read can never put back a snapshot older than the
// last write.
type ViewCache[T any] struct {
	client *goredis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewViewCache creates a ViewCache backed by the provided Redis client.
// A zero ttl keeps entries until they are invalidated.
func NewViewCache[T any](client *goredis.Client, ttl time.Duration, log *zap.Logger) *ViewCache[T] {
	return &ViewCache[T]{client: client, ttl: ttl, log: logger.OrNop(log)}
}

func versionKey(key string) string {
	return key + ":version"
}

// Get retrieves and unmarshals a value from Redis.
// Returns (nil, false) on any miss or deserialisation error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("view cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		c.log.Warn("view cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &v, true
}

// Version returns the invalidation counter of key, to be passed to Fill.
// ok is false when Redis cannot be read; the caller should then skip the fill.
func (c *ViewCache[T]) Version(ctx context.Context, key string) (version int64, ok bool) {
	version, err := c.client.Get(ctx, versionKey(key)).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		c.log.Warn("view cache version read failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return version, true
}

// Fill stores value under key if the key is absent and has not been
// invalidated since version was read. Failures are logged, never returned.
func (c *ViewCache[T]) Fill(ctx context.Context, key string, version int64, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("view cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}

	vkey := versionKey(key)
	err = c.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.SetNX(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, vkey)
	switch {
	case err == nil:
	case errors.Is(err, goredis.TxFailedErr):
		c.log.Debug("view cache fill lost to a concurrent write", zap.String("key", key))
	default:
		c.log.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops key and bumps its version so in-flight fills are discarded.
func (c *ViewCache[T]) Invalidate(ctx context.Context, key string) {
	vkey := versionKey(key)
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, vkey)
		pipe.Expire(ctx, vkey, versionTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		c.log.Warn("view cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
