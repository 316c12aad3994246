package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"triage-waitlist/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Redis keys for the waitlist read cache
	RedisWaitlistVersionKey  = "triage:waitlist:version"
	RedisWaitlistSnapshotKey = "triage:waitlist:sorted:"
	RedisPrioritiesKey       = "triage:priorities"

	// Timeout for individual Redis operations
	redisCacheTimeout = 2 * time.Second
)

// WaitlistCache is a best-effort read cache in front of the store.
// Errors are logged and reported as misses, never returned.
//
// The sorted waitlist is cached under a version number. Readers fetch the
// version before querying the store and write back under that version;
// InvalidateWaitlist bumps the version after a commit, so a snapshot read
// before the commit can never be served afterwards.
type WaitlistCache interface {
	GetWaitlist(ctx context.Context) (patients []entity.Patient, version int64, hit bool)
	SetWaitlist(ctx context.Context, version int64, patients []entity.Patient)
	InvalidateWaitlist(ctx context.Context)
	GetPriorities(ctx context.Context) ([]entity.Priority, bool)
	SetPriorities(ctx context.Context, priorities []entity.Priority)
}

// RedisWaitlistCache stores JSON snapshots in Redis with a TTL
type RedisWaitlistCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

func NewRedisWaitlistCache(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *RedisWaitlistCache {
	return &RedisWaitlistCache{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

func (c *RedisWaitlistCache) GetWaitlist(ctx context.Context) ([]entity.Patient, int64, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	version, err := c.redisClient.Get(ctx, RedisWaitlistVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warnf("Failed to read waitlist cache version: %+v", err)
		return nil, 0, false
	}

	var patients []entity.Patient
	if !c.getJSON(ctx, waitlistSnapshotKey(version), &patients) {
		return nil, version, false
	}
	return patients, version, true
}

func (c *RedisWaitlistCache) SetWaitlist(ctx context.Context, version int64, patients []entity.Patient) {
	c.setJSON(ctx, waitlistSnapshotKey(version), patients)
}

func (c *RedisWaitlistCache) InvalidateWaitlist(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisCacheTimeout)
	defer cancel()

	if err := c.redisClient.Incr(ctx, RedisWaitlistVersionKey).Err(); err != nil {
		c.log.Warnf("Failed to invalidate waitlist cache: %+v", err)
	}
}

func (c *RedisWaitlistCache) GetPriorities(ctx context.Context) ([]entity.Priority, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	var priorities []entity.Priority
	if !c.getJSON(ctx, RedisPrioritiesKey, &priorities) {
		return nil, false
	}
	return priorities, true
}

func (c *RedisWaitlistCache) SetPriorities(ctx context.Context, priorities []entity.Priority) {
	c.setJSON(ctx, RedisPrioritiesKey, priorities)
}

func (c *RedisWaitlistCache) getJSON(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("Failed to read cache key %s: %+v", key, err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warnf("Failed to decode cache key %s: %+v", key, err)
		return false
	}
	return true
}

func (c *RedisWaitlistCache) setJSON(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warnf("Failed to encode cache key %s: %+v", key, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	if err := c.redisClient.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warnf("Failed to write cache key %s: %+v", key, err)
	}
}

func waitlistSnapshotKey(version int64) string {
	return fmt.Sprintf("%s%d", RedisWaitlistSnapshotKey, version)
}

// NoopWaitlistCache is used when Redis is disabled; every read misses.
type NoopWaitlistCache struct{}

func (NoopWaitlistCache) GetWaitlist(context.Context) ([]entity.Patient, int64, bool) {
	return nil, 0, false
}

func (NoopWaitlistCache) SetWaitlist(context.Context, int64, []entity.Patient) {}

func (NoopWaitlistCache) InvalidateWaitlist(context.Context) {}

func (NoopWaitlistCache) GetPriorities(context.Context) ([]entity.Priority, bool) {
	return nil, false
}

func (NoopWaitlistCache) SetPriorities(context.Context, []entity.Priority) {}
