package directory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aussiebroadwan/crm/pkg/metricsx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix       = "crm:dir:"
	DefaultCacheTTL = 10 * time.Minute
)

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// RedisCache fronts another Directory with a read-through cache. Redis
// failures are logged and the lookup falls through to next, so an outage
// costs latency but never a login.
type RedisCache struct {
	rdb  *redis.Client
	next Directory
	ttl  time.Duration
}

func NewRedisCache(rdb *redis.Client, next Directory, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{rdb: rdb, next: next, ttl: ttl}
}

func (c *RedisCache) DepartmentName(ctx context.Context, id int64) (string, error) {
	return c.lookup(ctx, "dept", id, c.next.DepartmentName)
}

func (c *RedisCache) RoleName(ctx context.Context, id int64) (string, error) {
	return c.lookup(ctx, "role", id, c.next.RoleName)
}

func (c *RedisCache) lookup(
	ctx context.Context,
	kind string,
	id int64,
	load func(context.Context, int64) (string, error),
) (string, error) {
	if id <= 0 {
		return "", nil
	}
	log := slogx.FromContext(ctx)
	key := cacheKey(kind, id)

	name, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		metricsx.ObserveDirectory("cache")
		return name, nil
	case !errors.Is(err, redis.Nil):
		log.Warn("directory cache read failed", "key", key, "err", err)
	}

	name, err = load(ctx, id)
	if err != nil {
		return "", err
	}

	// Unknown ids are not cached so a row created later shows up at once.
	if name == "" {
		return "", nil
	}
	if err := c.rdb.Set(ctx, key, name, c.ttl).Err(); err != nil {
		log.Warn("directory cache write failed", "key", key, "err", err)
	}
	return name, nil
}

func cacheKey(kind string, id int64) string {
	return keyPrefix + kind + ":" + strconv.FormatInt(id, 10)
}
