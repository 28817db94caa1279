package cache

import (
	"context"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/platform/obs"
	"convoy-route-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRouteCache caches successful geometry provider responses keyed on the
// full request tuple (endpoints, envelope hints, variant).
//
// A nil cache is a valid no-op: every Get misses and every Put succeeds, so
// callers don't need to special-case a disabled cache.
type RedisRouteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, TTL: ttl}
}

// RouteKey builds the cache key for one provider request. Coordinates are
// truncated to 5 decimals (~1 m) so jitter in request input doesn't defeat
// caching.
func RouteKey(start, end domain.Coordinates, hints ports.RouteHints, variant domain.RouteVariant) string {
	return fmt.Sprintf(
		"route:%s:%.5f,%.5f:%.5f,%.5f:h%d:w%d:a%d:avoid=%t",
		variant,
		start.Lat, start.Lon,
		end.Lat, end.Lon,
		hints.MaxHeightCm, hints.TotalWeightKg, hints.MaxAxleLoadKg,
		hints.AvoidRestrictions,
	)
}

// Get fetches cached segments. The second return reports a hit.
func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ []ports.RawSegment, _ bool, err error) {
	if c == nil || c.Client == nil {
		return nil, false, nil
	}

	defer obs.Time(ctx, "route.cache.Get")(&err)

	payload, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	var segments []ports.RawSegment
	if err := json.Unmarshal(payload, &segments); err != nil {
		return nil, false, fmt.Errorf("get route cache: decode entry: %w", err)
	}

	return segments, true, nil
}

// Put stores segments under the key with the cache TTL.
func (c *RedisRouteCache) Put(ctx context.Context, key string, segments []ports.RawSegment) error {
	if c == nil || c.Client == nil {
		return nil
	}

	if len(segments) == 0 {
		return errors.New("insert route cache: segment list must not be empty")
	}

	payload, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("insert route cache: encode entry: %w", err)
	}

	if err := c.Client.Set(ctx, key, payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	return nil
}
