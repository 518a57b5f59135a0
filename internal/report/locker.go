package report

import (
	"context"
	"time"

	"github.com/sentineleye/dashboard/pkg/redis"
)

// RedisLocker adapts the Redis client to Locker.
type RedisLocker struct {
	Client *redis.Client
}

// Acquire takes key on Redis for ttl.
func (l RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lock, err := l.Client.Acquire(ctx, key, ttl)
	if err != nil {
		return nil, err
	}
	return lock, nil
}
