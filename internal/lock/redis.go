package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLocker serializes completion triggers across gateway instances with
// a SET NX lock per payment identifier. The TTL bounds how long a crashed
// holder can block other instances.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		retry:  50 * time.Millisecond,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf("payment_lock:%s", key)

	for {
		ok, err := l.client.SetNX(ctx, lockKey, "1", l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock for %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	release := func() {
		l.client.Del(context.Background(), lockKey)
	}
	return release, nil
}
