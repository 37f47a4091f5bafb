package kit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindowStore shares fixed-window counters between API instances.
// Each window gets its own key which expires once the window is over.
type RedisWindowStore struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisWindowStore(rdb redis.Cmdable, prefix string) *RedisWindowStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisWindowStore{rdb: rdb, prefix: prefix}
}

func (s *RedisWindowStore) Incr(ctx context.Context, key string, windowStart time.Time, window time.Duration) (int64, error) {
	k := fmt.Sprintf("%s:%s:%d", s.prefix, key, windowStart.Unix())

	var incr *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", k, err)
	}
	return incr.Val(), nil
}
