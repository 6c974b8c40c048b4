package countstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisCountPrefix string = "modflag/count/"

// RedisCountStore shares counters across service instances, so rate limits
// hold under horizontal scaling. Day buckets expire after 48 hours.
type RedisCountStore struct {
	Client *redis.Client
}

func NewRedisCountStore(redisURL string) (*RedisCountStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisCountStore{Client: rdb}, nil
}

func (s *RedisCountStore) GetDayCount(ctx context.Context, name, val string) (int, error) {
	key := redisCountPrefix + dayBucket(name, val)
	c, err := s.Client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return c, nil
}

func (s *RedisCountStore) Increment(ctx context.Context, name, val string) error {
	key := redisCountPrefix + dayBucket(name, val)

	// INCR and EXPIRE in a single round-trip
	multi := s.Client.Pipeline()
	multi.Incr(ctx, key)
	multi.Expire(ctx, key, 48*time.Hour)
	_, err := multi.Exec(ctx)
	return err
}
