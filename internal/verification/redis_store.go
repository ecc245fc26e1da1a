package verification

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "market:verification:"

type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(addr string, password string, db int) *RedisCodeStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCodeStore{client: client}
}

func (s *RedisCodeStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisCodeStore) Close() error {
	return s.client.Close()
}

// Put stores code under the phone's key. A zero ttl keeps it until the next
// Put for the same phone.
func (s *RedisCodeStore) Put(ctx context.Context, phone string, code string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, redisKeyPrefix+phone, code, ttl).Err()
}

func (s *RedisCodeStore) Get(ctx context.Context, phone string) (string, bool, error) {
	code, err := s.client.Get(ctx, redisKeyPrefix+phone).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

var _ CodeStore = (*RedisCodeStore)(nil)
