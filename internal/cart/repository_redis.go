package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session cart as one JSON value under cart:<key>.
// Every write refreshes the TTL so idle carts expire.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(key string) string {
	return "cart:" + key
}

func (s *RedisStore) GetCart(ctx context.Context, key string) (RawCart, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return RawCart{}, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeRaw(data)
}

func (s *RedisStore) SetCart(ctx context.Context, key string, cart map[string]int) error {
	if len(cart) == 0 {
		return s.ClearCart(ctx, key)
	}
	b, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(key), b, s.ttl).Err()
}

func (s *RedisStore) ClearCart(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKey(key)).Err()
}
