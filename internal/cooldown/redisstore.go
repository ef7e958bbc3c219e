package cooldown

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"GoldSentinel/internal/model"
)

// RedisStore keeps the state under one JSON key.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (model.CooldownState, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.CooldownState{}, nil
	}
	if err != nil {
		return model.CooldownState{}, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return decodeState(data)
}

func (s *RedisStore) Save(ctx context.Context, state model.CooldownState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
