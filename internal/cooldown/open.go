package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"GoldSentinel/internal/config"
)

// Open builds the store selected by cfg.Cooldown.Store. The returned func releases it.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }
	c := cfg.Cooldown
	switch c.Store {
	case "", "file":
		return NewFileStore(c.StateFile), noop, nil
	case "memory":
		return NewMemoryStore(), noop, nil
	case "sqlite":
		s, err := OpenSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", c.RedisAddr, err)
		}
		s := NewRedisStore(client, c.RedisKey)
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("cooldown store %q is not supported", c.Store)
}
