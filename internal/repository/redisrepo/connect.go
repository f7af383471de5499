package redisrepo

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Connect создает клиент redis и проверяет соединение.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	return client, nil
}
