package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "idempotency:"

// IdempotencyRepository хранит ответы на запросы с заголовком Idempotency-Key.
type IdempotencyRepository struct {
	client redis.Cmdable
}

func NewIdempotencyRepository(client redis.Cmdable) *IdempotencyRepository {
	return &IdempotencyRepository{client: client}
}

// Get возвращает сохраненный ответ. Если ответа нет, возвращает domain.ErrRecordNotFound.
func (r *IdempotencyRepository) Get(ctx context.Context, key string) (*domain.CachedResponse, error) {
	val, err := r.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("[repository/getting idempotency key %s] %w", key, domain.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("[repository/getting idempotency key %s] %w: %s", key, domain.ErrUnknown, err.Error())
	}

	var resp domain.CachedResponse
	if unmarshalErr := json.Unmarshal(val, &resp); unmarshalErr != nil {
		return nil, fmt.Errorf("[repository/unmarshal cached response %s] %w: %s",
			key, domain.ErrUnknown, unmarshalErr.Error())
	}
	return &resp, nil
}

// Save сохраняет ответ на ttl. Если ответ по ключу уже есть, он не перезаписывается.
func (r *IdempotencyRepository) Save(
	ctx context.Context,
	key string,
	resp domain.CachedResponse,
	ttl time.Duration,
) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("[repository/marshal cached response %s] %w: %s", key, domain.ErrUnknown, err.Error())
	}
	if setErr := r.client.SetNX(ctx, idempotencyKeyPrefix+key, b, ttl).Err(); setErr != nil {
		return fmt.Errorf("[repository/saving idempotency key %s] %w: %s", key, domain.ErrUnknown, setErr.Error())
	}
	return nil
}
