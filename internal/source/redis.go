package source

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shaiso/Srota/internal/task"
)

// DefaultRedisBlockTimeout — таймаут одного BLPOP.
const DefaultRedisBlockTimeout = time.Second

// RedisListConfig — конфигурация RedisList.
type RedisListConfig struct {
	Client redis.Cmdable
	Key    string

	// BlockTimeout — сколько ждёт один BLPOP (минимум 1s).
	// Ограничивает задержку реакции на отмену контекста.
	BlockTimeout time.Duration
}

// RedisList читает элементы из списка Redis (BLPOP, голова списка).
// Производитель добавляет элементы через RPUSH, см. PushRedis.
type RedisList struct {
	client       redis.Cmdable
	key          string
	blockTimeout time.Duration
	closed       atomic.Bool
}

var _ task.EventSource[string] = (*RedisList)(nil)

// NewRedisList создаёт источник.
func NewRedisList(cfg RedisListConfig) (*RedisList, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("%w: redis source: client is required", task.ErrInvalidConfig)
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("%w: redis source: key is required", task.ErrInvalidConfig)
	}

	timeout := cfg.BlockTimeout
	if timeout < time.Second {
		timeout = DefaultRedisBlockTimeout
	}

	return &RedisList{
		client:       cfg.Client,
		key:          cfg.Key,
		blockTimeout: timeout,
	}, nil
}

// Read ждёт следующий элемент списка.
func (r *RedisList) Read(ctx context.Context) (string, error) {
	for {
		if r.closed.Load() {
			return "", task.ErrSourceClosed
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		res, err := r.client.BLPop(ctx, r.blockTimeout, r.key).Result()
		if errors.Is(err, redis.Nil) {
			// Таймаут BLPOP — список пуст
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("blpop %s: %w", r.key, err)
		}

		// res = [key, value]
		if len(res) != 2 {
			return "", fmt.Errorf("blpop %s: unexpected reply length %d", r.key, len(res))
		}
		return res[1], nil
	}
}

// Close прекращает чтение. Клиент не закрывается.
func (r *RedisList) Close() error {
	r.closed.Store(true)
	return nil
}

// PushRedis добавляет элементы в конец списка key.
func PushRedis(ctx context.Context, client redis.Cmdable, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	if err := client.RPush(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	return nil
}
