package task

import (
	"context"
	"time"

	"github.com/shaiso/Srota/internal/telemetry"
)

// RetryPolicy — политика повторов обработчика внутри одного цикла.
type RetryPolicy struct {
	// MaxRetries — число повторов после первой попытки (>= 0).
	MaxRetries int

	// RetryDelay — пауза перед каждым повтором.
	RetryDelay time.Duration
}

// Значения по умолчанию (как у builder'а).
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 5 * time.Second
)

// DefaultRetryPolicy возвращает политику по умолчанию.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: DefaultMaxRetries, RetryDelay: DefaultRetryDelay}
}

func (p RetryPolicy) validate(name string) error {
	if p.MaxRetries < 0 {
		return invalidConfig(name, "max retries must be non-negative")
	}
	if p.RetryDelay < 0 {
		return invalidConfig(name, "retry delay must be non-negative")
	}
	return nil
}

// execute выполняет один цикл: первая попытка плюс до MaxRetries повторов.
//
// Возвращает (false, nil), если ctx отменён во время цикла.
// После исчерпания повторов возвращает *RetriesExhaustedError.
func (p RetryPolicy) execute(ctx context.Context, name string, handler Handler) (bool, error) {
	logger := telemetry.FromContext(ctx)

	for retries := 0; ; retries++ {
		err := call(ctx, name, handler)
		if err == nil {
			return true, nil
		}

		// Ошибка из-за отмены — не ошибка
		if ctx.Err() != nil {
			return false, nil
		}

		if retries >= p.MaxRetries {
			return false, &RetriesExhaustedError{Retries: retries, Err: err}
		}

		telemetry.TaskRetries.WithLabelValues(name).Inc()
		logger.Warn("handler failed, retrying",
			"retry", retries+1,
			"max_retries", p.MaxRetries,
			"delay", p.RetryDelay,
			"error", err,
		)

		if !sleep(ctx, p.RetryDelay) {
			return false, nil
		}
	}
}
