package task

import (
	"context"
	"time"

	"github.com/shaiso/Srota/internal/telemetry"
)

// Definition — зарегистрированная в worker'е задача.
//
// Run блокируется до отмены ctx или неустранимой ошибки.
// При отмене Run возвращает nil; любая другая ошибка считается
// необработанной и передаётся supervisor'у worker'а.
type Definition interface {
	Name() string
	Run(ctx context.Context) error
}

// Handler — обработчик polling и cron задач.
type Handler func(ctx context.Context) error

// Step — один шаг pipeline.
type Step func(ctx context.Context) error

// EventHandler — обработчик одного события.
type EventHandler[T any] func(ctx context.Context, item T) error

// EventSource — pull-источник событий.
//
// Read блокируется до появления элемента или отмены ctx (тогда
// возвращает ctx.Err()). После Close Read возвращает ErrSourceClosed.
// Close идемпотентен.
type EventSource[T any] interface {
	Read(ctx context.Context) (T, error)
	Close() error
}

// SourceFactory создаёт новый источник при каждом запуске задачи.
type SourceFactory[T any] func() (EventSource[T], error)

// sleep ждёт d или отмены ctx. Возвращает false, если ctx отменён.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// call вызывает fn с учётом метрик.
func call(ctx context.Context, name string, fn func(context.Context) error) error {
	started := time.Now()
	err := fn(ctx)
	telemetry.ObserveHandler(name, started, err)
	return err
}
