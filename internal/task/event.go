package task

import (
	"context"
	"fmt"

	"github.com/shaiso/Srota/internal/telemetry"
)

// EventConfig — конфигурация event задачи.
type EventConfig[T any] struct {
	Name    string
	Source  SourceFactory[T]
	Handler EventHandler[T]
}

// Event читает элементы из источника и вызывает обработчик на каждый.
//
// Источник создаётся фабрикой один раз на запуск и закрывается при
// любом выходе из Run: по отмене, по концу цикла или по ошибке.
// Элементы обрабатываются строго по одному, в порядке чтения.
type Event[T any] struct {
	name    string
	factory SourceFactory[T]
	handler EventHandler[T]
}

// NewEvent создаёт event задачу.
func NewEvent[T any](cfg EventConfig[T]) (*Event[T], error) {
	if cfg.Name == "" {
		return nil, invalidConfig("", "name is required")
	}
	if cfg.Source == nil {
		return nil, invalidConfig(cfg.Name, "source factory is required")
	}
	if cfg.Handler == nil {
		return nil, invalidConfig(cfg.Name, "handler is required")
	}

	return &Event[T]{
		name:    cfg.Name,
		factory: cfg.Source,
		handler: cfg.Handler,
	}, nil
}

// Name возвращает имя задачи.
func (e *Event[T]) Name() string { return e.name }

// Run читает и обрабатывает элементы до отмены ctx или ошибки.
func (e *Event[T]) Run(ctx context.Context) error {
	source, err := e.factory()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if source == nil {
		return fmt.Errorf("%w: factory returned nil source", ErrSourceUnavailable)
	}

	logger := telemetry.FromContext(ctx)
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn("failed to close event source", "error", err)
		}
	}()

	for ctx.Err() == nil {
		item, err := source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}

		err = call(ctx, e.name, func(ctx context.Context) error {
			return e.handler(ctx, item)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrHandlerFailed, err)
		}
	}
	return nil
}
