package task

import (
	"context"
	"time"
)

// PollingConfig — конфигурация polling задачи.
type PollingConfig struct {
	Name     string
	Interval time.Duration
	Retry    RetryPolicy
	Handler  Handler
}

// Polling вызывает обработчик с фиксированным интервалом.
//
// Состояния: Invoking → (Success | Retrying) → Sleeping → Invoking.
// Повторы выполняются внутри цикла и не складываются с интервалом:
// интервал отсчитывается после успешной попытки, поэтому долгие
// повторы растягивают период цикла.
//
// После исчерпания повторов Run возвращает *RetriesExhaustedError
// и задача завершается.
type Polling struct {
	name     string
	interval time.Duration
	retry    RetryPolicy
	handler  Handler
}

// NewPolling создаёт polling задачу.
func NewPolling(cfg PollingConfig) (*Polling, error) {
	if cfg.Name == "" {
		return nil, invalidConfig("", "name is required")
	}
	if cfg.Handler == nil {
		return nil, invalidConfig(cfg.Name, "handler is required")
	}
	if cfg.Interval <= 0 {
		return nil, invalidConfig(cfg.Name, "interval must be positive")
	}
	if err := cfg.Retry.validate(cfg.Name); err != nil {
		return nil, err
	}

	return &Polling{
		name:     cfg.Name,
		interval: cfg.Interval,
		retry:    cfg.Retry,
		handler:  cfg.Handler,
	}, nil
}

// Name возвращает имя задачи.
func (p *Polling) Name() string { return p.name }

// Interval возвращает интервал опроса.
func (p *Polling) Interval() time.Duration { return p.interval }

// Retry возвращает политику повторов.
func (p *Polling) Retry() RetryPolicy { return p.retry }

// Run выполняет циклы до отмены ctx или исчерпания повторов.
func (p *Polling) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		ok, err := p.retry.execute(ctx, p.name, p.handler)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if !sleep(ctx, p.interval) {
			return nil
		}
	}
	return nil
}
