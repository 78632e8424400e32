package task

import (
	"context"
	"fmt"
	"time"
)

// PipelineConfig — конфигурация pipeline задачи.
type PipelineConfig struct {
	Name     string
	Steps    []Step
	Interval time.Duration
}

// Pipeline выполняет шаги по порядку, затем спит Interval и повторяет.
//
// Шаг не начинается, пока не завершился предыдущий. Отмена
// проверяется перед каждым шагом: оставшиеся шаги прохода
// пропускаются. Ошибка шага сразу завершает задачу.
type Pipeline struct {
	name     string
	steps    []Step
	interval time.Duration
}

// NewPipeline создаёт pipeline задачу. Список шагов копируется.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Name == "" {
		return nil, invalidConfig("", "name is required")
	}
	if cfg.Interval <= 0 {
		return nil, invalidConfig(cfg.Name, "interval must be positive")
	}
	for i, step := range cfg.Steps {
		if step == nil {
			return nil, invalidConfig(cfg.Name, fmt.Sprintf("step %d is nil", i+1))
		}
	}

	steps := make([]Step, len(cfg.Steps))
	copy(steps, cfg.Steps)

	return &Pipeline{
		name:     cfg.Name,
		steps:    steps,
		interval: cfg.Interval,
	}, nil
}

// Name возвращает имя задачи.
func (p *Pipeline) Name() string { return p.name }

// Len возвращает количество шагов.
func (p *Pipeline) Len() int { return len(p.steps) }

// Run выполняет проходы до отмены ctx или ошибки шага.
func (p *Pipeline) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if err := p.pass(ctx); err != nil {
			return err
		}

		if !sleep(ctx, p.interval) {
			return nil
		}
	}
	return nil
}

// pass выполняет один проход pipeline.
func (p *Pipeline) pass(ctx context.Context) error {
	for i, step := range p.steps {
		if ctx.Err() != nil {
			return nil
		}

		if err := call(ctx, p.name, step); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("step %d: %w: %w", i+1, ErrHandlerFailed, err)
		}
	}
	return nil
}
