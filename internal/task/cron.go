package task

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Srota/internal/scheduler"
	"github.com/shaiso/Srota/internal/telemetry"
)

// CronConfig — конфигурация cron задачи.
type CronConfig struct {
	Name     string
	Expr     string
	Timezone string
	Retry    RetryPolicy
	Handler  Handler
}

// Cron вызывает обработчик в моменты, заданные cron-выражением.
//
// Первый запуск — на первом тике после старта. Повторы работают как у
// Polling: внутри тика, с исчерпанием завершают задачу. Пропущенные
// тики (обработчик работал дольше периода) не догоняются.
type Cron struct {
	name     string
	schedule *scheduler.Schedule
	retry    RetryPolicy
	handler  Handler
}

// NewCron создаёт cron задачу.
func NewCron(cfg CronConfig) (*Cron, error) {
	if cfg.Name == "" {
		return nil, invalidConfig("", "name is required")
	}
	if cfg.Handler == nil {
		return nil, invalidConfig(cfg.Name, "handler is required")
	}
	if err := cfg.Retry.validate(cfg.Name); err != nil {
		return nil, err
	}

	schedule, err := scheduler.Parse(cfg.Expr, cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, cfg.Name, err)
	}

	return &Cron{
		name:     cfg.Name,
		schedule: schedule,
		retry:    cfg.Retry,
		handler:  cfg.Handler,
	}, nil
}

// Name возвращает имя задачи.
func (c *Cron) Name() string { return c.name }

// Schedule возвращает выражение расписания.
func (c *Cron) Schedule() string { return c.schedule.String() }

// Run ждёт тики расписания и вызывает обработчик.
// Если следующего тика нет, задача простаивает до отмены ctx.
func (c *Cron) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		now := time.Now()
		next, ok := c.schedule.Next(now)
		if !ok {
			telemetry.FromContext(ctx).Warn("cron schedule has no upcoming ticks", "schedule", c.schedule.String())
			<-ctx.Done()
			return nil
		}

		if !sleep(ctx, next.Sub(now)) {
			return nil
		}

		ok, err := c.retry.execute(ctx, c.name, c.handler)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}
