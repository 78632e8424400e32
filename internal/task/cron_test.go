package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewCron_Validation(t *testing.T) {
	handler := func(context.Context) error { return nil }

	if _, err := NewCron(CronConfig{Expr: "* * * * *", Handler: handler}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty name, got %v", err)
	}
	if _, err := NewCron(CronConfig{Name: "c", Expr: "not a cron", Handler: handler}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for bad expression, got %v", err)
	}
	if _, err := NewCron(CronConfig{Name: "c", Expr: "* * * * *"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for nil handler, got %v", err)
	}
	if _, err := NewCron(CronConfig{Name: "c", Expr: "* * * * *", Retry: RetryPolicy{MaxRetries: -1}, Handler: handler}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for negative retries, got %v", err)
	}
}

func TestCron_Schedule(t *testing.T) {
	c, err := NewCron(CronConfig{
		Name:    "report",
		Expr:    "0 9 * * 1",
		Handler: func(context.Context) error { return nil },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Schedule() != "0 9 * * 1" {
		t.Errorf("expected schedule '0 9 * * 1', got %q", c.Schedule())
	}
}

func TestCron_RunsOnTick(t *testing.T) {
	var calls atomic.Int32

	c, err := NewCron(CronConfig{
		Name: "tick",
		Expr: "@every 1s",
		Handler: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := runFor(c, 1500*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() < 1 {
		t.Error("expected at least one tick")
	}
}

func TestCron_CancelBeforeTick(t *testing.T) {
	var calls atomic.Int32

	c, err := NewCron(CronConfig{
		Name: "hourly",
		Expr: "@hourly",
		Handler: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	if err := runFor(c, 50*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cron task should stop promptly on cancel")
	}
	if calls.Load() != 0 {
		t.Errorf("expected no calls, got %d", calls.Load())
	}
}

func TestCron_NoUpcomingTick(t *testing.T) {
	var calls atomic.Int32

	// 30 февраля: расписание никогда не срабатывает
	c, err := NewCron(CronConfig{
		Name: "never",
		Expr: "0 0 30 2 *",
		Handler: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	started := time.Now()
	if err := runFor(c, 200*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("handler invoked %d times, want 0", n)
	}
	if elapsed := time.Since(started); elapsed < 150*time.Millisecond {
		t.Errorf("expected Run to wait for cancellation, returned after %v", elapsed)
	}
}
