package builder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shaiso/Srota/internal/sse"
	"github.com/shaiso/Srota/internal/task"
	"github.com/shaiso/Srota/internal/telemetry"
	"github.com/shaiso/Srota/internal/worker"
)

func noop(context.Context) error { return nil }

func TestBuilder_RegistersAllKinds(t *testing.T) {
	items := make(chan string)
	w, err := AddEvent(New().WithLogger(telemetry.DiscardLogger()), "events",
		func() (task.EventSource[string], error) { return &chanSource{items: items}, nil }).
		Do(func(context.Context, string) error { return nil }).
		AddPolling("poll", time.Second).WithRetry(1, time.Millisecond).Do(noop).
		AddPipeline("pipe").Then(noop).Then(noop).Every(time.Second).
		AddSSE("stream", "http://localhost:1/events").WithHeader("Authorization", "Bearer x").Do(func(context.Context, sse.Event) error { return nil }).
		AddCron("report", "0 * * * *").InTimezone("UTC").Do(noop).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"events", "poll", "pipe", "stream", "report"}
	got := w.Tasks()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestBuilder_AccumulatesErrors(t *testing.T) {
	_, err := New().
		AddPolling("", time.Second).Do(noop).
		AddPipeline("pipe").Every(0).
		AddCron("cron", "bad expr").Do(noop).
		AddPolling("ok", time.Second).Do(noop).
		Build()

	if !errors.Is(err, task.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 3 {
		t.Errorf("expected 3 accumulated errors, got %v", err)
	}
}

func TestBuilder_DuplicateNames(t *testing.T) {
	_, err := New().
		AddPolling("same", time.Second).Do(noop).
		AddPolling("same", time.Second).Do(noop).
		Build()

	if !errors.Is(err, worker.ErrDuplicateTaskName) {
		t.Errorf("expected ErrDuplicateTaskName, got %v", err)
	}
}

func TestBuilder_PollingDefaults(t *testing.T) {
	b := New()
	pb := b.AddPolling("defaults", time.Second)

	if pb.cfg.Retry.MaxRetries != 3 || pb.cfg.Retry.RetryDelay != 5*time.Second {
		t.Errorf("expected default retry 3/5s, got %d/%v", pb.cfg.Retry.MaxRetries, pb.cfg.Retry.RetryDelay)
	}
}

func TestBuilder_OnErrorWired(t *testing.T) {
	var mu sync.Mutex
	var names []string

	w, err := New().
		WithLogger(telemetry.DiscardLogger()).
		OnError(func(err error, name string) {
			mu.Lock()
			defer mu.Unlock()
			names = append(names, name)
		}).
		AddPolling("failing", 10*time.Millisecond).WithRetry(0, 0).Do(func(context.Context) error {
			return errors.New("Test error")
		}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Close()

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(names) != 1 || names[0] != "failing" {
		t.Errorf("expected one error from 'failing', got %v", names)
	}
}

func TestBuilder_CombinedRun(t *testing.T) {
	var polls, steps, events atomic.Int32
	items := make(chan string, 2)
	items <- "a"
	items <- "b"

	b := New().WithLogger(telemetry.DiscardLogger()).
		AddPolling("poll", 20*time.Millisecond).Do(func(context.Context) error {
		polls.Add(1)
		return nil
	}).
		AddPipeline("pipe").Then(func(context.Context) error {
		steps.Add(1)
		return nil
	}).Every(20 * time.Millisecond)

	w, err := AddEvent(b, "events", func() (task.EventSource[string], error) {
		return &chanSource{items: items}, nil
	}).Do(func(context.Context, string) error {
		events.Add(1)
		return nil
	}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Close()

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if polls.Load() < 2 || steps.Load() < 2 {
		t.Errorf("expected repeated polling and pipeline runs, got %d/%d", polls.Load(), steps.Load())
	}
	if events.Load() != 2 {
		t.Errorf("expected 2 events, got %d", events.Load())
	}
}

// chanSource — источник поверх канала.
type chanSource struct {
	items chan string
}

func (c *chanSource) Read(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case item := <-c.items:
		return item, nil
	}
}

func (c *chanSource) Close() error { return nil }
