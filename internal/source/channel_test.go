package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaiso/Srota/internal/task"
)

// --- Channel Tests ---

func TestChannel_ReadsInOrder(t *testing.T) {
	items := make(chan int, 3)
	items <- 1
	items <- 2
	items <- 3
	close(items)

	src := NewChannel(items)
	for want := 1; want <= 3; want++ {
		got, err := src.Read(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}

	if _, err := src.Read(context.Background()); !errors.Is(err, task.ErrSourceClosed) {
		t.Errorf("expected ErrSourceClosed for drained channel, got %v", err)
	}
}

func TestChannel_Cancel(t *testing.T) {
	src := NewChannel(make(chan string))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := src.Read(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestChannel_CancelledContextEmptyChannel(t *testing.T) {
	src := NewChannel(make(chan string, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Пустой канал и отменённый ctx: только ветка отмены готова
	if _, err := src.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected Canceled, got %v", err)
	}
}

func TestChannel_CloseUnblocksRead(t *testing.T) {
	src := NewChannel(make(chan string))

	done := make(chan error, 1)
	go func() {
		_, err := src.Read(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	src.Close()
	src.Close()

	select {
	case err := <-done:
		if !errors.Is(err, task.ErrSourceClosed) {
			t.Errorf("expected ErrSourceClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock Read")
	}
}

// --- Queue Tests ---

func TestQueue(t *testing.T) {
	q := NewQueue("a")
	q.Enqueue("b", "c")

	if q.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", q.Len())
	}
	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.TryDequeue()
		if !ok || got != want {
			t.Errorf("expected %q, got %q (ok=%v)", want, got, ok)
		}
	}
	if _, ok := q.TryDequeue(); ok {
		t.Error("empty queue should return false")
	}
}

func TestQueueSource_WaitsForItems(t *testing.T) {
	q := NewQueue[string]()
	src := NewQueueSource(q, 10*time.Millisecond)

	go func() {
		time.Sleep(30 * time.Millisecond)
		q.Enqueue("late")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := src.Read(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "late" {
		t.Errorf("expected 'late', got %q", got)
	}
}

func TestQueueSource_DefaultInterval(t *testing.T) {
	src := NewQueueSource(NewQueue[int](), 0)
	if src.pollInterval != DefaultQueuePollInterval {
		t.Errorf("expected %v, got %v", DefaultQueuePollInterval, src.pollInterval)
	}
}

func TestQueueSource_Closed(t *testing.T) {
	src := NewQueueSource(NewQueue(1), 0)
	src.Close()

	if _, err := src.Read(context.Background()); !errors.Is(err, task.ErrSourceClosed) {
		t.Errorf("expected ErrSourceClosed, got %v", err)
	}
}

func TestQueueSource_Cancel(t *testing.T) {
	src := NewQueueSource(NewQueue[int](), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	if _, err := src.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("poll sleep should be interrupted by cancellation")
	}
}
