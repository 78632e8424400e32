package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shaiso/Srota/internal/task"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestNewRedisList_Validation(t *testing.T) {
	_, client := newTestRedis(t)

	if _, err := NewRedisList(RedisListConfig{Key: "k"}); !errors.Is(err, task.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for nil client, got %v", err)
	}
	if _, err := NewRedisList(RedisListConfig{Client: client}); !errors.Is(err, task.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty key, got %v", err)
	}
}

func TestRedisList_ReadsInOrder(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	if err := PushRedis(ctx, client, "events", "Event1", "Event2", "Event3"); err != nil {
		t.Fatalf("push: %v", err)
	}

	src, err := NewRedisList(RedisListConfig{Client: client, Key: "events"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Event1", "Event2", "Event3"} {
		got, err := src.Read(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}

func TestRedisList_BlocksUntilPush(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	src, err := NewRedisList(RedisListConfig{Client: client, Key: "late"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		PushRedis(ctx, client, "late", "hello")
	}()

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	got, err := src.Read(readCtx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
}

func TestRedisList_Closed(t *testing.T) {
	_, client := newTestRedis(t)

	src, err := NewRedisList(RedisListConfig{Client: client, Key: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src.Close()

	if _, err := src.Read(context.Background()); !errors.Is(err, task.ErrSourceClosed) {
		t.Errorf("expected ErrSourceClosed, got %v", err)
	}
}

func TestRedisList_Cancel(t *testing.T) {
	_, client := newTestRedis(t)

	src, err := NewRedisList(RedisListConfig{Client: client, Key: "empty"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() {
		_, err := src.Read(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Read did not return after cancel")
	}
}
