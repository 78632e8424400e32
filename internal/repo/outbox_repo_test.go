package repo

import (
	"context"
	"errors"
	"testing"
)

func TestOutboxRepo_Validation(t *testing.T) {
	r := NewOutboxRepo(nil)

	if _, err := r.Enqueue(context.Background(), "", map[string]any{}); !errors.Is(err, ErrEmptyTopic) {
		t.Errorf("expected ErrEmptyTopic, got %v", err)
	}
	if _, err := r.Claim(context.Background(), 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestOutboxRepo_EnqueueBadPayload(t *testing.T) {
	r := NewOutboxRepo(nil)

	if _, err := r.Enqueue(context.Background(), "orders", make(chan int)); err == nil {
		t.Error("expected marshal error")
	}
}
