package task

import (
	"context"
	"sync"
	"time"
)

// sliceSource — тестовый источник: отдаёт элементы по порядку,
// затем блокируется до отмены.
type sliceSource struct {
	mu     sync.Mutex
	items  []string
	closed bool
	closes int
}

func newSliceSource(items ...string) *sliceSource {
	return &sliceSource{items: items}
}

func (s *sliceSource) Read(ctx context.Context) (string, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return "", ErrSourceClosed
		}
		if len(s.items) > 0 {
			item := s.items[0]
			s.items = s.items[1:]
			s.mu.Unlock()
			return item, nil
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (s *sliceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.closes++
	return nil
}

func (s *sliceSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// runFor запускает задачу и отменяет её через d. Возвращает результат Run.
func runFor(def Definition, d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return def.Run(ctx)
}

// recorder — потокобезопасный список.
type recorder[T any] struct {
	mu    sync.Mutex
	items []T
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, v)
}

func (r *recorder[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}
