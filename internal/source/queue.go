package source

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shaiso/Srota/internal/task"
)

// DefaultQueuePollInterval — период опроса пустой очереди.
const DefaultQueuePollInterval = 100 * time.Millisecond

// Queue — потокобезопасная FIFO очередь в памяти.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewQueue создаёт очередь с начальными элементами.
func NewQueue[T any](items ...T) *Queue[T] {
	return &Queue[T]{items: append([]T(nil), items...)}
}

// Enqueue добавляет элементы в конец очереди.
func (q *Queue[T]) Enqueue(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// TryDequeue извлекает первый элемент, если он есть.
func (q *Queue[T]) TryDequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// Len возвращает число элементов.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// QueueSource читает Queue, опрашивая её с фиксированным периодом.
// Несколько источников могут читать одну очередь: каждый элемент
// достаётся ровно одному.
type QueueSource[T any] struct {
	queue        *Queue[T]
	pollInterval time.Duration
	closed       atomic.Bool
}

// NewQueueSource создаёт источник. pollInterval <= 0 означает
// DefaultQueuePollInterval.
func NewQueueSource[T any](q *Queue[T], pollInterval time.Duration) *QueueSource[T] {
	if pollInterval <= 0 {
		pollInterval = DefaultQueuePollInterval
	}
	return &QueueSource[T]{queue: q, pollInterval: pollInterval}
}

// Read возвращает следующий элемент очереди.
func (s *QueueSource[T]) Read(ctx context.Context) (T, error) {
	var zero T

	for {
		if s.closed.Load() {
			return zero, task.ErrSourceClosed
		}
		if item, ok := s.queue.TryDequeue(); ok {
			return item, nil
		}

		timer := time.NewTimer(s.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// Close прекращает чтение.
func (s *QueueSource[T]) Close() error {
	s.closed.Store(true)
	return nil
}
