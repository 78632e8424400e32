package source

import (
	"context"
	"sync"

	"github.com/shaiso/Srota/internal/task"
)

// Channel читает элементы из Go канала.
// Закрытый канал означает конец источника.
type Channel[T any] struct {
	items <-chan T

	once sync.Once
	done chan struct{}
}

var _ task.EventSource[string] = (*Channel[string])(nil)

// NewChannel создаёт источник поверх items.
func NewChannel[T any](items <-chan T) *Channel[T] {
	return &Channel[T]{items: items, done: make(chan struct{})}
}

// Read ждёт следующий элемент.
func (c *Channel[T]) Read(ctx context.Context) (T, error) {
	var zero T

	select {
	case <-c.done:
		return zero, task.ErrSourceClosed
	default:
	}

	// Если ctx уже отменён и в канале есть элемент, select выбирает
	// случайно: элемент может остаться непрочитанным.
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-c.done:
		return zero, task.ErrSourceClosed
	case item, ok := <-c.items:
		if !ok {
			return zero, task.ErrSourceClosed
		}
		return item, nil
	}
}

// Close прекращает чтение. Канал items не закрывается.
func (c *Channel[T]) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}
