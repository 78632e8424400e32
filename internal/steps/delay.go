package steps

import (
	"context"
	"time"

	"github.com/shaiso/Srota/internal/task"
)

// Delay возвращает шаг, который ждёт d.
// Отмена контекста прерывает ожидание.
func Delay(d time.Duration) task.Step {
	return func(ctx context.Context) error {
		if d <= 0 {
			return ctx.Err()
		}

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}
