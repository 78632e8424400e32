package steps

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Srota/internal/task"
)

// Parallel возвращает шаг, выполняющий вложенные шаги одновременно.
//
// Шаг завершается, когда завершились все вложенные. Первая ошибка
// отменяет контекст остальных и возвращается как результат.
func Parallel(branches ...task.Step) (task.Step, error) {
	for i, step := range branches {
		if step == nil {
			return nil, fmt.Errorf("%w: parallel: branch %d is nil", ErrInvalidConfig, i)
		}
	}
	branches = append([]task.Step(nil), branches...)

	return func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		for i, step := range branches {
			i, step := i, step
			g.Go(func() error {
				if err := step(gctx); err != nil {
					return fmt.Errorf("branch %d: %w", i, err)
				}
				return nil
			})
		}
		return g.Wait()
	}, nil
}
