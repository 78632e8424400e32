package worker

import "errors"

// Ошибки воркера.
var (
	// ErrAlreadyRunning — Start вызван у уже запущенного воркера.
	ErrAlreadyRunning = errors.New("worker is already running")

	// ErrClosed — воркер закрыт через Close и не может быть запущен.
	ErrClosed = errors.New("worker is closed")

	// ErrDuplicateTaskName — две задачи с одинаковым именем.
	ErrDuplicateTaskName = errors.New("duplicate task name")

	// ErrNilTask — в конфигурации передана nil задача.
	ErrNilTask = errors.New("nil task definition")

	// ErrTaskPanicked — задача завершилась паникой.
	ErrTaskPanicked = errors.New("task panicked")
)
