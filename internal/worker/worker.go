package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/shaiso/Srota/internal/task"
	"github.com/shaiso/Srota/internal/telemetry"
)

// ErrorHandler получает каждую необработанную ошибку задачи.
// Вызывается из горутины упавшей задачи; паника внутри перехватывается.
type ErrorHandler func(err error, taskName string)

// Worker запускает зарегистрированные задачи и следит за ними.
//
// Каждая задача работает в своей горутине до отмены. Ошибка одной задачи
// логируется и передаётся ErrorHandler, остальные задачи продолжают работу.
type Worker struct {
	tasks   []task.Definition
	logger  *slog.Logger
	onError ErrorHandler
	health  *HealthTracker

	// Lifecycle
	mu      sync.Mutex
	running atomic.Bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}
	runID   string
}

// Config — конфигурация Worker.
type Config struct {
	// Tasks — задачи; набор фиксируется при создании.
	Tasks []task.Definition

	// Logger (опционально; по умолчанию slog.Default()).
	Logger *slog.Logger

	// OnError — глобальный обработчик ошибок (опционально).
	OnError ErrorHandler

	// Health (опционально; по умолчанию создаётся новый).
	Health *HealthTracker
}

// New создаёт Worker. Имена задач должны быть уникальны.
func New(cfg Config) (*Worker, error) {
	seen := make(map[string]struct{}, len(cfg.Tasks))
	tasks := make([]task.Definition, 0, len(cfg.Tasks))
	for i, def := range cfg.Tasks {
		if def == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilTask, i)
		}
		name := def.Name()
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTaskName, name)
		}
		seen[name] = struct{}{}
		tasks = append(tasks, def)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	health := cfg.Health
	if health == nil {
		health = NewHealthTracker()
	}

	return &Worker{
		tasks:   tasks,
		logger:  logger,
		onError: cfg.OnError,
		health:  health,
	}, nil
}

// Start запускает все задачи и сразу возвращается.
//
// Отмена ctx останавливает задачи так же, как Stop, но флаг running
// сбрасывает только Stop.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.running.Load() {
		return ErrAlreadyRunning
	}

	// Отменяем контекст прошлого запуска, если Close его не освободил
	if w.cancel != nil {
		w.cancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.runID = uuid.NewString()

	logger := w.logger.With("run_id", w.runID)
	logger.Info("starting worker", "tasks", len(w.tasks))

	var wg sync.WaitGroup
	for _, def := range w.tasks {
		wg.Add(1)
		go func(def task.Definition) {
			defer wg.Done()
			w.supervise(runCtx, logger, def)
		}(def)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	w.done = done

	w.running.Store(true)
	telemetry.WorkerRunning.Set(1)

	logger.Info("worker started")
	return nil
}

// Stop отменяет задачи и ждёт завершения всех горутин.
//
// Если воркер не запущен, ничего не делает. Если ctx истекает раньше,
// возвращает ctx.Err(); воркер остаётся запущенным, Stop можно повторить.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running.Load() {
		w.mu.Unlock()
		return nil
	}
	cancel, done, runID := w.cancel, w.done, w.runID
	w.mu.Unlock()

	logger := w.logger.With("run_id", runID)
	logger.Info("stopping worker...")

	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("worker stop interrupted, tasks still running", "error", ctx.Err())
		return ctx.Err()
	}

	w.mu.Lock()
	if w.done == done && w.running.Load() {
		w.running.Store(false)
		telemetry.WorkerRunning.Set(0)
		logger.Info("worker stopped")
	}
	w.mu.Unlock()

	return nil
}

// IsRunning сообщает, запущен ли воркер.
func (w *Worker) IsRunning() bool {
	return w.running.Load()
}

// Close освобождает ресурсы отмены. Повторный вызов безопасен.
//
// Запущенный воркер Close не останавливает: сначала нужен Stop.
// После Close Start возвращает ErrClosed.
func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if !w.running.Load() && w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	return nil
}

// Tasks возвращает имена задач в порядке регистрации.
func (w *Worker) Tasks() []string {
	names := make([]string, len(w.tasks))
	for i, def := range w.tasks {
		names[i] = def.Name()
	}
	return names
}

// Health возвращает трекер состояния задач.
func (w *Worker) Health() *HealthTracker {
	return w.health
}

// supervise выполняет одну задачу и разбирает её результат.
func (w *Worker) supervise(ctx context.Context, logger *slog.Logger, def task.Definition) {
	name := def.Name()
	logger = telemetry.WithTask(logger, name)
	ctx = telemetry.WithLogger(ctx, logger)

	w.health.MarkHealthy(name)
	telemetry.TasksActive.Inc()
	defer telemetry.TasksActive.Dec()

	logger.Debug("task started")

	err := runTask(ctx, def)

	switch {
	case err == nil:
		w.health.MarkStopped(name)
		if ctx.Err() != nil {
			logger.Debug("task cancelled")
		} else {
			logger.Debug("task completed")
		}

	case ctx.Err() != nil && isCancellation(err):
		w.health.MarkStopped(name)
		logger.Debug("task cancelled")

	default:
		logger.Error("task failed", "error", err)
		w.health.MarkFailed(name)
		telemetry.TaskFailures.WithLabelValues(name).Inc()
		w.report(logger, err, name)
	}
}

// report передаёт ошибку глобальному обработчику.
func (w *Worker) report(logger *slog.Logger, err error, name string) {
	if w.onError == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("error handler panicked", "panic", r)
		}
	}()
	w.onError(err, name)
}

// runTask вызывает Run, превращая панику в ошибку.
func runTask(ctx context.Context, def task.Definition) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return def.Run(ctx)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
