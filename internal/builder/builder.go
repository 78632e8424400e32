// Package builder собирает Worker через fluent API.
//
//	w, err := builder.New().
//	    WithLogger(logger).
//	    OnError(func(err error, name string) { ... }).
//	    AddPolling("heartbeat", 30*time.Second).WithRetry(3, 5*time.Second).Do(ping).
//	    AddPipeline("sync").Then(fetch).Then(store).Every(time.Minute).
//	    Build()
//
// Event задачи добавляются функцией AddEvent: методы в Go не бывают generic.
//
// Ошибки конфигурации накапливаются и возвращаются из Build.
package builder

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shaiso/Srota/internal/task"
	"github.com/shaiso/Srota/internal/worker"
)

// Builder накапливает задачи и настройки воркера.
type Builder struct {
	tasks   []task.Definition
	errs    []error
	logger  *slog.Logger
	onError worker.ErrorHandler
	health  *worker.HealthTracker
}

// New создаёт пустой Builder.
func New() *Builder {
	return &Builder{}
}

// WithLogger задаёт логгер воркера.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// OnError задаёт глобальный обработчик ошибок.
func (b *Builder) OnError(fn worker.ErrorHandler) *Builder {
	b.onError = fn
	return b
}

// WithHealth задаёт трекер состояния задач.
func (b *Builder) WithHealth(h *worker.HealthTracker) *Builder {
	b.health = h
	return b
}

// Add регистрирует готовую задачу.
func (b *Builder) Add(def task.Definition) *Builder {
	b.tasks = append(b.tasks, def)
	return b
}

// add регистрирует результат конструктора задачи.
func (b *Builder) add(def task.Definition, err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	return b.Add(def)
}

// Build создаёт Worker. Возвращает все накопленные ошибки конфигурации.
func (b *Builder) Build() (*worker.Worker, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return worker.New(worker.Config{
		Tasks:   b.tasks,
		Logger:  b.logger,
		OnError: b.onError,
		Health:  b.health,
	})
}

// --- Polling ---

// PollingBuilder настраивает polling задачу.
type PollingBuilder struct {
	parent *Builder
	cfg    task.PollingConfig
}

// AddPolling начинает описание polling задачи.
// Повторы по умолчанию: 3 с паузой 5s.
func (b *Builder) AddPolling(name string, every time.Duration) *PollingBuilder {
	return &PollingBuilder{
		parent: b,
		cfg: task.PollingConfig{
			Name:     name,
			Interval: every,
			Retry:    task.DefaultRetryPolicy(),
		},
	}
}

// WithRetry задаёт политику повторов.
func (p *PollingBuilder) WithRetry(maxRetries int, delay time.Duration) *PollingBuilder {
	p.cfg.Retry = task.RetryPolicy{MaxRetries: maxRetries, RetryDelay: delay}
	return p
}

// Do задаёт обработчик и регистрирует задачу.
func (p *PollingBuilder) Do(handler task.Handler) *Builder {
	p.cfg.Handler = handler
	return p.parent.add(task.NewPolling(p.cfg))
}

// --- Cron ---

// CronBuilder настраивает cron задачу.
type CronBuilder struct {
	parent *Builder
	cfg    task.CronConfig
}

// AddCron начинает описание cron задачи.
func (b *Builder) AddCron(name, expr string) *CronBuilder {
	return &CronBuilder{
		parent: b,
		cfg: task.CronConfig{
			Name:  name,
			Expr:  expr,
			Retry: task.DefaultRetryPolicy(),
		},
	}
}

// InTimezone задаёт timezone расписания.
func (c *CronBuilder) InTimezone(tz string) *CronBuilder {
	c.cfg.Timezone = tz
	return c
}

// WithRetry задаёт политику повторов.
func (c *CronBuilder) WithRetry(maxRetries int, delay time.Duration) *CronBuilder {
	c.cfg.Retry = task.RetryPolicy{MaxRetries: maxRetries, RetryDelay: delay}
	return c
}

// Do задаёт обработчик и регистрирует задачу.
func (c *CronBuilder) Do(handler task.Handler) *Builder {
	c.cfg.Handler = handler
	return c.parent.add(task.NewCron(c.cfg))
}

// --- Event ---

// EventBuilder настраивает event задачу.
type EventBuilder[T any] struct {
	parent *Builder
	cfg    task.EventConfig[T]
}

// AddEvent начинает описание event задачи.
func AddEvent[T any](b *Builder, name string, source task.SourceFactory[T]) *EventBuilder[T] {
	return &EventBuilder[T]{
		parent: b,
		cfg:    task.EventConfig[T]{Name: name, Source: source},
	}
}

// Do задаёт обработчик и регистрирует задачу.
func (e *EventBuilder[T]) Do(handler task.EventHandler[T]) *Builder {
	e.cfg.Handler = handler
	return e.parent.add(task.NewEvent(e.cfg))
}

// --- Pipeline ---

// PipelineBuilder настраивает pipeline задачу.
type PipelineBuilder struct {
	parent *Builder
	cfg    task.PipelineConfig
}

// AddPipeline начинает описание pipeline задачи.
func (b *Builder) AddPipeline(name string) *PipelineBuilder {
	return &PipelineBuilder{parent: b, cfg: task.PipelineConfig{Name: name}}
}

// Then добавляет шаг в конец pipeline.
func (p *PipelineBuilder) Then(step task.Step) *PipelineBuilder {
	p.cfg.Steps = append(p.cfg.Steps, step)
	return p
}

// Every задаёт интервал между проходами и регистрирует задачу.
func (p *PipelineBuilder) Every(interval time.Duration) *Builder {
	p.cfg.Interval = interval
	return p.parent.add(task.NewPipeline(p.cfg))
}

// --- SSE ---

// SSEBuilder настраивает SSE задачу.
type SSEBuilder struct {
	parent *Builder
	cfg    task.SSEConfig
}

// AddSSE начинает описание SSE задачи.
func (b *Builder) AddSSE(name, url string) *SSEBuilder {
	return &SSEBuilder{
		parent: b,
		cfg:    task.SSEConfig{Name: name, URL: url, Header: http.Header{}},
	}
}

// WithHeader добавляет заголовок запроса.
func (s *SSEBuilder) WithHeader(key, value string) *SSEBuilder {
	s.cfg.Header.Add(key, value)
	return s
}

// WithClient задаёт HTTP клиент.
func (s *SSEBuilder) WithClient(client *http.Client) *SSEBuilder {
	s.cfg.Client = client
	return s
}

// Do задаёт обработчик и регистрирует задачу.
func (s *SSEBuilder) Do(handler task.SSEHandler) *Builder {
	s.cfg.Handler = handler
	return s.parent.add(task.NewSSE(s.cfg))
}
