package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "srota"

// Результаты вызова обработчика.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// WorkerRunning — 1, пока worker запущен.
	WorkerRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "worker_running",
		Help:      "Whether the worker is running (1) or stopped (0).",
	})

	// TasksActive — количество выполняющихся задач.
	TasksActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tasks_active",
		Help:      "Number of task units currently running.",
	})

	// TaskFailures — необработанные ошибки задач (дошедшие до supervisor'а).
	TaskFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_failures_total",
		Help:      "Unhandled task failures reported by the worker.",
	}, []string{"task"})

	// TaskRetries — повторные попытки обработчика.
	TaskRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_retries_total",
		Help:      "Handler retries performed by polling and cron tasks.",
	}, []string{"task"})

	// HandlerInvocations — вызовы обработчиков и шагов по результату.
	HandlerInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handler_invocations_total",
		Help:      "Handler and step invocations by result.",
	}, []string{"task", "result"})

	// HandlerDuration — длительность вызовов обработчиков.
	HandlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "handler_duration_seconds",
		Help:      "Handler and step invocation duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"task"})

	// OutboxBacklog — число необработанных записей outbox.
	OutboxBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "outbox_backlog",
		Help:      "Pending rows in the Postgres outbox table.",
	})
)

// ObserveHandler учитывает один вызов обработчика задачи.
func ObserveHandler(task string, started time.Time, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	HandlerInvocations.WithLabelValues(task, result).Inc()
	HandlerDuration.WithLabelValues(task).Observe(time.Since(started).Seconds())
}
