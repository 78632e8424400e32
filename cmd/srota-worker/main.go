// Srota Worker — фоновый процесс с набором задач.
//
// Worker:
//   - Heartbeat (polling) и housekeeping (pipeline) задачи
//   - Опциональный cron отчёт (REPORT_CRON)
//   - Event задача на каждый настроенный backend: Redis, RabbitMQ, Kafka, Postgres outbox
//   - Опциональная SSE задача (SSE_URL)
//
// HTTP: /healthz (состояние задач) и /metrics (Prometheus).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Srota/internal/builder"
	"github.com/shaiso/Srota/internal/config"
	"github.com/shaiso/Srota/internal/telemetry"
	"github.com/shaiso/Srota/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	// Инициализируем structured logging
	logger := telemetry.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting srota-worker")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	health := worker.NewHealthTracker()
	b := builder.New().
		WithLogger(logger).
		WithHealth(health).
		OnError(func(err error, name string) {
			logger.Error("unhandled task failure", "task", name, "error", err)
		})

	res := &resources{logger: logger}
	defer res.Close()

	if err := registerTasks(ctx, b, cfg, health, res); err != nil {
		logger.Error("failed to register tasks", "error", err)
		os.Exit(1)
	}

	w, err := b.Build()
	if err != nil {
		logger.Error("failed to build worker", "error", err)
		os.Exit(1)
	}
	defer w.Close()

	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}
	logger.Info("worker started", "tasks", w.Tasks())

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.Handle("/healthz", healthHandler(health))
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stopCancel()

	if err := w.Stop(stopCtx); err != nil {
		logger.Error("worker did not stop in time", "error", err)
	}
	if err := srv.Shutdown(stopCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}

	logger.Info("srota-worker stopped")
}

// healthHandler отдаёт snapshot состояния задач. 503, если хотя бы одна упала.
func healthHandler(health *worker.HealthTracker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := health.Snapshot()

		code := http.StatusOK
		if !health.IsHealthy() {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	})
}

// resources — внешние подключения, закрываемые после остановки воркера.
type resources struct {
	logger  *slog.Logger
	closers []func() error
}

func (r *resources) add(name string, fn func() error) {
	r.closers = append(r.closers, func() error {
		if err := fn(); err != nil {
			return fmt.Errorf("close %s: %w", name, err)
		}
		return nil
	})
}

// Close закрывает ресурсы в обратном порядке.
func (r *resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			r.logger.Warn("failed to release resource", "error", err)
		}
	}
	r.closers = nil
}
