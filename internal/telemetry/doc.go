// Package telemetry обеспечивает наблюдаемость worker'а.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики задач и worker'а
//
// Метрики регистрируются в prometheus.DefaultRegisterer и
// экспортируются на /metrics endpoint процесса srota-worker.
package telemetry
