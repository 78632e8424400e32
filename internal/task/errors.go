package task

import (
	"errors"
	"fmt"
)

// Ошибки задач.
var (
	// ErrInvalidConfig — невалидная конфигурация задачи.
	ErrInvalidConfig = errors.New("invalid task config")

	// ErrHandlerFailed — пользовательский обработчик или шаг вернул ошибку.
	ErrHandlerFailed = errors.New("handler failed")

	// ErrRetriesExhausted — все попытки retry исчерпаны.
	ErrRetriesExhausted = errors.New("retry attempts exhausted")

	// ErrSourceUnavailable — фабрика не смогла создать источник событий.
	ErrSourceUnavailable = errors.New("event source unavailable")

	// ErrSourceClosed — чтение из закрытого или исчерпанного источника.
	ErrSourceClosed = errors.New("event source closed")

	// ErrTransport — ошибка соединения или потока SSE.
	ErrTransport = errors.New("transport failure")
)

// RetriesExhaustedError — последняя попытка провалилась после Retries повторов.
//
// errors.Is срабатывает и для ErrRetriesExhausted, и для исходной ошибки.
// Error() содержит префикс даже при MaxRetries=0; исходное сообщение
// обработчика лежит в Err (достаётся через errors.As).
type RetriesExhaustedError struct {
	Retries int
	Err     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d retries: %v", ErrRetriesExhausted, e.Retries, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() []error {
	return []error{ErrRetriesExhausted, e.Err}
}

// invalidConfig оборачивает причину в ErrInvalidConfig.
func invalidConfig(name, reason string) error {
	if name == "" {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, reason)
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, name, reason)
}
