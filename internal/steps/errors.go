package steps

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig — невалидная конфигурация шага.
var ErrInvalidConfig = errors.New("invalid step config")

// HTTPError — ответ со статусом не 2xx.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error реализует интерфейс error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// IsHTTPError проверяет, является ли ошибка HTTP ошибкой.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}
