// Package task содержит типы фоновых задач worker'а.
//
// # Обзор
//
// Каждая задача реализует Definition:
//
//	type Definition interface {
//	    Name() string
//	    Run(ctx context.Context) error
//	}
//
// Run крутит собственный цикл до отмены ctx. Отмена — штатное
// завершение (Run возвращает nil), любая другая ошибка уходит
// supervisor'у worker'а, который логирует её и передаёт в глобальный
// обработчик ошибок.
//
// # Типы задач
//
//   - Polling — вызов обработчика с интервалом, retry внутри цикла
//   - Event — чтение из EventSource и обработка по одному элементу
//   - Pipeline — упорядоченные шаги, затем пауза
//   - SSE — поток text/event-stream, обработчик на событие
//   - Cron — вызов обработчика по cron-выражению
//
// # Retry
//
// RetryPolicy{MaxRetries, RetryDelay} применяется к Polling и Cron.
// Обработчик, падающий на каждой попытке, вызывается MaxRetries+1 раз,
// после чего Run возвращает *RetriesExhaustedError:
//
//	var rex *task.RetriesExhaustedError
//	if errors.As(err, &rex) {
//	    // rex.Err — ошибка последней попытки
//	}
//
// # Отмена
//
// Все точки ожидания (sleep, чтение источника, HTTP поток) прерываются
// отменой ctx, а не только проверяются до и после.
package task
