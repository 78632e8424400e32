// Package worker запускает фоновые задачи и следит за ними.
//
// # Обзор
//
// Worker держит фиксированный набор task.Definition и запускает каждую
// в отдельной горутине. Все горутины получают один контекст, производный
// от контекста Start; Stop отменяет его и ждёт завершения всех задач.
//
//	w, err := worker.New(worker.Config{
//	    Tasks:   []task.Definition{heartbeat, events},
//	    Logger:  logger,
//	    OnError: func(err error, name string) { ... },
//	})
//	if err != nil { ... }
//	defer w.Close()
//
//	if err := w.Start(ctx); err != nil { ... }
//	...
//	w.Stop(shutdownCtx)
//
// # Supervision
//
// Результат каждой задачи разбирается отдельно:
//
//   - nil или отмена контекста — штатная остановка, уровень debug
//   - любая другая ошибка — уровень error, метрика task_failures_total,
//     статус failed в HealthTracker и вызов OnError
//   - паника — превращается в ErrTaskPanicked и обрабатывается как ошибка
//
// Упавшая задача не перезапускается и не влияет на остальные.
//
// # Жизненный цикл
//
//	New -> Start -> Stop -> Start -> ... -> Close
//
// Повторный Start без Stop возвращает ErrAlreadyRunning.
// Stop у остановленного воркера ничего не делает.
// Close идемпотентен и не останавливает запущенный воркер.
package worker
