// Package cli реализует инструмент командной строки srota.
//
// # Команды
//
//   - demo: polling, event, pipeline, combined — примеры воркеров
//   - tail URL — вывод событий SSE потока
//   - publish: redis, amqp, kafka, outbox — отправка сообщений в источники
//     событий, которые читает srota-worker
//
// Каждая группа создаётся фабричной функцией (NewDemoCmd и т.д.),
// принимающей outputFn и loggerFn — замыкания для ленивого создания
// Output и логгера после парсинга PersistentFlags.
//
// # Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: srota tail URL --json | jq .data
package cli
