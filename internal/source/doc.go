// Package source содержит реализации task.EventSource.
//
//   - Channel — поверх Go канала
//   - QueueSource — in-memory очередь с опросом (по умолчанию каждые 100ms)
//   - RedisList — список Redis через BLPOP
//   - Kafka — consumer group через kafka-go
//   - Outbox — таблица srota_outbox в PostgreSQL
//
// Все источники прерывают ожидание по отмене контекста и после Close
// возвращают task.ErrSourceClosed. Close идемпотентен. Внешние клиенты
// (redis.Client, пул pgx) принадлежат вызывающему и источником не
// закрываются; Kafka reader создаётся и закрывается источником.
package source
