// Package repo — доступ к PostgreSQL через pgx.
//
// NewPool создаёт pgxpool.Pool; OutboxRepo работает с таблицей
// srota_outbox, из которой source.Outbox читает события.
package repo
