package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// OutboxEvent — запись transactional outbox.
type OutboxEvent struct {
	ID        uuid.UUID       `json:"id"`
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// DB — подмножество pgxpool.Pool, нужное репозиторию.
// pgx.Tx тоже подходит: Enqueue можно вызвать внутри транзакции.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OutboxRepo — репозиторий таблицы srota_outbox.
type OutboxRepo struct {
	db DB
}

// NewOutboxRepo создаёт новый OutboxRepo.
func NewOutboxRepo(db DB) *OutboxRepo {
	return &OutboxRepo{db: db}
}

// EnsureSchema создаёт таблицу outbox, если её нет.
func (r *OutboxRepo) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS srota_outbox (
			id         UUID PRIMARY KEY,
			topic      TEXT NOT NULL,
			payload    JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS srota_outbox_created_at_idx ON srota_outbox (created_at, id)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create outbox schema: %w", err)
		}
	}
	return nil
}

// Enqueue добавляет событие. payload сериализуется в JSON.
func (r *OutboxRepo) Enqueue(ctx context.Context, topic string, payload any) (*OutboxEvent, error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	ev := &OutboxEvent{
		ID:        uuid.New(),
		Topic:     topic,
		Payload:   payloadJSON,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO srota_outbox (id, topic, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, query, ev.ID, ev.Topic, payloadJSON, ev.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert outbox event: %w", err)
	}
	return ev, nil
}

// Claim забирает до limit самых старых событий, удаляя их из таблицы.
//
// FOR UPDATE SKIP LOCKED позволяет нескольким воркерам читать outbox
// одновременно без повторной выдачи. Результат упорядочен по created_at.
func (r *OutboxRepo) Claim(ctx context.Context, limit int) ([]OutboxEvent, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	query := `
		DELETE FROM srota_outbox
		WHERE id IN (
			SELECT id FROM srota_outbox
			ORDER BY created_at, id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, topic, payload, created_at
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.Topic, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}

	// RETURNING не гарантирует порядок
	slices.SortStableFunc(events, func(a, b OutboxEvent) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return events, nil
}

// Count возвращает число событий в outbox.
func (r *OutboxRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM srota_outbox`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count outbox events: %w", err)
	}
	return n, nil
}
