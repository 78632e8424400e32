package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shaiso/Srota/internal/repo"
	"github.com/shaiso/Srota/internal/task"
)

// Значения по умолчанию для Outbox.
const (
	DefaultOutboxPollInterval = time.Second
	DefaultOutboxBatchSize    = 1
)

// Claimer забирает события из outbox. Реализуется repo.OutboxRepo.
type Claimer interface {
	Claim(ctx context.Context, limit int) ([]repo.OutboxEvent, error)
}

// OutboxConfig — конфигурация Outbox.
type OutboxConfig struct {
	Repo Claimer

	// PollInterval — пауза, если outbox пуст.
	PollInterval time.Duration

	// BatchSize — сколько событий забирать за запрос. Забранные, но не
	// прочитанные события теряются при Close, поэтому по умолчанию 1.
	BatchSize int
}

// Outbox читает события из таблицы srota_outbox.
// Доставка at-most-once: событие удаляется из таблицы при выдаче.
type Outbox struct {
	repo         Claimer
	pollInterval time.Duration
	batchSize    int

	mu      sync.Mutex
	pending []repo.OutboxEvent
	closed  bool
}

var _ task.EventSource[repo.OutboxEvent] = (*Outbox)(nil)

// NewOutbox создаёт источник.
func NewOutbox(cfg OutboxConfig) (*Outbox, error) {
	if cfg.Repo == nil {
		return nil, fmt.Errorf("%w: outbox source: repo is required", task.ErrInvalidConfig)
	}

	poll := cfg.PollInterval
	if poll <= 0 {
		poll = DefaultOutboxPollInterval
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultOutboxBatchSize
	}

	return &Outbox{repo: cfg.Repo, pollInterval: poll, batchSize: batch}, nil
}

// Read возвращает следующее событие в порядке created_at.
func (o *Outbox) Read(ctx context.Context) (repo.OutboxEvent, error) {
	for {
		ev, ok, err := o.next()
		if err != nil || ok {
			return ev, err
		}

		events, err := o.repo.Claim(ctx, o.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				return repo.OutboxEvent{}, ctx.Err()
			}
			return repo.OutboxEvent{}, err
		}

		if len(events) > 0 {
			o.mu.Lock()
			o.pending = append(o.pending, events...)
			o.mu.Unlock()
			continue
		}

		timer := time.NewTimer(o.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return repo.OutboxEvent{}, ctx.Err()
		case <-timer.C:
		}
	}
}

// next извлекает событие из уже забранной пачки.
func (o *Outbox) next() (repo.OutboxEvent, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return repo.OutboxEvent{}, false, task.ErrSourceClosed
	}
	if len(o.pending) == 0 {
		return repo.OutboxEvent{}, false, nil
	}
	ev := o.pending[0]
	o.pending = o.pending[1:]
	return ev, true, nil
}

// Close прекращает чтение.
func (o *Outbox) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.pending = nil
	return nil
}
