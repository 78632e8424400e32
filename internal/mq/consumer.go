package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Srota/internal/task"
)

// Delivery — доставленное сообщение с методами ack/nack.
type Delivery struct {
	// Message — распарсенное сообщение.
	Message Message

	// Raw — сырое AMQP сообщение.
	Raw amqp.Delivery
}

// Ack подтверждает успешную обработку сообщения.
func (d *Delivery) Ack() error {
	return d.Raw.Ack(false)
}

// Nack отклоняет сообщение.
// requeue=true — вернуть в очередь, false — отправить в DLQ.
func (d *Delivery) Nack(requeue bool) error {
	return d.Raw.Nack(false, requeue)
}

// Acking оборачивает обработчик сообщения: успех — Ack,
// ошибка — Nack в DLQ и возврат ошибки задаче.
func Acking(fn func(ctx context.Context, msg *Message) error) task.EventHandler[*Delivery] {
	return func(ctx context.Context, d *Delivery) error {
		if err := fn(ctx, &d.Message); err != nil {
			if nackErr := d.Nack(false); nackErr != nil {
				return fmt.Errorf("%w (nack: %v)", err, nackErr)
			}
			return err
		}
		return d.Ack()
	}
}

// ConsumerConfig — конфигурация consumer.
type ConsumerConfig struct {
	// Queue — имя очереди.
	Queue string

	// Prefetch — количество сообщений для предварительной загрузки.
	Prefetch int
}

// Consumer читает сообщения из очереди RabbitMQ.
// Реализует task.EventSource[*Delivery].
//
// Подписка создаётся при первом Read и пересоздаётся после reconnect.
// Сообщения с невалидным JSON отправляются в DLQ и пропускаются.
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	queue    string
	prefetch int

	mu         sync.Mutex
	deliveries <-chan amqp.Delivery
	channel    *amqp.Channel
	tag        string
	closed     bool
}

var _ task.EventSource[*Delivery] = (*Consumer)(nil)

// NewConsumer создаёт Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		conn:     conn,
		logger:   logger.With("queue", cfg.Queue),
		queue:    cfg.Queue,
		prefetch: prefetch,
	}
}

// Read возвращает следующее валидное сообщение.
func (c *Consumer) Read(ctx context.Context) (*Delivery, error) {
	for {
		deliveries, err := c.subscription()
		if err != nil {
			if errors.Is(err, task.ErrSourceClosed) {
				return nil, err
			}
			c.logger.Error("failed to setup consume", "error", err)
			if err := c.waitReconnect(ctx); err != nil {
				return nil, err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case raw, ok := <-deliveries:
			if !ok {
				if c.isClosed() {
					return nil, task.ErrSourceClosed
				}
				c.logger.Warn("deliveries channel closed, reconnecting")
				c.resetSubscription()
				if err := c.waitReconnect(ctx); err != nil {
					return nil, err
				}
				continue
			}

			if d, ok := c.decode(raw); ok {
				return d, nil
			}
		}
	}
}

// Close отменяет подписку. Повторный вызов безопасен.
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.channel != nil && c.tag != "" {
		if err := c.channel.Cancel(c.tag, false); err != nil {
			return fmt.Errorf("cancel consumer: %w", err)
		}
	}
	c.deliveries = nil
	return nil
}

// subscription возвращает текущий канал доставки, создавая его при необходимости.
func (c *Consumer) subscription() (<-chan amqp.Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, task.ErrSourceClosed
	}
	if c.deliveries != nil {
		return c.deliveries, nil
	}

	ch := c.conn.Channel()
	if ch == nil {
		return nil, ErrNoChannel
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	tag := "srota-" + c.queue
	deliveries, err := ch.Consume(
		c.queue, // queue
		tag,     // consumer tag
		false,   // auto-ack (ack вручную)
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}

	c.channel = ch
	c.tag = tag
	c.deliveries = deliveries
	c.logger.Info("consumer started")
	return deliveries, nil
}

func (c *Consumer) resetSubscription() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveries = nil
	c.channel = nil
}

func (c *Consumer) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// waitReconnect ждёт переподключения, но не дольше reconnectInitialDelay:
// соединение могло восстановиться до подписки на уведомление.
func (c *Consumer) waitReconnect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.conn.ReconnectNotify():
	case <-time.After(reconnectInitialDelay):
	}

	if c.isClosed() {
		return task.ErrSourceClosed
	}
	return nil
}

// decode разбирает сообщение. Невалидное отправляется в DLQ.
func (c *Consumer) decode(raw amqp.Delivery) (*Delivery, bool) {
	var msg Message
	if err := json.Unmarshal(raw.Body, &msg); err != nil {
		c.logger.Error("failed to unmarshal message",
			"error", err,
			"body", string(raw.Body),
		)
		// Некорректное сообщение — отправляем в DLQ
		if err := raw.Nack(false, false); err != nil {
			c.logger.Warn("failed to nack message", "error", err)
		}
		return nil, false
	}

	c.logger.Debug("received message",
		"message_id", msg.ID,
		"type", msg.Type,
	)
	return &Delivery{Message: msg, Raw: raw}, true
}
