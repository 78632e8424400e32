package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Имена по умолчанию.
const (
	DefaultExchange = "srota.events"
	DefaultQueue    = "srota.events"

	dlqSuffix = ".dlq"
)

// Topology — exchange и очередь событий с DLQ.
//
//	<exchange> (direct)
//	└── <queue> [routing: <queue>]  DLQ: <queue>.dlq
//	<exchange>.dlq (direct)
//	└── <queue>.dlq [routing: <queue>]
type Topology struct {
	Exchange string
	Queue    string
}

// DefaultTopology возвращает топологию по умолчанию.
func DefaultTopology() Topology {
	return Topology{Exchange: DefaultExchange, Queue: DefaultQueue}
}

// RoutingKey — ключ маршрутизации очереди событий.
func (t Topology) RoutingKey() string { return t.Queue }

// DeadLetterExchange возвращает имя DLQ exchange.
func (t Topology) DeadLetterExchange() string { return t.Exchange + dlqSuffix }

// DeadLetterQueue возвращает имя DLQ очереди.
func (t Topology) DeadLetterQueue() string { return t.Queue + dlqSuffix }

// Declare объявляет exchanges, очереди и привязки. Идемпотентна.
func (t Topology) Declare(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range []string{t.Exchange, t.DeadLetterExchange()} {
			if err := ch.ExchangeDeclare(ex, "direct", true, false, false, false, nil); err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		queues := []struct {
			name string
			args amqp.Table
		}{
			{t.Queue, t.queueArgs()},
			{t.DeadLetterQueue(), nil},
		}
		for _, q := range queues {
			if _, err := ch.QueueDeclare(q.name, true, false, false, false, q.args); err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}
		}

		bindings := []struct{ queue, exchange string }{
			{t.Queue, t.Exchange},
			{t.DeadLetterQueue(), t.DeadLetterExchange()},
		}
		for _, b := range bindings {
			if err := ch.QueueBind(b.queue, t.RoutingKey(), b.exchange, false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}
		return nil
	})
}

// queueArgs — аргументы основной очереди: отклонённые сообщения уходят в DLQ.
func (t Topology) queueArgs() amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    t.DeadLetterExchange(),
		"x-dead-letter-routing-key": t.RoutingKey(),
	}
}
