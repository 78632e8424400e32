package main

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/shaiso/Srota/internal/builder"
	"github.com/shaiso/Srota/internal/config"
	"github.com/shaiso/Srota/internal/mq"
	"github.com/shaiso/Srota/internal/repo"
	"github.com/shaiso/Srota/internal/source"
	"github.com/shaiso/Srota/internal/sse"
	"github.com/shaiso/Srota/internal/steps"
	"github.com/shaiso/Srota/internal/task"
	"github.com/shaiso/Srota/internal/telemetry"
	"github.com/shaiso/Srota/internal/worker"
)

// registerTasks добавляет в builder задачи воркера.
// Недоступный backend пропускается с предупреждением.
func registerTasks(ctx context.Context, b *builder.Builder, cfg *config.Config, health *worker.HealthTracker, res *resources) error {
	logger := res.logger

	b.AddPolling("heartbeat", cfg.HeartbeatInterval).
		WithRetry(cfg.HeartbeatRetries, cfg.HeartbeatRetryDelay).
		Do(func(ctx context.Context) error {
			telemetry.FromContext(ctx).Info("heartbeat", "healthy", health.IsHealthy())
			return nil
		})

	var outbox *repo.OutboxRepo

	for _, backend := range cfg.Backends() {
		switch backend {
		case config.BackendRedis:
			addRedis(b, cfg, res)
		case config.BackendRabbitMQ:
			if err := addRabbitMQ(ctx, b, cfg, res); err != nil {
				logger.Warn("RabbitMQ not available, skipping", "error", err)
			}
		case config.BackendKafka:
			addKafka(b, cfg)
		case config.BackendOutbox:
			r, err := addOutbox(ctx, b, cfg, res)
			if err != nil {
				logger.Warn("outbox not available, skipping", "error", err)
				continue
			}
			outbox = r
		}
	}

	step, err := housekeeping(health, outbox)
	if err != nil {
		return err
	}
	b.AddPipeline("housekeeping").Then(step).Every(cfg.HousekeepingInterval)

	if cfg.ReportCron != "" {
		b.AddCron("report", cfg.ReportCron).Do(func(ctx context.Context) error {
			logReport(telemetry.FromContext(ctx), health.Snapshot())
			return nil
		})
	}

	if cfg.SSEURL != "" {
		b.AddSSE("sse-events", cfg.SSEURL).Do(func(ctx context.Context, ev sse.Event) error {
			telemetry.FromContext(ctx).Info("sse event received", "id", ev.ID, "event", ev.Type, "data", ev.Data)
			return nil
		})
	}

	return nil
}

// housekeeping — шаг pipeline: лог состояния задач и, если включён
// outbox, обновление метрики backlog. Обе части выполняются параллельно.
func housekeeping(health *worker.HealthTracker, outbox *repo.OutboxRepo) (task.Step, error) {
	logHealth := func(ctx context.Context) error {
		status := health.Snapshot()
		telemetry.FromContext(ctx).Debug("health snapshot", "status", status.Status, "tasks", len(status.Tasks))
		return nil
	}
	if outbox == nil {
		return logHealth, nil
	}

	backlog := func(ctx context.Context) error {
		n, err := outbox.Count(ctx)
		if err != nil {
			return err
		}
		telemetry.OutboxBacklog.Set(float64(n))
		return nil
	}

	return steps.Parallel(logHealth, backlog)
}

func logReport(logger *slog.Logger, status worker.HealthStatus) {
	failed := 0
	for _, t := range status.Tasks {
		if t.Status == worker.TaskStatusFailed {
			failed++
		}
	}
	logger.Info("worker report", "status", status.Status, "tasks", len(status.Tasks), "failed", failed)
}

func addRedis(b *builder.Builder, cfg *config.Config, res *resources) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	res.add("redis", client.Close)

	builder.AddEvent(b, "redis-events", func() (task.EventSource[string], error) {
		src, err := source.NewRedisList(source.RedisListConfig{Client: client, Key: cfg.RedisKey})
		if err != nil {
			return nil, err
		}
		return src, nil
	}).Do(func(ctx context.Context, item string) error {
		telemetry.FromContext(ctx).Info("redis item received", "key", cfg.RedisKey, "value", item)
		return nil
	})
}

func addRabbitMQ(ctx context.Context, b *builder.Builder, cfg *config.Config, res *resources) error {
	conn, err := mq.NewConnection(cfg.RabbitMQURL, res.logger)
	if err != nil {
		return err
	}
	res.add("rabbitmq", conn.Close)

	topology := mq.Topology{Exchange: mq.DefaultExchange, Queue: cfg.RabbitMQQueue}
	if err := topology.Declare(ctx, conn); err != nil {
		return err
	}

	builder.AddEvent(b, "rabbitmq-events", func() (task.EventSource[*mq.Delivery], error) {
		return mq.NewConsumer(conn, res.logger, mq.ConsumerConfig{Queue: topology.Queue}), nil
	}).Do(mq.Acking(func(ctx context.Context, msg *mq.Message) error {
		telemetry.FromContext(ctx).Info("amqp message received",
			"message_id", msg.ID,
			"type", msg.Type,
			"payload", string(msg.Payload),
		)
		return nil
	}))
	return nil
}

func addKafka(b *builder.Builder, cfg *config.Config) {
	builder.AddEvent(b, "kafka-events", func() (task.EventSource[kafka.Message], error) {
		src, err := source.NewKafka(source.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	}).Do(func(ctx context.Context, m kafka.Message) error {
		telemetry.FromContext(ctx).Info("kafka message received",
			"topic", m.Topic,
			"partition", m.Partition,
			"offset", m.Offset,
			"value", string(m.Value),
		)
		return nil
	})
}

func addOutbox(ctx context.Context, b *builder.Builder, cfg *config.Config, res *resources) (*repo.OutboxRepo, error) {
	pool, err := repo.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return nil, err
	}
	res.add("postgres", func() error {
		pool.Close()
		return nil
	})

	outbox := repo.NewOutboxRepo(pool)
	if err := outbox.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	builder.AddEvent(b, "outbox-events", func() (task.EventSource[repo.OutboxEvent], error) {
		src, err := source.NewOutbox(source.OutboxConfig{Repo: outbox, PollInterval: cfg.OutboxPollInterval})
		if err != nil {
			return nil, err
		}
		return src, nil
	}).Do(func(ctx context.Context, ev repo.OutboxEvent) error {
		telemetry.FromContext(ctx).Info("outbox event received",
			"event_id", ev.ID,
			"topic", ev.Topic,
			"payload", string(ev.Payload),
		)
		return nil
	})
	return outbox, nil
}
