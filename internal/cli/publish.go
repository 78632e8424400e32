package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"

	"github.com/shaiso/Srota/internal/config"
	"github.com/shaiso/Srota/internal/mq"
	"github.com/shaiso/Srota/internal/repo"
	"github.com/shaiso/Srota/internal/source"
)

const publishTimeout = 10 * time.Second

// textPayload — payload сообщений, отправляемых из CLI.
type textPayload struct {
	Text string `json:"text"`
}

// NewPublishCmd создаёт группу команд публикации в источники событий.
// Значения флагов по умолчанию берутся из cfg.
func NewPublishCmd(cfg *config.Config, loggerFn func() *slog.Logger, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a message to an event source backend",
	}

	cmd.AddCommand(
		newPublishRedisCmd(cfg, outputFn),
		newPublishAMQPCmd(cfg, loggerFn, outputFn),
		newPublishKafkaCmd(cfg, outputFn),
		newPublishOutboxCmd(cfg, outputFn),
	)

	return cmd
}

func newPublishRedisCmd(cfg *config.Config, outputFn func() *Output) *cobra.Command {
	var addr, password, key string
	var db int

	cmd := &cobra.Command{
		Use:   "redis MESSAGE...",
		Short: "Push messages to a Redis list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), publishTimeout)
			defer cancel()

			client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
			defer client.Close()

			if err := source.PushRedis(ctx, client, key, args...); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Pushed %d message(s) to %s", len(args), key))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", orDefault(cfg.RedisAddr, "localhost:6379"), "Redis address")
	cmd.Flags().StringVar(&password, "password", cfg.RedisPassword, "Redis password")
	cmd.Flags().IntVar(&db, "db", cfg.RedisDB, "Redis database")
	cmd.Flags().StringVar(&key, "key", cfg.RedisKey, "List key")

	return cmd
}

func newPublishAMQPCmd(cfg *config.Config, loggerFn func() *slog.Logger, outputFn func() *Output) *cobra.Command {
	var url, queue, msgType string

	cmd := &cobra.Command{
		Use:   "amqp MESSAGE",
		Short: "Publish a message to RabbitMQ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), publishTimeout)
			defer cancel()

			logger := loggerFn()
			conn, err := mq.NewConnection(url, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			topology := mq.Topology{Exchange: mq.DefaultExchange, Queue: queue}
			if err := topology.Declare(ctx, conn); err != nil {
				return err
			}

			msg, err := mq.NewPublisher(conn, topology, logger).PublishJSON(ctx, msgType, textPayload{Text: args[0]})
			if err != nil {
				return err
			}

			out := outputFn()
			out.Print(
				[]string{"ID", "TYPE", "QUEUE"},
				[][]string{{msg.ID, msg.Type, queue}},
				msg,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", orDefault(cfg.RabbitMQURL, mq.DefaultURL()), "RabbitMQ URL")
	cmd.Flags().StringVar(&queue, "queue", cfg.RabbitMQQueue, "Queue name")
	cmd.Flags().StringVar(&msgType, "type", "cli.message", "Message type")

	return cmd
}

func newPublishKafkaCmd(cfg *config.Config, outputFn func() *Output) *cobra.Command {
	var brokers, topic, key string

	cmd := &cobra.Command{
		Use:   "kafka MESSAGE...",
		Short: "Write messages to a Kafka topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), publishTimeout)
			defer cancel()

			writer := source.KafkaWriter(strings.Split(brokers, ","), topic)
			defer writer.Close()

			msgs := make([]kafka.Message, len(args))
			for i, arg := range args {
				msgs[i] = kafka.Message{Value: []byte(arg)}
				if key != "" {
					msgs[i].Key = []byte(key)
				}
			}

			if err := writer.WriteMessages(ctx, msgs...); err != nil {
				return fmt.Errorf("write kafka messages: %w", err)
			}

			outputFn().Success(fmt.Sprintf("Wrote %d message(s) to %s", len(args), topic))
			return nil
		},
	}

	cmd.Flags().StringVar(&brokers, "brokers", orDefault(strings.Join(cfg.KafkaBrokers, ","), "localhost:9092"), "Comma-separated broker list")
	cmd.Flags().StringVar(&topic, "topic", cfg.KafkaTopic, "Topic")
	cmd.Flags().StringVar(&key, "key", "", "Message key")

	return cmd
}

func newPublishOutboxCmd(cfg *config.Config, outputFn func() *Output) *cobra.Command {
	var dbURL, topic string

	cmd := &cobra.Command{
		Use:   "outbox MESSAGE",
		Short: "Insert a message into the Postgres outbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), publishTimeout)
			defer cancel()

			pool, err := repo.NewPool(ctx, dbURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			outbox := repo.NewOutboxRepo(pool)
			if err := outbox.EnsureSchema(ctx); err != nil {
				return err
			}

			ev, err := outbox.Enqueue(ctx, topic, textPayload{Text: args[0]})
			if err != nil {
				return err
			}

			outputFn().Print(
				[]string{"ID", "TOPIC", "CREATED"},
				[][]string{{ev.ID.String(), ev.Topic, ev.CreatedAt.Format(time.RFC3339)}},
				ev,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbURL, "db-url", cfg.DBURL, "PostgreSQL DSN (default: local development DSN)")
	cmd.Flags().StringVar(&topic, "topic", "cli.message", "Outbox topic")

	return cmd
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
