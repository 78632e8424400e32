package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/shaiso/Srota/internal/task"
)

// KafkaConfig — конфигурация Kafka источника.
type KafkaConfig struct {
	Brokers []string
	Topic   string

	// GroupID — consumer group. С группой offset'ы коммитятся после
	// ReadMessage, без группы чтение идёт с начала партиции 0.
	GroupID string

	MinBytes int
	MaxBytes int
}

// messageReader — часть kafka.Reader, используемая источником.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Kafka читает сообщения топика.
type Kafka struct {
	reader messageReader

	once     sync.Once
	closeErr error
}

var _ task.EventSource[kafka.Message] = (*Kafka)(nil)

// NewKafka создаёт reader и источник.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: kafka source: brokers are required", task.ErrInvalidConfig)
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: kafka source: topic is required", task.ErrInvalidConfig)
	}

	minBytes := cfg.MinBytes
	if minBytes <= 0 {
		minBytes = 1
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10e6 // 10 MB
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: minBytes,
		MaxBytes: maxBytes,
	})
	return newKafka(reader), nil
}

func newKafka(reader messageReader) *Kafka {
	return &Kafka{reader: reader}
}

// Read возвращает следующее сообщение.
func (k *Kafka) Read(ctx context.Context) (kafka.Message, error) {
	msg, err := k.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return kafka.Message{}, ctx.Err()
		}
		// Закрытый reader возвращает io.EOF
		if errors.Is(err, io.EOF) {
			return kafka.Message{}, task.ErrSourceClosed
		}
		return kafka.Message{}, fmt.Errorf("kafka read: %w", err)
	}
	return msg, nil
}

// Close закрывает reader.
func (k *Kafka) Close() error {
	k.once.Do(func() {
		k.closeErr = k.reader.Close()
	})
	return k.closeErr
}

// KafkaWriter создаёт writer для публикации в topic.
func KafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}
