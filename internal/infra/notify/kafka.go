package notify

import (
	"context"
	"time"

	"solestore/internal/pkg/config"

	"github.com/segmentio/kafka-go"
)

// Publisher delivers a single outbox payload. The dispatcher retries failed
// jobs on the next poll, so implementations stay stateless.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(cfg config.KafkaConfig) Publisher {
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
