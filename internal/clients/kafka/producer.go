package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

// Producer enqueues notification jobs.
type Producer interface {
	Publish(ctx context.Context, job types.NotificationJob) error
	Close() error
}

type producer struct {
	log    *logger.Logger
	topic  string
	writer *kafkago.Writer
}

func NewProducer(log *logger.Logger, cfg Config) (Producer, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing KAFKA_BROKERS")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("missing NOTIFICATION_TOPIC")
	}
	return &producer{
		log:   log.With("client", "KafkaProducer"),
		topic: cfg.Topic,
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}, nil
}

func (p *producer) Publish(ctx context.Context, job types.NotificationJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode notification job: %w", err)
	}
	// Keyed by module so one module's jobs stay ordered on a partition.
	msg := kafkago.Message{Key: []byte(job.Module), Value: raw}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Failed to publish notification job", "topic", p.topic, "module", job.Module, "error", err)
		return fmt.Errorf("publish notification job: %w", err)
	}
	p.log.Debug("Published notification job", "topic", p.topic, "module", job.Module)
	return nil
}

func (p *producer) Close() error {
	return p.writer.Close()
}
