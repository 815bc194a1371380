package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

// JobHandler processes one decoded job. A returned error stops Run with the
// offset uncommitted, so the group redelivers the job when it restarts.
type JobHandler func(ctx context.Context, job types.NotificationJob) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Consumer struct {
	log    *logger.Logger
	reader messageReader
}

func NewConsumer(log *logger.Logger, cfg Config) (*Consumer, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing KAFKA_BROKERS")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("missing NOTIFICATION_GROUP_ID")
	}
	return &Consumer{
		log: log.With("client", "KafkaConsumer"),
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.Topic,
			GroupID:  cfg.GroupID,
			MaxBytes: 10e6,
		}),
	}, nil
}

// Run fetches jobs until ctx is done or a handler fails. Undecodable
// messages are committed and skipped.
func (c *Consumer) Run(ctx context.Context, handle JobHandler) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("fetch notification job: %w", err)
		}

		var job types.NotificationJob
		if err := json.Unmarshal(m.Value, &job); err != nil {
			c.log.Warn("Skipping undecodable notification job", "partition", m.Partition, "offset", m.Offset, "error", err)
			if cerr := c.reader.CommitMessages(ctx, m); cerr != nil {
				c.log.Warn("Commit failed", "offset", m.Offset, "error", cerr)
			}
			continue
		}

		if err := handle(ctx, job); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("notification job at offset %d: %w", m.Offset, err)
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.log.Warn("Commit failed", "offset", m.Offset, "error", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
