package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/opsdesk-backend/internal/clients/kafka"
	"github.com/yungbote/opsdesk-backend/internal/clients/redis"
	"github.com/yungbote/opsdesk-backend/internal/clients/sendgrid"
	"github.com/yungbote/opsdesk-backend/internal/clients/slack"
	"github.com/yungbote/opsdesk-backend/internal/clients/twilio"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

// Clients holds the optional upstreams. A nil field means the integration
// is not configured; callers fall back rather than fail.
type Clients struct {
	Redis    *goredis.Client
	Slack    slack.Client
	SendGrid sendgrid.Client
	Twilio   twilio.Client
	Producer kafka.Producer
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if rc := redis.ConfigFromEnv(); rc.Addr != "" {
		rdb, err := redis.NewClient(log, rc)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	}

	// Slack
	if sc := slack.ConfigFromEnv(); sc.DefaultWebhookURL != "" {
		c, err := slack.New(log, sc)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init slack client: %w", err)
		}
		out.Slack = c
	} else {
		log.Warn("SLACK_WEBHOOK_URL not set, slack notifications are logged only")
	}

	// SendGrid
	if gc := sendgrid.ConfigFromEnv(); gc.APIKey != "" {
		c, err := sendgrid.New(log, gc)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		out.SendGrid = c
	} else {
		log.Warn("SENDGRID_API_KEY not set, email notifications are logged only")
	}

	// Twilio
	if tc := twilio.ConfigFromEnv(); tc.AccountSID != "" {
		c, err := twilio.New(log, tc)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init twilio client: %w", err)
		}
		out.Twilio = c
	} else {
		log.Warn("TWILIO_ACCOUNT_SID not set, sms notifications are logged only")
	}

	// Kafka
	if kc := kafka.ConfigFromEnv(); cfg.NotificationAsync && kc.Enabled() {
		p, err := kafka.NewProducer(log, kc)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init kafka producer: %w", err)
		}
		out.Producer = p
	} else if cfg.NotificationAsync {
		log.Warn("NOTIFICATION_ASYNC set without KAFKA_BROKERS, delivering inline")
	}

	return out, nil
}

func (c Clients) Close() {
	if c.Producer != nil {
		_ = c.Producer.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
