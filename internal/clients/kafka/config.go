package kafka

import (
	"github.com/yungbote/opsdesk-backend/internal/platform/envutil"
)

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

func ConfigFromEnv() Config {
	return Config{
		Brokers: envutil.CSV("KAFKA_BROKERS", nil),
		Topic:   envutil.String("NOTIFICATION_TOPIC", "opsdesk.notifications"),
		GroupID: envutil.String("NOTIFICATION_GROUP_ID", "opsdesk-notification-worker"),
	}
}

// Enabled reports whether brokers are configured.
func (c Config) Enabled() bool { return len(c.Brokers) > 0 }
