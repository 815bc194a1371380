package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/opsdesk-backend/internal/platform/envutil"
	"github.com/yungbote/opsdesk-backend/internal/platform/httpx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

// Client posts plain-text messages to Slack incoming webhooks.
type Client interface {
	Post(ctx context.Context, webhookURL, text string) error
}

type Config struct {
	DefaultWebhookURL string
	Timeout           time.Duration
	MaxRetries        int
	RetryBase         time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		DefaultWebhookURL: envutil.String("SLACK_WEBHOOK_URL", ""),
		Timeout:           envutil.Seconds("SLACK_TIMEOUT_SECONDS", 10*time.Second),
		MaxRetries:        envutil.Int("SLACK_MAX_RETRIES", 3),
		RetryBase:         time.Second,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

// New builds a client. DefaultWebhookURL may be empty when every call
// supplies its own webhook.
func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	return &client{
		log:        log.With("client", "SlackClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type payload struct {
	Text string `json:"text"`
}

func (c *client) Post(ctx context.Context, webhookURL, text string) error {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		webhookURL = c.cfg.DefaultWebhookURL
	}
	if webhookURL == "" {
		return fmt.Errorf("slack: webhook url required")
	}
	raw, err := json.Marshal(payload{Text: text})
	if err != nil {
		return err
	}
	return httpx.Retry(ctx, c.cfg.MaxRetries+1, c.cfg.RetryBase, func(attempt int) error {
		if attempt > 0 {
			c.log.Warn("Slack webhook retrying", "attempt", attempt+1, "max_retries", c.cfg.MaxRetries)
		}
		return c.postOnce(ctx, webhookURL, raw)
	})
}

func (c *client) postOnce(ctx context.Context, webhookURL string, raw []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httpx.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}
