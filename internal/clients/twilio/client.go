package twilio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	api "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/yungbote/opsdesk-backend/internal/platform/envutil"
	"github.com/yungbote/opsdesk-backend/internal/platform/httpx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type Client interface {
	SendSMS(ctx context.Context, to string, body string) (*Message, error)
}

type Config struct {
	AccountSID    string
	AuthToken     string
	APIKey        string
	APIKeySecret  string
	DefaultFrom   string
	DefaultRegion string
	MaxRetries    int
	RetryBase     time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		AccountSID:    envutil.String("TWILIO_ACCOUNT_SID", ""),
		AuthToken:     envutil.String("TWILIO_AUTH_TOKEN", ""),
		APIKey:        envutil.String("TWILIO_API_KEY", ""),
		APIKeySecret:  envutil.String("TWILIO_API_KEY_SECRET", ""),
		DefaultFrom:   envutil.String("TWILIO_FROM_NUMBER", ""),
		DefaultRegion: envutil.String("TWILIO_DEFAULT_REGION", "JP"),
		MaxRetries:    envutil.Int("TWILIO_MAX_RETRIES", 3),
		RetryBase:     time.Second,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	cfg.AccountSID = strings.TrimSpace(cfg.AccountSID)
	if cfg.AccountSID == "" {
		return nil, fmt.Errorf("missing TWILIO_ACCOUNT_SID")
	}
	if cfg.APIKey != "" {
		if cfg.APIKeySecret == "" {
			return nil, fmt.Errorf("missing TWILIO_API_KEY_SECRET (required when TWILIO_API_KEY is set)")
		}
	} else if cfg.AuthToken == "" {
		return nil, fmt.Errorf("missing TWILIO_AUTH_TOKEN (or provide TWILIO_API_KEY + TWILIO_API_KEY_SECRET)")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, fmt.Errorf("missing TWILIO_FROM_NUMBER")
	}
	if cfg.DefaultRegion == "" {
		cfg.DefaultRegion = "JP"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}

	params := twilio.ClientParams{Username: cfg.AccountSID, Password: cfg.AuthToken}
	if cfg.APIKey != "" {
		params = twilio.ClientParams{Username: cfg.APIKey, Password: cfg.APIKeySecret, AccountSid: cfg.AccountSID}
	}

	return &client{
		log:  log.With("client", "TwilioClient"),
		cfg:  cfg,
		rest: twilio.NewRestClientWithParams(params),
	}, nil
}

type client struct {
	log  *logger.Logger
	cfg  Config
	rest *twilio.RestClient
}

type Message struct {
	SID    string `json:"sid,omitempty"`
	To     string `json:"to,omitempty"`
	Status string `json:"status,omitempty"`
}

// SendSMS normalizes to into E.164 using the configured default region and
// sends body from the configured number.
func (c *client) SendSMS(ctx context.Context, to string, body string) (*Message, error) {
	if c == nil || c.rest == nil {
		return nil, fmt.Errorf("twilio client unavailable")
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("twilio: body required")
	}
	e164, err := NormalizePhone(to, c.cfg.DefaultRegion)
	if err != nil {
		return nil, err
	}
	from, err := NormalizePhone(c.cfg.DefaultFrom, c.cfg.DefaultRegion)
	if err != nil {
		return nil, fmt.Errorf("twilio: sender: %w", err)
	}

	params := &api.CreateMessageParams{}
	params.SetTo(e164)
	params.SetFrom(from)
	params.SetBody(body)

	var out *Message
	err = httpx.Retry(ctx, c.cfg.MaxRetries+1, c.cfg.RetryBase, func(attempt int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 0 {
			c.log.Warn("Twilio request retrying", "attempt", attempt+1, "max_retries", c.cfg.MaxRetries)
		}
		resp, err := c.rest.Api.CreateMessage(params)
		if err != nil {
			return statusError(err)
		}
		out = &Message{To: e164}
		if resp.Sid != nil {
			out.SID = *resp.Sid
		}
		if resp.Status != nil {
			out.Status = *resp.Status
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("twilio send: %w", err)
	}
	return out, nil
}

// statusError exposes the REST status of a Twilio error to the retry
// classifier.
func statusError(err error) error {
	var te *twclient.TwilioRestError
	if errors.As(err, &te) && te != nil {
		return &httpx.StatusError{Code: te.Status, Body: te.Message}
	}
	return err
}
