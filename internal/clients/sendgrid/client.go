package sendgrid

import (
	"context"
	"fmt"
	"strings"
	"time"

	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/yungbote/opsdesk-backend/internal/platform/envutil"
	"github.com/yungbote/opsdesk-backend/internal/platform/httpx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string
	DefaultFromEmail string
	DefaultFromName  string
	MaxRetries       int
	RetryBase        time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:           envutil.String("SENDGRID_API_KEY", ""),
		DefaultFromEmail: envutil.String("SENDGRID_FROM_EMAIL", ""),
		DefaultFromName:  envutil.String("SENDGRID_FROM_NAME", ""),
		MaxRetries:       envutil.Int("SENDGRID_MAX_RETRIES", 3),
		RetryBase:        time.Second,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if strings.TrimSpace(cfg.DefaultFromEmail) == "" {
		return nil, fmt.Errorf("missing SENDGRID_FROM_EMAIL")
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	return &client{
		log: log.With("client", "SendGridClient"),
		cfg: cfg,
		sg:  sg.NewSendClient(cfg.APIKey),
	}, nil
}

type client struct {
	log *logger.Logger
	cfg Config
	sg  *sg.Client
}

type SendEmailRequest struct {
	FromEmail string
	FromName  string
	To        []string
	Subject   string
	Text      string
	HTML      string
}

type SendEmailResult struct {
	StatusCode int
	MessageID  string
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	if c == nil || c.sg == nil {
		return nil, fmt.Errorf("sendgrid client unavailable")
	}
	if req.FromEmail == "" {
		req.FromEmail = c.cfg.DefaultFromEmail
	}
	if req.FromName == "" {
		req.FromName = c.cfg.DefaultFromName
	}
	msg, err := buildMessage(req)
	if err != nil {
		return nil, err
	}

	var out *SendEmailResult
	err = httpx.Retry(ctx, c.cfg.MaxRetries+1, c.cfg.RetryBase, func(attempt int) error {
		if attempt > 0 {
			c.log.Warn("SendGrid send retrying", "attempt", attempt+1, "max_retries", c.cfg.MaxRetries)
		}
		resp, err := c.sg.SendWithContext(ctx, msg)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &httpx.StatusError{Code: resp.StatusCode, Body: truncate(resp.Body, 2000)}
		}
		out = &SendEmailResult{StatusCode: resp.StatusCode}
		if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
			out.MessageID = ids[0]
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sendgrid send: %w", err)
	}
	return out, nil
}

// buildMessage assembles a v3 mail with one personalization holding every
// recipient.
func buildMessage(req SendEmailRequest) (*mail.SGMailV3, error) {
	var tos []*mail.Email
	for _, addr := range req.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			tos = append(tos, mail.NewEmail("", addr))
		}
	}
	if len(tos) == 0 {
		return nil, fmt.Errorf("sendgrid: at least one recipient required")
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.HTML) == "" {
		return nil, fmt.Errorf("sendgrid: content required (Text or HTML)")
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(req.FromName, req.FromEmail))
	m.Subject = req.Subject

	p := mail.NewPersonalization()
	p.AddTos(tos...)
	m.AddPersonalizations(p)

	if req.Text != "" {
		m.AddContent(mail.NewContent("text/plain", req.Text))
	}
	if req.HTML != "" {
		m.AddContent(mail.NewContent("text/html", req.HTML))
	}
	return m, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
