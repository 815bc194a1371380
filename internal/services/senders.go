package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/opsdesk-backend/internal/clients/sendgrid"
	"github.com/yungbote/opsdesk-backend/internal/clients/slack"
	"github.com/yungbote/opsdesk-backend/internal/clients/twilio"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

// ChannelSender delivers expanded content over one channel and returns the
// provider's message id.
type ChannelSender interface {
	Deliver(ctx context.Context, cfg types.DeliveryConfig, content string) (string, error)
}

type slackSender struct {
	client slack.Client
}

func NewSlackSender(client slack.Client) ChannelSender {
	return &slackSender{client: client}
}

func (s *slackSender) Deliver(ctx context.Context, cfg types.DeliveryConfig, content string) (string, error) {
	if err := s.client.Post(ctx, cfg.WebhookURL, content); err != nil {
		return "", err
	}
	return fmt.Sprintf("slack_%d", time.Now().UnixMilli()), nil
}

type emailSender struct {
	client sendgrid.Client
}

func NewEmailSender(client sendgrid.Client) ChannelSender {
	return &emailSender{client: client}
}

// Deliver takes the subject from the config when set, otherwise from the
// content's 件名 line.
func (s *emailSender) Deliver(ctx context.Context, cfg types.DeliveryConfig, content string) (string, error) {
	subject, body := templating.SplitEmail(content)
	if v := strings.TrimSpace(cfg.Subject); v != "" {
		subject = v
	}
	res, err := s.client.Send(ctx, sendgrid.SendEmailRequest{
		To:      cfg.Recipients,
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return "", err
	}
	if res.MessageID != "" {
		return res.MessageID, nil
	}
	return fmt.Sprintf("email_%d", time.Now().UnixMilli()), nil
}

type smsSender struct {
	client twilio.Client
}

func NewSMSSender(client twilio.Client) ChannelSender {
	return &smsSender{client: client}
}

// Deliver sends one message per recipient and fails on the first error.
func (s *smsSender) Deliver(ctx context.Context, cfg types.DeliveryConfig, content string) (string, error) {
	if len(cfg.Recipients) == 0 {
		return "", fmt.Errorf("sms: at least one recipient required")
	}
	ids := make([]string, 0, len(cfg.Recipients))
	for _, to := range cfg.Recipients {
		msg, err := s.client.SendSMS(ctx, to, content)
		if err != nil {
			return strings.Join(ids, ","), err
		}
		ids = append(ids, msg.SID)
	}
	return strings.Join(ids, ","), nil
}

// logSender stands in for channels without provider credentials. It only
// logs and always succeeds.
type logSender struct {
	log     *logger.Logger
	channel string
}

func NewLogSender(log *logger.Logger, channel string) ChannelSender {
	return &logSender{log: log.With("sender", "LogSender", "channel", channel), channel: channel}
}

func (s *logSender) Deliver(ctx context.Context, cfg types.DeliveryConfig, content string) (string, error) {
	s.log.Info("Notification delivered to log", "recipients", cfg.Recipients, "length", len(content))
	return fmt.Sprintf("%s_%d", s.channel, time.Now().UnixMilli()), nil
}
