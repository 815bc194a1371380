package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/opsdesk-backend/internal/clients/kafka"
	"github.com/yungbote/opsdesk-backend/internal/data/dberr"
	"github.com/yungbote/opsdesk-backend/internal/data/repos"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/observability"
	"github.com/yungbote/opsdesk-backend/internal/platform/apierr"
	"github.com/yungbote/opsdesk-backend/internal/platform/dbctx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

const bulkSendConcurrency = 4

// DispatchResult is what the API returns for a send. Results is empty when
// the job was queued for the worker.
type DispatchResult struct {
	Queued  bool                            `json:"queued"`
	Results map[string]types.DeliveryResult `json:"results,omitempty"`
}

type NotificationService interface {
	// SendTemplateNotification delivers one stored template over cfg's
	// channel. Failures are reported in the result, never as an error.
	SendTemplateNotification(ctx context.Context, module, linkedID, templateName string, data templating.Context, cfg types.DeliveryConfig) types.DeliveryResult
	// SendBulk delivers to every config concurrently, keyed
	// "<channel>_<templateName>".
	SendBulk(ctx context.Context, job types.NotificationJob) map[string]types.DeliveryResult
	// Dispatch queues job when async delivery is configured and sends it
	// inline otherwise.
	Dispatch(ctx context.Context, job types.NotificationJob) (*DispatchResult, error)
	History(ctx context.Context, q repos.HistoryQuery) ([]*types.NotificationHistory, error)
}

type notificationService struct {
	log       *logger.Logger
	templates repos.ModuleTemplateRepo
	history   repos.NotificationHistoryRepo
	engine    *templating.Engine
	senders   map[templating.Channel]ChannelSender
	producer  kafka.Producer
}

// NewNotificationService wires senders per channel; channels absent from
// senders get a log-only sender. producer may be nil for inline delivery.
func NewNotificationService(
	log *logger.Logger,
	templates repos.ModuleTemplateRepo,
	history repos.NotificationHistoryRepo,
	store templating.FieldStore,
	senders map[templating.Channel]ChannelSender,
	producer kafka.Producer,
) NotificationService {
	serviceLog := log.With("service", "NotificationService")
	all := map[templating.Channel]ChannelSender{}
	for _, ch := range []templating.Channel{templating.ChannelSlack, templating.ChannelEmail, templating.ChannelSMS} {
		if s, ok := senders[ch]; ok && s != nil {
			all[ch] = s
			continue
		}
		all[ch] = NewLogSender(serviceLog, string(ch))
	}
	return &notificationService{
		log:       serviceLog,
		templates: templates,
		history:   history,
		engine:    templating.NewEngine(store),
		senders:   all,
		producer:  producer,
	}
}

func (s *notificationService) SendTemplateNotification(ctx context.Context, module, linkedID, templateName string, data templating.Context, cfg types.DeliveryConfig) types.DeliveryResult {
	start := time.Now()
	ch := templating.Channel(strings.ToLower(strings.TrimSpace(cfg.Channel)))

	content, err := s.render(ctx, module, templateName, data, ch)
	var res types.DeliveryResult
	if err != nil {
		res = types.DeliveryResult{Success: false, Error: err.Error()}
	} else {
		id, derr := s.senders[ch].Deliver(ctx, cfg, content)
		if derr != nil {
			res = types.DeliveryResult{Success: false, MessageID: id, Error: derr.Error()}
		} else {
			res = types.DeliveryResult{Success: true, MessageID: id}
		}
	}

	observability.Current().ObserveDelivery(metricModule(module), metricChannel(ch), res.Success, time.Since(start))
	if !res.Success {
		s.log.Warn("Notification delivery failed", "module", module, "channel", ch, "template", templateName, "error", res.Error)
	}
	s.record(ctx, module, linkedID, templateName, ch, content, cfg, res)
	return res
}

// render resolves the active stored template for (module, name, channel),
// falling back to the built-in template for (module, channel).
func (s *notificationService) render(ctx context.Context, module, templateName string, data templating.Context, ch templating.Channel) (string, error) {
	if !ch.Valid() {
		return "", fmt.Errorf("unsupported channel: %s", ch)
	}
	row, err := s.templates.FindActive(dbctx.Context{Ctx: ctx}, module, templateName, types.TemplateType(ch))
	if err != nil {
		return "", fmt.Errorf("load template %q: %w", templateName, err)
	}
	if row != nil {
		return templating.Expand(row.Content, data), nil
	}
	content, err := s.engine.GenerateNotification(module, data, ch)
	if err != nil {
		return "", fmt.Errorf("Template not found: %s", templateName)
	}
	return content, nil
}

func (s *notificationService) record(ctx context.Context, module, linkedID, templateName string, ch templating.Channel, content string, cfg types.DeliveryConfig, res types.DeliveryResult) {
	recipients, _ := json.Marshal(cfg.Recipients)
	if cfg.Recipients == nil {
		recipients = []byte("[]")
	}
	result, _ := json.Marshal(res)
	row := &types.NotificationHistory{
		ModuleName:   module,
		LinkedID:     linkedID,
		Channel:      string(ch),
		TemplateName: templateName,
		Content:      content,
		Recipients:   datatypes.JSON(recipients),
		Result:       datatypes.JSON(result),
		Success:      res.Success,
	}
	if _, err := s.history.Create(dbctx.Context{Ctx: ctx}, []*types.NotificationHistory{row}); err != nil {
		s.log.Error("Failed to record notification history", "module", module, "channel", ch, "error", err)
	}
}

func (s *notificationService) SendBulk(ctx context.Context, job types.NotificationJob) map[string]types.DeliveryResult {
	var (
		mu  sync.Mutex
		out = make(map[string]types.DeliveryResult, len(job.Configs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkSendConcurrency)
	for _, cfg := range job.Configs {
		cfg := cfg
		ch := templating.Channel(strings.ToLower(strings.TrimSpace(cfg.Channel)))
		name := job.TemplateName
		if name == "" {
			name = templating.DefaultTemplateName(job.Module, ch)
		}
		g.Go(func() error {
			res := s.SendTemplateNotification(gctx, job.Module, job.LinkedID, name, job.Data, cfg)
			mu.Lock()
			out[string(ch)+"_"+name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *notificationService) Dispatch(ctx context.Context, job types.NotificationJob) (*DispatchResult, error) {
	if strings.TrimSpace(job.Module) == "" {
		return nil, apierr.BadRequest("notification_module_required", fmt.Errorf("module required"))
	}
	if len(job.Configs) == 0 {
		return nil, apierr.BadRequest("notification_configs_required", fmt.Errorf("at least one delivery config required"))
	}
	if s.producer != nil {
		if err := s.producer.Publish(ctx, job); err != nil {
			observability.Current().IncJobPublished("error")
			return nil, apierr.Upstream("notification_enqueue_failed", err)
		}
		observability.Current().IncJobPublished("ok")
		return &DispatchResult{Queued: true}, nil
	}
	return &DispatchResult{Results: s.SendBulk(ctx, job)}, nil
}

func (s *notificationService) History(ctx context.Context, q repos.HistoryQuery) ([]*types.NotificationHistory, error) {
	rows, err := s.history.List(dbctx.Context{Ctx: ctx}, q)
	if err != nil {
		return nil, dberr.Map("notification_history", err)
	}
	return rows, nil
}
