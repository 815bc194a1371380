package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/opsdesk-backend/internal/data/dberr"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/inference/engine"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/observability"
	"github.com/yungbote/opsdesk-backend/internal/platform/apierr"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type PromptRequest struct {
	Data         templating.Context `json:"data"`
	PromptType   string             `json:"prompt_type"`
	CustomPrompt string             `json:"custom_prompt,omitempty"`
}

type PromptResult struct {
	PromptType string `json:"prompt_type"`
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Provider   string `json:"provider"`
}

type NotificationPreview struct {
	Channel string `json:"channel"`
	Content string `json:"content"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

// TemplateService is the request-facing wrapper around the templating
// engine. It maps engine and store failures to API errors and records
// metrics; the engine itself stays silent.
type TemplateService interface {
	Expand(template string, data templating.Context) string
	GeneratePrompt(ctx context.Context, module string, req PromptRequest) (*PromptResult, error)
	PreviewNotification(ctx context.Context, module string, data templating.Context, channel string) (*NotificationPreview, error)
	ListVariables(ctx context.Context, module string) ([]string, error)
	ValidateTemplate(ctx context.Context, template, module string) (*templating.ValidationResult, error)
	ListFields(ctx context.Context, module string, filter templating.FieldFilter) ([]*types.FieldDefinition, error)
	ValidateRecord(ctx context.Context, module string, data templating.Context) (*templating.RecordValidation, error)
}

type templateService struct {
	log      *logger.Logger
	engine   *templating.Engine
	store    templating.FieldStore
	provider engine.CompletionProvider
}

func NewTemplateService(log *logger.Logger, store templating.FieldStore, provider engine.CompletionProvider) TemplateService {
	return &templateService{
		log:      log.With("service", "TemplateService"),
		engine:   templating.NewEngine(store),
		store:    store,
		provider: provider,
	}
}

func (s *templateService) Expand(template string, data templating.Context) string {
	observability.Current().IncExpansion()
	return templating.Expand(template, data)
}

// GeneratePrompt builds the module prompt, or expands CustomPrompt against
// the data when one is given, and asks the provider to complete it.
func (s *templateService) GeneratePrompt(ctx context.Context, module string, req PromptRequest) (*PromptResult, error) {
	ctx, span := observability.StartSpan(ctx, "template.generate_prompt", attribute.String("module", module))
	defer span.End()

	pt := templating.ParsePromptType(req.PromptType)
	m := observability.Current()

	var prompt string
	if strings.TrimSpace(req.CustomPrompt) != "" {
		prompt = templating.Expand(req.CustomPrompt, req.Data)
	} else {
		p, err := s.engine.GeneratePrompt(ctx, module, req.Data, pt)
		if err != nil {
			m.IncPrompt(metricModule(module), string(pt), "error")
			s.log.Error("Prompt generation failed", "module", module, "error", err)
			return nil, dberr.Map("field_list", err)
		}
		prompt = p
	}
	m.IncPrompt(metricModule(module), string(pt), "ok")

	completion, err := s.provider.Complete(ctx, engine.CompletionRequest{
		Module:     module,
		PromptType: string(pt),
		Prompt:     prompt,
	})
	if err != nil {
		m.IncCompletion(s.provider.Name(), "error")
		s.log.Warn("Completion failed", "module", module, "provider", s.provider.Name(), "error", err)
		return nil, apierr.Upstream("completion_failed", fmt.Errorf("complete prompt: %w", err))
	}
	m.IncCompletion(s.provider.Name(), "ok")

	return &PromptResult{
		PromptType: string(pt),
		Prompt:     prompt,
		Completion: completion,
		Provider:   s.provider.Name(),
	}, nil
}

func (s *templateService) PreviewNotification(ctx context.Context, module string, data templating.Context, channel string) (*NotificationPreview, error) {
	return BuildNotificationPreview(module, data, channel)
}

// BuildNotificationPreview renders the built-in notification for module and
// channel. It reads no stored state.
func BuildNotificationPreview(module string, data templating.Context, channel string) (*NotificationPreview, error) {
	ch := templating.Channel(strings.ToLower(strings.TrimSpace(channel)))
	if !ch.Valid() {
		return nil, apierr.BadRequest("invalid_channel", fmt.Errorf("unsupported channel %q", channel))
	}
	tpl, err := templating.NotificationTemplate(module, ch)
	if err != nil {
		return nil, apierr.NotFound("notification_template_not_found", err)
	}
	content := templating.Expand(tpl, data)
	out := &NotificationPreview{Channel: string(ch), Content: content}
	if ch == templating.ChannelEmail {
		out.Subject, out.Body = templating.SplitEmail(content)
	}
	return out, nil
}

func (s *templateService) ListVariables(ctx context.Context, module string) ([]string, error) {
	vars, err := s.engine.ListVariables(ctx, module)
	if err != nil {
		return nil, dberr.Map("field_list", err)
	}
	return vars, nil
}

func (s *templateService) ValidateTemplate(ctx context.Context, template, module string) (*templating.ValidationResult, error) {
	res, err := s.engine.Validate(ctx, template, module)
	if err != nil {
		return nil, dberr.Map("field_list", err)
	}
	observability.Current().IncValidation(metricModule(module), res.IsValid)
	if !res.IsValid {
		s.log.Debug("Template references undeclared variables", "module", module, "missing", res.MissingVariables)
	}
	return &res, nil
}

func (s *templateService) ListFields(ctx context.Context, module string, filter templating.FieldFilter) ([]*types.FieldDefinition, error) {
	fields, err := s.store.ListFields(ctx, module, filter)
	if err != nil {
		return nil, dberr.Map("field_list", err)
	}
	return fields, nil
}

func (s *templateService) ValidateRecord(ctx context.Context, module string, data templating.Context) (*templating.RecordValidation, error) {
	res, err := s.engine.ValidateRecord(ctx, module, data)
	if err != nil {
		return nil, dberr.Map("field_list", err)
	}
	observability.Current().IncRecordValidation(metricModule(module), res.IsValid)
	return &res, nil
}
