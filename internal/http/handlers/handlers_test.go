package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/yungbote/opsdesk-backend/internal/data/repos"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/platform/apierr"
	"github.com/yungbote/opsdesk-backend/internal/services"
)

type fakeTemplateService struct {
	services.TemplateService
	gotModule string
	gotFilter templating.FieldFilter
	promptErr error
}

func (f *fakeTemplateService) Expand(template string, data templating.Context) string {
	return templating.Expand(template, data)
}

func (f *fakeTemplateService) GeneratePrompt(ctx context.Context, module string, req services.PromptRequest) (*services.PromptResult, error) {
	f.gotModule = module
	if f.promptErr != nil {
		return nil, f.promptErr
	}
	return &services.PromptResult{PromptType: req.PromptType, Prompt: "p", Completion: "c", Provider: "simulated"}, nil
}

func (f *fakeTemplateService) PreviewNotification(ctx context.Context, module string, data templating.Context, channel string) (*services.NotificationPreview, error) {
	return nil, apierr.NotFound("notification_template_not_found", &templating.NotFoundError{Module: module, Channel: templating.Channel(channel)})
}

func (f *fakeTemplateService) ListFields(ctx context.Context, module string, filter templating.FieldFilter) ([]*types.FieldDefinition, error) {
	f.gotModule, f.gotFilter = module, filter
	return []*types.FieldDefinition{}, nil
}

type fakeNotificationService struct {
	services.NotificationService
	queued bool
	gotJob types.NotificationJob
	gotQ   repos.HistoryQuery
}

func (f *fakeNotificationService) Dispatch(ctx context.Context, job types.NotificationJob) (*services.DispatchResult, error) {
	f.gotJob = job
	if f.queued {
		return &services.DispatchResult{Queued: true}, nil
	}
	return &services.DispatchResult{Results: map[string]types.DeliveryResult{"slack_Slack通知": {Success: true}}}, nil
}

func (f *fakeNotificationService) History(ctx context.Context, q repos.HistoryQuery) ([]*types.NotificationHistory, error) {
	f.gotQ = q
	return []*types.NotificationHistory{}, nil
}

type fakeSearchService struct {
	services.SearchService
	gotOpts services.SearchOptions
}

func (f *fakeSearchService) FullTextSearch(ctx context.Context, opts services.SearchOptions) (*services.SearchResponse, error) {
	f.gotOpts = opts
	return &services.SearchResponse{Results: []services.SearchResult{}}, nil
}

type fakeVerificationService struct {
	services.VerificationService
}

func (fakeVerificationService) VerifyModule(ctx context.Context, module string) []services.VerificationResult {
	return []services.VerificationResult{{Module: module, Test: "基本機能確認", Status: services.VerificationPass}}
}

type fakeAdminService struct {
	services.TemplateAdminService
}

func (fakeAdminService) Get(ctx context.Context, id uuid.UUID) (*types.ModuleTemplate, error) {
	return nil, apierr.NotFound("template_not_found", errors.New("template not found"))
}

func serve(t *testing.T, register func(r *gin.Engine), method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, rec, &env)
	return env.Error.Code
}

func TestTemplateHandler(t *testing.T) {
	svc := &fakeTemplateService{}
	h := NewTemplateHandler(svc)
	register := func(r *gin.Engine) {
		r.POST("/api/templates/expand", h.Expand)
		r.POST("/api/modules/:module/prompts", h.GeneratePrompt)
		r.POST("/api/modules/:module/notifications/preview", h.PreviewNotification)
	}

	rec := serve(t, register, http.MethodPost, "/api/templates/expand", map[string]any{
		"template": "{{name}}様",
		"context":  map[string]any{"name": "山田"},
	})
	var expanded struct{ Result string }
	decode(t, rec, &expanded)
	if rec.Code != http.StatusOK || expanded.Result != "山田様" {
		t.Fatalf("expand: %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(t, register, http.MethodPost, "/api/modules/leads/prompts", map[string]any{"prompt_type": "analysis"})
	if rec.Code != http.StatusOK || svc.gotModule != "leads" {
		t.Fatalf("prompt: %d %s", rec.Code, rec.Body.String())
	}

	svc.promptErr = apierr.Upstream("completion_failed", errors.New("down"))
	rec = serve(t, register, http.MethodPost, "/api/modules/leads/prompts", map[string]any{})
	if rec.Code != http.StatusBadGateway || errorCode(t, rec) != "completion_failed" {
		t.Fatalf("prompt error: %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(t, register, http.MethodPost, "/api/modules/unknown/notifications/preview", map[string]any{"channel": "slack"})
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "notification_template_not_found" {
		t.Fatalf("preview: %d %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/templates/expand", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	r := gin.New()
	register(r)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_request" {
		t.Fatalf("malformed body: %d %s", rec.Code, rec.Body.String())
	}
}

func TestFieldHandler_ListFieldsFilter(t *testing.T) {
	svc := &fakeTemplateService{}
	h := NewFieldHandler(svc)
	rec := serve(t, func(r *gin.Engine) { r.GET("/api/modules/:module/fields", h.ListFields) },
		http.MethodGet, "/api/modules/tasks/fields?ai_enabled=true&visible=false&variable_enabled=maybe", nil)

	if rec.Code != http.StatusOK || svc.gotModule != "tasks" {
		t.Fatalf("list fields: %d %s", rec.Code, rec.Body.String())
	}
	f := svc.gotFilter
	if f.AIEnabled == nil || !*f.AIEnabled || f.Visible == nil || *f.Visible || f.VariableEnabled != nil {
		t.Fatalf("unexpected filter %+v", f)
	}
	var body struct {
		Fields []any `json:"fields"`
	}
	decode(t, rec, &body)
	if body.Fields == nil {
		t.Fatalf("expected empty list, not null: %s", rec.Body.String())
	}
}

func TestNotificationHandler(t *testing.T) {
	job := map[string]any{
		"data":    map[string]any{"name": "山田"},
		"configs": []map[string]any{{"channel": "slack"}},
		"module":  "ignored",
	}

	inline := &fakeNotificationService{}
	h := NewNotificationHandler(inline)
	register := func(r *gin.Engine) {
		r.POST("/api/modules/:module/notifications", h.Send)
		r.GET("/api/notifications/history", h.History)
	}
	rec := serve(t, register, http.MethodPost, "/api/modules/leads/notifications", job)
	if rec.Code != http.StatusOK || inline.gotJob.Module != "leads" || len(inline.gotJob.Configs) != 1 {
		t.Fatalf("inline send: %d %s job=%+v", rec.Code, rec.Body.String(), inline.gotJob)
	}

	queued := &fakeNotificationService{queued: true}
	hq := NewNotificationHandler(queued)
	rec = serve(t, func(r *gin.Engine) { r.POST("/api/modules/:module/notifications", hq.Send) },
		http.MethodPost, "/api/modules/leads/notifications", job)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("queued send: %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(t, register, http.MethodGet, "/api/notifications/history?module=leads&linked_id=l1&limit=5", nil)
	want := repos.HistoryQuery{ModuleName: "leads", LinkedID: "l1", Limit: 5}
	if rec.Code != http.StatusOK {
		t.Fatalf("history: %d", rec.Code)
	}
	if diff := cmp.Diff(want, inline.gotQ); diff != "" {
		t.Fatalf("history query mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchHandler_QueryParams(t *testing.T) {
	svc := &fakeSearchService{}
	h := NewSearchHandler(svc)
	register := func(r *gin.Engine) {
		r.GET("/api/search", h.Search)
		r.GET("/api/search/similar", h.Similar)
	}

	rec := serve(t, register, http.MethodGet, "/api/search?q=%E5%96%B6%E6%A5%AD&tables=leads,+tasks,&limit=5&sort_by=date", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: %d %s", rec.Code, rec.Body.String())
	}
	want := services.SearchOptions{Query: "営業", Tables: []string{"leads", "tasks"}, Limit: 5, SortBy: "date", SortOrder: "desc"}
	if diff := cmp.Diff(want, svc.gotOpts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	rec = serve(t, register, http.MethodGet, "/api/search/similar?table=leads", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("similar without record_id: %d", rec.Code)
	}
}

func TestVerificationAndAdminHandlers(t *testing.T) {
	vh := NewVerificationHandler(fakeVerificationService{})
	ah := NewTemplateAdminHandler(fakeAdminService{})
	register := func(r *gin.Engine) {
		r.GET("/api/verification/:module", vh.VerifyModule)
		r.GET("/api/templates/:id", ah.Get)
	}

	rec := serve(t, register, http.MethodGet, "/api/verification/users", nil)
	var body struct {
		Results []services.VerificationResult `json:"results"`
	}
	decode(t, rec, &body)
	if rec.Code != http.StatusOK || len(body.Results) != 1 || body.Results[0].Module != "users" {
		t.Fatalf("verify: %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(t, register, http.MethodGet, "/api/templates/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_template_id" {
		t.Fatalf("bad id: %d %s", rec.Code, rec.Body.String())
	}
	rec = serve(t, register, http.MethodGet, "/api/templates/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "template_not_found" {
		t.Fatalf("missing template: %d %s", rec.Code, rec.Body.String())
	}
}
