package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/opsdesk-backend/internal/clients/slack"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

func countingServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDispatchPostsOnlyToConfiguredSlackWebhook(t *testing.T) {
	var configuredHits, requestHits atomic.Int32
	configured := countingServer(t, &configuredHits)
	requested := countingServer(t, &requestHits)

	client, err := slack.New(logger.Nop(), slack.Config{DefaultWebhookURL: configured.URL, MaxRetries: 2, RetryBase: time.Millisecond})
	if err != nil {
		t.Fatalf("slack.New: %v", err)
	}
	svc := NewNotificationService(logger.Nop(),
		&fakeTemplateRepo{active: map[string]*types.ModuleTemplate{}},
		&fakeHistoryRepo{},
		&fakeStore{},
		map[templating.Channel]ChannelSender{templating.ChannelSlack: NewSlackSender(client)},
		nil,
	)

	body := `{"module":"tasks","data":{"title":"資料作成","status":"進行中"},` +
		`"configs":[{"channel":"slack","webhook_url":"` + requested.URL + `/internal/admin"}]}`
	var job types.NotificationJob
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.Configs[0].WebhookURL != "" {
		t.Fatalf("webhook_url decoded from request: %q", job.Configs[0].WebhookURL)
	}

	res, err := svc.Dispatch(context.Background(), job)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if r := res.Results["slack_タスク更新通知"]; !r.Success {
		t.Fatalf("delivery failed: %+v", res.Results)
	}
	if n := requestHits.Load(); n != 0 {
		t.Fatalf("request-supplied webhook contacted %d times", n)
	}
	if n := configuredHits.Load(); n != 1 {
		t.Fatalf("configured webhook hits = %d, want 1", n)
	}
}

func TestQueuedJobDropsWebhookURL(t *testing.T) {
	job := types.NotificationJob{
		Module:  "tasks",
		Configs: []types.DeliveryConfig{{Channel: "slack", WebhookURL: "http://169.254.169.254/"}},
	}
	raw, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back types.NotificationJob
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Configs[0].WebhookURL != "" {
		t.Fatalf("webhook survived the queue encoding: %s", raw)
	}
}
