package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.IncPrompt("tasks", "summary", "ok")
	m.ObserveDelivery("tasks", "slack", true, time.Millisecond)
	m.IncVerification("tasks", "pass")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	m := newMetrics(prometheus.NewRegistry())
	m.ObserveAPI("POST", "/api/templates/expand", "200", 5*time.Millisecond)
	m.IncExpansion()
	m.ObserveDelivery("leads", "email", false, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	body := string(raw)

	for _, want := range []string{
		`opsdesk_api_requests_total{method="POST",route="/api/templates/expand",status="200"} 1`,
		`opsdesk_template_expansions_total 1`,
		`opsdesk_notification_deliveries_total{channel="email",module="leads",status="failure"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in exposition", want)
		}
	}
}
