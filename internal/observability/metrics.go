package observability

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge
	rateLimited *prometheus.CounterVec

	expansions      prometheus.Counter
	promptTotal     *prometheus.CounterVec
	completionTotal *prometheus.CounterVec
	validations     *prometheus.CounterVec
	recordChecks    *prometheus.CounterVec

	deliveries       *prometheus.CounterVec
	deliveryLatency  *prometheus.HistogramVec
	jobsPublished    *prometheus.CounterVec
	searches         *prometheus.CounterVec
	verificationRuns *prometheus.CounterVec

	pgStats   *prometheus.GaugeVec
	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

// Current returns the process metrics, or nil when metrics are disabled.
// Every method is nil-safe.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics(prometheus.NewRegistry())
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opsdesk_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opsdesk_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_api_rate_limited_total",
			Help: "Requests rejected by the rate limiter by route.",
		}, []string{"route"}),
		expansions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opsdesk_template_expansions_total",
			Help: "Template expansions performed through the API.",
		}),
		promptTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_prompts_generated_total",
			Help: "AI prompts generated by module/prompt_type/status.",
		}, []string{"module", "prompt_type", "status"}),
		completionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_completions_total",
			Help: "Completion provider calls by provider/status.",
		}, []string{"provider", "status"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_template_validations_total",
			Help: "Template validations by module/outcome.",
		}, []string{"module", "outcome"}),
		recordChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_record_validations_total",
			Help: "Record form validations by module/outcome.",
		}, []string{"module", "outcome"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_notification_deliveries_total",
			Help: "Notification deliveries by module/channel/status.",
		}, []string{"module", "channel", "status"}),
		deliveryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opsdesk_notification_delivery_duration_seconds",
			Help:    "Notification delivery latency by channel.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),
		jobsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_notification_jobs_published_total",
			Help: "Notification jobs enqueued by status.",
		}, []string{"status"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_searches_total",
			Help: "Searches by kind/status.",
		}, []string{"kind", "status"}),
		verificationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsdesk_verification_results_total",
			Help: "Verification check results by module/status.",
		}, []string{"module", "status"}),
		pgStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "opsdesk_postgres_pool",
			Help: "Postgres connection pool stats by state.",
		}, []string{"state"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opsdesk_redis_up",
			Help: "1 when the last Redis ping succeeded.",
		}),
		redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opsdesk_redis_ping_seconds",
			Help: "Latency of the last Redis ping.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight, m.rateLimited,
		m.expansions, m.promptTotal, m.completionTotal, m.validations, m.recordChecks,
		m.deliveries, m.deliveryLatency, m.jobsPublished, m.searches, m.verificationRuns,
		m.pgStats, m.redisUp, m.redisPing,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on a dedicated listener until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

func (m *Metrics) IncExpansion() {
	if m == nil {
		return
	}
	m.expansions.Inc()
}

func (m *Metrics) IncPrompt(module, promptType, status string) {
	if m == nil {
		return
	}
	m.promptTotal.WithLabelValues(module, promptType, status).Inc()
}

func (m *Metrics) IncCompletion(provider, status string) {
	if m == nil {
		return
	}
	m.completionTotal.WithLabelValues(provider, status).Inc()
}

func (m *Metrics) IncValidation(module string, valid bool) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(module, outcome(valid)).Inc()
}

func (m *Metrics) IncRecordValidation(module string, valid bool) {
	if m == nil {
		return
	}
	m.recordChecks.WithLabelValues(module, outcome(valid)).Inc()
}

func (m *Metrics) ObserveDelivery(module, channel string, success bool, dur time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.deliveries.WithLabelValues(module, channel, status).Inc()
	m.deliveryLatency.WithLabelValues(channel).Observe(dur.Seconds())
}

func (m *Metrics) IncJobPublished(status string) {
	if m == nil {
		return
	}
	m.jobsPublished.WithLabelValues(status).Inc()
}

func (m *Metrics) IncSearch(kind, status string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) IncVerification(module, status string) {
	if m == nil {
		return
	}
	m.verificationRuns.WithLabelValues(module, status).Inc()
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("postgres collector disabled", "error", err)
		}
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			st := sqlDB.Stats()
			m.pgStats.WithLabelValues("open").Set(float64(st.OpenConnections))
			m.pgStats.WithLabelValues("in_use").Set(float64(st.InUse))
			m.pgStats.WithLabelValues("idle").Set(float64(st.Idle))
			m.pgStats.WithLabelValues("wait_count").Set(float64(st.WaitCount))
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			start := time.Now()
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := rdb.Ping(pingCtx).Err()
			cancel()
			if err != nil {
				m.redisUp.Set(0)
				if log != nil {
					log.Debug("redis ping failed", "error", err)
				}
			} else {
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS"))
	if v == "" {
		return 15 * time.Second
	}
	d, err := time.ParseDuration(v + "s")
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

func outcome(ok bool) string {
	if ok {
		return "valid"
	}
	return "invalid"
}
