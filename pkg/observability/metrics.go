package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by Hooks.
type Metrics struct {
	SessionsStarted prometheus.Counter
	SessionsExpired prometheus.Counter
	SessionsActive  prometheus.Gauge
	SessionAge      prometheus.Histogram
	PagesStored     *prometheus.CounterVec
	PagesEvicted    prometheus.Counter
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_sessions_started_total",
			Help: "Total number of sessions started",
		}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_sessions_expired_total",
			Help: "Total number of sessions destroyed",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arbor_sessions_active",
			Help: "Number of live sessions",
		}),
		SessionAge: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbor_session_age_seconds",
			Help:    "Age of sessions when they were destroyed",
			Buckets: prometheus.ExponentialBuckets(30, 2, 10),
		}),
		PagesStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_pages_stored_total",
			Help: "Total number of pages stored",
		}, []string{"interactive"}),
		PagesEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_pages_evicted_total",
			Help: "Total number of pages dropped from page stores",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_requests_total",
			Help: "Total number of handled requests",
		}, []string{"kind", "outcome", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "arbor_request_duration_seconds",
			Help:    "Duration of handled requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.SessionsStarted,
		m.SessionsExpired,
		m.SessionsActive,
		m.SessionAge,
		m.PagesStored,
		m.PagesEvicted,
		m.Requests,
		m.RequestDuration,
	)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnSessionStart: func(context.Context, *domain.SessionEvent) {
			m.SessionsStarted.Inc()
			m.SessionsActive.Inc()
		},
		OnSessionExpire: func(e *domain.SessionEvent) {
			m.SessionsExpired.Inc()
			m.SessionsActive.Dec()
			m.SessionAge.Observe(e.Age.Seconds())
		},
		OnPageStore: func(_ context.Context, e *domain.PageEvent) {
			label := "false"
			if e.Interactive {
				label = "true"
			}
			m.PagesStored.WithLabelValues(label).Inc()
		},
		OnPageEvict: func(*domain.PageEvent) {
			m.PagesEvicted.Inc()
		},
		OnRequest: func(_ context.Context, e *domain.RequestEvent) {
			m.Requests.WithLabelValues(e.Kind, string(e.Outcome), string(e.Code)).Inc()
			m.RequestDuration.WithLabelValues(e.Kind).Observe(e.Duration.Seconds())
		},
	}
}

// LogHooks returns hooks that write one log line per request.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnRequest: func(ctx context.Context, e *domain.RequestEvent) {
			attrs := []any{
				"kind", e.Kind,
				"outcome", e.Outcome,
				"session_id", e.SessionID,
				"duration", e.Duration,
			}
			if e.PageID != "" {
				attrs = append(attrs, "page_id", e.PageID)
			}
			if e.Code != "" {
				attrs = append(attrs, "code", e.Code)
			}
			logger.DebugContext(ctx, "request", attrs...)
		},
	}
}
