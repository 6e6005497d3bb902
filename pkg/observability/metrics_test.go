package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnSessionStart(ctx, &domain.SessionEvent{})
	hooks.OnSessionStart(ctx, &domain.SessionEvent{})
	hooks.OnSessionExpire(&domain.SessionEvent{Age: time.Minute})
	hooks.OnPageStore(ctx, &domain.PageEvent{Interactive: true})
	hooks.OnPageStore(ctx, &domain.PageEvent{})
	hooks.OnPageEvict(&domain.PageEvent{})
	hooks.OnRequest(ctx, &domain.RequestEvent{Kind: "render", Outcome: domain.ResponseRender})
	hooks.OnRequest(ctx, &domain.RequestEvent{Kind: "callback", Outcome: domain.ResponseError, Code: domain.CodeExpired})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsExpired))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesStored.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesStored.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesEvicted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("callback", "error", "expired")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Requests))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	observability.LogHooks(logger).OnRequest(context.Background(), &domain.RequestEvent{
		EventBase: domain.EventBase{SessionID: "s1"},
		PageID:    "3",
		Kind:      "callback",
		Outcome:   domain.ResponseError,
		Code:      domain.CodeInvalidAction,
	})

	out := buf.String()
	assert.Contains(t, out, "session_id=s1")
	assert.Contains(t, out, "page_id=3")
	assert.Contains(t, out, "code=invalid_action")
}
