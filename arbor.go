package arbor

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/render"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is the library version. Release builds override it with -ldflags.
var Version = "0.1.0-dev"

// Application is the high-level entry point for the Arbor library.
// It wraps a session.Manager configured with the bundled adapters.
type Application struct {
	manager *session.Manager
	metrics *observability.Metrics
	logger  *slog.Logger

	pageCapacity int
	pageTTL      time.Duration
	registerer   prometheus.Registerer
	sessionOpts  []session.Option
}

// Option defines a functional option for configuring the Application.
type Option func(*Application)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) {
		a.logger = logger
		a.sessionOpts = append(a.sessionOpts, session.WithLogger(logger))
	}
}

// WithPageCapacity sets how many pages each session keeps (how far "back" works).
func WithPageCapacity(n int) Option {
	return func(a *Application) {
		a.pageCapacity = n
	}
}

// WithPageTTL makes pages expire ttl after they were stored.
func WithPageTTL(ttl time.Duration) Option {
	return func(a *Application) {
		a.pageTTL = ttl
	}
}

// WithSessionTTL sets the idle timeout of sessions.
func WithSessionTTL(ttl time.Duration) Option {
	return func(a *Application) {
		a.sessionOpts = append(a.sessionOpts, session.WithSessionTTL(ttl))
	}
}

// WithSessionLifetime caps the total age of sessions.
func WithSessionLifetime(d time.Duration) Option {
	return func(a *Application) {
		a.sessionOpts = append(a.sessionOpts, session.WithSessionLifetime(d))
	}
}

// WithSessionCapacity bounds the number of live sessions.
func WithSessionCapacity(n int) Option {
	return func(a *Application) {
		a.sessionOpts = append(a.sessionOpts, session.WithSessionCapacity(n))
	}
}

// WithLocker serializes each session's requests across replicas.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(a *Application) {
		a.sessionOpts = append(a.sessionOpts, session.WithLocker(locker))
		if ttl > 0 {
			a.sessionOpts = append(a.sessionOpts, session.WithLockTTL(ttl))
		}
	}
}

// WithIndex publishes live sessions to a shared index.
func WithIndex(index ports.SessionIndex) Option {
	return func(a *Application) {
		a.sessionOpts = append(a.sessionOpts, session.WithIndex(index))
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(h domain.Hooks) Option {
	return func(a *Application) {
		a.sessionOpts = append(a.sessionOpts, session.WithHooks(h))
	}
}

// WithMetrics records Prometheus metrics into reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(a *Application) {
		a.registerer = reg
	}
}

// WithResource registers a named resource.
func WithResource(name string, fn session.ResourceFunc) Option {
	return func(a *Application) {
		a.sessionOpts = append(a.sessionOpts, session.WithResource(name, fn))
	}
}

// WithDocument selects the output encoding (default: render.Outline).
func WithDocument(factory render.DocumentFactory) Option {
	return func(a *Application) {
		a.sessionOpts = append(a.sessionOpts, session.WithDocument(factory))
	}
}

// New creates an application whose sessions are rooted in trees built by root.
func New(root session.RootFactory, opts ...Option) (*Application, error) {
	a := &Application{
		logger:       logging.NewNop(),
		pageCapacity: memory.DefaultPageCapacity,
	}
	for _, opt := range opts {
		opt(a)
	}

	sessionOpts := []session.Option{
		session.WithPageStore(memory.PageFactory(a.pageCapacity, a.pageTTL)),
		session.WithHooks(observability.LogHooks(a.logger)),
	}
	if a.registerer != nil {
		a.metrics = observability.NewMetrics(a.registerer)
		sessionOpts = append(sessionOpts, session.WithHooks(a.metrics.Hooks()))
	}
	sessionOpts = append(sessionOpts, a.sessionOpts...)

	manager, err := session.NewManager(root, sessionOpts...)
	if err != nil {
		return nil, err
	}
	a.manager = manager
	return a, nil
}

// Handle processes one request.
func (a *Application) Handle(ctx context.Context, req domain.Request) domain.Response {
	return a.manager.Handle(ctx, req)
}

// Manager exposes the session manager for inspection.
func (a *Application) Manager() *session.Manager {
	return a.manager
}

// Metrics returns the collectors, or nil when WithMetrics was not used.
func (a *Application) Metrics() *observability.Metrics {
	return a.metrics
}

// Close destroys every session.
func (a *Application) Close() {
	a.manager.Close()
}
