package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/idgen"
	"github.com/aretw0/arbor/pkg/page"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/render"
)

const (
	DefaultSessionTTL      = 30 * time.Minute
	DefaultSessionCapacity = 10000
	DefaultLockTTL         = 30 * time.Second

	// indexHorizon is the expiry reported to the index for sessions that never expire.
	indexHorizon = 24 * time.Hour
)

// ResourceFunc serves a named resource without touching any page.
type ResourceFunc func(ctx context.Context, req domain.Request) (domain.Response, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager runs requests against sessions, ensuring that at most one request
// per session is in flight. It uses reference counting to garbage collect
// unused locks.
type Manager struct {
	factory RootFactory
	dir     *directory

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	index   ports.SessionIndex // Optional shared session index

	pages      ports.PageStoreFactory
	sessionIDs idgen.Generator
	documents  render.DocumentFactory
	resources  map[string]ResourceFunc
	hooks      domain.Hooks

	sessionTTL      time.Duration
	sessionLifetime time.Duration
	sessionCapacity int

	now    func() time.Time
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL bounds how long a distributed lock survives a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithIndex publishes live sessions to a shared index.
func WithIndex(index ports.SessionIndex) Option {
	return func(m *Manager) {
		m.index = index
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks registers lifecycle hooks. Calling it twice keeps both sets.
func WithHooks(h domain.Hooks) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(h)
	}
}

// WithPageStore selects how each session stores its pages.
func WithPageStore(factory ports.PageStoreFactory) Option {
	return func(m *Manager) {
		m.pages = factory
	}
}

// WithSessionTTL sets the idle time after which a session is reaped.
// Zero disables idle expiry.
func WithSessionTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.sessionTTL = ttl
	}
}

// WithSessionLifetime caps the total age of a session. Zero means unlimited.
func WithSessionLifetime(lifetime time.Duration) Option {
	return func(m *Manager) {
		m.sessionLifetime = lifetime
	}
}

// WithSessionCapacity bounds the number of live sessions; the least recently
// used session is dropped first.
func WithSessionCapacity(n int) Option {
	return func(m *Manager) {
		m.sessionCapacity = n
	}
}

// WithSessionIDs replaces the session ID generator.
func WithSessionIDs(gen idgen.Generator) Option {
	return func(m *Manager) {
		m.sessionIDs = gen
	}
}

// WithDocument selects the output encoding of render requests.
func WithDocument(factory render.DocumentFactory) Option {
	return func(m *Manager) {
		m.documents = factory
	}
}

// WithResource registers a named resource.
func WithResource(name string, fn ResourceFunc) Option {
	return func(m *Manager) {
		m.resources[name] = fn
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Session Manager building trees with factory.
func NewManager(factory RootFactory, opts ...Option) (*Manager, error) {
	if factory == nil {
		return nil, fmt.Errorf("session: nil root factory")
	}
	m := &Manager{
		factory:         factory,
		locks:           make(map[string]*lockEntry),
		lockTTL:         DefaultLockTTL,
		pages:           memory.PageFactory(memory.DefaultPageCapacity, 0),
		sessionIDs:      idgen.Session,
		documents:       render.NewOutlineDocument,
		resources:       make(map[string]ResourceFunc),
		sessionTTL:      DefaultSessionTTL,
		sessionCapacity: DefaultSessionCapacity,
		now:             time.Now,
		logger:          logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sessionCapacity <= 0 {
		return nil, fmt.Errorf("session: capacity must be positive, got %d", m.sessionCapacity)
	}
	m.dir = newDirectory(m.sessionCapacity, m.sessionTTL, m.sessionLifetime, m.now, m.expired)
	return m, nil
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the lock for the session.
// ctx bounds only the wait for the lock.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	defer m.release(sessionID)

	if err := lockContext(ctx, &entry.mu); err != nil {
		return err
	}
	defer entry.mu.Unlock()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("%w: failed to acquire distributed lock: %w", domain.ErrUnavailable, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// lockContext locks mu unless ctx ends first.
func lockContext(ctx context.Context, mu *sync.Mutex) error {
	if mu.TryLock() {
		return nil
	}
	locked := make(chan struct{})
	go func() {
		mu.Lock()
		close(locked)
	}()
	select {
	case <-locked:
		return nil
	case <-ctx.Done():
		// Hand the lock back once the waiter gets it.
		go func() {
			<-locked
			mu.Unlock()
		}()
		return fmt.Errorf("%w: waiting for session lock: %w", domain.ErrUnavailable, ctx.Err())
	}
}

// Info describes a live session.
type Info struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
	Pages     int       `json:"pages"`
}

// List returns the sessions held by this process.
func (m *Manager) List() []Info {
	sessions := m.dir.sessions()
	out := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, Info{
			ID:        s.ID,
			CreatedAt: s.CreatedAt(),
			LastSeen:  s.LastSeen(),
			Pages:     s.Pages(),
		})
	}
	return out
}

// Stats is a point-in-time view of the manager.
type Stats struct {
	Sessions int
	Locks    int
}

// Stats returns the number of live sessions and of held lock entries.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	locks := len(m.locks)
	m.mu.Unlock()
	return Stats{Sessions: m.dir.len(), Locks: locks}
}

// End destroys a session. It reports whether the session was live.
func (m *Manager) End(sessionID string) bool {
	return m.dir.remove(sessionID)
}

// Close destroys every session.
func (m *Manager) Close() {
	m.dir.purge()
}

// expired runs when the directory drops a session.
func (m *Manager) expired(s *Session) {
	age := m.now().Sub(s.createdAt)
	m.logger.Info("Session expired", "session_id", s.ID, "age", age)
	if s.pages != nil {
		s.pages.Purge()
	}
	if m.hooks.OnSessionExpire != nil {
		m.hooks.OnSessionExpire(&domain.SessionEvent{
			EventBase: domain.EventBase{Timestamp: m.now(), Type: domain.EventSessionExpire, SessionID: s.ID},
			Age:       age,
		})
	}
	if m.index != nil {
		// The directory is locked here; the index is remote.
		go func(id string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.index.Remove(ctx, id); err != nil {
				m.logger.Warn("Failed to remove session from index", "session_id", id, "err", err)
			}
		}(s.ID)
	}
}

func (m *Manager) pageEvicted(s *Session, p *page.Page) {
	m.logger.Debug("Page evicted", "session_id", s.ID, "page_id", p.ID)
	if m.hooks.OnPageEvict != nil {
		m.hooks.OnPageEvict(&domain.PageEvent{
			EventBase:   domain.EventBase{Timestamp: m.now(), Type: domain.EventPageEvict, SessionID: s.ID},
			PageID:      p.ID,
			Interactive: p.Interactive(),
		})
	}
}

func (m *Manager) touchIndex(ctx context.Context, s *Session) {
	if m.index == nil {
		return
	}
	now := m.now()
	expiresAt := now.Add(indexHorizon)
	if m.sessionTTL > 0 {
		expiresAt = now.Add(m.sessionTTL)
	}
	if m.sessionLifetime > 0 {
		if end := s.createdAt.Add(m.sessionLifetime); end.Before(expiresAt) {
			expiresAt = end
		}
	}
	if err := m.index.Touch(ctx, s.ID, expiresAt); err != nil {
		m.logger.Warn("Failed to update session index", "session_id", s.ID, "err", err)
	}
}
