package session

import (
	"sync/atomic"
	"time"

	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/idgen"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// RootFactory builds the component tree of a new session.
type RootFactory func(s *Session) component.Component

// Session is one client's live component tree and page history.
type Session struct {
	ID string

	root      component.Component
	pages     ports.PageStore
	nextPage  idgen.Generator
	tracked   []snapshot.Snapshotter
	createdAt time.Time
	lastSeen  atomic.Int64
}

func newSession(id string, now time.Time) *Session {
	s := &Session{
		ID:        id,
		nextPage:  idgen.Sequence(0),
		createdAt: now,
	}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// Root returns the live component tree.
func (s *Session) Root() component.Component {
	return s.root
}

// Track adds session-level state captured with every page, for objects that
// live outside the component tree.
func (s *Session) Track(objs ...snapshot.Snapshotter) {
	s.tracked = append(s.tracked, objs...)
}

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastSeen returns when the session last received a request.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Pages returns the number of pages the session still holds.
func (s *Session) Pages() int {
	return s.pages.Len()
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) capture() *snapshot.Snapshot {
	return snapshot.Capture(
		component.Walker(s.root),
		snapshot.WalkerFunc(func(b *snapshot.Builder) {
			b.Register(s.tracked...)
		}),
	)
}
