// Package page defines the immutable unit a session hands out to clients.
package page

import (
	"time"

	"github.com/aretw0/arbor/pkg/callback"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// Page pairs a snapshot of the component tree with the callbacks rendered on it.
// Pages produced by callback requests carry no registry until they are rendered.
type Page struct {
	ID        string
	Snapshot  *snapshot.Snapshot
	Callbacks *callback.Registry
	CreatedAt time.Time
}

// New builds a page.
func New(id string, snap *snapshot.Snapshot, reg *callback.Registry) *Page {
	return &Page{ID: id, Snapshot: snap, Callbacks: reg, CreatedAt: time.Now()}
}

// Interactive reports whether the page has callbacks a client can trigger.
func (p *Page) Interactive() bool {
	return p.Callbacks.Len() > 0
}
