package ports

import (
	"github.com/aretw0/arbor/pkg/page"
)

// EvictFunc is notified when a store drops a page. It runs while the store is
// being mutated and must not call back into the store.
type EvictFunc func(p *page.Page)

// PageStore holds the pages of one session.
// Implementations must be safe for concurrent use and bounded: storing past
// capacity evicts the least recently used page.
type PageStore interface {
	// Fetch returns the page and marks it recently used.
	Fetch(id string) (*page.Page, bool)

	// Store adds or replaces the page under p.ID.
	Store(p *page.Page)

	// Len returns the number of pages held.
	Len() int

	// Purge drops every page, notifying the eviction callback.
	Purge()
}

// PageStoreFactory builds the page store of a new session.
type PageStoreFactory func(onEvict EvictFunc) (PageStore, error)
