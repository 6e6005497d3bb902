package memory

import (
	"fmt"
	"time"

	"github.com/aretw0/arbor/pkg/page"
	"github.com/aretw0/arbor/pkg/ports"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultPageCapacity bounds how far back a client can navigate.
const DefaultPageCapacity = 20

// LRUPages implements ports.PageStore with a fixed-size LRU.
// Safe for concurrent use.
type LRUPages struct {
	cache *lru.Cache[string, *page.Page]
}

// NewLRUPages creates a page store holding at most capacity pages.
func NewLRUPages(capacity int, onEvict ports.EvictFunc) (*LRUPages, error) {
	cache, err := lru.NewWithEvict(capacity, func(_ string, p *page.Page) {
		if onEvict != nil {
			onEvict(p)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create page store: %w", err)
	}
	return &LRUPages{cache: cache}, nil
}

func (s *LRUPages) Fetch(id string) (*page.Page, bool) {
	return s.cache.Get(id)
}

func (s *LRUPages) Store(p *page.Page) {
	s.cache.Add(p.ID, p)
}

func (s *LRUPages) Len() int {
	return s.cache.Len()
}

func (s *LRUPages) Purge() {
	s.cache.Purge()
}

// ExpiringPages implements ports.PageStore with an LRU whose entries also
// expire ttl after they were stored. Each store runs its own reaper goroutine.
type ExpiringPages struct {
	cache *expirable.LRU[string, *page.Page]
}

// NewExpiringPages creates a page store holding at most capacity pages for at most ttl.
func NewExpiringPages(capacity int, ttl time.Duration, onEvict ports.EvictFunc) (*ExpiringPages, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("failed to create page store: capacity must be positive, got %d", capacity)
	}
	cache := expirable.NewLRU(capacity, func(_ string, p *page.Page) {
		if onEvict != nil {
			onEvict(p)
		}
	}, ttl)
	return &ExpiringPages{cache: cache}, nil
}

func (s *ExpiringPages) Fetch(id string) (*page.Page, bool) {
	return s.cache.Get(id)
}

func (s *ExpiringPages) Store(p *page.Page) {
	s.cache.Add(p.ID, p)
}

func (s *ExpiringPages) Len() int {
	return s.cache.Len()
}

func (s *ExpiringPages) Purge() {
	s.cache.Purge()
}

// PageFactory returns a ports.PageStoreFactory for the given limits.
// A zero ttl selects the plain LRU store.
func PageFactory(capacity int, ttl time.Duration) ports.PageStoreFactory {
	if capacity <= 0 {
		capacity = DefaultPageCapacity
	}
	return func(onEvict ports.EvictFunc) (ports.PageStore, error) {
		if ttl > 0 {
			return NewExpiringPages(capacity, ttl, onEvict)
		}
		return NewLRUPages(capacity, onEvict)
	}
}
