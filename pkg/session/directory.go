package session

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// directory holds the live sessions. Entries are dropped after ttl without a
// touch, past the lifetime limit, or when capacity is exceeded.
type directory struct {
	cache    *expirable.LRU[string, *Session]
	lifetime time.Duration
	now      func() time.Time
}

// newDirectory creates a directory; onExpire runs with the directory locked
// and must not call back into it.
func newDirectory(capacity int, ttl, lifetime time.Duration, now func() time.Time, onExpire func(*Session)) *directory {
	return &directory{
		cache: expirable.NewLRU(capacity, func(_ string, s *Session) {
			onExpire(s)
		}, ttl),
		lifetime: lifetime,
		now:      now,
	}
}

func (d *directory) add(s *Session) {
	d.cache.Add(s.ID, s)
}

// lookup returns a live session and restarts its idle timer.
func (d *directory) lookup(id string) (*Session, bool) {
	s, ok := d.cache.Get(id)
	if !ok {
		return nil, false
	}
	if d.lifetime > 0 && d.now().Sub(s.createdAt) > d.lifetime {
		d.cache.Remove(id)
		return nil, false
	}
	d.cache.Add(id, s)
	return s, true
}

func (d *directory) remove(id string) bool {
	return d.cache.Remove(id)
}

func (d *directory) sessions() []*Session {
	return d.cache.Values()
}

func (d *directory) len() int {
	return d.cache.Len()
}

func (d *directory) purge() {
	d.cache.Purge()
}
