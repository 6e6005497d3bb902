package domain

import "sort"

// Request is the transport-neutral view of an incoming request.
type Request struct {
	// SessionID is empty on first contact.
	SessionID string

	// PageID addresses one immutable page of the session. Empty means "the live tree".
	PageID string

	// Resource names an application resource served without touching pages.
	Resource string

	// Fields maps callback tokens to submitted values.
	// Action tokens usually carry an empty value (a link or a button).
	Fields map[string]string
}

// HasFields reports whether the request carries any callback token.
func (r Request) HasFields() bool {
	return len(r.Fields) > 0
}

// Tokens returns the submitted tokens in a stable order.
func (r Request) Tokens() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
