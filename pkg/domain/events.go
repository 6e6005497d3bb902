package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionStart  EventType = "session_start"
	EventSessionExpire EventType = "session_expire"
	EventPageStore     EventType = "page_store"
	EventPageEvict     EventType = "page_evict"
	EventRequest       EventType = "request"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// SessionEvent reports session creation and expiry.
type SessionEvent struct {
	EventBase
	Age time.Duration `json:"age,omitempty"`
}

// PageEvent reports a page being stored or evicted.
type PageEvent struct {
	EventBase
	PageID      string `json:"page_id"`
	Interactive bool   `json:"interactive"`
}

// RequestEvent reports one handled request.
type RequestEvent struct {
	EventBase
	PageID   string        `json:"page_id,omitempty"`
	Kind     string        `json:"kind"`
	Outcome  ResponseKind  `json:"outcome"`
	Code     ErrorCode     `json:"code,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Hooks defines callbacks for observability. Any field may be nil.
// Eviction and expiry hooks run outside any request and must not call back into the manager.
type Hooks struct {
	OnSessionStart  func(context.Context, *SessionEvent)
	OnSessionExpire func(*SessionEvent)
	OnPageStore     func(context.Context, *PageEvent)
	OnPageEvict     func(*PageEvent)
	OnRequest       func(context.Context, *RequestEvent)
}

// Merge returns hooks that call h first and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnSessionStart: func(ctx context.Context, e *SessionEvent) {
			if h.OnSessionStart != nil {
				h.OnSessionStart(ctx, e)
			}
			if other.OnSessionStart != nil {
				other.OnSessionStart(ctx, e)
			}
		},
		OnSessionExpire: func(e *SessionEvent) {
			if h.OnSessionExpire != nil {
				h.OnSessionExpire(e)
			}
			if other.OnSessionExpire != nil {
				other.OnSessionExpire(e)
			}
		},
		OnPageStore: func(ctx context.Context, e *PageEvent) {
			if h.OnPageStore != nil {
				h.OnPageStore(ctx, e)
			}
			if other.OnPageStore != nil {
				other.OnPageStore(ctx, e)
			}
		},
		OnPageEvict: func(e *PageEvent) {
			if h.OnPageEvict != nil {
				h.OnPageEvict(e)
			}
			if other.OnPageEvict != nil {
				other.OnPageEvict(e)
			}
		},
		OnRequest: func(ctx context.Context, e *RequestEvent) {
			if h.OnRequest != nil {
				h.OnRequest(ctx, e)
			}
			if other.OnRequest != nil {
				other.OnRequest(ctx, e)
			}
		},
	}
}
