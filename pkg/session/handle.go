package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/arbor/pkg/callback"
	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/page"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// Request kinds reported to hooks.
const (
	KindResource = "resource"
	KindStart    = "start"
	KindResume   = "resume"
	KindRender   = "render"
	KindCallback = "callback"
)

// Kind classifies a request by the path it takes through Handle.
func Kind(req domain.Request) string {
	switch {
	case req.Resource != "":
		return KindResource
	case req.SessionID == "":
		return KindStart
	case req.PageID == "":
		return KindResume
	case req.HasFields():
		return KindCallback
	}
	return KindRender
}

// Handle processes one request. Failures are reported as error responses.
func (m *Manager) Handle(ctx context.Context, req domain.Request) (resp domain.Response) {
	start := m.now()
	defer func() {
		if r := recover(); r != nil {
			err := recovered(r)
			m.logger.Error("Request panicked", "session_id", req.SessionID, "err", err)
			resp = domain.ErrorResponse(err)
		}
		m.observe(ctx, req, resp, start)
	}()

	resp, err := m.handle(ctx, req)
	if err != nil {
		m.report(req, err)
		return domain.ErrorResponse(err)
	}
	return resp
}

func (m *Manager) handle(ctx context.Context, req domain.Request) (domain.Response, error) {
	if req.Resource != "" {
		return m.serveResource(ctx, req)
	}
	if req.SessionID == "" {
		return m.start(ctx)
	}

	s, ok := m.dir.lookup(req.SessionID)
	if !ok {
		return domain.Response{}, fmt.Errorf("%w: %s", domain.ErrSessionExpired, req.SessionID)
	}
	s.touch(m.now())

	var resp domain.Response
	err := m.WithLock(ctx, s.ID, func(ctx context.Context) error {
		var err error
		resp, err = m.serve(ctx, s, req)
		m.touchIndex(ctx, s)
		return err
	})
	return resp, err
}

func (m *Manager) serveResource(ctx context.Context, req domain.Request) (domain.Response, error) {
	for token := range req.Fields {
		if callback.IsAction(token) {
			return domain.Response{}, domain.NewProtocolError("resource %q requested together with action %s", req.Resource, token)
		}
	}
	fn, ok := m.resources[req.Resource]
	if !ok {
		return domain.Response{}, fmt.Errorf("%w: %q", domain.ErrUnknownResource, req.Resource)
	}
	return fn(ctx, req)
}

// start creates a session, captures its initial page and redirects to it.
func (m *Manager) start(ctx context.Context) (domain.Response, error) {
	s := newSession(m.sessionIDs(), m.now())
	pages, err := m.pages(func(p *page.Page) { m.pageEvicted(s, p) })
	if err != nil {
		return domain.Response{}, err
	}
	s.pages = pages
	s.root = m.factory(s)
	if s.root == nil {
		return domain.Response{}, errors.New("session: root factory returned nil")
	}

	var initial *page.Page
	err = m.WithLock(ctx, s.ID, func(ctx context.Context) error {
		initial = m.storePage(ctx, s, s.capture(), nil)
		m.dir.add(s)
		m.touchIndex(ctx, s)
		return nil
	})
	if err != nil {
		return domain.Response{}, err
	}

	m.logger.Info("Session started", "session_id", s.ID)
	if m.hooks.OnSessionStart != nil {
		m.hooks.OnSessionStart(ctx, &domain.SessionEvent{
			EventBase: domain.EventBase{Timestamp: m.now(), Type: domain.EventSessionStart, SessionID: s.ID},
		})
	}
	return domain.Redirect(s.ID, initial.ID), nil
}

// serve runs with the session lock held.
func (m *Manager) serve(ctx context.Context, s *Session, req domain.Request) (domain.Response, error) {
	if req.PageID == "" {
		if req.HasFields() {
			return domain.Response{}, domain.NewProtocolError("callback tokens sent without a page")
		}
		p := m.storePage(ctx, s, s.capture(), nil)
		return domain.Redirect(s.ID, p.ID), nil
	}

	p, ok := s.pages.Fetch(req.PageID)
	if !ok {
		return domain.Response{}, fmt.Errorf("%w: %s", domain.ErrPageExpired, req.PageID)
	}

	return m.restore(p, func() (domain.Response, error) {
		if !req.HasFields() {
			return m.render(ctx, s)
		}
		return m.process(ctx, s, p, req)
	})
}

// restore applies the page snapshot and runs fn. If fn fails or panics the
// snapshot is applied again, so no partial effect survives.
func (m *Manager) restore(p *page.Page, fn func() (domain.Response, error)) (resp domain.Response, err error) {
	p.Snapshot.Apply()
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
		if err != nil {
			p.Snapshot.Apply()
		}
	}()
	return fn()
}

func (m *Manager) render(ctx context.Context, s *Session) (domain.Response, error) {
	reg := callback.NewRegistry()
	id := s.nextPage()
	doc := m.documents()

	r := component.NewRenderer(doc, reg)
	component.RenderChain(r, s.root)

	p := page.New(id, s.capture(), reg)
	m.store(ctx, s, p)
	return domain.Render(s.ID, id, doc.ContentType(), doc.Bytes()), nil
}

func (m *Manager) process(ctx context.Context, s *Session, p *page.Page, req domain.Request) (domain.Response, error) {
	matched, err := p.Callbacks.Match(req.Fields)
	if err != nil {
		return domain.Response{}, err
	}
	if ignored := matched.Ignored(); len(ignored) > 0 {
		m.logger.Debug("Ignoring stale input tokens", "session_id", s.ID, "page_id", p.ID, "tokens", ignored)
	}

	pass := callback.NewPass(matched)
	component.ProcessChain(pass, s.root)
	if err := pass.Run(); err != nil {
		return domain.Response{}, err
	}

	next := m.storePage(ctx, s, s.capture(), nil)
	return domain.Redirect(s.ID, next.ID), nil
}

func (m *Manager) storePage(ctx context.Context, s *Session, snap *snapshot.Snapshot, reg *callback.Registry) *page.Page {
	p := page.New(s.nextPage(), snap, reg)
	m.store(ctx, s, p)
	return p
}

func (m *Manager) store(ctx context.Context, s *Session, p *page.Page) {
	s.pages.Store(p)
	if m.hooks.OnPageStore != nil {
		m.hooks.OnPageStore(ctx, &domain.PageEvent{
			EventBase:   domain.EventBase{Timestamp: m.now(), Type: domain.EventPageStore, SessionID: s.ID},
			PageID:      p.ID,
			Interactive: p.Interactive(),
		})
	}
}

// report logs a failed request at the level its cause deserves.
func (m *Manager) report(req domain.Request, err error) {
	attrs := []any{"session_id", req.SessionID, "page_id", req.PageID, "err", err}
	switch domain.Classify(err) {
	case domain.CodeCallback:
		m.logger.Warn("Callback failed, state rolled back", attrs...)
	case domain.CodeInternal:
		if errors.Is(err, domain.ErrChainCorrupted) {
			m.logger.Error("Decoration chain corrupted, state rolled back", attrs...)
			return
		}
		m.logger.Error("Request failed", attrs...)
	default:
		m.logger.Debug("Request rejected", attrs...)
	}
}

func (m *Manager) observe(ctx context.Context, req domain.Request, resp domain.Response, start time.Time) {
	if m.hooks.OnRequest == nil {
		return
	}
	e := &domain.RequestEvent{
		EventBase: domain.EventBase{Timestamp: m.now(), Type: domain.EventRequest, SessionID: resp.SessionID},
		PageID:    resp.PageID,
		Kind:      Kind(req),
		Outcome:   resp.Kind,
		Duration:  m.now().Sub(start),
	}
	if e.SessionID == "" {
		e.SessionID = req.SessionID
	}
	if resp.Error != nil {
		e.Code = resp.Error.Code
	}
	m.hooks.OnRequest(ctx, e)
}

// recovered turns a panic value into an error. Chain corruption keeps its
// identity; anything else is blamed on application code.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		if errors.Is(err, domain.ErrChainCorrupted) {
			return err
		}
		return fmt.Errorf("%w: panic: %w", domain.ErrCallbackFailed, err)
	}
	return fmt.Errorf("%w: panic: %v", domain.ErrCallbackFailed, r)
}
