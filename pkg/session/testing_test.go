package session_test

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/aretw0/arbor/pkg/snapshot"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// counter is the component every manager test drives.
type counter struct {
	component.Core
	count *snapshot.Cell[int]
	name  *snapshot.Cell[string]

	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func newCounter(start int) *counter {
	c := &counter{count: snapshot.NewCell(start), name: snapshot.NewCell("")}
	c.Init(c)
	return c
}

func (c *counter) States() []snapshot.Snapshotter {
	return []snapshot.Snapshotter{c.count, c.name}
}

func (c *counter) RenderContent(r *component.Renderer) {
	r.Open("counter")
	r.Text(strconv.Itoa(c.count.Get()))
	r.Field(c, "name", c.name.Get(), func(v string) error {
		c.name.Set(v)
		return nil
	})
	r.Button(c, "++", func() error {
		n := c.inFlight.Add(1)
		defer c.inFlight.Add(-1)
		if n > c.maxSeen.Load() {
			c.maxSeen.Store(n)
		}
		time.Sleep(c.delay)
		c.count.Update(func(v int) int { return v + 1 })
		return nil
	})
	r.Button(c, "--", func() error {
		c.count.Update(func(v int) int { return v - 1 })
		return nil
	})
	r.Button(c, "fail", func() error {
		c.count.Set(1000)
		return errBoom
	})
	r.Button(c, "panic", func() error {
		c.count.Set(-1000)
		panic("kaboom")
	})
	r.Button(c, "corrupt", func() error {
		link := &brokenLink{}
		c.AddDecoration(link)
		link.SetNext(nil)
		return nil
	})
	r.Close()
}

// brokenLink is used to cut a chain.
type brokenLink struct {
	component.Decorator
}

func newManager(t *testing.T, opts ...session.Option) (*session.Manager, *[]*counter) {
	t.Helper()
	roots := &[]*counter{}
	m, err := session.NewManager(func(s *session.Session) component.Component {
		c := newCounter(5)
		*roots = append(*roots, c)
		return c
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m, roots
}

func start(t *testing.T, m *session.Manager) string {
	t.Helper()
	resp := m.Handle(context.Background(), domain.Request{})
	require.Equal(t, domain.ResponseRedirect, resp.Kind, "%+v", resp.Error)
	require.Equal(t, "0", resp.PageID)
	return resp.SessionID
}

func renderPage(t *testing.T, m *session.Manager, sid, pid string) domain.Response {
	t.Helper()
	resp := m.Handle(context.Background(), domain.Request{SessionID: sid, PageID: pid})
	require.Equal(t, domain.ResponseRender, resp.Kind, "%+v", resp.Error)
	return resp
}

func post(m *session.Manager, sid, pid string, fields map[string]string) domain.Response {
	return m.Handle(context.Background(), domain.Request{SessionID: sid, PageID: pid, Fields: fields})
}

func token(t *testing.T, body []byte, label string) string {
	t.Helper()
	re := regexp.MustCompile(`token="(a\d+)" label="` + regexp.QuoteMeta(label) + `"`)
	m := re.FindSubmatch(body)
	require.NotNil(t, m, "no %q action in:\n%s", label, body)
	return string(m[1])
}

func field(t *testing.T, body []byte, name string) string {
	t.Helper()
	re := regexp.MustCompile(`input token="(v\d+)" name="` + regexp.QuoteMeta(name) + `"`)
	m := re.FindSubmatch(body)
	require.NotNil(t, m, "no %q input in:\n%s", name, body)
	return string(m[1])
}
