package arbor_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/demo"
	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t   *testing.T
	app *arbor.Application
	sid string
}

func connect(t *testing.T, app *arbor.Application) *client {
	t.Helper()
	resp := app.Handle(context.Background(), domain.Request{})
	require.Equal(t, domain.ResponseRedirect, resp.Kind)
	require.Equal(t, "0", resp.PageID)
	return &client{t: t, app: app, sid: resp.SessionID}
}

func (c *client) render(pageID string) (string, string) {
	c.t.Helper()
	resp := c.app.Handle(context.Background(), domain.Request{SessionID: c.sid, PageID: pageID})
	require.Equal(c.t, domain.ResponseRender, resp.Kind, "%+v", resp.Error)
	return resp.PageID, string(resp.Body)
}

func (c *client) submit(pageID string, fields map[string]string) domain.Response {
	return c.app.Handle(context.Background(), domain.Request{SessionID: c.sid, PageID: pageID, Fields: fields})
}

// press submits the action labelled label on a rendered page and follows the redirect.
func (c *client) press(pageID, body, label string, inputs map[string]string) (string, string) {
	c.t.Helper()
	fields := map[string]string{action(c.t, body, label): ""}
	for k, v := range inputs {
		fields[k] = v
	}
	resp := c.submit(pageID, fields)
	require.Equal(c.t, domain.ResponseRedirect, resp.Kind, "%+v", resp.Error)
	return c.render(resp.PageID)
}

func action(t *testing.T, body, label string) string {
	t.Helper()
	m := regexp.MustCompile(`action token="(a\d+)" label="` + regexp.QuoteMeta(label) + `"`).FindStringSubmatch(body)
	require.NotNil(t, m, "no %q action in:\n%s", label, body)
	return m[1]
}

func input(t *testing.T, body, name string) string {
	t.Helper()
	m := regexp.MustCompile(`input token="(v\d+)" name="` + regexp.QuoteMeta(name) + `"`).FindStringSubmatch(body)
	require.NotNil(t, m, "no %q input in:\n%s", name, body)
	return m[1]
}

func TestApplication_CounterBackButton(t *testing.T) {
	var root *demo.Counter
	app, err := arbor.New(func(*session.Session) component.Component {
		root = demo.NewCounter(5)
		return root
	})
	require.NoError(t, err)
	defer app.Close()

	c := connect(t, app)
	page1, body := c.render("0")
	require.Equal(t, "1", page1)
	assert.Contains(t, body, "counter\n  5\n")

	resp := c.submit(page1, map[string]string{action(t, body, "++"): ""})
	require.Equal(t, domain.ResponseRedirect, resp.Kind)
	assert.Equal(t, "2", resp.PageID)
	assert.Equal(t, 6, root.Value())

	_, body = c.render("2")
	assert.Contains(t, body, "counter\n  6\n")

	_, body = c.render(page1)
	assert.Contains(t, body, "counter\n  5\n")
	assert.Equal(t, 5, root.Value())
}

func TestApplication_ConfirmReset(t *testing.T) {
	reg := prometheus.NewRegistry()
	app, err := arbor.New(demo.Root, arbor.WithMetrics(reg), arbor.WithPageCapacity(50))
	require.NoError(t, err)
	defer app.Close()

	c := connect(t, app)
	page, body := c.render("0")
	assert.Contains(t, body, "app\n  Hello\n")

	page, body = c.press(page, body, "++", map[string]string{input(t, body, "name"): "Ada"})
	page, body = c.press(page, body, "++", nil)
	assert.Contains(t, body, "Hello, Ada")
	assert.Contains(t, body, "counter\n    2\n")

	// Reset hands the screen to the confirmation dialog.
	asked, body := c.press(page, body, "reset", nil)
	assert.Contains(t, body, "Reset the counter?")
	assert.NotContains(t, body, "counter\n")
	dialog := body

	resp := c.submit(asked, map[string]string{action(t, dialog, "yes"): "", action(t, dialog, "no"): ""})
	require.True(t, resp.IsError())
	assert.Equal(t, domain.CodeProtocol, resp.Error.Code)

	_, body = c.press(asked, dialog, "yes", nil)
	assert.Contains(t, body, "counter\n    0\n")
	assert.Contains(t, body, `footer resets="1"`)
	assert.NotContains(t, body, "Reset the counter?")

	// Going back to the dialog and declining keeps the old count.
	_, body = c.press(asked, dialog, "no", nil)
	assert.Contains(t, body, "counter\n    2\n")
	assert.Contains(t, body, `footer resets="0"`)

	m := app.Metrics()
	require.NotNil(t, m)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("callback", "error", "protocol")))
}

func TestApplication_AboutResource(t *testing.T) {
	app, err := arbor.New(demo.Root, arbor.WithResource("about", demo.About))
	require.NoError(t, err)
	defer app.Close()

	resp := app.Handle(context.Background(), domain.Request{Resource: "about"})
	require.Equal(t, domain.ResponseRender, resp.Kind)
	assert.Contains(t, string(resp.Body), "arbor demo")
	assert.Zero(t, app.Manager().Stats().Sessions)
}
