package component_test

import (
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/callback"
	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/render"
	"github.com/aretw0/arbor/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type label struct {
	component.Core
	text  *snapshot.Cell[string]
	token string
	fired int
}

func newLabel(text string) *label {
	l := &label{text: snapshot.NewCell(text)}
	l.Init(l)
	return l
}

func (l *label) States() []snapshot.Snapshotter {
	return []snapshot.Snapshotter{l.text}
}

func (l *label) RenderContent(r *component.Renderer) {
	r.Text(l.text.Get())
	l.token = r.Button(l, "ok", func() error {
		l.fired++
		return nil
	})
}

type box struct {
	component.Core
	children []component.Component
}

func newBox(children ...component.Component) *box {
	b := &box{children: children}
	b.Init(b)
	return b
}

func (b *box) Children() []component.Component {
	return b.children
}

func (b *box) RenderContent(r *component.Renderer) {
	for _, c := range b.children {
		r.Render(c)
	}
}

func renderText(c component.Component) (string, *callback.Registry) {
	out := render.NewOutline()
	reg := callback.NewRegistry()
	component.NewRenderer(out, reg).Render(c)
	return out.String(), reg
}

func frame(tag string, global bool) *component.Frame {
	f := component.NewFrame(tag)
	f.Global = global
	return f
}

func TestChain_Ordering(t *testing.T) {
	l := newLabel("x")
	l1, g1, l2, g2 := frame("l1", false), frame("g1", true), frame("l2", false), frame("g2", true)

	l.AddDecoration(l1)
	l.AddDecoration(g1)
	l.AddDecoration(l2)
	l.AddDecoration(g2)

	assert.Equal(t, []component.Decoration{g2, g1, l2, l1}, l.Decorations())

	out, _ := renderText(l)
	assert.Equal(t, "g2\n  g1\n    l2\n      l1\n        x\n        action token=\"a1\" label=\"ok\"\n", out)
}

func TestChain_AddTwiceIsNoop(t *testing.T) {
	l := newLabel("x")
	f := frame("f", false)
	l.AddDecoration(f)
	l.AddDecoration(f)
	assert.Len(t, l.Decorations(), 1)
}

func TestChain_RemoveIsIdempotent(t *testing.T) {
	l := newLabel("x")
	a, b, c := frame("a", false), frame("b", false), frame("c", true)
	l.AddDecoration(a)
	l.AddDecoration(b)
	l.AddDecoration(c)

	assert.True(t, l.RemoveDecoration(b))
	assert.False(t, l.RemoveDecoration(b))
	assert.False(t, l.RemoveDecoration(frame("stranger", false)))
	assert.Equal(t, []component.Decoration{c, a}, l.Decorations())

	assert.True(t, l.RemoveDecoration(c))
	assert.Equal(t, []component.Decoration{a}, l.Decorations())

	l.AddDecoration(b)
	assert.Equal(t, []component.Decoration{b, a}, l.Decorations())
}

func TestSnapshot_RestoresChainTopology(t *testing.T) {
	l := newLabel("before")
	root := newBox(l)

	bare := snapshot.Capture(component.Walker(root))

	f := frame("panel", false)
	l.AddDecoration(f)
	l.text.Set("after")
	decorated := snapshot.Capture(component.Walker(root))

	out, _ := renderText(root)
	assert.Contains(t, out, "panel\n  after")

	bare.Apply()
	assert.Empty(t, l.Decorations())
	out, _ = renderText(root)
	assert.NotContains(t, out, "panel")
	assert.Contains(t, out, "before")

	decorated.Apply()
	assert.Equal(t, []component.Decoration{f}, l.Decorations())

	l.RemoveDecoration(f)
	decorated.Apply()
	assert.Equal(t, []component.Decoration{f}, l.Decorations())
}

func TestFreeze_BlocksCallbacks(t *testing.T) {
	l := newLabel("x")
	root := newBox(l)
	_, reg := renderText(root)

	l.AddDecoration(component.NewFreeze())

	m, err := reg.Match(map[string]string{l.token: ""})
	require.NoError(t, err)
	pass := callback.NewPass(m)
	component.ProcessChain(pass, root)

	assert.ErrorIs(t, pass.Run(), domain.ErrInvalidAction)
	assert.Zero(t, l.fired)
}

func TestChain_CorruptionPanics(t *testing.T) {
	detached := component.NewFrame("lost")
	assert.Panics(t, func() {
		detached.RenderOn(component.NewRenderer(render.NewOutline(), nil))
	})

	var uninitialized label
	assert.Panics(t, func() {
		uninitialized.Decorations()
	})
}

type dialog struct {
	component.Core
	answered *snapshot.Cell[int]
	results  []any
}

func newDialog() *dialog {
	d := &dialog{answered: snapshot.NewCell(0)}
	d.Init(d)
	return d
}

func (d *dialog) States() []snapshot.Snapshotter {
	return []snapshot.Snapshotter{d.answered}
}

func (d *dialog) RenderContent(r *component.Renderer) {
	r.Text("dialog")
}

func TestCallAnswer_RoundTrip(t *testing.T) {
	caller := newDialog()
	callee := newLabel("callee")

	require.NoError(t, caller.Call(callee, component.OnAnswer(func(results ...any) error {
		caller.results = results
		return nil
	})))

	assert.True(t, callee.Called())
	assert.Equal(t, callee, caller.Delegating())
	out, _ := renderText(caller)
	assert.Contains(t, out, "callee")
	assert.NotContains(t, out, "dialog")

	require.NoError(t, callee.Answer(42, "yes"))
	assert.Equal(t, []any{42, "yes"}, caller.results)
	assert.Empty(t, caller.Decorations())
	assert.Empty(t, callee.Decorations())

	assert.ErrorIs(t, callee.Answer(), domain.ErrNotCalled)
}

func TestCall_Errors(t *testing.T) {
	caller := newDialog()
	callee := newLabel("callee")

	assert.ErrorIs(t, caller.Call(caller, nil), domain.ErrSelfCall)
	require.NoError(t, caller.Show(callee))
	assert.ErrorIs(t, caller.Call(callee, nil), domain.ErrAlreadyCalled)
	assert.Len(t, callee.Decorations(), 1)
}

func TestCall_RejectsCycles(t *testing.T) {
	a, b, c := newDialog(), newDialog(), newDialog()

	require.NoError(t, a.Call(b, nil))
	assert.ErrorIs(t, b.Call(a, nil), domain.ErrCallCycle)
	assert.Len(t, a.Decorations(), 1)
	assert.Len(t, b.Decorations(), 1)

	require.NoError(t, b.Call(c, nil))
	assert.ErrorIs(t, c.Call(a, nil), domain.ErrCallCycle)
	assert.Len(t, c.Decorations(), 1, "only the answer handler from b")
	assert.Len(t, a.Decorations(), 1)

	s := snapshot.Capture(component.Walker(newBox(a)))
	assert.Positive(t, s.Len())
	out, _ := renderText(a)
	assert.Contains(t, out, "dialog")

	// A separate branch is not a cycle.
	d := newDialog()
	require.NoError(t, d.Call(c, nil))
	require.NoError(t, c.Answer())
}

func TestAnswer_DropsHandlerOfRestoredCall(t *testing.T) {
	caller := newDialog()
	callee := newLabel("callee")
	root := newBox(caller)
	idle := snapshot.Capture(component.Walker(root))

	answers := 0
	require.NoError(t, caller.Call(callee, component.OnAnswer(func(...any) error {
		answers++
		return nil
	})))
	idle.Apply()
	assert.Empty(t, caller.Decorations())
	assert.True(t, callee.Called())

	assert.ErrorIs(t, callee.Answer(), domain.ErrNotCalled)
	assert.Zero(t, answers)
	assert.False(t, callee.Called())
	assert.Empty(t, callee.Decorations())
}

func TestCall_DelegatesCallbacks(t *testing.T) {
	callee := newLabel("callee")
	caller := newDialog()
	root := newBox(caller)
	require.NoError(t, caller.Show(callee))

	_, reg := renderText(root)
	m, err := reg.Match(map[string]string{callee.token: ""})
	require.NoError(t, err)
	pass := callback.NewPass(m)
	component.ProcessChain(pass, root)

	require.NoError(t, pass.Run())
	assert.Equal(t, 1, callee.fired)
}

func TestCall_NamedFollowup(t *testing.T) {
	caller := newDialog()
	callee := newLabel("callee")

	var got []any
	caller.HandleFollowup("confirmed", func(args ...any) error {
		got = args
		return nil
	})

	require.NoError(t, caller.Call(callee, component.Then("confirmed", "reset")))
	require.NoError(t, callee.Answer(true))
	assert.Equal(t, []any{"reset", true}, got)

	require.NoError(t, caller.Call(callee, component.Then("missing")))
	assert.ErrorIs(t, callee.Answer(), domain.ErrUnknownFollowup)
	assert.Empty(t, caller.Decorations())
}

func TestCall_SnapshotRestoresLinkage(t *testing.T) {
	caller := newDialog()
	callee := newLabel("callee")
	root := newBox(caller)

	idle := snapshot.Capture(component.Walker(root))

	answers := 0
	require.NoError(t, caller.Call(callee, component.OnAnswer(func(...any) error {
		answers++
		return nil
	})))
	callee.text.Set("asked")
	delegated := snapshot.Capture(component.Walker(root))
	assert.Greater(t, delegated.Len(), idle.Len())

	require.NoError(t, callee.Answer())
	callee.text.Set("done")

	delegated.Apply()
	assert.Equal(t, "asked", callee.text.Get())
	assert.True(t, callee.Called())
	require.NoError(t, callee.Answer())
	assert.Equal(t, 2, answers)

	// The callee is unreachable from the idle page, so its stale handler
	// survives the restore until the caller calls again.
	delegated.Apply()
	idle.Apply()
	assert.Empty(t, caller.Decorations())
	assert.True(t, callee.Called())

	require.NoError(t, caller.Show(callee))
	assert.Len(t, callee.Decorations(), 1)
	require.NoError(t, callee.Answer())
	assert.Equal(t, 2, answers)
	assert.True(t, errors.Is(callee.Answer(), domain.ErrNotCalled))
}
