// Package demo is the sample application served by "arbor serve".
package demo

import (
	"context"
	"strconv"

	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/render"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// Counter shows a number with buttons to change it.
type Counter struct {
	component.Core
	count *snapshot.Cell[int]
}

// NewCounter returns a counter starting at start.
func NewCounter(start int) *Counter {
	c := &Counter{count: snapshot.NewCell(start)}
	c.Init(c)
	return c
}

// Value returns the current count.
func (c *Counter) Value() int {
	return c.count.Get()
}

func (c *Counter) States() []snapshot.Snapshotter {
	return []snapshot.Snapshotter{c.count}
}

func (c *Counter) RenderContent(r *component.Renderer) {
	r.Open("counter")
	r.Text(strconv.Itoa(c.count.Get()))
	r.Button(c, "++", func() error {
		c.count.Update(func(v int) int { return v + 1 })
		return nil
	})
	r.Button(c, "--", func() error {
		c.count.Update(func(v int) int { return v - 1 })
		return nil
	})
	r.Close()
}

// Confirm asks a yes/no question and answers the caller with a bool.
type Confirm struct {
	component.Core
	question string
}

// NewConfirm returns a dialog asking question.
func NewConfirm(question string) *Confirm {
	c := &Confirm{question: question}
	c.Init(c)
	return c
}

func (c *Confirm) RenderContent(r *component.Renderer) {
	r.Open("confirm")
	r.Text(c.question)
	r.Button(c, "yes", func() error { return c.Answer(true) })
	r.Button(c, "no", func() error { return c.Answer(false) })
	r.Close()
}

// App is the root: a greeting, a counter and a reset guarded by a confirmation.
type App struct {
	component.Core
	name    *snapshot.Cell[string]
	resets  *snapshot.Cell[int]
	counter *Counter
	confirm *Confirm
}

// NewApp builds the demo tree.
func NewApp() *App {
	a := &App{
		name:    snapshot.NewCell(""),
		resets:  snapshot.NewCell(0),
		counter: NewCounter(0),
		confirm: NewConfirm("Reset the counter?"),
	}
	a.Init(a)
	a.AddDecoration(&component.Frame{Decorator: component.Decorator{Global: true}, Tag: "app"})
	a.HandleFollowup("reset", func(args ...any) error {
		if ok, _ := args[len(args)-1].(bool); ok {
			a.counter.count.Set(0)
			a.resets.Update(func(v int) int { return v + 1 })
		}
		return nil
	})
	return a
}

// Root is a session.RootFactory serving App.
func Root(*session.Session) component.Component {
	return NewApp()
}

// Counter returns the embedded counter.
func (a *App) Counter() *Counter {
	return a.counter
}

// Resets returns how many times the counter was reset.
func (a *App) Resets() int {
	return a.resets.Get()
}

func (a *App) Children() []component.Component {
	return []component.Component{a.counter}
}

func (a *App) States() []snapshot.Snapshotter {
	return []snapshot.Snapshotter{a.name, a.resets}
}

func (a *App) RenderContent(r *component.Renderer) {
	greeting := "Hello"
	if n := a.name.Get(); n != "" {
		greeting += ", " + n
	}
	r.Text(greeting)
	r.Field(a, "name", a.name.Get(), func(v string) error {
		a.name.Set(v)
		return nil
	})
	r.Render(a.counter)
	r.Button(a, "reset", func() error {
		return a.Call(a.confirm, component.Then("reset"))
	})
	r.Open("footer", render.A("resets", strconv.Itoa(a.resets.Get())))
	r.Close()
}

// About is a resource describing the demo.
func About(context.Context, domain.Request) (domain.Response, error) {
	return domain.Render("", "", "text/plain; charset=utf-8", []byte("arbor demo: counter with confirmed reset\n")), nil
}
