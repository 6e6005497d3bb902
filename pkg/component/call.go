package component

import (
	"fmt"
	"slices"

	"github.com/aretw0/arbor/pkg/callback"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// Continuation resumes the caller once the callee answers.
type Continuation interface {
	resume(caller Component, results []any) error
}

type answerFunc func(results ...any) error

func (f answerFunc) resume(_ Component, results []any) error {
	return f(results...)
}

// OnAnswer resumes the caller with a closure.
func OnAnswer(fn func(results ...any) error) Continuation {
	return answerFunc(fn)
}

// Followup resumes the caller through a handler registered with HandleFollowup.
// Args are saved with the call and passed before the answered values.
type Followup struct {
	Name string
	Args []any
}

// Then builds a Followup continuation.
func Then(name string, args ...any) Continuation {
	return Followup{Name: name, Args: args}
}

func (f Followup) resume(caller Component, results []any) error {
	fn, ok := caller.Base().followup(f.Name)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFollowup, f.Name)
	}
	args := append(slices.Clone(f.Args), results...)
	return fn(args...)
}

// Delegate sits in front of a caller and hands render and callbacks to the callee.
type Delegate struct {
	Decorator
	callee Component
}

// Callee returns the component being delegated to.
func (d *Delegate) Callee() Component {
	return d.callee
}

func (d *Delegate) RenderOn(r *Renderer) {
	RenderChain(r, d.callee)
}

func (d *Delegate) ProcessCallbacks(p *callback.Pass) {
	ProcessChain(p, d.callee)
}

// Backtrack captures the callee and then the caller behind it.
func (d *Delegate) Backtrack(b *snapshot.Builder) {
	BacktrackChain(b, d.callee)
	d.Decorator.Backtrack(b)
}

// AnswerHandler sits in front of a callee and holds the caller's continuation.
type AnswerHandler struct {
	Decorator
	caller   Component
	delegate *Delegate
	cont     Continuation
}

// Caller returns the component waiting for the answer.
func (h *AnswerHandler) Caller() Component {
	return h.caller
}

// Call delegates c to callee until callee answers; cont then receives the
// answered values. A nil cont discards them.
func (c *Core) Call(callee Component, cont Continuation) error {
	caller := c.component()
	target := callee.Base()
	if target == c {
		return domain.ErrSelfCall
	}
	for _, d := range c.Decorations() {
		if del, ok := d.(*Delegate); ok && del.callee.Base() == target {
			return domain.ErrAlreadyCalled
		}
	}
	if delegatesTo(target, c) {
		return domain.ErrCallCycle
	}
	// A handler left behind by an abandoned call would answer the wrong delegate.
	for _, d := range target.Decorations() {
		if h, ok := d.(*AnswerHandler); ok && h.caller.Base() == c {
			target.RemoveDecoration(h)
		}
	}

	del := &Delegate{callee: callee}
	target.AddDecoration(&AnswerHandler{caller: caller, delegate: del, cont: cont})
	c.AddDecoration(del)
	return nil
}

// Show displays callee in place of c without waiting for a result.
func (c *Core) Show(callee Component) error {
	return c.Call(callee, nil)
}

// Called reports whether some component is waiting for c to answer.
func (c *Core) Called() bool {
	return c.answerHandler() != nil
}

// Delegating returns the callee c currently delegates to, or nil.
func (c *Core) Delegating() Component {
	for _, d := range c.Decorations() {
		if del, ok := d.(*Delegate); ok {
			return del.callee
		}
	}
	return nil
}

// delegatesTo reports whether from reaches to by following Delegates.
func delegatesTo(from, to *Core) bool {
	seen := map[*Core]bool{from: true}
	queue := []*Core{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range cur.Decorations() {
			del, ok := d.(*Delegate)
			if !ok {
				continue
			}
			next := del.callee.Base()
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

func (c *Core) answerHandler() *AnswerHandler {
	for _, d := range c.Decorations() {
		if h, ok := d.(*AnswerHandler); ok {
			return h
		}
	}
	return nil
}

// Answer returns control to the caller: both decorations are removed and the
// continuation runs with results. Handlers whose delegate is no longer in the
// caller's chain are dropped without running.
func (c *Core) Answer(results ...any) error {
	for h := c.answerHandler(); h != nil; h = c.answerHandler() {
		c.RemoveDecoration(h)
		if !h.caller.Base().RemoveDecoration(h.delegate) {
			continue
		}
		if h.cont == nil {
			return nil
		}
		return h.cont.resume(h.caller, results)
	}
	return domain.ErrNotCalled
}
