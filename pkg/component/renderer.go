package component

import (
	"github.com/aretw0/arbor/pkg/callback"
	"github.com/aretw0/arbor/pkg/render"
)

// Renderer is handed to every component during the render traversal.
// It writes to a Sink and registers callbacks in the page's registry.
type Renderer struct {
	render.Sink

	registry *callback.Registry
}

// NewRenderer creates a renderer writing to sink and registering into reg.
func NewRenderer(sink render.Sink, reg *callback.Registry) *Renderer {
	if reg == nil {
		reg = callback.NewRegistry()
	}
	return &Renderer{Sink: sink, registry: reg}
}

// Registry returns the callback registry of this pass.
func (r *Renderer) Registry() *callback.Registry {
	return r.registry
}

// Render renders a child through its decoration chain.
func (r *Renderer) Render(child Component) {
	RenderChain(r, child)
}

// Input registers an input callback owned by owner.
func (r *Renderer) Input(owner Component, fn callback.InputFunc) string {
	return r.registry.Input(owner.Base().component(), fn)
}

// Action registers an action callback owned by owner.
func (r *Renderer) Action(owner Component, fn callback.ActionFunc) string {
	return r.registry.Action(owner.Base().component(), fn)
}

// Button emits an action node and returns its token.
func (r *Renderer) Button(owner Component, label string, fn callback.ActionFunc) string {
	token := r.Action(owner, fn)
	r.Open("action", render.A("token", token), render.A("label", label))
	r.Close()
	return token
}

// Field emits an input node carrying the current value and returns its token.
func (r *Renderer) Field(owner Component, name, value string, fn callback.InputFunc) string {
	token := r.Input(owner, fn)
	r.Open("input", render.A("token", token), render.A("name", name), render.A("value", value))
	r.Close()
	return token
}
