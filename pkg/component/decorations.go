package component

import (
	"github.com/aretw0/arbor/pkg/callback"
	"github.com/aretw0/arbor/pkg/render"
)

// Frame wraps whatever follows it in a node.
type Frame struct {
	Decorator
	Tag   string
	Attrs []render.Attr
}

// NewFrame returns a local frame decoration.
func NewFrame(tag string, attrs ...render.Attr) *Frame {
	return &Frame{Tag: tag, Attrs: attrs}
}

func (f *Frame) RenderOn(r *Renderer) {
	r.Open(f.Tag, f.Attrs...)
	f.Decorator.RenderOn(r)
	r.Close()
}

// Freeze keeps rendering but stops callbacks from reaching the rest of the chain.
type Freeze struct {
	Decorator
}

// NewFreeze returns a global freeze decoration.
func NewFreeze() *Freeze {
	return &Freeze{Decorator: Decorator{Global: true}}
}

func (f *Freeze) ProcessCallbacks(*callback.Pass) {}
