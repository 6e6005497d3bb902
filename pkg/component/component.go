package component

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/callback"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// Presenter is anything that can sit in a decoration chain.
type Presenter interface {
	RenderOn(r *Renderer)
	ProcessCallbacks(p *callback.Pass)
	Backtrack(b *snapshot.Builder)
}

// Component is a node of the UI tree. Implementations embed Core and call
// Init from their constructor.
type Component interface {
	Presenter
	Base() *Core
	RenderContent(r *Renderer)
}

// Parent is implemented by components that own children.
// Children must return the same list a snapshot would restore, so a mutable
// child list belongs in a snapshot.Slice listed by States.
type Parent interface {
	Children() []Component
}

// Stateful is implemented by components with backtrackable fields.
type Stateful interface {
	States() []snapshot.Snapshotter
}

// FollowupFunc handles a named follow-up. It receives the saved arguments
// followed by the answered values.
type FollowupFunc func(args ...any) error

// Core is the embeddable base of every component.
type Core struct {
	self      Component
	head      *snapshot.Cell[Presenter]
	followups map[string]FollowupFunc
}

// Init binds the core to the component that embeds it.
func (c *Core) Init(self Component) {
	c.self = self
	c.head = snapshot.NewCell[Presenter](self)
}

// Base returns the core itself.
func (c *Core) Base() *Core {
	return c
}

func (c *Core) component() Component {
	if c.self == nil {
		panic(fmt.Errorf("%w: component used before Init", domain.ErrChainCorrupted))
	}
	return c.self
}

func (c *Core) headCell() *snapshot.Cell[Presenter] {
	c.component()
	return c.head
}

// Head returns the first link of the chain (the component itself when undecorated).
func (c *Core) Head() Presenter {
	p := c.headCell().Get()
	if p == nil {
		panic(fmt.Errorf("%w: empty chain head", domain.ErrChainCorrupted))
	}
	return p
}

// HandleFollowup registers a named follow-up used by Then continuations.
// Handlers are part of the component's code, not its state, and are not snapshotted.
func (c *Core) HandleFollowup(name string, fn FollowupFunc) {
	if c.followups == nil {
		c.followups = make(map[string]FollowupFunc)
	}
	c.followups[name] = fn
}

func (c *Core) followup(name string) (FollowupFunc, bool) {
	fn, ok := c.followups[name]
	return fn, ok
}

// RenderOn terminates the chain by rendering the component's content.
func (c *Core) RenderOn(r *Renderer) {
	c.component().RenderContent(r)
}

// ProcessCallbacks marks the component reachable and descends into its children.
func (c *Core) ProcessCallbacks(p *callback.Pass) {
	self := c.component()
	p.Visit(self)
	if parent, ok := self.(Parent); ok {
		for _, child := range parent.Children() {
			ProcessChain(p, child)
		}
	}
}

// Backtrack registers the component's states and descends into its children.
func (c *Core) Backtrack(b *snapshot.Builder) {
	self := c.component()
	if st, ok := self.(Stateful); ok {
		b.Register(st.States()...)
	}
	if parent, ok := self.(Parent); ok {
		for _, child := range parent.Children() {
			BacktrackChain(b, child)
		}
	}
}
