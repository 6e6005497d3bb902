package component

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/callback"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// Decoration is a link of a component's chain. Implementations embed Decorator.
type Decoration interface {
	Presenter
	Next() Presenter
	SetNext(p Presenter)
	IsGlobal() bool

	nextCell() *snapshot.Cell[Presenter]
}

// Decorator is the embeddable base of every decoration. It forwards the three
// traversals to the next link unchanged.
type Decorator struct {
	next *snapshot.Cell[Presenter]

	// Global decorations sort in front of local ones.
	Global bool
}

func (d *Decorator) nextCell() *snapshot.Cell[Presenter] {
	if d.next == nil {
		d.next = snapshot.NewCell[Presenter](nil)
	}
	return d.next
}

// Next returns the following link, or nil when detached.
func (d *Decorator) Next() Presenter {
	if d.next == nil {
		return nil
	}
	return d.next.Get()
}

// SetNext relinks the decoration.
func (d *Decorator) SetNext(p Presenter) {
	d.nextCell().Set(p)
}

// IsGlobal reports whether the decoration sorts with the globals.
func (d *Decorator) IsGlobal() bool {
	return d.Global
}

func (d *Decorator) forward() Presenter {
	next := d.Next()
	if next == nil {
		panic(fmt.Errorf("%w: decoration has no next link", domain.ErrChainCorrupted))
	}
	return next
}

func (d *Decorator) RenderOn(r *Renderer) {
	d.forward().RenderOn(r)
}

func (d *Decorator) ProcessCallbacks(p *callback.Pass) {
	d.forward().ProcessCallbacks(p)
}

func (d *Decorator) Backtrack(b *snapshot.Builder) {
	d.forward().Backtrack(b)
}

// walk calls fn for each decoration from the head until the component is reached.
// fn returns false to stop early.
func (c *Core) walk(fn func(prev, cur Decoration) bool) {
	self := c.component()
	var prev Decoration
	link := c.Head()
	for link != Presenter(self) {
		cur, ok := link.(Decoration)
		if !ok {
			panic(fmt.Errorf("%w: %T is neither a decoration nor the component", domain.ErrChainCorrupted, link))
		}
		if !fn(prev, cur) {
			return
		}
		next := cur.Next()
		if next == nil {
			panic(fmt.Errorf("%w: %T has no next link", domain.ErrChainCorrupted, cur))
		}
		prev, link = cur, next
	}
}

// Decorations lists the chain from the head, excluding the component.
func (c *Core) Decorations() []Decoration {
	var out []Decoration
	c.walk(func(_, cur Decoration) bool {
		out = append(out, cur)
		return true
	})
	return out
}

// HasDecoration reports whether d is currently linked into the chain.
func (c *Core) HasDecoration(d Decoration) bool {
	found := false
	c.walk(func(_, cur Decoration) bool {
		found = cur == d
		return !found
	})
	return found
}

// AddDecoration links d into the chain. Globals go to the front of the chain,
// locals right after the last global. Adding a member again does nothing.
func (c *Core) AddDecoration(d Decoration) {
	if c.HasDecoration(d) {
		return
	}
	var after Decoration
	if !d.IsGlobal() {
		c.walk(func(_, cur Decoration) bool {
			if !cur.IsGlobal() {
				return false
			}
			after = cur
			return true
		})
	}
	if after == nil {
		d.SetNext(c.Head())
		c.head.Set(d)
		return
	}
	d.SetNext(after.Next())
	after.SetNext(d)
}

// RemoveDecoration splices d out of the chain and reports whether it was a member.
// The removed link keeps its next pointer so an older snapshot can rejoin it.
func (c *Core) RemoveDecoration(d Decoration) bool {
	removed := false
	c.walk(func(prev, cur Decoration) bool {
		if cur != d {
			return true
		}
		if prev == nil {
			c.head.Set(cur.Next())
		} else {
			prev.SetNext(cur.Next())
		}
		removed = true
		return false
	})
	return removed
}
