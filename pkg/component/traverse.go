package component

import (
	"github.com/aretw0/arbor/pkg/callback"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// RenderChain renders c through its decoration chain.
func RenderChain(r *Renderer, c Component) {
	c.Base().Head().RenderOn(r)
}

// ProcessChain runs the process-callbacks traversal on c through its chain.
func ProcessChain(p *callback.Pass, c Component) {
	c.Base().Head().ProcessCallbacks(p)
}

// BacktrackChain registers the topology of c's chain and then runs the
// backtrack traversal through it.
func BacktrackChain(b *snapshot.Builder, c Component) {
	core := c.Base()
	b.Register(core.headCell())
	for _, d := range core.Decorations() {
		b.Register(d.nextCell())
	}
	core.Head().Backtrack(b)
}

// Walker adapts a root component to snapshot.Capture.
func Walker(root Component) snapshot.Walker {
	return snapshot.WalkerFunc(func(b *snapshot.Builder) {
		BacktrackChain(b, root)
	})
}
