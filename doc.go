/*
Package arbor is a stateful, backtrackable component-tree engine for
server-rendered web applications.

Each client session owns a live tree of components. Every request addresses an
immutable page of that session: a snapshot of the tree plus the callbacks that
were rendered on it. Restoring the page before running callbacks makes the
browser "back" button safe: acting on an old page acts on the state that page
showed.

# Concept

Components embed component.Core, declare their backtrackable fields through
States and render through a component.Renderer. Decorations wrap components to
intercept rendering and callbacks. Call and Answer let a component hand the
screen to another one and resume with its result:

	func (a *App) RenderContent(r *component.Renderer) {
		r.Render(a.counter)
		r.Button(a, "reset", func() error {
			return a.Call(a.confirm, component.Then("reset"))
		})
	}

# Usage

	app, err := arbor.New(demo.Root, arbor.WithSessionTTL(15*time.Minute))
	if err != nil {
		log.Fatal(err)
	}
	http.ListenAndServe(":8080", arborhttp.NewHandler(app))

The transport only has to map requests to domain.Request and interpret the
three domain.Response kinds: render, redirect and error.
*/
package arbor
