package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// RenderFunc turns a page body into terminal output.
type RenderFunc func(body string) (string, error)

// NewRenderer returns a RenderFunc that renders Markdown pages with glamour.
func NewRenderer() (RenderFunc, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // light/dark detection
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
