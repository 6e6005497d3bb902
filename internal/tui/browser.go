// Package tui is a terminal client for arbor applications.
//
// The Browser plays the part of a web browser: it follows redirects, prints
// each rendered page and submits the tokens the user types. "back" revisits
// the previous page, which shows the state it was rendered with.
package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Handler is the application side of the browser.
type Handler interface {
	Handle(ctx context.Context, req domain.Request) domain.Response
}

// Browser drives one session from a line-oriented input.
type Browser struct {
	app    Handler
	in     *bufio.Reader
	out    io.Writer
	render RenderFunc

	sessionID string
	history   []string
}

// Option configures the Browser.
type Option func(*Browser)

// WithRenderer formats page bodies before printing them.
func WithRenderer(fn RenderFunc) Option {
	return func(b *Browser) {
		b.render = fn
	}
}

// NewBrowser creates a browser reading commands from in and printing to out.
func NewBrowser(app Handler, in io.Reader, out io.Writer, opts ...Option) *Browser {
	b := &Browser{app: app, in: bufio.NewReader(in), out: out}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run starts a session and serves commands until the input ends or the user quits.
func (b *Browser) Run(ctx context.Context) error {
	resp := b.app.Handle(ctx, domain.Request{})
	for {
		switch resp.Kind {
		case domain.ResponseRedirect:
			b.sessionID = resp.SessionID
			resp = b.app.Handle(ctx, domain.Request{SessionID: resp.SessionID, PageID: resp.PageID})
			continue
		case domain.ResponseRender:
			b.history = append(b.history, resp.PageID)
			b.print(resp.Body)
		case domain.ResponseError:
			fmt.Fprintf(b.out, "Error (%s): %s\n", resp.Error.Code, resp.Error.Message)
			if resp.Error.Restart {
				fmt.Fprintln(b.out, "Starting a new session.")
				b.history = nil
				resp = b.app.Handle(ctx, domain.Request{})
				continue
			}
			if len(b.history) == 0 {
				return fmt.Errorf("failed to start session: %s", resp.Error.Message)
			}
		}

		fmt.Fprint(b.out, "> ")
		line, err := b.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		page := b.history[len(b.history)-1]

		switch line {
		case "quit", "exit":
			fmt.Fprintln(b.out, "Bye!")
			return nil
		case "", "reload":
			resp = b.visit(ctx, page, nil)
		case "back":
			if len(b.history) > 1 {
				page = b.history[len(b.history)-2]
				b.history = b.history[:len(b.history)-2]
			} else {
				b.history = b.history[:0]
			}
			resp = b.visit(ctx, page, nil)
		default:
			resp = b.visit(ctx, page, parseFields(line))
		}
	}
}

func (b *Browser) visit(ctx context.Context, page string, fields map[string]string) domain.Response {
	return b.app.Handle(ctx, domain.Request{SessionID: b.sessionID, PageID: page, Fields: fields})
}

func (b *Browser) print(body []byte) {
	if b.render != nil {
		if out, err := b.render(string(body)); err == nil {
			fmt.Fprint(b.out, out)
			return
		}
	}
	b.out.Write(body)
}

// parseFields reads "token" and "token=value" words.
func parseFields(line string) map[string]string {
	fields := make(map[string]string)
	for _, word := range strings.Fields(line) {
		token, value, _ := strings.Cut(word, "=")
		fields[token] = value
	}
	return fields
}
