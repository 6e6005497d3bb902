package render

import (
	"bytes"
	"strings"
)

// Markdown renders nodes as a nested Markdown list, suitable for terminal
// renderers. Action and input nodes are shown with their tokens so a
// terminal client can submit them back: an action reads as [++] `a1` and an
// input as name: "Ada" `v2`.
type Markdown struct {
	buf   bytes.Buffer
	depth int
}

// NewMarkdown returns an empty Markdown document.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// NewMarkdownDocument is a DocumentFactory for Markdown.
func NewMarkdownDocument() Document {
	return NewMarkdown()
}

func (m *Markdown) Open(tag string, attrs ...Attr) {
	get := func(key string) string {
		for _, a := range attrs {
			if a.Key == key {
				return a.Value
			}
		}
		return ""
	}

	switch tag {
	case "action":
		m.item("[" + get("label") + "] " + code(get("token")))
	case "input":
		m.item(get("name") + ": \"" + get("value") + "\" " + code(get("token")))
	default:
		line := "**" + tag + "**"
		for _, a := range attrs {
			line += " " + a.Key + "=" + code(a.Value)
		}
		m.item(line)
	}
	m.depth++
}

// Close ends the innermost open node. Unbalanced closes are ignored.
func (m *Markdown) Close() {
	if m.depth > 0 {
		m.depth--
	}
}

func (m *Markdown) Text(s string) {
	for _, line := range strings.Split(s, "\n") {
		m.item(line)
	}
}

func (m *Markdown) item(s string) {
	m.buf.WriteString(strings.Repeat("  ", m.depth))
	m.buf.WriteString("- ")
	m.buf.WriteString(s)
	m.buf.WriteByte('\n')
}

func (m *Markdown) ContentType() string {
	return "text/markdown; charset=utf-8"
}

func (m *Markdown) Bytes() []byte {
	return m.buf.Bytes()
}

func (m *Markdown) String() string {
	return m.buf.String()
}

func code(s string) string {
	return "`" + s + "`"
}
