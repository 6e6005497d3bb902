package render

import (
	"bytes"
	"strconv"
	"strings"
)

// Outline renders nodes as an indented plain-text outline:
//
//	counter
//	  5
//	  action token="a1" label="++"
type Outline struct {
	buf    bytes.Buffer
	indent string
	depth  int
}

// NewOutline returns an empty outline using two-space indentation.
func NewOutline() *Outline {
	return &Outline{indent: "  "}
}

// NewOutlineDocument is a DocumentFactory for Outline.
func NewOutlineDocument() Document {
	return NewOutline()
}

func (o *Outline) Open(tag string, attrs ...Attr) {
	o.line(func(b *bytes.Buffer) {
		b.WriteString(tag)
		for _, a := range attrs {
			b.WriteByte(' ')
			b.WriteString(a.Key)
			b.WriteByte('=')
			b.WriteString(strconv.Quote(a.Value))
		}
	})
	o.depth++
}

// Close ends the innermost open node. Unbalanced closes are ignored.
func (o *Outline) Close() {
	if o.depth > 0 {
		o.depth--
	}
}

func (o *Outline) Text(s string) {
	for _, line := range strings.Split(s, "\n") {
		o.line(func(b *bytes.Buffer) { b.WriteString(line) })
	}
}

func (o *Outline) line(write func(*bytes.Buffer)) {
	o.buf.WriteString(strings.Repeat(o.indent, o.depth))
	write(&o.buf)
	o.buf.WriteByte('\n')
}

func (o *Outline) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (o *Outline) Bytes() []byte {
	return o.buf.Bytes()
}

// String returns the outline written so far.
func (o *Outline) String() string {
	return o.buf.String()
}
