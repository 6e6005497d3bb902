// Package render defines the output side of the render traversal.
//
// The core never inspects what is written: components describe their output
// through the three Sink primitives and the Document decides the encoding.
package render

// Attr is a key/value attribute of a node.
type Attr struct {
	Key   string
	Value string
}

// A builds an Attr.
func A(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// Sink receives the structure produced by the render traversal.
type Sink interface {
	Open(tag string, attrs ...Attr)
	Close()
	Text(s string)
}

// Document is a Sink that can produce a response body.
type Document interface {
	Sink
	ContentType() string
	Bytes() []byte
}

// DocumentFactory creates one Document per render pass.
type DocumentFactory func() Document
