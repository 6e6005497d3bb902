package callback

import (
	"fmt"
	"strconv"

	"github.com/aretw0/arbor/pkg/domain"
)

// Kind partitions callbacks.
type Kind int

const (
	// Input callbacks receive a submitted value; any number fire per request.
	Input Kind = iota
	// Action callbacks represent a command; at most one fires per request.
	Action
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Action:
		return "action"
	}
	return "unknown"
}

// Prefix is the token namespace of the kind.
func (k Kind) Prefix() string {
	switch k {
	case Input:
		return "v"
	case Action:
		return "a"
	}
	return ""
}

// Func is the common handler shape. Actions receive the (usually empty) submitted value.
type Func func(value string) error

// InputFunc handles a submitted field value.
type InputFunc func(value string) error

// ActionFunc handles a triggered command.
type ActionFunc func() error

// Callback is one registration.
type Callback struct {
	Token string
	Kind  Kind
	Owner any

	seq int
	fn  Func
}

// Registry holds the callbacks of one render pass.
// It is not safe for concurrent use; the session lock serializes access.
type Registry struct {
	seq       int
	callbacks map[string]*Callback
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{callbacks: make(map[string]*Callback)}
}

// Register binds fn to a fresh token of the given kind and returns the token.
// The owner must be comparable (components are pointers) and is used to decide
// whether the callback is still reachable when the request is processed.
func (r *Registry) Register(owner any, kind Kind, fn Func) string {
	r.seq++
	token := kind.Prefix() + strconv.Itoa(r.seq)
	r.callbacks[token] = &Callback{
		Token: token,
		Kind:  kind,
		Owner: owner,
		seq:   r.seq,
		fn:    fn,
	}
	return token
}

// Input registers an input callback.
func (r *Registry) Input(owner any, fn InputFunc) string {
	return r.Register(owner, Input, Func(fn))
}

// Action registers an action callback.
func (r *Registry) Action(owner any, fn ActionFunc) string {
	return r.Register(owner, Action, func(string) error { return fn() })
}

// Lookup resolves a token.
func (r *Registry) Lookup(token string) (*Callback, bool) {
	if r == nil {
		return nil, false
	}
	cb, ok := r.callbacks[token]
	return cb, ok
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.callbacks)
}

// ParseToken splits a token into kind and sequence number.
func ParseToken(token string) (Kind, int, error) {
	if len(token) < 2 {
		return 0, 0, domain.NewProtocolError("malformed token %q", token)
	}
	var kind Kind
	switch token[:1] {
	case Input.Prefix():
		kind = Input
	case Action.Prefix():
		kind = Action
	default:
		return 0, 0, domain.NewProtocolError("malformed token %q", token)
	}
	seq, err := strconv.Atoi(token[1:])
	if err != nil || seq <= 0 {
		return 0, 0, domain.NewProtocolError("malformed token %q", token)
	}
	return kind, seq, nil
}

// IsAction reports whether token is a well-formed action token.
func IsAction(token string) bool {
	kind, _, err := ParseToken(token)
	return err == nil && kind == Action
}

func (cb *Callback) String() string {
	return fmt.Sprintf("%s %s", cb.Kind, cb.Token)
}
