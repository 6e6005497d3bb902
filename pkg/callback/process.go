package callback

import (
	"fmt"
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
)

type match struct {
	cb    *Callback
	value string
}

// Matched is the result of resolving a request's tokens against a registry.
type Matched struct {
	inputs  map[any][]match
	action  *match
	ignored []string
}

// Match resolves every submitted token before anything runs.
// Malformed tokens and more than one action token are protocol errors.
// An action token that does not resolve is ErrInvalidAction. Input tokens
// that do not resolve are ignored and reported by Ignored.
func (r *Registry) Match(fields map[string]string) (*Matched, error) {
	tokens := make([]string, 0, len(fields))
	for token := range fields {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	var actionToken string
	for _, token := range tokens {
		kind, _, err := ParseToken(token)
		if err != nil {
			return nil, err
		}
		if kind != Action {
			continue
		}
		if actionToken != "" {
			return nil, domain.NewProtocolError("multiple action tokens (%s, %s)", actionToken, token)
		}
		actionToken = token
	}

	m := &Matched{inputs: make(map[any][]match)}
	for _, token := range tokens {
		cb, ok := r.Lookup(token)
		if !ok {
			if token == actionToken {
				return nil, fmt.Errorf("%w: token %s does not resolve on this page", domain.ErrInvalidAction, token)
			}
			m.ignored = append(m.ignored, token)
			continue
		}
		if token == actionToken {
			m.action = &match{cb: cb, value: fields[token]}
			continue
		}
		m.inputs[cb.Owner] = append(m.inputs[cb.Owner], match{cb: cb, value: fields[token]})
	}
	for owner := range m.inputs {
		list := m.inputs[owner]
		sort.Slice(list, func(i, j int) bool { return list[i].cb.seq < list[j].cb.seq })
	}
	return m, nil
}

// Ignored returns input tokens that did not resolve.
func (m *Matched) Ignored() []string {
	return m.ignored
}

// HasAction reports whether an action was matched.
func (m *Matched) HasAction() bool {
	return m.action != nil
}

// Inputs returns the number of matched inputs.
func (m *Matched) Inputs() int {
	n := 0
	for _, list := range m.inputs {
		n += len(list)
	}
	return n
}

// Pass carries a Matched set through the process-callbacks traversal.
type Pass struct {
	matched *Matched
	visited map[any]struct{}
	order   []any
}

// NewPass starts a traversal over m.
func NewPass(m *Matched) *Pass {
	if m == nil {
		m = &Matched{inputs: make(map[any][]match)}
	}
	return &Pass{matched: m, visited: make(map[any]struct{})}
}

// Visit marks owner as reachable. Visiting twice keeps the first position.
func (p *Pass) Visit(owner any) {
	if _, ok := p.visited[owner]; ok {
		return
	}
	p.visited[owner] = struct{}{}
	p.order = append(p.order, owner)
}

// Visited reports whether owner was reached by the traversal.
func (p *Pass) Visited(owner any) bool {
	_, ok := p.visited[owner]
	return ok
}

// Run fires the inputs of every visited owner (visit order, then registration
// order) and then the action, if any. An action whose owner was not reached is
// rejected before any input fires.
func (p *Pass) Run() error {
	action := p.matched.action
	if action != nil && !p.Visited(action.cb.Owner) {
		return fmt.Errorf("%w: token %s belongs to a component that is no longer shown", domain.ErrInvalidAction, action.cb.Token)
	}

	for _, owner := range p.order {
		for _, in := range p.matched.inputs[owner] {
			if err := in.cb.fn(in.value); err != nil {
				return fmt.Errorf("%w: %s: %w", domain.ErrCallbackFailed, in.cb, err)
			}
		}
	}

	if action != nil {
		if err := action.cb.fn(action.value); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrCallbackFailed, action.cb, err)
		}
	}
	return nil
}
