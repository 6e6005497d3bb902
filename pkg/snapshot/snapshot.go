package snapshot

// Snapshotter is implemented by every object that opts into backtracking.
// TakeSnapshot must return a self-contained value: it may not depend on the
// current state of any other object, so restore order never matters.
// Implementations must be pointer types (they are used as identity keys).
type Snapshotter interface {
	TakeSnapshot() any
	RestoreSnapshot(saved any)
}

// Walker is a root of the object graph that knows how to register its states.
type Walker interface {
	Backtrack(b *Builder)
}

// WalkerFunc adapts a function to the Walker interface.
type WalkerFunc func(b *Builder)

// Backtrack calls f(b).
func (f WalkerFunc) Backtrack(b *Builder) {
	f(b)
}

type entry struct {
	obj   Snapshotter
	saved any
}

// Builder accumulates saved states during a backtrack traversal.
// Registering the same object twice keeps the first capture.
type Builder struct {
	seen    map[Snapshotter]struct{}
	entries []entry
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{seen: make(map[Snapshotter]struct{})}
}

// Register captures the state of each object not captured yet. Nil values are skipped.
func (b *Builder) Register(objs ...Snapshotter) {
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		if _, ok := b.seen[obj]; ok {
			continue
		}
		b.seen[obj] = struct{}{}
		b.entries = append(b.entries, entry{obj: obj, saved: obj.TakeSnapshot()})
	}
}

// Contains reports whether obj has been captured by this builder.
func (b *Builder) Contains(obj Snapshotter) bool {
	_, ok := b.seen[obj]
	return ok
}

// Len returns the number of captured objects.
func (b *Builder) Len() int {
	return len(b.entries)
}

// Snapshot freezes the builder's captures. The builder must not be reused.
func (b *Builder) Snapshot() *Snapshot {
	index := make(map[Snapshotter]int, len(b.entries))
	for i, e := range b.entries {
		index[e.obj] = i
	}
	s := &Snapshot{entries: b.entries, index: index}
	b.entries = nil
	b.seen = nil
	return s
}

// Snapshot is an immutable capture of a set of objects' states.
type Snapshot struct {
	entries []entry
	index   map[Snapshotter]int
}

// Capture walks every root and returns the frozen result.
func Capture(roots ...Walker) *Snapshot {
	b := NewBuilder()
	for _, root := range roots {
		root.Backtrack(b)
	}
	return b.Snapshot()
}

// Apply restores every captured object to its saved state.
func (s *Snapshot) Apply() {
	if s == nil {
		return
	}
	for _, e := range s.entries {
		e.obj.RestoreSnapshot(e.saved)
	}
}

// Len returns the number of captured objects.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Contains reports whether obj was captured.
func (s *Snapshot) Contains(obj Snapshotter) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[obj]
	return ok
}

// Saved returns the representation captured for obj.
func (s *Snapshot) Saved(obj Snapshotter) (any, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[obj]
	if !ok {
		return nil, false
	}
	return s.entries[i].saved, true
}
