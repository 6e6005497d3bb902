package snapshot

import (
	"fmt"
	"slices"

	"github.com/tiendc/go-deepcopy"
)

// Cell holds a single value. Snapshots copy the value itself, so pointers,
// interfaces, maps and slices stored in a Cell are restored by reference.
type Cell[T any] struct {
	value T
}

// NewCell returns a cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set replaces the current value.
func (c *Cell[T]) Set(v T) {
	c.value = v
}

// Update applies fn to the current value.
func (c *Cell[T]) Update(fn func(T) T) {
	c.value = fn(c.value)
}

func (c *Cell[T]) TakeSnapshot() any {
	return c.value
}

func (c *Cell[T]) RestoreSnapshot(saved any) {
	v, _ := saved.(T)
	c.value = v
}

// Slice holds a slice whose backing array is copied on capture and on restore.
type Slice[T any] struct {
	items []T
}

// NewSlice returns a holder seeded with a copy of items.
func NewSlice[T any](items ...T) *Slice[T] {
	return &Slice[T]{items: slices.Clone(items)}
}

// Items returns a copy of the held items.
func (s *Slice[T]) Items() []T {
	return slices.Clone(s.items)
}

// Len returns the number of held items.
func (s *Slice[T]) Len() int {
	return len(s.items)
}

// Append adds items at the end.
func (s *Slice[T]) Append(items ...T) {
	s.items = append(s.items, items...)
}

// Set replaces the held items with a copy of items.
func (s *Slice[T]) Set(items []T) {
	s.items = slices.Clone(items)
}

func (s *Slice[T]) TakeSnapshot() any {
	return slices.Clone(s.items)
}

func (s *Slice[T]) RestoreSnapshot(saved any) {
	items, _ := saved.([]T)
	s.items = slices.Clone(items)
}

// Record holds a value that is deep-copied on capture and on restore,
// for nested structs and maps that the owner mutates in place.
type Record[T any] struct {
	value T
}

// NewRecord returns a record holding v.
func NewRecord[T any](v T) *Record[T] {
	return &Record[T]{value: v}
}

// Get returns a pointer to the live value, for in-place mutation.
func (r *Record[T]) Get() *T {
	return &r.value
}

// Set replaces the live value.
func (r *Record[T]) Set(v T) {
	r.value = v
}

func (r *Record[T]) TakeSnapshot() any {
	var cp T
	if err := deepcopy.Copy(&cp, r.value); err != nil {
		panic(fmt.Errorf("snapshot: cannot copy %T: %w", r.value, err))
	}
	return cp
}

func (r *Record[T]) RestoreSnapshot(saved any) {
	v, _ := saved.(T)
	var cp T
	if err := deepcopy.Copy(&cp, v); err != nil {
		panic(fmt.Errorf("snapshot: cannot restore %T: %w", v, err))
	}
	r.value = cp
}
