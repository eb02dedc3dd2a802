// Package focus keeps items in most-recently-focused-first order.
package focus

import "slices"

// Stack holds each item at most once. The zero value is an empty stack.
type Stack[T comparable] struct {
	items []T
}

// Push moves v to the front, inserting it if absent.
func (s *Stack[T]) Push(v T) {
	s.Remove(v)
	s.items = slices.Insert(s.items, 0, v)
}

// Append adds v at the back if absent.
func (s *Stack[T]) Append(v T) {
	if !s.Contains(v) {
		s.items = append(s.items, v)
	}
}

// Remove deletes v and reports whether it was present.
func (s *Stack[T]) Remove(v T) bool {
	i := slices.Index(s.items, v)
	if i == -1 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

func (s *Stack[T]) Contains(v T) bool {
	return slices.Contains(s.items, v)
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}

// Items returns a copy in stack order.
func (s *Stack[T]) Items() []T {
	return slices.Clone(s.items)
}

// Filter returns the items for which keep is true, in stack order.
func (s *Stack[T]) Filter(keep func(T) bool) []T {
	out := make([]T, 0, len(s.items))
	for _, v := range s.items {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// First returns the front-most item accepted by keep.
func (s *Stack[T]) First(keep func(T) bool) (T, bool) {
	for _, v := range s.items {
		if keep(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Cycle returns the item delta steps away from cur among the items accepted
// by keep, wrapping at both ends. The stack order is not changed. ok is false
// when fewer than two items are accepted or cur is not among them.
func (s *Stack[T]) Cycle(cur T, delta int, keep func(T) bool) (next T, ok bool) {
	view := s.Filter(keep)
	n := len(view)
	if n < 2 {
		return next, false
	}
	i := slices.Index(view, cur)
	if i == -1 {
		return next, false
	}
	j := ((i+delta)%n + n) % n
	return view[j], true
}
