// Package sequence implements a position-addressable, doubly-linked ordered
// container. Nodes live in a slice arena and link to each other by index, so
// callers only ever see values and positions, never node handles.
package sequence

import (
	"errors"
	"fmt"
	"iter"
)

// ErrOutOfRange is returned when a position falls outside the bounds of the
// requested operation. Positions are never clamped.
var ErrOutOfRange = errors.New("position out of range")

const none = -1

type node[T any] struct {
	value T
	prev  int
	next  int
}

// Sequence is an ordered container with O(1) access at both ends and
// O(min(k, n-k)) access at position k. It is not safe for concurrent use;
// callers serialize every operation.
type Sequence[T any] struct {
	nodes []node[T]
	free  []int
	head  int
	tail  int
	count int

	// hops counts links followed by locate, for traversal instrumentation.
	hops int
}

// New creates an empty sequence
func New[T any]() *Sequence[T] {
	return &Sequence[T]{head: none, tail: none}
}

// Len returns the number of elements
func (s *Sequence[T]) Len() int {
	return s.count
}

// PushFront prepends v
func (s *Sequence[T]) PushFront(v T) {
	i := s.alloc(v)
	if s.head == none {
		s.head, s.tail = i, i
	} else {
		s.nodes[i].next = s.head
		s.nodes[s.head].prev = i
		s.head = i
	}
	s.count++
}

// PushBack appends v
func (s *Sequence[T]) PushBack(v T) {
	i := s.alloc(v)
	if s.tail == none {
		s.head, s.tail = i, i
	} else {
		s.nodes[i].prev = s.tail
		s.nodes[s.tail].next = i
		s.tail = i
	}
	s.count++
}

// Insert places v at pos, shifting the element currently there (and every
// later one) back by one. pos must be in [0, Len()].
func (s *Sequence[T]) Insert(pos int, v T) error {
	if pos < 0 || pos > s.count {
		return rangeError("insert", pos, s.count)
	}

	switch pos {
	case 0:
		s.PushFront(v)
	case s.count:
		s.PushBack(v)
	default:
		at := s.locate(pos)
		before := s.nodes[at].prev
		i := s.alloc(v)
		s.nodes[i].prev = before
		s.nodes[i].next = at
		s.nodes[before].next = i
		s.nodes[at].prev = i
		s.count++
	}
	return nil
}

// Remove unlinks the element at pos and returns its value. pos must be in
// [0, Len()-1].
func (s *Sequence[T]) Remove(pos int) (T, error) {
	if err := s.checkIndex("remove", pos); err != nil {
		var zero T
		return zero, err
	}

	i := s.locate(pos)
	prev, next := s.nodes[i].prev, s.nodes[i].next
	if prev == none {
		s.head = next
	} else {
		s.nodes[prev].next = next
	}
	if next == none {
		s.tail = prev
	} else {
		s.nodes[next].prev = prev
	}
	s.count--

	return s.release(i), nil
}

// At returns the value at pos without removing it
func (s *Sequence[T]) At(pos int) (T, error) {
	if err := s.checkIndex("at", pos); err != nil {
		var zero T
		return zero, err
	}
	return s.nodes[s.locate(pos)].value, nil
}

// Front returns the first value, or false when the sequence is empty
func (s *Sequence[T]) Front() (T, bool) {
	if s.head == none {
		var zero T
		return zero, false
	}
	return s.nodes[s.head].value, true
}

// Back returns the last value, or false when the sequence is empty
func (s *Sequence[T]) Back() (T, bool) {
	if s.tail == none {
		var zero T
		return zero, false
	}
	return s.nodes[s.tail].value, true
}

// Values returns every value in order. The returned slice is a copy.
func (s *Sequence[T]) Values() []T {
	out := make([]T, 0, s.count)
	for i := s.head; i != none; i = s.nodes[i].next {
		out = append(out, s.nodes[i].value)
	}
	return out
}

// All iterates front to back, yielding position and value
func (s *Sequence[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		pos := 0
		for i := s.head; i != none; i = s.nodes[i].next {
			if !yield(pos, s.nodes[i].value) {
				return
			}
			pos++
		}
	}
}

// Backward iterates back to front, yielding position and value
func (s *Sequence[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		pos := s.count - 1
		for i := s.tail; i != none; i = s.nodes[i].prev {
			if !yield(pos, s.nodes[i].value) {
				return
			}
			pos--
		}
	}
}

// Find returns the first value matching match and its position. The position
// is -1 when nothing matches.
func (s *Sequence[T]) Find(match func(T) bool) (T, int, bool) {
	for pos, v := range s.All() {
		if match(v) {
			return v, pos, true
		}
	}
	var zero T
	return zero, -1, false
}

// Filter returns a new sequence holding the matching values in their
// current order. s is left untouched.
func (s *Sequence[T]) Filter(match func(T) bool) *Sequence[T] {
	out := New[T]()
	for _, v := range s.All() {
		if match(v) {
			out.PushBack(v)
		}
	}
	return out
}

// Reverse flips the order in place
func (s *Sequence[T]) Reverse() {
	if s.count < 2 {
		return
	}
	for i := s.head; i != none; {
		n := &s.nodes[i]
		next := n.next
		n.prev, n.next = n.next, n.prev
		i = next
	}
	s.head, s.tail = s.tail, s.head
}

// Swap exchanges the elements at p1 and p2. Nodes keep their identity; only
// links move.
func (s *Sequence[T]) Swap(p1, p2 int) error {
	if err := s.checkIndex("swap", p1); err != nil {
		return err
	}
	if err := s.checkIndex("swap", p2); err != nil {
		return err
	}
	if p1 == p2 {
		return nil
	}
	if p1 > p2 {
		p1, p2 = p2, p1
	}

	a, b := s.locate(p1), s.locate(p2)
	// Neighbors are captured before any link is rewritten.
	prevA, nextA := s.nodes[a].prev, s.nodes[a].next
	prevB, nextB := s.nodes[b].prev, s.nodes[b].next

	switch {
	case nextA == b:
		// Adjacent: a and b point at each other, so only the outer
		// neighbors are rewired.
		s.nodes[a].prev, s.nodes[a].next = b, nextB
		s.nodes[b].prev, s.nodes[b].next = prevA, a
		if prevA == none {
			s.head = b
		} else {
			s.nodes[prevA].next = b
		}
		if nextB == none {
			s.tail = a
		} else {
			s.nodes[nextB].prev = a
		}

	case prevA == none || nextB == none:
		// At least one of them is the head or the tail.
		s.nodes[a].prev, s.nodes[a].next = prevB, nextB
		s.nodes[b].prev, s.nodes[b].next = prevA, nextA
		if prevA == none {
			s.head = b
		} else {
			s.nodes[prevA].next = b
		}
		s.nodes[nextA].prev = b
		s.nodes[prevB].next = a
		if nextB == none {
			s.tail = a
		} else {
			s.nodes[nextB].prev = a
		}

	default:
		// Interior, non-adjacent: all four neighbors exist.
		s.nodes[a].prev, s.nodes[a].next = prevB, nextB
		s.nodes[b].prev, s.nodes[b].next = prevA, nextA
		s.nodes[prevA].next = b
		s.nodes[nextA].prev = b
		s.nodes[prevB].next = a
		s.nodes[nextB].prev = a
	}
	return nil
}

// Clear drops every element and releases the arena
func (s *Sequence[T]) Clear() {
	s.nodes = nil
	s.free = nil
	s.head, s.tail = none, none
	s.count = 0
}

// locate walks from whichever end is closer. pos must already be valid.
func (s *Sequence[T]) locate(pos int) int {
	if pos <= s.count/2 {
		i := s.head
		for k := 0; k < pos; k++ {
			i = s.nodes[i].next
			s.hops++
		}
		return i
	}
	i := s.tail
	for k := 0; k < s.count-1-pos; k++ {
		i = s.nodes[i].prev
		s.hops++
	}
	return i
}

func (s *Sequence[T]) checkIndex(op string, pos int) error {
	if pos < 0 || pos >= s.count {
		return rangeError(op, pos, s.count-1)
	}
	return nil
}

func (s *Sequence[T]) alloc(v T) int {
	n := node[T]{value: v, prev: none, next: none}
	if k := len(s.free); k > 0 {
		i := s.free[k-1]
		s.free = s.free[:k-1]
		s.nodes[i] = n
		return i
	}
	s.nodes = append(s.nodes, n)
	return len(s.nodes) - 1
}

func (s *Sequence[T]) release(i int) T {
	v := s.nodes[i].value
	s.nodes[i] = node[T]{prev: none, next: none}
	s.free = append(s.free, i)
	return v
}

func rangeError(op string, pos, bound int) error {
	if bound < 0 {
		return fmt.Errorf("%s %d: %w (sequence is empty)", op, pos, ErrOutOfRange)
	}
	return fmt.Errorf("%s %d: %w [0, %d]", op, pos, ErrOutOfRange, bound)
}
