package queue

import "errors"

var ErrEmpty = errors.New("queue is empty")

// Queue is a FIFO queue. The zero value is an empty queue.
type Queue[E any] struct {
	elements []E
	head     int
}

func (q *Queue[E]) Push(e E) {
	q.elements = append(q.elements, e)
}

func (q *Queue[E]) Empty() bool {
	return q.head == len(q.elements)
}

func (q *Queue[E]) Len() int {
	return len(q.elements) - q.head
}

func (q *Queue[E]) Pop() E {
	if q.Empty() {
		panic(ErrEmpty)
	}

	var zero E
	e := q.elements[q.head]
	q.elements[q.head] = zero
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head > 32 && q.head*2 >= len(q.elements) {
		n := copy(q.elements, q.elements[q.head:])
		q.elements = q.elements[:n]
		q.head = 0
	}
	return e
}

// Stack is a LIFO counterpart of Queue with the same method set.
type Stack[E any] struct {
	elements []E
}

func (s *Stack[E]) Push(e E) {
	s.elements = append(s.elements, e)
}

func (s *Stack[E]) Empty() bool {
	return len(s.elements) == 0
}

func (s *Stack[E]) Len() int {
	return len(s.elements)
}

func (s *Stack[E]) Pop() E {
	if s.Empty() {
		panic(ErrEmpty)
	}

	var zero E
	last := len(s.elements) - 1
	e := s.elements[last]
	s.elements[last] = zero
	s.elements = s.elements[:last]
	return e
}
