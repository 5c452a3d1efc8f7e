// Package queue implements a FIFO queue used for breadth-first traversals.
package queue

// minCompact is the number of consumed items that triggers buffer compaction.
const minCompact = 16

type Queue[T any] struct {
	items []T
	head  int
	zero  T
}

func New[T any](items ...T) *Queue[T] {
	res := &Queue[T]{items: make([]T, len(items))}
	copy(res.items, items)
	return res
}

func (q *Queue[T]) IsEmpty() bool {
	return q.head == len(q.items)
}

func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

// Items returns queued items in order, the result must not be modified.
func (q *Queue[T]) Items() []T {
	return q.items[q.head:]
}

func (q *Queue[T]) Append(items ...T) *Queue[T] {
	q.items = append(q.items, items...)
	return q
}

// First removes and returns the oldest item, returns false if queue is empty.
func (q *Queue[T]) First() (T, bool) {
	if q.IsEmpty() {
		return q.zero, false
	}

	res := q.items[q.head]
	q.items[q.head] = q.zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head >= minCompact && q.head >= len(q.items)-q.head {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return res, true
}
