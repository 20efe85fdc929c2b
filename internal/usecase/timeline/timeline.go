// Package timeline orders events by delivery timestamp. Events sharing a
// timestamp are delivered in the order they were scheduled.
package timeline

import (
	"container/heap"

	eventv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/event/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
)

type bucket struct {
	events []eventv1.Event
	head   int
}

func (b *bucket) len() int { return len(b.events) - b.head }

// Timeline is a priority queue of events keyed by timestamp.
type Timeline struct {
	buckets map[int64]*bucket
	keys    tsHeap
	size    int
}

// New creates an empty timeline.
func New() *Timeline {
	return &Timeline{
		buckets: make(map[int64]*bucket),
	}
}

// Schedule appends ev at ts, behind every event already scheduled at ts.
func (t *Timeline) Schedule(ev eventv1.Event, ts int64) {
	b, ok := t.buckets[ts]
	if !ok {
		b = &bucket{}
		t.buckets[ts] = b
		heap.Push(&t.keys, ts)
	}
	b.events = append(b.events, ev)
	t.size++
}

// PopNext removes and returns the earliest event.
func (t *Timeline) PopNext() (int64, eventv1.Event, error) {
	if t.size == 0 {
		return 0, nil, ErrEmpty
	}

	ts := t.keys[0]
	b := t.buckets[ts]
	ev := b.events[b.head]
	b.events[b.head] = nil
	b.head++
	t.size--

	if b.len() == 0 {
		delete(t.buckets, ts)
		heap.Pop(&t.keys)
	}

	return ts, ev, nil
}

// PeekTimestamp returns the earliest scheduled timestamp.
func (t *Timeline) PeekTimestamp() (int64, bool) {
	if t.size == 0 {
		return 0, false
	}
	return t.keys[0], true
}

// IsEmpty reports whether nothing is scheduled.
func (t *Timeline) IsEmpty() bool {
	return t.size == 0
}

// Len returns the number of scheduled events.
func (t *Timeline) Len() int {
	return t.size
}

// Clone returns a copy that can be drained without touching t. Event values
// are shared.
func (t *Timeline) Clone() *Timeline {
	c := &Timeline{
		buckets: make(map[int64]*bucket, len(t.buckets)),
		keys:    make(tsHeap, len(t.keys)),
		size:    t.size,
	}
	copy(c.keys, t.keys)
	for ts, b := range t.buckets {
		events := make([]eventv1.Event, b.len())
		copy(events, b.events[b.head:])
		c.buckets[ts] = &bucket{events: events}
	}
	return c
}

// ErrEmpty is returned by PopNext on an empty timeline.
var ErrEmpty = orderbookv1.ErrTimelineEmpty

type tsHeap []int64

func (h tsHeap) Len() int           { return len(h) }
func (h tsHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h tsHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *tsHeap) Push(x any) {
	*h = append(*h, x.(int64))
}

func (h *tsHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
