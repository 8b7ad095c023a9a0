package ingest

import (
	"context"
	"sync"
	"time"
)

// Queue is an unbounded FIFO of records. Push never blocks, so the accept loop
// is never held up by persistence.
type Queue struct {
	mu     sync.Mutex
	items  []Record
	notify chan struct{}
}

func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

func (q *Queue) Push(r Record) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop waits up to timeout for a record. ok is false on timeout or when ctx ends.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (Record, bool) {
	if r, ok := q.tryPop(); ok {
		return r, true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-q.notify:
			if r, ok := q.tryPop(); ok {
				return r, true
			}
		case <-timer.C:
			return q.tryPop()
		case <-ctx.Done():
			return Record{}, false
		}
	}
}

// Drain removes and returns everything queued.
func (q *Queue) Drain() []Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) tryPop() (Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Record{}, false
	}
	r := q.items[0]
	q.items[0] = Record{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return r, true
}
