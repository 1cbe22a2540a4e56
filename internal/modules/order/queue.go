// README: Shared order queue; channel-backed FIFO with bounded-wait dequeue.
package order

import "time"

// Queue is the only globally shared order structure. FIFO among orders that
// were never requeued; a scarcity requeue goes to the tail, so sustained
// scarcity reorders relative to strict arrival order.
type Queue struct {
	ch chan *Order
}

func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan *Order, capacity)}
}

// Enqueue fails closed when the queue is full; the caller reports the
// submission failure to the client instead of blocking.
func (q *Queue) Enqueue(o *Order) bool {
	select {
	case q.ch <- o:
		return true
	default:
		return false
	}
}

// Requeue pushes an order back to the tail after a scarcity miss. Same
// fail-closed behavior as Enqueue; a full queue on requeue means the order
// is dropped, which the dispatcher logs and resolves by cancelling.
func (q *Queue) Requeue(o *Order) bool {
	return q.Enqueue(o)
}

// Dequeue waits up to timeout for an order. The bounded wait is what lets
// dispatch workers periodically re-check their running flag.
func (q *Queue) Dequeue(timeout time.Duration) (*Order, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case o := <-q.ch:
		return o, true
	case <-timer.C:
		return nil, false
	}
}

func (q *Queue) Len() int { return len(q.ch) }
