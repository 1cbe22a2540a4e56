// README: Order entity and cancellation-race tests (run with -race).
package order

import (
	"sync"
	"testing"
	"time"

	"taxipark/internal/modules/fleet"
	"taxipark/internal/types"
)

func newTestOrder() (*Order, *Client) {
	c := NewClient(1, types.Point{X: 0, Y: 0}, time.Second)
	o := NewOrder(c, types.Point{X: 0, Y: 0}, types.Point{X: 10, Y: 0})
	c.SetOrder(o)
	return o, c
}

func TestCancelIsIdempotent(t *testing.T) {
	o, _ := newTestOrder()
	v := fleet.NewVehicle(1, types.Point{}, 5)

	if !v.TryAssign(o) {
		t.Fatalf("assign should win on a fresh vehicle")
	}
	if !o.Assign(v) {
		t.Fatalf("order should accept the vehicle")
	}

	o.Cancel()
	if !o.Cancelled() {
		t.Fatalf("cancel flag should be set")
	}
	if v.Status() != fleet.StatusFree {
		t.Fatalf("cancel should release the vehicle, got %s", v.Status())
	}

	// Re-bind the vehicle to a different order, then cancel the first one
	// again: the stale cancel must not steal the vehicle back.
	o2, _ := newTestOrder()
	v.TryAssign(o2)
	o.Cancel()
	if v.Status() != fleet.StatusAssigned {
		t.Fatalf("stale cancel released a vehicle bound to another order")
	}
}

func TestCancelNeverReverts(t *testing.T) {
	o, _ := newTestOrder()
	o.Cancel()
	v := fleet.NewVehicle(1, types.Point{}, 5)
	if o.Assign(v) {
		t.Fatalf("cancelled order accepted a vehicle")
	}
	if o.Status() != StatusCancelled {
		t.Fatalf("status must stay cancelled, got %s", o.Status())
	}
	if o.MarkInProgress() {
		t.Fatalf("cancelled order marked in progress")
	}
}

func TestWaitAssigned(t *testing.T) {
	o, _ := newTestOrder()

	if o.WaitAssigned(10 * time.Millisecond) {
		t.Fatalf("wait should time out before any notification")
	}

	o.NotifyAssigned()
	o.NotifyAssigned() // second signal is a no-op

	// The broadcast is observe-many: late and repeated waiters all see it.
	for i := 0; i < 3; i++ {
		if !o.WaitAssigned(10 * time.Millisecond) {
			t.Fatalf("waiter %d missed the broadcast", i)
		}
	}
}

// TestConcurrentAssignVsCancel drives the §impatience race at entity level:
// one goroutine runs the dispatcher commit protocol, the other cancels.
// Whatever interleaving occurs, the vehicle must end free with no stale
// ride ref and the order must end cancelled exactly once.
func TestConcurrentAssignVsCancel(t *testing.T) {
	for i := 0; i < 200; i++ {
		o, _ := newTestOrder()
		v := fleet.NewVehicle(1, types.Point{}, 5)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if v.TryAssign(o) {
				if o.Assign(v) {
					o.NotifyAssigned()
					// Ride executor would now observe cancelled and
					// release; emulate its first check.
					if o.Cancelled() {
						v.Release(o)
					}
				} else {
					// Cancellation won before the cross-ref existed.
					v.Release(o)
				}
			}
		}()
		go func() {
			defer wg.Done()
			o.Cancel()
		}()
		wg.Wait()

		if !o.Cancelled() {
			t.Fatalf("iteration %d: order must end cancelled", i)
		}
		if v.Status() != fleet.StatusFree {
			t.Fatalf("iteration %d: vehicle stuck in %s", i, v.Status())
		}
		if v.CurrentRide() != nil {
			t.Fatalf("iteration %d: stale ride ref left on vehicle", i)
		}
	}
}

func TestQueueFIFOAndRequeueTail(t *testing.T) {
	q := NewQueue(4)
	a, _ := newTestOrder()
	b, _ := newTestOrder()
	c, _ := newTestOrder()

	for _, o := range []*Order{a, b, c} {
		if !q.Enqueue(o) {
			t.Fatalf("enqueue failed with capacity available")
		}
	}

	got, ok := q.Dequeue(time.Millisecond)
	if !ok || got != a {
		t.Fatalf("expected FIFO head a")
	}
	// Scarcity path: a goes back to the tail, behind b and c.
	if !q.Requeue(got) {
		t.Fatalf("requeue failed")
	}
	for _, want := range []*Order{b, c, a} {
		got, ok := q.Dequeue(time.Millisecond)
		if !ok || got != want {
			t.Fatalf("wrong dequeue order after requeue")
		}
	}
}

func TestQueueFailsClosedWhenFull(t *testing.T) {
	q := NewQueue(1)
	a, _ := newTestOrder()
	b, _ := newTestOrder()

	if !q.Enqueue(a) {
		t.Fatalf("first enqueue should succeed")
	}
	if q.Enqueue(b) {
		t.Fatalf("enqueue into a full queue must fail closed")
	}
	if q.Len() != 1 {
		t.Fatalf("expected len 1, got %d", q.Len())
	}
}

func TestQueueDequeueTimeout(t *testing.T) {
	q := NewQueue(1)
	start := time.Now()
	if _, ok := q.Dequeue(20 * time.Millisecond); ok {
		t.Fatalf("dequeue on empty queue should time out")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("dequeue returned before the bounded wait elapsed")
	}
}
