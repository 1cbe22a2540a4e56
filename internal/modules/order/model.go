// README: Order and client entities; assignment notification and cancellation live here.
package order

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"taxipark/internal/modules/fleet"
	"taxipark/internal/types"
)

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Order is jointly referenced by the assigning dispatcher, the ride
// executor, and the impatience monitor once it leaves the queue. All three
// must tolerate it being cancelled underneath them.
type Order struct {
	token     uuid.UUID
	client    *Client
	pickup    types.Point
	dropoff   types.Point
	createdAt time.Time

	mu        sync.Mutex
	status    Status
	cancelled bool
	vehicle   *fleet.Vehicle

	// One-shot broadcast: closed exactly once, observable by any number
	// of waiters.
	assigned chan struct{}
	once     sync.Once
}

func NewOrder(c *Client, pickup, dropoff types.Point) *Order {
	return &Order{
		token:     uuid.New(),
		client:    c,
		pickup:    pickup,
		dropoff:   dropoff,
		createdAt: time.Now(),
		status:    StatusWaiting,
		assigned:  make(chan struct{}),
	}
}

// Token implements fleet.Ride.
func (o *Order) Token() string { return o.token.String() }

func (o *Order) Client() *Client      { return o.client }
func (o *Order) Pickup() types.Point  { return o.pickup }
func (o *Order) Dropoff() types.Point { return o.dropoff }
func (o *Order) CreatedAt() time.Time { return o.createdAt }

func (o *Order) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Order) Cancelled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

func (o *Order) Vehicle() *fleet.Vehicle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.vehicle
}

// Assign stores the winning vehicle on the order. It refuses unless the
// order is still waiting: a cancellation that won the race, an earlier
// assignment (duplicate dispatch), or a completed order all reject the
// vehicle, and the caller must release it itself.
func (o *Order) Assign(v *fleet.Vehicle) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != StatusWaiting {
		return false
	}
	o.vehicle = v
	o.status = StatusAssigned
	return true
}

// NotifyAssigned signals the one-shot assignment notification. Safe to call
// more than once; only the first call broadcasts.
func (o *Order) NotifyAssigned() {
	o.once.Do(func() { close(o.assigned) })
}

// Assigned exposes the notification channel for callers that need to race
// it against other signals in a select.
func (o *Order) Assigned() <-chan struct{} { return o.assigned }

// WaitAssigned blocks until the assignment notification fires or the
// timeout elapses, and reports which happened.
func (o *Order) WaitAssigned(timeout time.Duration) bool {
	select {
	case <-o.assigned:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Cancel flips the monotonic cancelled flag and releases the assigned
// vehicle, if any, back to the free pool. Cancelling twice is a no-op and
// never double-releases. Orders are only cancellable while waiting or
// assigned; once the client boarded the ride runs to completion.
func (o *Order) Cancel() {
	o.mu.Lock()
	if o.cancelled || o.status == StatusInProgress || o.status == StatusCompleted {
		o.mu.Unlock()
		return
	}
	o.cancelled = true
	o.status = StatusCancelled
	v := o.vehicle
	o.vehicle = nil
	o.mu.Unlock()

	// Vehicle lock is taken after the order lock is dropped; the two are
	// never nested in either direction.
	if v != nil {
		v.Release(o)
	}
}

// MarkInProgress records that the client boarded. Returns false if the
// order was cancelled first.
func (o *Order) MarkInProgress() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancelled {
		return false
	}
	o.status = StatusInProgress
	return true
}

// MarkCompleted ends the ride and drops the vehicle cross-ref. The vehicle
// itself is released by the ride executor.
func (o *Order) MarkCompleted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancelled {
		return
	}
	o.status = StatusCompleted
	o.vehicle = nil
}

// DetachVehicle clears the cross-ref without completing, used on fault
// recovery paths.
func (o *Order) DetachVehicle() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.vehicle = nil
}

type ClientStatus string

const (
	ClientWaiting ClientStatus = "waiting"
	ClientOnRide  ClientStatus = "on_ride"
	ClientArrived ClientStatus = "arrived"
	ClientRefused ClientStatus = "refused"
)

type Client struct {
	id       int
	origin   types.Point
	patience time.Duration

	mu     sync.Mutex
	status ClientStatus
	order  *Order
}

func NewClient(id int, origin types.Point, patience time.Duration) *Client {
	return &Client{id: id, origin: origin, patience: patience, status: ClientWaiting}
}

func (c *Client) ID() int                 { return c.id }
func (c *Client) Origin() types.Point     { return c.origin }
func (c *Client) Patience() time.Duration { return c.patience }

func (c *Client) Status() ClientStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) SetStatus(s ClientStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
}

func (c *Client) Order() *Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order
}

func (c *Client) SetOrder(o *Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = o
}
