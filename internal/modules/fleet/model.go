// README: Vehicle entity; one mutex per vehicle guards position, status, and ride ref together.
package fleet

import (
	"sync"

	"taxipark/internal/types"
)

type Status string

const (
	StatusFree           Status = "free"
	StatusAssigned       Status = "assigned"
	StatusMovingToPickup Status = "moving_to_pickup"
	StatusOnRide         Status = "on_ride"
)

// Ride is the order-side handle a vehicle holds while bound to an order.
// The fleet never inspects it; it only keeps identity so release and phase
// changes can verify they still act on behalf of the binding ride.
type Ride interface {
	Token() string
}

type Vehicle struct {
	id    int
	speed float64

	mu     sync.Mutex
	pos    types.Point
	status Status
	ride   Ride
}

func NewVehicle(id int, pos types.Point, speed float64) *Vehicle {
	return &Vehicle{id: id, speed: speed, pos: pos, status: StatusFree}
}

func (v *Vehicle) ID() int        { return v.id }
func (v *Vehicle) Speed() float64 { return v.speed }

func (v *Vehicle) Position() types.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos
}

func (v *Vehicle) SetPosition(p types.Point) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pos = p
}

func (v *Vehicle) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// TryAssign re-checks the status under the lock before committing, closing
// the race between the read-only nearest scan and the actual assignment.
// At most one caller wins a given vehicle.
func (v *Vehicle) TryAssign(r Ride) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.status != StatusFree {
		return false
	}
	v.status = StatusAssigned
	v.ride = r
	return true
}

// SetPhase moves the vehicle to a new non-free status, but only while it is
// still bound to r. Returns false when the binding was already released
// (e.g. a concurrent cancellation), in which case the caller must stop.
func (v *Vehicle) SetPhase(r Ride, s Status) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ride != r {
		return false
	}
	v.status = s
	return true
}

// Release returns the vehicle to the free pool and clears the ride ref.
// It is a no-op unless the vehicle is still bound to r, which makes
// concurrent cancel/complete/fault paths safely idempotent.
func (v *Vehicle) Release(r Ride) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ride != r {
		return false
	}
	v.status = StatusFree
	v.ride = nil
	return true
}

// CurrentRide reports the binding ride, if any.
func (v *Vehicle) CurrentRide() Ride {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ride
}
