// README: Ride executor; one goroutine per assignment interpolates movement and observes cancellation.
package ride

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"taxipark/internal/geo"
	"taxipark/internal/modules/eventlog"
	"taxipark/internal/modules/fleet"
	"taxipark/internal/modules/history"
	"taxipark/internal/modules/order"
	"taxipark/internal/types"
)

// Clock abstracts the simulated travel delay so tests can run instantly.
type Clock interface {
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

type Service struct {
	step    time.Duration
	clock   Clock
	log     *eventlog.Sink
	history *history.Store

	running atomic.Bool
	wg      sync.WaitGroup
}

func NewService(step time.Duration, log *eventlog.Sink, hist *history.Store, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	s := &Service{step: step, clock: clock, log: log, history: hist}
	s.running.Store(true)
	return s
}

// StartRide launches the executor goroutine for one (vehicle, order)
// assignment. The dispatcher has already committed the assignment.
func (s *Service) StartRide(v *fleet.Vehicle, o *order.Order) {
	s.wg.Add(1)
	go s.run(v, o)
}

// Stop flips the running flag and waits for in-flight executors. Executors
// abort between interpolation steps, leaving their vehicle free at its
// current position; rides cut short by shutdown are not an error.
func (s *Service) Stop(timeout time.Duration) bool {
	s.running.Store(false)
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *Service) run(v *fleet.Vehicle, o *order.Order) {
	defer s.wg.Done()
	defer func() {
		// A fault mid-ride must never leave the vehicle stuck non-free
		// or the order pointing at a silently exited vehicle.
		if r := recover(); r != nil {
			v.Release(o)
			o.DetachVehicle()
			s.log.Printf("ride %s: recovered from fault: %v", o.Token(), r)
			s.appendHistory(o, v, history.OutcomeFault)
		}
	}()

	client := o.Client()

	// Cancellation may have landed between assignment commit and executor
	// start; honor it before moving.
	if o.Cancelled() {
		s.abort(v, o, history.OutcomeCancelled)
		return
	}
	if !v.SetPhase(o, fleet.StatusMovingToPickup) {
		// Already released by a concurrent cancel.
		o.DetachVehicle()
		return
	}

	if !s.moveTo(v, o, o.Pickup()) {
		s.abortAfterLeg(v, o)
		return
	}
	if o.Cancelled() {
		s.log.Printf("order %s cancelled during movement to client", o.Token())
		s.abort(v, o, history.OutcomeCancelled)
		return
	}

	if !v.SetPhase(o, fleet.StatusOnRide) || !o.MarkInProgress() {
		s.abort(v, o, history.OutcomeCancelled)
		return
	}
	client.SetStatus(order.ClientOnRide)
	s.log.Printf("vehicle %d picked up client %d", v.ID(), client.ID())

	if !s.moveTo(v, o, o.Dropoff()) {
		s.abortAfterLeg(v, o)
		return
	}

	v.Release(o)
	o.MarkCompleted()
	client.SetStatus(order.ClientArrived)
	s.log.Printf("vehicle %d completed order %s at %v", v.ID(), o.Token(), v.Position())
	s.appendHistory(o, v, history.OutcomeCompleted)
}

// moveTo advances the vehicle linearly toward target, one step per clock
// tick. Returns false when the leg was aborted by cancellation or shutdown;
// the vehicle stays wherever it was, worst case one step after the signal.
func (s *Service) moveTo(v *fleet.Vehicle, o *order.Order, target types.Point) bool {
	start := v.Position()
	steps := geo.Steps(start, target, v.Speed())
	for i := 1; i <= steps; i++ {
		if !s.running.Load() || o.Cancelled() {
			return false
		}
		v.SetPosition(geo.Lerp(start, target, float64(i)/float64(steps)))
		s.clock.Sleep(s.step)
	}
	return true
}

func (s *Service) abort(v *fleet.Vehicle, o *order.Order, outcome string) {
	v.Release(o)
	o.DetachVehicle()
	s.appendHistory(o, v, outcome)
}

// abortAfterLeg handles a leg cut short: cancellation is recorded, a plain
// shutdown is not an error and leaves no history entry.
func (s *Service) abortAfterLeg(v *fleet.Vehicle, o *order.Order) {
	if o.Cancelled() {
		s.log.Printf("order %s cancelled during movement", o.Token())
		s.abort(v, o, history.OutcomeCancelled)
		return
	}
	v.Release(o)
	o.DetachVehicle()
}

func (s *Service) appendHistory(o *order.Order, v *fleet.Vehicle, outcome string) {
	vid := v.ID()
	err := s.history.AppendEvent(context.Background(), &history.Event{
		OrderToken: o.Token(),
		ClientID:   o.Client().ID(),
		VehicleID:  &vid,
		Outcome:    outcome,
		Pickup:     o.Pickup(),
		Dropoff:    o.Dropoff(),
		OccurredAt: time.Now(),
	})
	if err != nil {
		s.log.Printf("history: append %s for order %s: %v", outcome, o.Token(), err)
	}
}
