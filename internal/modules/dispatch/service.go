// README: Dispatch engine; fixed worker pool matching queued orders to the nearest free vehicle.
package dispatch

import (
	"sync"
	"sync/atomic"
	"time"

	"taxipark/internal/config"
	"taxipark/internal/modules/eventlog"
	"taxipark/internal/modules/fleet"
	"taxipark/internal/modules/order"
)

// RideStarter launches the executor for a committed assignment.
type RideStarter interface {
	StartRide(v *fleet.Vehicle, o *order.Order)
}

type Service struct {
	dispatchers []*Dispatcher
	queue       *order.Queue
	registry    *fleet.Registry
	rides       RideStarter
	log         *eventlog.Sink
	cfg         config.DispatchConfig

	running atomic.Bool
	wg      sync.WaitGroup
}

func NewService(queue *order.Queue, registry *fleet.Registry, rides RideStarter, log *eventlog.Sink, cfg config.DispatchConfig) *Service {
	dispatchers := make([]*Dispatcher, 0, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		dispatchers = append(dispatchers, NewDispatcher(i+1))
	}
	return &Service{
		dispatchers: dispatchers,
		queue:       queue,
		registry:    registry,
		rides:       rides,
		log:         log,
		cfg:         cfg,
	}
}

func (s *Service) Start() {
	s.running.Store(true)
	for _, d := range s.dispatchers {
		s.wg.Add(1)
		go s.worker(d)
	}
	s.log.Printf("started %d dispatchers", len(s.dispatchers))
}

// Stop flips the running flag and joins the pool. Workers notice within one
// queue poll timeout.
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

func (s *Service) worker(d *Dispatcher) {
	defer s.wg.Done()
	for s.running.Load() {
		d.setStatus(StatusIdle)
		o, ok := s.queue.Dequeue(s.cfg.PollTimeout)
		if !ok {
			continue
		}
		d.setStatus(StatusProcessing)
		s.safeProcess(d, o)
	}
	d.setStatus(StatusOffline)
}

// safeProcess contains worker faults: a panic while handling one order must
// not take down the pool or the queue, and must not strand a vehicle the
// worker was holding. The held vehicle is cancelled out of the order and
// released so it returns to the free pool.
func (s *Service) safeProcess(d *Dispatcher, o *order.Order) {
	var held *fleet.Vehicle
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if held != nil {
			o.Cancel()
			held.Release(o)
			o.Client().SetStatus(order.ClientRefused)
			s.log.Printf("dispatcher %d: recovered from fault, vehicle %d released: %v", d.id, held.ID(), r)
			return
		}
		s.log.Printf("dispatcher %d: recovered from fault: %v", d.id, r)
	}()
	s.processOrder(d, o, &held)
}

func (s *Service) processOrder(d *Dispatcher, o *order.Order, held **fleet.Vehicle) {
	if o.Cancelled() {
		s.log.Printf("order %s already cancelled, skipping", o.Token())
		return
	}

	v := s.registry.FindNearestFree(o.Pickup())
	if v == nil {
		// Scarcity: back to the tail and retry on a later pass.
		s.requeue(o)
		return
	}

	// The scan was read-only; the candidate may have been taken since.
	// TryAssign re-checks under the vehicle's own lock, so at most one
	// worker wins it.
	if !v.TryAssign(o) {
		s.requeue(o)
		return
	}
	// The vehicle is held from here on; report it to the caller's fault
	// recovery so a panic cannot strand it.
	*held = v

	if !o.Assign(v) {
		// The order stopped being assignable mid-flight: client impatience
		// cancelled it, or a duplicate submission already carries a
		// vehicle. Undo before the cross-ref ever existed.
		v.Release(o)
		*held = nil
		s.log.Printf("dispatcher %d: order %s no longer assignable, vehicle %d released", d.id, o.Token(), v.ID())
		return
	}

	o.NotifyAssigned()
	d.incrementProcessed()
	s.log.Printf("dispatcher %d assigned vehicle %d (speed %.1f) to order %s", d.id, v.ID(), v.Speed(), o.Token())
	s.rides.StartRide(v, o)
}

func (s *Service) requeue(o *order.Order) {
	if s.queue.Requeue(o) {
		return
	}
	// Queue full on requeue: resolve the order instead of dropping it
	// silently so every order still reaches a terminal state.
	o.Cancel()
	o.Client().SetStatus(order.ClientRefused)
	s.log.Printf("order %s dropped on requeue: queue full, client %d refused", o.Token(), o.Client().ID())
}

// TotalProcessed sums assignments across all workers.
func (s *Service) TotalProcessed() int {
	n := 0
	for _, d := range s.dispatchers {
		n += d.Processed()
	}
	return n
}

// View is one row of the dispatcher snapshot exposed to collaborators.
type View struct {
	ID        int    `json:"id"`
	Status    Status `json:"status"`
	Processed int    `json:"processed"`
}

func (s *Service) Snapshot() []View {
	out := make([]View, 0, len(s.dispatchers))
	for _, d := range s.dispatchers {
		d.mu.Lock()
		out = append(out, View{ID: d.id, Status: d.status, Processed: d.processed})
		d.mu.Unlock()
	}
	return out
}
