// README: Client service; creates orders and runs one impatience monitor per waiting client.
package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"taxipark/internal/modules/eventlog"
	"taxipark/internal/modules/history"
	"taxipark/internal/modules/order"
	"taxipark/internal/types"
)

type Service struct {
	queue           *order.Queue
	log             *eventlog.Sink
	history         *history.Store
	defaultPatience time.Duration

	mu      sync.Mutex
	clients map[int]*order.Client
	nextID  int

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewService(queue *order.Queue, log *eventlog.Sink, hist *history.Store, defaultPatience time.Duration) *Service {
	return &Service{
		queue:           queue,
		log:             log,
		history:         hist,
		defaultPatience: defaultPatience,
		clients:         make(map[int]*order.Client),
		stop:            make(chan struct{}),
	}
}

// Submit creates a client with one order, enqueues it, and starts the
// impatience monitor. Returns nil when the queue refuses the order; the
// client is then never registered (fails closed).
func (s *Service) Submit(pickup, dropoff types.Point, patience time.Duration) *order.Client {
	if patience <= 0 {
		patience = s.defaultPatience
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	c := order.NewClient(id, pickup, patience)
	o := order.NewOrder(c, pickup, dropoff)
	c.SetOrder(o)

	if !s.queue.Enqueue(o) {
		s.log.Printf("client %d failed to place order: queue full", id)
		return nil
	}

	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()
	s.log.Printf("client %d placed order %s", id, o.Token())

	s.wg.Add(1)
	go s.monitor(c, o)
	return c
}

// monitor races the client's patience timer against the order's assignment
// notification. On expiry it cancels the order; a concurrently committed
// assignment is undone through the cancel path (the vehicle is released).
func (s *Service) monitor(c *order.Client, o *order.Order) {
	defer s.wg.Done()

	timer := time.NewTimer(c.Patience())
	defer timer.Stop()

	select {
	case <-o.Assigned():
		// The ride executor owns the rest of the lifecycle.
		return
	case <-s.stop:
		return
	case <-timer.C:
	}

	if o.Cancelled() {
		return
	}
	o.Cancel()
	// Cancel is a no-op for orders already in progress; only flip the
	// client to refused when the cancellation actually took.
	if o.Cancelled() {
		c.SetStatus(order.ClientRefused)
		s.log.Printf("client %d got impatient and cancelled order %s", c.ID(), o.Token())
		s.appendRefused(c, o)
	}
}

func (s *Service) appendRefused(c *order.Client, o *order.Order) {
	err := s.history.AppendEvent(context.Background(), &history.Event{
		OrderToken: o.Token(),
		ClientID:   c.ID(),
		Outcome:    history.OutcomeRefused,
		Pickup:     o.Pickup(),
		Dropoff:    o.Dropoff(),
		OccurredAt: time.Now(),
	})
	if err != nil {
		s.log.Printf("history: append refused for order %s: %v", o.Token(), err)
	}
}

// Stop releases all monitors and joins them with a bounded timeout.
func (s *Service) Stop(timeout time.Duration) bool {
	s.once.Do(func() { close(s.stop) })
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

// View is one row of the client snapshot. Terminal clients stay observable
// with their last-known state; collaborators decide what to render.
type View struct {
	ID       int                `json:"id"`
	Position types.Point        `json:"position"`
	Status   order.ClientStatus `json:"status"`
}

func (s *Service) Snapshot() []View {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]View, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, View{ID: c.ID(), Position: c.Origin(), Status: c.Status()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.clients {
		if st := c.Status(); st == order.ClientWaiting || st == order.ClientOnRide {
			n++
		}
	}
	return n
}
