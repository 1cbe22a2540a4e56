// README: Simulator facade; builds the park, wires services, and exposes the collaborator surface.
package sim

import (
	"math/rand"
	"time"

	"taxipark/internal/config"
	"taxipark/internal/modules/client"
	"taxipark/internal/modules/dispatch"
	"taxipark/internal/modules/eventlog"
	"taxipark/internal/modules/fleet"
	"taxipark/internal/modules/history"
	"taxipark/internal/modules/order"
	"taxipark/internal/modules/ride"
	"taxipark/internal/types"
)

// Simulator owns the shared fleet and queue and the three service layers
// around them. Collaborators (HTTP, GUI, startup) only ever touch the
// read-only snapshots, the counters, and SubmitOrder.
type Simulator struct {
	cfg      config.Config
	log      *eventlog.Sink
	queue    *order.Queue
	registry *fleet.Registry
	dispatch *dispatch.Service
	rides    *ride.Service
	clients  *client.Service
	rng      *rand.Rand
}

// New builds a simulator with a randomly placed fleet, per the config.
func New(cfg config.Config, log *eventlog.Sink, hist *history.Store) *Simulator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return NewCustom(cfg, log, hist, fleet.CreateFleet(cfg.Fleet, rng), nil)
}

// NewCustom takes an explicit fleet and clock; tests use it for
// deterministic vehicles and instant movement.
func NewCustom(cfg config.Config, log *eventlog.Sink, hist *history.Store, vehicles []*fleet.Vehicle, clock ride.Clock) *Simulator {
	queue := order.NewQueue(cfg.Queue.Capacity)
	registry := fleet.NewRegistry(vehicles...)
	rides := ride.NewService(cfg.Ride.StepInterval, log, hist, clock)
	return &Simulator{
		cfg:      cfg,
		log:      log,
		queue:    queue,
		registry: registry,
		dispatch: dispatch.NewService(queue, registry, rides, log, cfg.Dispatch),
		rides:    rides,
		clients:  client.NewService(queue, log, hist, cfg.Client.DefaultPatience),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulator) Start() {
	s.dispatch.Start()
	s.log.Printf("taxi park running: %d vehicles, %d dispatchers", s.registry.Size(), s.cfg.Dispatch.Workers)
}

// Stop shuts down in dependency order: no new assignments, then in-flight
// rides, then waiting clients. Each join is bounded by timeout.
func (s *Simulator) Stop(timeout time.Duration) bool {
	ok := s.dispatch.Stop(timeout)
	ok = s.rides.Stop(timeout) && ok
	ok = s.clients.Stop(timeout) && ok
	s.log.Printf("taxi park stopped")
	return ok
}

// SubmitOrder creates a client and enqueues their ride request. Returns nil
// when the queue refuses the submission.
func (s *Simulator) SubmitOrder(pickup, dropoff types.Point, patience time.Duration) *order.Client {
	return s.clients.Submit(pickup, dropoff, patience)
}

// SeedOrders submits n random orders inside the world bounds, the way a
// fresh park is demoed at startup.
func (s *Simulator) SeedOrders(n int) {
	b := s.cfg.Fleet.Bounds
	for i := 0; i < n; i++ {
		pickup := types.Point{
			X: b.MinX + s.rng.Float64()*(b.MaxX-b.MinX),
			Y: b.MinY + s.rng.Float64()*(b.MaxY-b.MinY),
		}
		dropoff := types.Point{
			X: b.MinX + s.rng.Float64()*(b.MaxX-b.MinX),
			Y: b.MinY + s.rng.Float64()*(b.MaxY-b.MinY),
		}
		s.SubmitOrder(pickup, dropoff, 0)
	}
}

type Stats struct {
	FreeVehicles   int             `json:"free_vehicles"`
	QueuedOrders   int             `json:"queued_orders"`
	ActiveClients  int             `json:"active_clients"`
	TotalProcessed int             `json:"total_processed"`
	Dispatchers    []dispatch.View `json:"dispatchers"`
}

func (s *Simulator) Stats() Stats {
	return Stats{
		FreeVehicles:   s.registry.FreeCount(),
		QueuedOrders:   s.queue.Len(),
		ActiveClients:  s.clients.ActiveCount(),
		TotalProcessed: s.dispatch.TotalProcessed(),
		Dispatchers:    s.dispatch.Snapshot(),
	}
}

func (s *Simulator) FleetSnapshot() []fleet.View { return s.registry.Snapshot() }

func (s *Simulator) ClientSnapshot() []client.View { return s.clients.Snapshot() }

func (s *Simulator) RecentEvents(n int) []string { return s.log.Recent(n) }
