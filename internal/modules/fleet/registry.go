// README: Fleet registry; owns all vehicles and runs the nearest-free scan.
package fleet

import (
	"math/rand"

	"taxipark/internal/config"
	"taxipark/internal/geo"
	"taxipark/internal/types"
)

// Registry owns the vehicle records for the lifetime of a run. There is
// deliberately no registry-level lock: no invariant spans two vehicles, so
// each vehicle's own mutex is the only synchronization.
type Registry struct {
	vehicles []*Vehicle
}

func NewRegistry(vehicles ...*Vehicle) *Registry {
	return &Registry{vehicles: vehicles}
}

// CreateFleet builds n vehicles at random positions with random speeds,
// matching how the park is seeded at startup.
func CreateFleet(cfg config.FleetConfig, rng *rand.Rand) []*Vehicle {
	vehicles := make([]*Vehicle, 0, cfg.Vehicles)
	for i := 0; i < cfg.Vehicles; i++ {
		pos := types.Point{
			X: cfg.Bounds.MinX + rng.Float64()*(cfg.Bounds.MaxX-cfg.Bounds.MinX),
			Y: cfg.Bounds.MinY + rng.Float64()*(cfg.Bounds.MaxY-cfg.Bounds.MinY),
		}
		speed := cfg.MinSpeed + rng.Float64()*(cfg.MaxSpeed-cfg.MinSpeed)
		vehicles = append(vehicles, NewVehicle(i+1, pos, speed))
	}
	return vehicles
}

// FindNearestFree scans every vehicle under its own lock and returns the
// free vehicle closest to target, or nil when none was free during the
// scan. The scan is read-only; by the time the caller locks the winner it
// may no longer be free, so the caller must re-check via TryAssign.
func (reg *Registry) FindNearestFree(target types.Point) *Vehicle {
	var nearest *Vehicle
	best := 0.0
	for _, v := range reg.vehicles {
		v.mu.Lock()
		if v.status == StatusFree {
			d := geo.Distance(v.pos, target)
			if nearest == nil || d < best {
				nearest = v
				best = d
			}
		}
		v.mu.Unlock()
	}
	return nearest
}

func (reg *Registry) FreeCount() int {
	n := 0
	for _, v := range reg.vehicles {
		if v.Status() == StatusFree {
			n++
		}
	}
	return n
}

func (reg *Registry) Size() int { return len(reg.vehicles) }

// View is one row of the read-only fleet snapshot handed to collaborators.
type View struct {
	ID       int         `json:"id"`
	Position types.Point `json:"position"`
	Status   Status      `json:"status"`
	Speed    float64     `json:"speed"`
}

// Snapshot is per-vehicle consistent but not transactional across vehicles;
// concurrent rides keep mutating while it is taken.
func (reg *Registry) Snapshot() []View {
	out := make([]View, 0, len(reg.vehicles))
	for _, v := range reg.vehicles {
		v.mu.Lock()
		out = append(out, View{ID: v.id, Position: v.pos, Status: v.status, Speed: v.speed})
		v.mu.Unlock()
	}
	return out
}
