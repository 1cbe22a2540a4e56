// README: Ride history store backed by PostgreSQL; records terminal outcomes only.
package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taxipark/internal/types"
)

// Outcome values written to ride_events.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeRefused   = "refused"
	OutcomeFault     = "fault"
)

type Event struct {
	ID         int64
	OrderToken string
	ClientID   int
	VehicleID  *int
	Outcome    string
	Pickup     types.Point
	Dropoff    types.Point
	OccurredAt time.Time
}

// Store is optional infrastructure: a nil *Store (no DSN configured) makes
// every method a no-op so the in-process core runs without Postgres.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO ride_events (
            order_token, client_id, vehicle_id, outcome,
            pickup_x, pickup_y, dropoff_x, dropoff_y, occurred_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.OrderToken,
		e.ClientID,
		e.VehicleID,
		e.Outcome,
		e.Pickup.X, e.Pickup.Y,
		e.Dropoff.X, e.Dropoff.Y,
		e.OccurredAt,
	)
	return err
}

func (s *Store) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
        SELECT id, order_token, client_id, vehicle_id, outcome,
               pickup_x, pickup_y, dropoff_x, dropoff_y, occurred_at
        FROM ride_events
        ORDER BY id DESC
        LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.OrderToken, &e.ClientID, &e.VehicleID, &e.Outcome,
			&e.Pickup.X, &e.Pickup.Y, &e.Dropoff.X, &e.Dropoff.Y, &e.OccurredAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
