package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// updateFlightOccupancyTx derives a flight's Full-Occupied/Active status
// from its seat availability. Cancelled and Completed are terminal.
func updateFlightOccupancyTx(ctx context.Context, tx pgx.Tx, flightID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE flights f
		SET status = CASE
			WHEN NOT EXISTS (
				SELECT 1 FROM flight_seats fs
				WHERE fs.flight_id = f.id AND fs.status = 'Available'
			) THEN 'Full-Occupied'
			ELSE 'Active'
		END
		WHERE f.id = $1 AND f.status IN ('Active', 'Full-Occupied')
	`, flightID)
	if err != nil {
		return fmt.Errorf("failed to update flight occupancy: %w", err)
	}
	return nil
}

// Reconcile brings seat, flight, and order statuses into agreement with
// the ticket/order graph. Safe to call repeatedly; every rule only touches
// rows failing its predicate. A non-empty flightID scopes the pass to one
// flight; empty runs fleet-wide.
func (r *Repository) Reconcile(ctx context.Context, flightID string, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Appends the flight scope to a statement whose fixed parameters end
	// at the given position.
	exec := func(action, query string, args ...any) error {
		if flightID != "" {
			args = append(args, flightID)
			query += fmt.Sprintf(" AND f.id = $%d", len(args))
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to %s: %w", action, err)
		}
		return nil
	}

	// Flights whose derived arrival has passed are done flying.
	err = exec("complete flown flights", `
		UPDATE flights f
		SET status = 'Completed'
		FROM routes r
		WHERE r.id = f.route_id
		  AND f.status IN ('Active', 'Full-Occupied')
		  AND f.departure_time + make_interval(mins => r.duration_minutes) < $1
	`, now)
	if err != nil {
		return err
	}

	// Cancelled flights drag their Active orders to Cancelled-System.
	err = exec("system-cancel orders", `
		UPDATE orders o
		SET status = 'Cancelled-System', cancelled_at = $1
		FROM flights f
		WHERE f.id = o.flight_id
		  AND f.status = 'Cancelled'
		  AND o.status = 'Active'
	`, now)
	if err != nil {
		return err
	}

	// Cancelled flights block all their seats and lose their crew links.
	err = exec("block cancelled-flight seats", `
		UPDATE flight_seats fs
		SET status = 'Blocked'
		FROM flights f
		WHERE f.id = fs.flight_id
		  AND f.status = 'Cancelled'
		  AND fs.status <> 'Blocked'
	`)
	if err != nil {
		return err
	}
	if err := clearCancelledCrewLinksTx(ctx, tx, flightID); err != nil {
		return err
	}

	// Seat sync against the ticket/order graph.
	err = exec("mark sold seats", `
		UPDATE flight_seats fs
		SET status = 'Sold'
		FROM flights f
		WHERE f.id = fs.flight_id
		  AND fs.status = 'Available'
		  AND EXISTS (
			SELECT 1 FROM tickets t
			JOIN orders o ON o.id = t.order_id
			WHERE t.flight_seat_id = fs.id
			  AND o.status NOT IN ('Cancelled-Customer', 'Cancelled-System')
		  )
	`)
	if err != nil {
		return err
	}

	err = exec("block system-cancelled seats", `
		UPDATE flight_seats fs
		SET status = 'Blocked'
		FROM flights f
		WHERE f.id = fs.flight_id
		  AND fs.status = 'Available'
		  AND EXISTS (
			SELECT 1 FROM tickets t
			JOIN orders o ON o.id = t.order_id
			WHERE t.flight_seat_id = fs.id
			  AND o.status = 'Cancelled-System'
		  )
	`)
	if err != nil {
		return err
	}

	err = exec("release abandoned seats", `
		UPDATE flight_seats fs
		SET status = 'Available'
		FROM flights f
		WHERE f.id = fs.flight_id
		  AND fs.status = 'Sold'
		  AND NOT EXISTS (
			SELECT 1 FROM tickets t
			JOIN orders o ON o.id = t.order_id
			WHERE t.flight_seat_id = fs.id
			  AND o.status NOT IN ('Cancelled-Customer', 'Cancelled-System')
		  )
	`)
	if err != nil {
		return err
	}

	// Orders finalize once departure is close.
	err = exec("complete imminent orders", `
		UPDATE orders o
		SET status = 'Completed'
		FROM flights f
		WHERE f.id = o.flight_id
		  AND o.status = 'Active'
		  AND f.status <> 'Cancelled'
		  AND f.departure_time <= $1 + INTERVAL '36 hours'
	`, now)
	if err != nil {
		return err
	}

	// Flight occupancy last, after seat statuses settle.
	err = exec("update flight occupancy", `
		UPDATE flights f
		SET status = CASE
			WHEN NOT EXISTS (
				SELECT 1 FROM flight_seats fs
				WHERE fs.flight_id = f.id AND fs.status = 'Available'
			) THEN 'Full-Occupied'
			ELSE 'Active'
		END
		WHERE f.status IN ('Active', 'Full-Occupied')
	`)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reconciliation: %w", err)
	}
	return nil
}

func clearCancelledCrewLinksTx(ctx context.Context, tx pgx.Tx, flightID string) error {
	scope := ""
	var args []any
	if flightID != "" {
		args = append(args, flightID)
		scope = " AND f.id = $1"
	}

	_, err := tx.Exec(ctx, `
		DELETE FROM flight_pilots l
		USING flights f
		WHERE f.id = l.flight_id AND f.status = 'Cancelled'
	`+scope, args...)
	if err != nil {
		return fmt.Errorf("failed to clear cancelled pilot links: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM flight_attendants l
		USING flights f
		WHERE f.id = l.flight_id AND f.status = 'Cancelled'
	`+scope, args...)
	if err != nil {
		return fmt.Errorf("failed to clear cancelled attendant links: %w", err)
	}

	return nil
}
