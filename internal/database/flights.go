package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/matan25/flytau/internal/scheduling"
	"github.com/matan25/flytau/internal/status"
)

const flightColumns = `
	f.id, f.route_id, f.aircraft_id, f.departure_time, f.status,
	r.origin, r.destination, r.duration_minutes, a.size
`

const flightJoins = `
	FROM flights f
	JOIN routes r ON r.id = f.route_id
	JOIN aircraft a ON a.id = f.aircraft_id
`

func scanFlight(row pgx.Row) (*Flight, error) {
	var f Flight
	err := row.Scan(
		&f.ID, &f.RouteID, &f.AircraftID, &f.DepartureTime, &f.Status,
		&f.Origin, &f.Destination, &f.DurationMinutes, &f.AircraftSize,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// FlightFilter narrows flight searches.
type FlightFilter struct {
	Origin      string
	Destination string
	Date        *time.Time
}

// SearchFlights returns flights matching the filter, soonest first.
func (r *Repository) SearchFlights(ctx context.Context, filter FlightFilter) ([]Flight, error) {
	query := `SELECT ` + flightColumns + flightJoins + ` WHERE 1=1`
	var args []any

	if filter.Origin != "" {
		args = append(args, filter.Origin)
		query += fmt.Sprintf(" AND r.origin = $%d", len(args))
	}
	if filter.Destination != "" {
		args = append(args, filter.Destination)
		query += fmt.Sprintf(" AND r.destination = $%d", len(args))
	}
	if filter.Date != nil {
		day := filter.Date.Truncate(24 * time.Hour)
		args = append(args, day, day.Add(24*time.Hour))
		query += fmt.Sprintf(" AND f.departure_time >= $%d AND f.departure_time < $%d", len(args)-1, len(args))
	}
	query += " ORDER BY f.departure_time ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var flights []Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, *f)
	}

	return flights, rows.Err()
}

// GetFlight returns a flight by ID with its route and aircraft joined.
func (r *Repository) GetFlight(ctx context.Context, id string) (*Flight, error) {
	f, err := scanFlight(r.pool.QueryRow(ctx,
		`SELECT `+flightColumns+flightJoins+` WHERE f.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	return f, nil
}

// GetFlightSeats returns the flight's seat map with template positions.
func (r *Repository) GetFlightSeats(ctx context.Context, flightID string) ([]FlightSeat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT fs.id, fs.flight_id, fs.seat_id, fs.price, fs.status,
		       s.row_number, s.column_letter, s.class
		FROM flight_seats fs
		JOIN seats s ON s.id = fs.seat_id
		WHERE fs.flight_id = $1
		ORDER BY s.row_number, s.column_letter
	`, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flight seats: %w", err)
	}
	defer rows.Close()

	var seats []FlightSeat
	for rows.Next() {
		var s FlightSeat
		err := rows.Scan(
			&s.ID, &s.FlightID, &s.SeatID, &s.Price, &s.Status,
			&s.RowNumber, &s.ColumnLetter, &s.Class,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight seat: %w", err)
		}
		seats = append(seats, s)
	}

	return seats, rows.Err()
}

// AircraftFlights returns the aircraft's non-cancelled flight windows for
// rotation checks.
func (r *Repository) AircraftFlights(ctx context.Context, aircraftID string) ([]scheduling.Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT f.id, r.origin, r.destination, f.departure_time, r.duration_minutes
		FROM flights f
		JOIN routes r ON r.id = f.route_id
		WHERE f.aircraft_id = $1 AND f.status <> 'Cancelled'
		ORDER BY f.departure_time
	`, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query aircraft flights: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

func scanAssignments(rows pgx.Rows) ([]scheduling.Assignment, error) {
	var assignments []scheduling.Assignment
	for rows.Next() {
		var (
			id, origin, destination string
			departure               time.Time
			durationMinutes         int
		)
		if err := rows.Scan(&id, &origin, &destination, &departure, &durationMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, scheduling.Assignment{
			FlightID: id,
			Window: scheduling.NewWindow(origin, destination, departure,
				time.Duration(durationMinutes)*time.Minute),
		})
	}
	return assignments, rows.Err()
}

// CreateFlightParams carries everything needed to schedule a flight.
type CreateFlightParams struct {
	RouteID      string
	AircraftID   string
	Departure    time.Time
	PilotIDs     []string
	AttendantIDs []string
}

// CreateFlight schedules a flight: reserves identifiers, creates the
// flight row, materializes one flight seat per template seat with default
// class pricing, and links the crew. Everything happens in one
// transaction; a failure leaves no reserved identifier behind.
func (r *Repository) CreateFlight(ctx context.Context, p CreateFlightParams) (*Flight, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	route, err := r.getRouteTx(ctx, tx, p.RouteID)
	if err != nil {
		return nil, err
	}
	longHaul := scheduling.IsLongHaul(route.Duration())

	seats, err := r.aircraftSeatsTx(ctx, tx, p.AircraftID)
	if err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, fmt.Errorf("aircraft %s has no seat template", p.AircraftID)
	}

	flightNum, err := r.reserveBlock(ctx, tx, counterFlights, 1)
	if err != nil {
		return nil, err
	}
	flightID := FormatFlightID(flightNum)

	seatNum, err := r.reserveBlock(ctx, tx, counterFlightSeats, int64(len(seats)))
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO flights (id, route_id, aircraft_id, departure_time, status)
		VALUES ($1, $2, $3, $4, 'Active')
	`, flightID, p.RouteID, p.AircraftID, p.Departure)
	if err != nil {
		return nil, fmt.Errorf("failed to insert flight: %w", err)
	}

	for i, seat := range seats {
		price := defaultSeatPrice(seat.Class, longHaul)
		_, err = tx.Exec(ctx, `
			INSERT INTO flight_seats (id, flight_id, seat_id, price, status)
			VALUES ($1, $2, $3, $4, 'Available')
		`, FormatFlightSeatID(seatNum+int64(i)), flightID, seat.ID, price)
		if err != nil {
			return nil, fmt.Errorf("failed to insert flight seat: %w", err)
		}
	}

	if err := saveCrewLinksTx(ctx, tx, flightID, p.PilotIDs, p.AttendantIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit flight creation: %w", err)
	}

	return r.GetFlight(ctx, flightID)
}

func defaultSeatPrice(class SeatClass, longHaul bool) float64 {
	switch {
	case class == ClassBusiness && longHaul:
		return DefaultLongHaulBusinessPrice
	case class == ClassBusiness:
		return DefaultBusinessPrice
	case longHaul:
		return DefaultLongHaulEconomyPrice
	default:
		return DefaultEconomyPrice
	}
}

// UpdateFlight changes a flight's route, departure, or status. Aircraft is
// immutable after creation. Seat statuses are re-synced afterwards so
// occupancy reflects the (possibly unchanged) seat set.
func (r *Repository) UpdateFlight(ctx context.Context, id, routeID string, departure time.Time, newStatus status.FlightStatus) (*Flight, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE flights SET route_id = $1, departure_time = $2, status = $3
		WHERE id = $4
	`, routeID, departure, newStatus, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update flight: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if newStatus == status.FlightCancelled {
		if err := cascadeFlightCancellationTx(ctx, tx, id); err != nil {
			return nil, err
		}
	} else {
		if err := updateFlightOccupancyTx(ctx, tx, id); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit flight update: %w", err)
	}

	return r.GetFlight(ctx, id)
}

// CancelFlight cancels a flight and cascades: seats Blocked, Active orders
// Cancelled-System, crew links removed.
func (r *Repository) CancelFlight(ctx context.Context, id string) (*Flight, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE flights SET status = 'Cancelled' WHERE id = $1 AND status <> 'Cancelled'
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel flight: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := cascadeFlightCancellationTx(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit flight cancellation: %w", err)
	}

	return r.GetFlight(ctx, id)
}

func cascadeFlightCancellationTx(ctx context.Context, tx pgx.Tx, flightID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE orders SET status = 'Cancelled-System', cancelled_at = NOW()
		WHERE flight_id = $1 AND status = 'Active'
	`, flightID)
	if err != nil {
		return fmt.Errorf("failed to system-cancel orders: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE flight_seats SET status = 'Blocked' WHERE flight_id = $1
	`, flightID)
	if err != nil {
		return fmt.Errorf("failed to block seats: %w", err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM flight_pilots WHERE flight_id = $1`, flightID); err != nil {
		return fmt.Errorf("failed to clear pilot links: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM flight_attendants WHERE flight_id = $1`, flightID); err != nil {
		return fmt.Errorf("failed to clear attendant links: %w", err)
	}

	return nil
}

// UpdateSeatPrice reprices a flight seat. Only Available seats may move;
// a zero-row update on an existing seat means it was sold or blocked.
func (r *Repository) UpdateSeatPrice(ctx context.Context, flightID, flightSeatID string, price float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE flight_seats SET price = $1
		WHERE id = $2 AND flight_id = $3 AND status = 'Available'
	`, price, flightSeatID, flightID)
	if err != nil {
		return fmt.Errorf("failed to update seat price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM flight_seats WHERE id = $1 AND flight_id = $2)
		`, flightSeatID, flightID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check seat: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrPriceLocked
	}
	return nil
}
