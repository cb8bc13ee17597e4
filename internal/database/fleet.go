package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/matan25/flytau/internal/scheduling"
)

// --- Routes ---

// ListRoutes returns all routes.
func (r *Repository) ListRoutes(ctx context.Context) ([]Route, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, origin, destination, duration_minutes
		FROM routes
		ORDER BY origin, destination
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var rt Route
		if err := rows.Scan(&rt.ID, &rt.Origin, &rt.Destination, &rt.DurationMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, rt)
	}

	return routes, rows.Err()
}

// GetRoute returns a route by ID.
func (r *Repository) GetRoute(ctx context.Context, id string) (*Route, error) {
	var rt Route
	err := r.pool.QueryRow(ctx, `
		SELECT id, origin, destination, duration_minutes FROM routes WHERE id = $1
	`, id).Scan(&rt.ID, &rt.Origin, &rt.Destination, &rt.DurationMinutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &rt, nil
}

func (r *Repository) getRouteTx(ctx context.Context, tx pgx.Tx, id string) (*Route, error) {
	var rt Route
	err := tx.QueryRow(ctx, `
		SELECT id, origin, destination, duration_minutes FROM routes WHERE id = $1
	`, id).Scan(&rt.ID, &rt.Origin, &rt.Destination, &rt.DurationMinutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &rt, nil
}

// CreateRoute registers a route.
func (r *Repository) CreateRoute(ctx context.Context, origin, destination string, durationMinutes int) (*Route, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	num, err := r.reserveBlock(ctx, tx, counterRoutes, 1)
	if err != nil {
		return nil, err
	}

	rt := Route{
		ID:              FormatRouteID(num),
		Origin:          origin,
		Destination:     destination,
		DurationMinutes: durationMinutes,
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO routes (id, origin, destination, duration_minutes)
		VALUES ($1, $2, $3, $4)
	`, rt.ID, rt.Origin, rt.Destination, rt.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("failed to insert route: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit route creation: %w", err)
	}
	return &rt, nil
}

// --- Aircraft ---

// ListAircraft returns the fleet.
func (r *Repository) ListAircraft(ctx context.Context) ([]Aircraft, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, manufacturer, model, size FROM aircraft ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query aircraft: %w", err)
	}
	defer rows.Close()

	var fleet []Aircraft
	for rows.Next() {
		var a Aircraft
		if err := rows.Scan(&a.ID, &a.Manufacturer, &a.Model, &a.Size); err != nil {
			return nil, fmt.Errorf("failed to scan aircraft: %w", err)
		}
		fleet = append(fleet, a)
	}

	return fleet, rows.Err()
}

// GetAircraft returns an aircraft by ID.
func (r *Repository) GetAircraft(ctx context.Context, id string) (*Aircraft, error) {
	var a Aircraft
	err := r.pool.QueryRow(ctx, `
		SELECT id, manufacturer, model, size FROM aircraft WHERE id = $1
	`, id).Scan(&a.ID, &a.Manufacturer, &a.Model, &a.Size)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get aircraft: %w", err)
	}
	return &a, nil
}

// AircraftSeats returns an aircraft's immutable seat template.
func (r *Repository) AircraftSeats(ctx context.Context, aircraftID string) ([]Seat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, aircraft_id, row_number, column_letter, class
		FROM seats
		WHERE aircraft_id = $1
		ORDER BY row_number, column_letter
	`, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seats: %w", err)
	}
	defer rows.Close()

	return scanSeats(rows)
}

func (r *Repository) aircraftSeatsTx(ctx context.Context, tx pgx.Tx, aircraftID string) ([]Seat, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, aircraft_id, row_number, column_letter, class
		FROM seats
		WHERE aircraft_id = $1
		ORDER BY row_number, column_letter
	`, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seats: %w", err)
	}
	defer rows.Close()

	return scanSeats(rows)
}

func scanSeats(rows pgx.Rows) ([]Seat, error) {
	var seats []Seat
	for rows.Next() {
		var s Seat
		if err := rows.Scan(&s.ID, &s.AircraftID, &s.RowNumber, &s.ColumnLetter, &s.Class); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// SeatSection describes one class block of a new aircraft's cabin.
type SeatSection struct {
	Class   SeatClass
	Rows    int
	Columns []string
}

// CreateAircraftParams registers an aircraft and its seat template.
type CreateAircraftParams struct {
	Manufacturer string
	Model        string
	Size         scheduling.AircraftSize
	Sections     []SeatSection
}

// CreateAircraft registers an aircraft and materializes its seat template
// in one transaction. Rows number consecutively across sections, business
// cabin first as given.
func (r *Repository) CreateAircraft(ctx context.Context, p CreateAircraftParams) (*Aircraft, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	num, err := r.reserveBlock(ctx, tx, counterAircraft, 1)
	if err != nil {
		return nil, err
	}
	a := Aircraft{
		ID:           FormatAircraftID(p.Manufacturer, num),
		Manufacturer: p.Manufacturer,
		Model:        p.Model,
		Size:         p.Size,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO aircraft (id, manufacturer, model, size)
		VALUES ($1, $2, $3, $4)
	`, a.ID, a.Manufacturer, a.Model, a.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to insert aircraft: %w", err)
	}

	total := 0
	for _, sec := range p.Sections {
		total += sec.Rows * len(sec.Columns)
	}
	seatNum, err := r.reserveBlock(ctx, tx, counterSeats, int64(total))
	if err != nil {
		return nil, err
	}

	rowNumber := 0
	for _, sec := range p.Sections {
		for i := 0; i < sec.Rows; i++ {
			rowNumber++
			for _, col := range sec.Columns {
				_, err = tx.Exec(ctx, `
					INSERT INTO seats (id, aircraft_id, row_number, column_letter, class)
					VALUES ($1, $2, $3, $4, $5)
				`, FormatSeatID(seatNum), a.ID, rowNumber, col, sec.Class)
				if err != nil {
					return nil, fmt.Errorf("failed to insert seat: %w", err)
				}
				seatNum++
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit aircraft creation: %w", err)
	}
	return &a, nil
}
