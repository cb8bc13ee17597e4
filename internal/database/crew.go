package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/matan25/flytau/internal/scheduling"
)

func crewTable(role CrewRole) string {
	if role == RolePilot {
		return "pilots"
	}
	return "attendants"
}

func crewLinkTable(role CrewRole) (table, column string) {
	if role == RolePilot {
		return "flight_pilots", "pilot_id"
	}
	return "flight_attendants", "attendant_id"
}

// ListCrew returns the roster for one role.
func (r *Repository) ListCrew(ctx context.Context, role CrewRole) ([]CrewMember, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, name, long_haul_certified FROM %s ORDER BY id
	`, crewTable(role)))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", crewTable(role), err)
	}
	defer rows.Close()

	var members []CrewMember
	for rows.Next() {
		m := CrewMember{Role: role}
		if err := rows.Scan(&m.ID, &m.Name, &m.LongHaulCertified); err != nil {
			return nil, fmt.Errorf("failed to scan crew member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// CreateCrewMember adds a pilot or attendant to the roster.
func (r *Repository) CreateCrewMember(ctx context.Context, role CrewRole, name string, longHaulCertified bool) (*CrewMember, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	counter := counterPilots
	format := FormatPilotID
	if role == RoleAttendant {
		counter = counterAttendants
		format = FormatAttendantID
	}

	num, err := r.reserveBlock(ctx, tx, counter, 1)
	if err != nil {
		return nil, err
	}

	m := CrewMember{
		ID:                format(num),
		Name:              name,
		Role:              role,
		LongHaulCertified: longHaulCertified,
	}
	_, err = tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, name, long_haul_certified) VALUES ($1, $2, $3)
	`, crewTable(role)), m.ID, m.Name, m.LongHaulCertified)
	if err != nil {
		return nil, fmt.Errorf("failed to insert crew member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit crew creation: %w", err)
	}
	return &m, nil
}

// CrewAssignments returns, per crew member of a role, their flight windows.
// Cancelled flights never appear: their crew links are deleted when the
// flight is cancelled.
func (r *Repository) CrewAssignments(ctx context.Context, role CrewRole) (map[string][]scheduling.Assignment, error) {
	link, col := crewLinkTable(role)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT l.%s, f.id, r.origin, r.destination, f.departure_time, r.duration_minutes
		FROM %s l
		JOIN flights f ON f.id = l.flight_id
		JOIN routes r ON r.id = f.route_id
		ORDER BY f.departure_time
	`, col, link))
	if err != nil {
		return nil, fmt.Errorf("failed to query crew assignments: %w", err)
	}
	defer rows.Close()

	history := make(map[string][]scheduling.Assignment)
	for rows.Next() {
		var (
			memberID, flightID, origin, destination string
			departure                               time.Time
			durationMinutes                         int
		)
		if err := rows.Scan(&memberID, &flightID, &origin, &destination, &departure, &durationMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan crew assignment: %w", err)
		}
		history[memberID] = append(history[memberID], scheduling.Assignment{
			FlightID: flightID,
			Window: scheduling.NewWindow(origin, destination, departure,
				time.Duration(durationMinutes)*time.Minute),
		})
	}

	return history, rows.Err()
}

// FlightCrewIDs returns the IDs of crew currently linked to a flight.
func (r *Repository) FlightCrewIDs(ctx context.Context, flightID string, role CrewRole) ([]string, error) {
	link, col := crewLinkTable(role)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s WHERE flight_id = $1 ORDER BY %s
	`, col, link, col), flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flight crew: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan crew id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// SaveFlightCrew replaces a flight's crew links wholesale.
func (r *Repository) SaveFlightCrew(ctx context.Context, flightID string, pilotIDs, attendantIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := saveCrewLinksTx(ctx, tx, flightID, pilotIDs, attendantIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func saveCrewLinksTx(ctx context.Context, tx pgx.Tx, flightID string, pilotIDs, attendantIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM flight_pilots WHERE flight_id = $1`, flightID); err != nil {
		return fmt.Errorf("failed to clear pilot links: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM flight_attendants WHERE flight_id = $1`, flightID); err != nil {
		return fmt.Errorf("failed to clear attendant links: %w", err)
	}

	for _, id := range pilotIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO flight_pilots (flight_id, pilot_id) VALUES ($1, $2)
		`, flightID, id); err != nil {
			return fmt.Errorf("failed to link pilot %s: %w", id, err)
		}
	}
	for _, id := range attendantIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO flight_attendants (flight_id, attendant_id) VALUES ($1, $2)
		`, flightID, id); err != nil {
			return fmt.Errorf("failed to link attendant %s: %w", id, err)
		}
	}

	return nil
}
