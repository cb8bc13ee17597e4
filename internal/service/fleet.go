package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matan25/flytau/internal/database"
	"github.com/matan25/flytau/internal/failure"
	"github.com/matan25/flytau/internal/scheduling"
	"github.com/matan25/flytau/internal/status"
	"github.com/rs/zerolog/log"
)

func futureDeparture(departure, now time.Time) error {
	if !departure.After(now) {
		return failure.BadRequestFromString("departure must be in the future")
	}
	return nil
}

// editableFlight rejects edits to flights that are cancelled or whose
// departure has already passed.
func editableFlight(f *database.Flight, now time.Time) error {
	if f.Status == status.FlightCancelled {
		return failure.Unprocessable("flight is cancelled")
	}
	if !f.DepartureTime.After(now) {
		return failure.Unprocessable("flight has already departed")
	}
	return nil
}

func candidateFor(route *database.Route, departure time.Time, ignoreFlightID string, edit bool) scheduling.Candidate {
	return scheduling.Candidate{
		Window:         scheduling.NewWindow(route.Origin, route.Destination, departure, route.Duration()),
		LongHaul:       scheduling.IsLongHaul(route.Duration()),
		IgnoreFlightID: ignoreFlightID,
		Edit:           edit,
	}
}

// CreateFlight schedules a new flight. Rotation and crew eligibility are
// validated strictly before any identifier is consumed; a violation blocks
// creation wholesale.
func (s *service) CreateFlight(ctx context.Context, req CreateFlightRequest) (*database.Flight, error) {
	route, err := s.repo.GetRoute(ctx, req.RouteID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, failure.NotFound("route")
		}
		return nil, failure.InternalError(err)
	}
	aircraft, err := s.repo.GetAircraft(ctx, req.AircraftID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, failure.NotFound("aircraft")
		}
		return nil, failure.InternalError(err)
	}

	if err := futureDeparture(req.Departure, s.now()); err != nil {
		return nil, err
	}

	candidate := candidateFor(route, req.Departure, "", false)
	if candidate.LongHaul && aircraft.Size != scheduling.AircraftLarge {
		return nil, failure.Unprocessable("long-haul routes require a Large aircraft")
	}

	rotations, err := s.repo.AircraftFlights(ctx, req.AircraftID)
	if err != nil {
		return nil, failure.InternalError(err)
	}
	if err := scheduling.CheckRotation(candidate, rotations); err != nil {
		return nil, failure.Unprocessable(err.Error())
	}

	requiredPilots, requiredAttendants := scheduling.RequiredCrew(aircraft.Size)
	if err := s.validateCrewSelection(ctx, candidate, database.RolePilot, req.PilotIDs, requiredPilots, nil); err != nil {
		return nil, err
	}
	if err := s.validateCrewSelection(ctx, candidate, database.RoleAttendant, req.AttendantIDs, requiredAttendants, nil); err != nil {
		return nil, err
	}

	flight, err := s.repo.CreateFlight(ctx, database.CreateFlightParams{
		RouteID:      req.RouteID,
		AircraftID:   req.AircraftID,
		Departure:    req.Departure,
		PilotIDs:     req.PilotIDs,
		AttendantIDs: req.AttendantIDs,
	})
	if err != nil {
		return nil, failure.InternalError(err)
	}

	log.Info().Str("flight", flight.ID).Str("route", req.RouteID).
		Str("aircraft", req.AircraftID).Msg("Flight scheduled")
	return flight, nil
}

// validateCrewSelection checks a crew pick against the roster, the
// required head count, and per-member eligibility. When grandfathered is
// non-nil (edits and crew saves), already-assigned members stay allowed.
func (s *service) validateCrewSelection(ctx context.Context, candidate scheduling.Candidate, role database.CrewRole, selected []string, required int, grandfathered map[string]bool) error {
	roster, err := s.repo.ListCrew(ctx, role)
	if err != nil {
		return failure.InternalError(err)
	}
	history, err := s.repo.CrewAssignments(ctx, role)
	if err != nil {
		return failure.InternalError(err)
	}

	byID := make(map[string]database.CrewMember, len(roster))
	for _, m := range roster {
		byID[m.ID] = m
	}

	eligible := 0
	for _, m := range roster {
		member := scheduling.CrewMember{ID: m.ID, Name: m.Name, LongHaulCertified: m.LongHaulCertified}
		if grandfathered[m.ID] || scheduling.EligibleMember(candidate, member, history[m.ID]) {
			eligible++
		}
	}
	if eligible < required {
		return failure.Unprocessable(fmt.Sprintf("not enough %ss for this flight: %d/%d", role, eligible, required))
	}

	if len(selected) != required {
		return failure.Unprocessable(fmt.Sprintf("exactly %d %ss must be selected, got %d", required, role, len(selected)))
	}

	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if seen[id] {
			return failure.BadRequestFromString(fmt.Sprintf("%s %s selected twice", role, id))
		}
		seen[id] = true

		m, ok := byID[id]
		if !ok {
			return failure.NotFound(string(role) + " " + id)
		}
		if grandfathered[id] {
			continue
		}
		member := scheduling.CrewMember{ID: m.ID, Name: m.Name, LongHaulCertified: m.LongHaulCertified}
		if !scheduling.EligibleMember(candidate, member, history[id]) {
			return failure.Unprocessable(fmt.Sprintf("%s %s is not available for this flight", role, id))
		}
	}

	return nil
}

// UpdateFlight edits a flight's route, departure, or status. The aircraft
// is immutable, and cancelled or already-departed flights cannot be
// edited. Setting status to Cancelled runs the 72-hour cancellation path,
// which clears crew and skips the schedule checks.
func (s *service) UpdateFlight(ctx context.Context, flightID string, req UpdateFlightRequest) (*database.Flight, error) {
	existing, err := s.repo.GetFlight(ctx, flightID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, failure.NotFound("flight")
		}
		return nil, failure.InternalError(err)
	}
	if err := editableFlight(existing, s.now()); err != nil {
		return nil, err
	}

	if req.Status == status.FlightCancelled {
		if !status.CanManagerCancel(existing.DepartureTime, s.now()) {
			return nil, failure.Unprocessable(fmt.Sprintf("flights can only be cancelled at least %v before departure", status.ManagerCancelWindow))
		}
		flight, err := s.repo.CancelFlight(ctx, flightID)
		if err != nil {
			return nil, failure.InternalError(err)
		}
		log.Info().Str("flight", flightID).Msg("Flight cancelled by manager")
		s.broadcastFlight(ctx, flightID)
		return flight, nil
	}

	route, err := s.repo.GetRoute(ctx, req.RouteID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, failure.NotFound("route")
		}
		return nil, failure.InternalError(err)
	}

	if err := futureDeparture(req.Departure, s.now()); err != nil {
		return nil, err
	}

	candidate := candidateFor(route, req.Departure, flightID, true)
	if candidate.LongHaul && existing.AircraftSize != scheduling.AircraftLarge {
		return nil, failure.Unprocessable("long-haul routes require a Large aircraft")
	}

	switch req.Status {
	case status.FlightActive:
	case status.FlightFullOccupied:
		return nil, failure.BadRequestFromString("Full-Occupied is derived from seat sales and cannot be set")
	case status.FlightCompleted:
		return nil, failure.BadRequestFromString("Completed is set automatically once the flight has flown")
	default:
		return nil, failure.BadRequestFromString("unknown flight status " + string(req.Status))
	}

	rotations, err := s.repo.AircraftFlights(ctx, existing.AircraftID)
	if err != nil {
		return nil, failure.InternalError(err)
	}
	if err := scheduling.CheckRotation(candidate, rotations); err != nil {
		return nil, failure.Unprocessable(err.Error())
	}

	if err := s.checkAssignedCrewStillFit(ctx, flightID, candidate); err != nil {
		return nil, err
	}

	flight, err := s.repo.UpdateFlight(ctx, flightID, req.RouteID, req.Departure, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, failure.NotFound("flight")
		}
		return nil, failure.InternalError(err)
	}

	log.Info().Str("flight", flightID).Msg("Flight updated")
	s.broadcastFlight(ctx, flightID)
	return flight, nil
}

// checkAssignedCrewStillFit verifies the currently linked crew against the
// edited window under the relaxed edit rules (overlap and certification).
func (s *service) checkAssignedCrewStillFit(ctx context.Context, flightID string, candidate scheduling.Candidate) error {
	for _, role := range []database.CrewRole{database.RolePilot, database.RoleAttendant} {
		assigned, err := s.repo.FlightCrewIDs(ctx, flightID, role)
		if err != nil {
			return failure.InternalError(err)
		}
		if len(assigned) == 0 {
			continue
		}
		roster, err := s.repo.ListCrew(ctx, role)
		if err != nil {
			return failure.InternalError(err)
		}
		history, err := s.repo.CrewAssignments(ctx, role)
		if err != nil {
			return failure.InternalError(err)
		}
		byID := make(map[string]database.CrewMember, len(roster))
		for _, m := range roster {
			byID[m.ID] = m
		}
		for _, id := range assigned {
			m := byID[id]
			member := scheduling.CrewMember{ID: m.ID, Name: m.Name, LongHaulCertified: m.LongHaulCertified}
			if !scheduling.EligibleMember(candidate, member, history[id]) {
				return failure.Unprocessable(fmt.Sprintf("assigned %s %s cannot work the new schedule, reassign crew first", role, id))
			}
		}
	}
	return nil
}

// CrewScreen builds the crew-assignment screen for a flight: every roster
// member with eligibility and assignment flags, plus deficit indicators
// comparing the selectable pool to the required counts.
func (s *service) CrewScreen(ctx context.Context, flightID string) (*CrewScreen, error) {
	flight, err := s.repo.GetFlight(ctx, flightID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, failure.NotFound("flight")
		}
		return nil, failure.InternalError(err)
	}

	// The flight's own assignments are excluded, continuity still applies.
	candidate := scheduling.Candidate{
		Window:         flight.Window(),
		LongHaul:       flight.LongHaul(),
		IgnoreFlightID: flightID,
	}

	requiredPilots, requiredAttendants := scheduling.RequiredCrew(flight.AircraftSize)
	screen := &CrewScreen{
		FlightID:           flightID,
		RequiredPilots:     requiredPilots,
		RequiredAttendants: requiredAttendants,
	}

	var selectablePilots, selectableAttendants int
	screen.Pilots, selectablePilots, err = s.crewScreenEntries(ctx, candidate, flightID, database.RolePilot)
	if err != nil {
		return nil, err
	}
	screen.Attendants, selectableAttendants, err = s.crewScreenEntries(ctx, candidate, flightID, database.RoleAttendant)
	if err != nil {
		return nil, err
	}

	screen.PilotDeficit = selectablePilots < requiredPilots
	screen.AttendantDeficit = selectableAttendants < requiredAttendants
	return screen, nil
}

func (s *service) crewScreenEntries(ctx context.Context, candidate scheduling.Candidate, flightID string, role database.CrewRole) ([]CrewScreenEntry, int, error) {
	roster, err := s.repo.ListCrew(ctx, role)
	if err != nil {
		return nil, 0, failure.InternalError(err)
	}
	history, err := s.repo.CrewAssignments(ctx, role)
	if err != nil {
		return nil, 0, failure.InternalError(err)
	}
	assignedIDs, err := s.repo.FlightCrewIDs(ctx, flightID, role)
	if err != nil {
		return nil, 0, failure.InternalError(err)
	}
	assigned := make(map[string]bool, len(assignedIDs))
	for _, id := range assignedIDs {
		assigned[id] = true
	}

	pool := make([]scheduling.CrewMember, len(roster))
	for i, m := range roster {
		pool[i] = scheduling.CrewMember{ID: m.ID, Name: m.Name, LongHaulCertified: m.LongHaulCertified}
	}

	entries := make([]CrewScreenEntry, len(roster))
	for i, m := range roster {
		entries[i] = CrewScreenEntry{
			CrewMember: m,
			Eligible:   scheduling.EligibleMember(candidate, pool[i], history[m.ID]),
			Assigned:   assigned[m.ID],
		}
	}

	selectable := len(scheduling.SelectableSet(candidate, pool, history, assigned))
	return entries, selectable, nil
}

// SaveCrew replaces a flight's crew assignment. Already-assigned members
// are grandfathered; newly picked members must be eligible.
func (s *service) SaveCrew(ctx context.Context, flightID string, req SaveCrewRequest) error {
	flight, err := s.repo.GetFlight(ctx, flightID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return failure.NotFound("flight")
		}
		return failure.InternalError(err)
	}
	if flight.Status == status.FlightCancelled || flight.Status == status.FlightCompleted {
		return failure.Unprocessable("crew cannot be changed on a " + string(flight.Status) + " flight")
	}

	candidate := scheduling.Candidate{
		Window:         flight.Window(),
		LongHaul:       flight.LongHaul(),
		IgnoreFlightID: flightID,
	}

	requiredPilots, requiredAttendants := scheduling.RequiredCrew(flight.AircraftSize)

	for _, check := range []struct {
		role     database.CrewRole
		selected []string
		required int
	}{
		{database.RolePilot, req.PilotIDs, requiredPilots},
		{database.RoleAttendant, req.AttendantIDs, requiredAttendants},
	} {
		assignedIDs, err := s.repo.FlightCrewIDs(ctx, flightID, check.role)
		if err != nil {
			return failure.InternalError(err)
		}
		grandfathered := make(map[string]bool, len(assignedIDs))
		for _, id := range assignedIDs {
			grandfathered[id] = true
		}
		if err := s.validateCrewSelection(ctx, candidate, check.role, check.selected, check.required, grandfathered); err != nil {
			return err
		}
	}

	if err := s.repo.SaveFlightCrew(ctx, flightID, req.PilotIDs, req.AttendantIDs); err != nil {
		return failure.InternalError(err)
	}

	log.Info().Str("flight", flightID).Int("pilots", len(req.PilotIDs)).
		Int("attendants", len(req.AttendantIDs)).Msg("Flight crew saved")
	return nil
}

// UpdateSeatPrice reprices an Available seat on a flight.
func (s *service) UpdateSeatPrice(ctx context.Context, flightID, flightSeatID string, price float64) error {
	if price < 0 {
		return failure.BadRequestFromString("price cannot be negative")
	}
	err := s.repo.UpdateSeatPrice(ctx, flightID, flightSeatID, price)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return failure.NotFound("seat")
		}
		if errors.Is(err, database.ErrPriceLocked) {
			return failure.Unprocessable("only Available seats can be repriced")
		}
		return failure.InternalError(err)
	}
	return nil
}

// ListEligibleAircraft filters the fleet to aircraft that could operate a
// route at a departure time: size fits the route, rotation stays
// continuous, and enough crew exists for the window.
func (s *service) ListEligibleAircraft(ctx context.Context, routeID string, departure time.Time) ([]database.Aircraft, error) {
	route, err := s.repo.GetRoute(ctx, routeID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, failure.NotFound("route")
		}
		return nil, failure.InternalError(err)
	}
	fleet, err := s.repo.ListAircraft(ctx)
	if err != nil {
		return nil, failure.InternalError(err)
	}

	candidate := candidateFor(route, departure, "", false)

	var eligible []database.Aircraft
	for _, a := range fleet {
		if candidate.LongHaul && a.Size != scheduling.AircraftLarge {
			continue
		}
		rotations, err := s.repo.AircraftFlights(ctx, a.ID)
		if err != nil {
			return nil, failure.InternalError(err)
		}
		if scheduling.CheckRotation(candidate, rotations) != nil {
			continue
		}
		ok, err := s.enoughCrewForWindow(ctx, candidate, a.Size)
		if err != nil {
			return nil, err
		}
		if ok {
			eligible = append(eligible, a)
		}
	}
	return eligible, nil
}

func (s *service) enoughCrewForWindow(ctx context.Context, candidate scheduling.Candidate, size scheduling.AircraftSize) (bool, error) {
	requiredPilots, requiredAttendants := scheduling.RequiredCrew(size)
	for _, check := range []struct {
		role     database.CrewRole
		required int
	}{
		{database.RolePilot, requiredPilots},
		{database.RoleAttendant, requiredAttendants},
	} {
		roster, err := s.repo.ListCrew(ctx, check.role)
		if err != nil {
			return false, failure.InternalError(err)
		}
		history, err := s.repo.CrewAssignments(ctx, check.role)
		if err != nil {
			return false, failure.InternalError(err)
		}
		pool := make([]scheduling.CrewMember, len(roster))
		for i, m := range roster {
			pool[i] = scheduling.CrewMember{ID: m.ID, Name: m.Name, LongHaulCertified: m.LongHaulCertified}
		}
		if len(scheduling.EligibleSet(candidate, pool, history)) < check.required {
			return false, nil
		}
	}
	return true, nil
}

// CreateAircraft registers an aircraft and its seat template.
func (s *service) CreateAircraft(ctx context.Context, req CreateAircraftRequest) (*database.Aircraft, error) {
	sections := make([]database.SeatSection, len(req.Sections))
	for i, sec := range req.Sections {
		sections[i] = database.SeatSection{Class: sec.Class, Rows: sec.Rows, Columns: sec.Columns}
	}
	aircraft, err := s.repo.CreateAircraft(ctx, database.CreateAircraftParams{
		Manufacturer: req.Manufacturer,
		Model:        req.Model,
		Size:         req.Size,
		Sections:     sections,
	})
	if err != nil {
		return nil, failure.InternalError(err)
	}
	log.Info().Str("aircraft", aircraft.ID).Str("size", string(aircraft.Size)).Msg("Aircraft registered")
	return aircraft, nil
}
