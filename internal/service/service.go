package service

import (
	"context"
	"errors"
	"time"

	"github.com/matan25/flytau/internal/database"
	"github.com/matan25/flytau/internal/failure"
	"github.com/matan25/flytau/internal/scheduling"
	"github.com/matan25/flytau/internal/status"
	"github.com/matan25/flytau/internal/websocket"
)

// Service defines the booking and fleet-operations interface the HTTP
// layer talks to.
type Service interface {
	SearchFlights(ctx context.Context, filter database.FlightFilter) ([]database.Flight, error)
	GetFlight(ctx context.Context, flightID string) (*database.Flight, error)
	GetFlightSeats(ctx context.Context, flightID string) ([]database.FlightSeat, error)

	CreateOrder(ctx context.Context, req CreateOrderRequest) (*database.Order, error)
	GetOrder(ctx context.Context, orderID, customerEmail string) (*database.Order, error)
	ListOrders(ctx context.Context, customerEmail string) ([]database.Order, error)
	CancelOrder(ctx context.Context, orderID, customerEmail string) (*CancellationResult, error)

	CreateFlight(ctx context.Context, req CreateFlightRequest) (*database.Flight, error)
	UpdateFlight(ctx context.Context, flightID string, req UpdateFlightRequest) (*database.Flight, error)
	CrewScreen(ctx context.Context, flightID string) (*CrewScreen, error)
	SaveCrew(ctx context.Context, flightID string, req SaveCrewRequest) error
	UpdateSeatPrice(ctx context.Context, flightID, flightSeatID string, price float64) error

	ListAircraft(ctx context.Context) ([]database.Aircraft, error)
	ListEligibleAircraft(ctx context.Context, routeID string, departure time.Time) ([]database.Aircraft, error)
	CreateAircraft(ctx context.Context, req CreateAircraftRequest) (*database.Aircraft, error)
	ListRoutes(ctx context.Context) ([]database.Route, error)
	CreateRoute(ctx context.Context, req CreateRouteRequest) (*database.Route, error)
	ListCrew(ctx context.Context, role database.CrewRole) ([]database.CrewMember, error)
	CreateCrewMember(ctx context.Context, req CreateCrewMemberRequest) (*database.CrewMember, error)

	Reconcile(ctx context.Context, flightID string) error
}

// Locker is the advisory seat-lock dependency.
type Locker interface {
	LockAll(ctx context.Context, seatIDs []string, ownerID string) (bool, error)
	UnlockAll(ctx context.Context, seatIDs []string, ownerID string) error
}

// CreateOrderRequest books seats on a flight for a guest customer.
type CreateOrderRequest struct {
	FlightID      string   `json:"flightId" validate:"required"`
	CustomerEmail string   `json:"customerEmail" validate:"required,email"`
	FlightSeatIDs []string `json:"flightSeatIds" validate:"required,min=1,dive,required"`
}

// CancellationResult reports the money outcome of a customer cancellation.
type CancellationResult struct {
	Order  *database.Order `json:"order"`
	Fee    float64         `json:"fee"`
	Refund float64         `json:"refund"`
}

// CreateFlightRequest schedules a new flight with its crew.
type CreateFlightRequest struct {
	RouteID      string    `json:"routeId" validate:"required"`
	AircraftID   string    `json:"aircraftId" validate:"required"`
	Departure    time.Time `json:"departure" validate:"required"`
	PilotIDs     []string  `json:"pilotIds"`
	AttendantIDs []string  `json:"attendantIds"`
}

// UpdateFlightRequest edits an existing flight. The aircraft is locked
// after creation. Setting status to Cancelled takes the cancellation path.
type UpdateFlightRequest struct {
	RouteID   string              `json:"routeId" validate:"required"`
	Departure time.Time           `json:"departure" validate:"required"`
	Status    status.FlightStatus `json:"status" validate:"required"`
}

// SaveCrewRequest replaces a flight's crew assignment.
type SaveCrewRequest struct {
	PilotIDs     []string `json:"pilotIds"`
	AttendantIDs []string `json:"attendantIds"`
}

// CreateRouteRequest adds a city pair to the network.
type CreateRouteRequest struct {
	Origin          string `json:"origin" validate:"required"`
	Destination     string `json:"destination" validate:"required,nefield=Origin"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=1"`
}

// CreateAircraftRequest registers an aircraft and its cabin layout.
type CreateAircraftRequest struct {
	Manufacturer string                  `json:"manufacturer" validate:"required"`
	Model        string                  `json:"model" validate:"required"`
	Size         scheduling.AircraftSize `json:"size" validate:"required,oneof=Small Large"`
	Sections     []SeatSectionRequest    `json:"sections" validate:"required,min=1,dive"`
}

// SeatSectionRequest is one class block of a new aircraft's cabin.
type SeatSectionRequest struct {
	Class   database.SeatClass `json:"class" validate:"required,oneof=Business Economy"`
	Rows    int                `json:"rows" validate:"required,min=1"`
	Columns []string           `json:"columns" validate:"required,min=1,dive,required"`
}

// CreateCrewMemberRequest adds a pilot or attendant to the roster.
type CreateCrewMemberRequest struct {
	Role              database.CrewRole `json:"role" validate:"required,oneof=pilot attendant"`
	Name              string            `json:"name" validate:"required"`
	LongHaulCertified bool              `json:"longHaulCertified"`
}

// CrewScreenEntry is one roster member on the crew-assignment screen.
type CrewScreenEntry struct {
	database.CrewMember
	Eligible bool `json:"eligible"`
	Assigned bool `json:"assigned"`
}

// CrewScreen is the crew-assignment screen payload for a flight. Deficit
// flags compare the selectable pool (eligible plus grandfathered
// assignees) against the required counts.
type CrewScreen struct {
	FlightID           string            `json:"flightId"`
	RequiredPilots     int               `json:"requiredPilots"`
	RequiredAttendants int               `json:"requiredAttendants"`
	Pilots             []CrewScreenEntry `json:"pilots"`
	Attendants         []CrewScreenEntry `json:"attendants"`
	PilotDeficit       bool              `json:"pilotDeficit"`
	AttendantDeficit   bool              `json:"attendantDeficit"`
}

type service struct {
	repo   *database.Repository
	locker Locker
	hub    *websocket.Hub
	now    func() time.Time
}

// New creates the Service backed by the repository, the advisory seat
// locker, and the WebSocket hub for live seat updates.
func New(repo *database.Repository, locker Locker, hub *websocket.Hub) Service {
	return &service{
		repo:   repo,
		locker: locker,
		hub:    hub,
		now:    time.Now,
	}
}

func (s *service) SearchFlights(ctx context.Context, filter database.FlightFilter) ([]database.Flight, error) {
	return s.repo.SearchFlights(ctx, filter)
}

func (s *service) GetFlight(ctx context.Context, flightID string) (*database.Flight, error) {
	flight, err := s.repo.GetFlight(ctx, flightID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, failure.NotFound("flight")
		}
		return nil, failure.InternalError(err)
	}
	return flight, nil
}

func (s *service) GetFlightSeats(ctx context.Context, flightID string) ([]database.FlightSeat, error) {
	if _, err := s.GetFlight(ctx, flightID); err != nil {
		return nil, err
	}
	seats, err := s.repo.GetFlightSeats(ctx, flightID)
	if err != nil {
		return nil, failure.InternalError(err)
	}
	return seats, nil
}

func (s *service) ListRoutes(ctx context.Context) ([]database.Route, error) {
	return s.repo.ListRoutes(ctx)
}

func (s *service) CreateRoute(ctx context.Context, req CreateRouteRequest) (*database.Route, error) {
	return s.repo.CreateRoute(ctx, req.Origin, req.Destination, req.DurationMinutes)
}

func (s *service) ListOrders(ctx context.Context, customerEmail string) ([]database.Order, error) {
	return s.repo.ListOrdersByEmail(ctx, customerEmail)
}

func (s *service) ListAircraft(ctx context.Context) ([]database.Aircraft, error) {
	return s.repo.ListAircraft(ctx)
}

func (s *service) ListCrew(ctx context.Context, role database.CrewRole) ([]database.CrewMember, error) {
	return s.repo.ListCrew(ctx, role)
}

func (s *service) CreateCrewMember(ctx context.Context, req CreateCrewMemberRequest) (*database.CrewMember, error) {
	return s.repo.CreateCrewMember(ctx, req.Role, req.Name, req.LongHaulCertified)
}

func (s *service) Reconcile(ctx context.Context, flightID string) error {
	if err := s.repo.Reconcile(ctx, flightID, s.now()); err != nil {
		return err
	}
	if flightID != "" {
		s.broadcastFlight(ctx, flightID)
	}
	return nil
}

// broadcastFlight pushes the flight's current status and seat map to
// WebSocket watchers. Best effort; booking outcomes never depend on it.
func (s *service) broadcastFlight(ctx context.Context, flightID string) {
	if s.hub == nil || s.hub.WatcherCount(flightID) == 0 {
		return
	}
	flight, err := s.repo.GetFlight(ctx, flightID)
	if err != nil {
		return
	}
	s.hub.BroadcastFlightStatus(flightID, string(flight.Status))

	seats, err := s.repo.GetFlightSeats(ctx, flightID)
	if err != nil {
		return
	}
	updates := make([]websocket.SeatUpdate, len(seats))
	for i, seat := range seats {
		updates[i] = websocket.SeatUpdate{FlightSeatID: seat.ID, Status: string(seat.Status)}
	}
	s.hub.BroadcastSeatUpdates(flightID, updates)
}
