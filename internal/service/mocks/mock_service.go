package mocks

import (
	"context"
	"time"

	"github.com/matan25/flytau/internal/database"
	"github.com/matan25/flytau/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockService is a mock implementation of service.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) SearchFlights(ctx context.Context, filter database.FlightFilter) ([]database.Flight, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Flight), args.Error(1)
}

func (m *MockService) GetFlight(ctx context.Context, flightID string) (*database.Flight, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Flight), args.Error(1)
}

func (m *MockService) GetFlightSeats(ctx context.Context, flightID string) ([]database.FlightSeat, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.FlightSeat), args.Error(1)
}

func (m *MockService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*database.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Order), args.Error(1)
}

func (m *MockService) GetOrder(ctx context.Context, orderID, customerEmail string) (*database.Order, error) {
	args := m.Called(ctx, orderID, customerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Order), args.Error(1)
}

func (m *MockService) ListOrders(ctx context.Context, customerEmail string) ([]database.Order, error) {
	args := m.Called(ctx, customerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Order), args.Error(1)
}

func (m *MockService) CancelOrder(ctx context.Context, orderID, customerEmail string) (*service.CancellationResult, error) {
	args := m.Called(ctx, orderID, customerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CancellationResult), args.Error(1)
}

func (m *MockService) CreateFlight(ctx context.Context, req service.CreateFlightRequest) (*database.Flight, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Flight), args.Error(1)
}

func (m *MockService) UpdateFlight(ctx context.Context, flightID string, req service.UpdateFlightRequest) (*database.Flight, error) {
	args := m.Called(ctx, flightID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Flight), args.Error(1)
}

func (m *MockService) CrewScreen(ctx context.Context, flightID string) (*service.CrewScreen, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CrewScreen), args.Error(1)
}

func (m *MockService) SaveCrew(ctx context.Context, flightID string, req service.SaveCrewRequest) error {
	args := m.Called(ctx, flightID, req)
	return args.Error(0)
}

func (m *MockService) UpdateSeatPrice(ctx context.Context, flightID, flightSeatID string, price float64) error {
	args := m.Called(ctx, flightID, flightSeatID, price)
	return args.Error(0)
}

func (m *MockService) ListAircraft(ctx context.Context) ([]database.Aircraft, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Aircraft), args.Error(1)
}

func (m *MockService) ListEligibleAircraft(ctx context.Context, routeID string, departure time.Time) ([]database.Aircraft, error) {
	args := m.Called(ctx, routeID, departure)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Aircraft), args.Error(1)
}

func (m *MockService) CreateAircraft(ctx context.Context, req service.CreateAircraftRequest) (*database.Aircraft, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Aircraft), args.Error(1)
}

func (m *MockService) CreateRoute(ctx context.Context, req service.CreateRouteRequest) (*database.Route, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.Route), args.Error(1)
}

func (m *MockService) ListRoutes(ctx context.Context) ([]database.Route, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.Route), args.Error(1)
}

func (m *MockService) ListCrew(ctx context.Context, role database.CrewRole) ([]database.CrewMember, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]database.CrewMember), args.Error(1)
}

func (m *MockService) CreateCrewMember(ctx context.Context, req service.CreateCrewMemberRequest) (*database.CrewMember, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.CrewMember), args.Error(1)
}

func (m *MockService) Reconcile(ctx context.Context, flightID string) error {
	args := m.Called(ctx, flightID)
	return args.Error(0)
}
