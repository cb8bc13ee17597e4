package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/matan25/flytau/internal/database"
	"github.com/matan25/flytau/internal/failure"
	"github.com/matan25/flytau/internal/service"
	"github.com/matan25/flytau/internal/service/mocks"
	"github.com/matan25/flytau/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/flights", h.SearchFlights).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}/seats", h.GetFlightSeats).Methods(http.MethodGet)
	api.HandleFunc("/orders", h.CreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", h.GetOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", h.CancelOrder).Methods(http.MethodDelete)
	manager := api.PathPrefix("/manager").Subrouter()
	manager.HandleFunc("/flights", h.CreateFlight).Methods(http.MethodPost)
	manager.HandleFunc("/flights/{id}", h.UpdateFlight).Methods(http.MethodPut)
	manager.HandleFunc("/flights/{id}/crew", h.GetCrewScreen).Methods(http.MethodGet)
	manager.HandleFunc("/flights/{id}/crew", h.SaveCrew).Methods(http.MethodPut)
	manager.HandleFunc("/flights/{id}/seats/{seatId}/price", h.UpdateSeatPrice).Methods(http.MethodPut)
	manager.HandleFunc("/crew", h.ListCrew).Methods(http.MethodGet)
	manager.HandleFunc("/reconcile", h.Reconcile).Methods(http.MethodPost)
	return r
}

func TestHandler_SearchFlights(t *testing.T) {
	mockService := new(mocks.MockService)
	handler := NewHandler(mockService)
	router := setupTestRouter(handler)

	expectedFlights := []database.Flight{
		{
			ID:            "FT001",
			RouteID:       "RT001",
			AircraftID:    "B001",
			DepartureTime: time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC),
			Status:        status.FlightActive,
			Origin:        "Tel Aviv",
			Destination:   "London",
		},
	}

	mockService.On("SearchFlights", mock.Anything, mock.AnythingOfType("database.FlightFilter")).Return(expectedFlights, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/flights?origin=Tel+Aviv", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []database.Flight
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)
	assert.Len(t, response, 1)
	assert.Equal(t, "FT001", response[0].ID)

	mockService.AssertExpectations(t)
}

func TestHandler_SearchFlights_BadDate(t *testing.T) {
	mockService := new(mocks.MockService)
	handler := NewHandler(mockService)
	router := setupTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/flights?date=10-09-2026", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "SearchFlights")
}

func TestHandler_GetFlight(t *testing.T) {
	tests := []struct {
		name           string
		flightID       string
		mockReturn     *database.Flight
		mockError      error
		expectedStatus int
	}{
		{
			name:           "flight found",
			flightID:       "FT001",
			mockReturn:     &database.Flight{ID: "FT001", Status: status.FlightActive},
			mockError:      nil,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "flight not found",
			flightID:       "FT999",
			mockReturn:     nil,
			mockError:      failure.NotFound("flight"),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "database unavailable",
			flightID:       "FT001",
			mockReturn:     nil,
			mockError:      failure.InternalError(errors.New("connection refused")),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			mockService.On("GetFlight", mock.Anything, tt.flightID).Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/api/flights/"+tt.flightID, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_GetFlightSeats(t *testing.T) {
	tests := []struct {
		name           string
		mockReturn     []database.FlightSeat
		mockError      error
		expectedStatus int
	}{
		{
			name: "seat map returned",
			mockReturn: []database.FlightSeat{
				{ID: "FS000001", FlightID: "FT001", Status: status.SeatAvailable},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "flight not found",
			mockError:      failure.NotFound("flight"),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "database unavailable",
			mockError:      failure.InternalError(errors.New("connection refused")),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			mockService.On("GetFlightSeats", mock.Anything, "FT001").Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/api/flights/FT001/seats", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_CreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		mockReturn     *database.Order
		mockError      error
		expectedStatus int
		shouldCallMock bool
	}{
		{
			name: "valid order creation",
			requestBody: service.CreateOrderRequest{
				FlightID:      "FT001",
				CustomerEmail: "guest@example.com",
				FlightSeatIDs: []string{"FS000001", "FS000002"},
			},
			mockReturn: &database.Order{
				ID:            "O000000001",
				CustomerEmail: "guest@example.com",
				FlightID:      "FT001",
				Status:        status.OrderActive,
			},
			mockError:      nil,
			expectedStatus: http.StatusCreated,
			shouldCallMock: true,
		},
		{
			name: "missing flight ID",
			requestBody: service.CreateOrderRequest{
				CustomerEmail: "guest@example.com",
				FlightSeatIDs: []string{"FS000001"},
			},
			expectedStatus: http.StatusBadRequest,
			shouldCallMock: false,
		},
		{
			name: "invalid email",
			requestBody: service.CreateOrderRequest{
				FlightID:      "FT001",
				CustomerEmail: "not-an-email",
				FlightSeatIDs: []string{"FS000001"},
			},
			expectedStatus: http.StatusBadRequest,
			shouldCallMock: false,
		},
		{
			name: "no seats selected",
			requestBody: service.CreateOrderRequest{
				FlightID:      "FT001",
				CustomerEmail: "guest@example.com",
				FlightSeatIDs: []string{},
			},
			expectedStatus: http.StatusBadRequest,
			shouldCallMock: false,
		},
		{
			name: "seat taken by concurrent order",
			requestBody: service.CreateOrderRequest{
				FlightID:      "FT001",
				CustomerEmail: "guest@example.com",
				FlightSeatIDs: []string{"FS000001"},
			},
			mockReturn:     nil,
			mockError:      failure.Conflict("seat already taken, please reselect"),
			expectedStatus: http.StatusConflict,
			shouldCallMock: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			body, _ := json.Marshal(tt.requestBody)

			if tt.shouldCallMock {
				mockService.On("CreateOrder", mock.Anything, mock.AnythingOfType("service.CreateOrderRequest")).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if !tt.shouldCallMock {
				mockService.AssertNotCalled(t, "CreateOrder")
			}
		})
	}
}

func TestHandler_GetOrder(t *testing.T) {
	tests := []struct {
		name           string
		orderID        string
		email          string
		mockReturn     *database.Order
		mockError      error
		expectedStatus int
		shouldCallMock bool
	}{
		{
			name:    "order found",
			orderID: "O000000001",
			email:   "guest@example.com",
			mockReturn: &database.Order{
				ID:            "O000000001",
				CustomerEmail: "guest@example.com",
				Status:        status.OrderActive,
			},
			expectedStatus: http.StatusOK,
			shouldCallMock: true,
		},
		{
			name:           "wrong email",
			orderID:        "O000000001",
			email:          "other@example.com",
			mockError:      failure.NotFound("order"),
			expectedStatus: http.StatusNotFound,
			shouldCallMock: true,
		},
		{
			name:           "missing email parameter",
			orderID:        "O000000001",
			expectedStatus: http.StatusBadRequest,
			shouldCallMock: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			if tt.shouldCallMock {
				mockService.On("GetOrder", mock.Anything, tt.orderID, tt.email).Return(tt.mockReturn, tt.mockError)
			}

			url := "/api/orders/" + tt.orderID
			if tt.email != "" {
				url += "?email=" + tt.email
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_CancelOrder(t *testing.T) {
	tests := []struct {
		name           string
		orderID        string
		mockReturn     *service.CancellationResult
		mockError      error
		expectedStatus int
	}{
		{
			name:    "successful cancellation",
			orderID: "O000000001",
			mockReturn: &service.CancellationResult{
				Order:  &database.Order{ID: "O000000001", Status: status.OrderCancelledCustomer},
				Fee:    10,
				Refund: 190,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "too close to departure",
			orderID:        "O000000002",
			mockError:      failure.Unprocessable("order can no longer be cancelled"),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "order not found",
			orderID:        "O000000099",
			mockError:      failure.NotFound("order"),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			mockService.On("CancelOrder", mock.Anything, tt.orderID, "guest@example.com").Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodDelete, "/api/orders/"+tt.orderID+"?email=guest@example.com", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)

			if tt.mockReturn != nil {
				var result service.CancellationResult
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
				assert.Equal(t, tt.mockReturn.Fee, result.Fee)
				assert.Equal(t, tt.mockReturn.Refund, result.Refund)
			}
		})
	}
}

func TestHandler_CreateFlight(t *testing.T) {
	departure := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		requestBody    interface{}
		mockReturn     *database.Flight
		mockError      error
		expectedStatus int
		shouldCallMock bool
	}{
		{
			name: "valid flight creation",
			requestBody: service.CreateFlightRequest{
				RouteID:      "RT001",
				AircraftID:   "B001",
				Departure:    departure,
				PilotIDs:     []string{"P0001", "P0002"},
				AttendantIDs: []string{"A0001", "A0002", "A0003"},
			},
			mockReturn:     &database.Flight{ID: "FT002", Status: status.FlightActive},
			expectedStatus: http.StatusCreated,
			shouldCallMock: true,
		},
		{
			name: "missing aircraft",
			requestBody: service.CreateFlightRequest{
				RouteID:   "RT001",
				Departure: departure,
			},
			expectedStatus: http.StatusBadRequest,
			shouldCallMock: false,
		},
		{
			name: "aircraft busy on overlapping flight",
			requestBody: service.CreateFlightRequest{
				RouteID:    "RT001",
				AircraftID: "B001",
				Departure:  departure,
			},
			mockError:      failure.Unprocessable("aircraft is scheduled on an overlapping flight"),
			expectedStatus: http.StatusUnprocessableEntity,
			shouldCallMock: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			body, _ := json.Marshal(tt.requestBody)

			if tt.shouldCallMock {
				mockService.On("CreateFlight", mock.Anything, mock.AnythingOfType("service.CreateFlightRequest")).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/manager/flights", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestHandler_GetCrewScreen(t *testing.T) {
	mockService := new(mocks.MockService)
	handler := NewHandler(mockService)
	router := setupTestRouter(handler)

	screen := &service.CrewScreen{
		FlightID:           "FT001",
		RequiredPilots:     2,
		RequiredAttendants: 3,
		Pilots: []service.CrewScreenEntry{
			{CrewMember: database.CrewMember{ID: "P0001", Name: "Dana", Role: database.RolePilot}, Eligible: true, Assigned: true},
		},
		PilotDeficit: true,
	}

	mockService.On("CrewScreen", mock.Anything, "FT001").Return(screen, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/manager/flights/FT001/crew", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response service.CrewScreen
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.True(t, response.PilotDeficit)
	assert.Len(t, response.Pilots, 1)

	mockService.AssertExpectations(t)
}

func TestHandler_SaveCrew(t *testing.T) {
	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{
			name:           "crew saved",
			mockError:      nil,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "pilot not eligible",
			mockError:      failure.Unprocessable("pilot P0003 is not eligible for this flight"),
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			mockService.On("SaveCrew", mock.Anything, "FT001", mock.AnythingOfType("service.SaveCrewRequest")).Return(tt.mockError)

			body, _ := json.Marshal(service.SaveCrewRequest{
				PilotIDs:     []string{"P0001", "P0003"},
				AttendantIDs: []string{"A0001", "A0002", "A0003"},
			})

			req := httptest.NewRequest(http.MethodPut, "/api/manager/flights/FT001/crew", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_UpdateSeatPrice(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		mockError      error
		expectedStatus int
		shouldCallMock bool
	}{
		{
			name:           "price updated",
			requestBody:    `{"price": 250.50}`,
			expectedStatus: http.StatusOK,
			shouldCallMock: true,
		},
		{
			name:           "missing price",
			requestBody:    `{}`,
			expectedStatus: http.StatusBadRequest,
			shouldCallMock: false,
		},
		{
			name:           "seat already sold",
			requestBody:    `{"price": 250.50}`,
			mockError:      failure.Unprocessable("only Available seats can be repriced"),
			expectedStatus: http.StatusUnprocessableEntity,
			shouldCallMock: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			if tt.shouldCallMock {
				mockService.On("UpdateSeatPrice", mock.Anything, "FT001", "FS000001", 250.50).Return(tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/manager/flights/FT001/seats/FS000001/price", bytes.NewReader([]byte(tt.requestBody)))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if !tt.shouldCallMock {
				mockService.AssertNotCalled(t, "UpdateSeatPrice")
			}
		})
	}
}

func TestHandler_ListCrew(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		mockRole       database.CrewRole
		expectedStatus int
		shouldCallMock bool
	}{
		{
			name:           "pilots",
			query:          "?role=pilot",
			mockRole:       database.RolePilot,
			expectedStatus: http.StatusOK,
			shouldCallMock: true,
		},
		{
			name:           "unknown role",
			query:          "?role=navigator",
			expectedStatus: http.StatusBadRequest,
			shouldCallMock: false,
		},
		{
			name:           "missing role",
			query:          "",
			expectedStatus: http.StatusBadRequest,
			shouldCallMock: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			if tt.shouldCallMock {
				mockService.On("ListCrew", mock.Anything, tt.mockRole).Return([]database.CrewMember{
					{ID: "P0001", Name: "Dana", Role: tt.mockRole},
				}, nil)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/manager/crew"+tt.query, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_Reconcile(t *testing.T) {
	mockService := new(mocks.MockService)
	handler := NewHandler(mockService)
	router := setupTestRouter(handler)

	mockService.On("Reconcile", mock.Anything, "FT001").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/manager/reconcile?flightId=FT001", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}
