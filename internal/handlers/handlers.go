package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/matan25/flytau/internal/database"
	"github.com/matan25/flytau/internal/failure"
	"github.com/matan25/flytau/internal/service"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	svc      service.Service
	validate *validator.Validate
}

// NewHandler creates a new Handler instance
func NewHandler(svc service.Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondFailure(w http.ResponseWriter, err error) {
	respondError(w, failure.GetCode(err), err.Error())
}

func (h *Handler) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return failure.BadRequestFromString("invalid request body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return failure.BadRequest(err)
	}
	return nil
}

// SearchFlights handles GET /api/flights
func (h *Handler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	filter := database.FlightFilter{
		Origin:      r.URL.Query().Get("origin"),
		Destination: r.URL.Query().Get("destination"),
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		filter.Date = &date
	}

	flights, err := h.svc.SearchFlights(r.Context(), filter)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flights)
}

// GetFlight handles GET /api/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	flight, err := h.svc.GetFlight(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// GetFlightSeats handles GET /api/flights/{id}/seats
func (h *Handler) GetFlightSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.svc.GetFlightSeats(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, seats)
}

// CreateOrder handles POST /api/orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondFailure(w, err)
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// ListOrders handles GET /api/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), email)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	order, err := h.svc.GetOrder(r.Context(), mux.Vars(r)["id"], email)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// CancelOrder handles DELETE /api/orders/{id}
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	result, err := h.svc.CancelOrder(r.Context(), mux.Vars(r)["id"], email)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// --- Manager handlers ---

// CreateFlight handles POST /api/manager/flights
func (h *Handler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	var req service.CreateFlightRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondFailure(w, err)
		return
	}

	flight, err := h.svc.CreateFlight(r.Context(), req)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, flight)
}

// UpdateFlight handles PUT /api/manager/flights/{id}
func (h *Handler) UpdateFlight(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateFlightRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondFailure(w, err)
		return
	}

	flight, err := h.svc.UpdateFlight(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// GetCrewScreen handles GET /api/manager/flights/{id}/crew
func (h *Handler) GetCrewScreen(w http.ResponseWriter, r *http.Request) {
	screen, err := h.svc.CrewScreen(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, screen)
}

// SaveCrew handles PUT /api/manager/flights/{id}/crew
func (h *Handler) SaveCrew(w http.ResponseWriter, r *http.Request) {
	var req service.SaveCrewRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondFailure(w, err)
		return
	}

	if err := h.svc.SaveCrew(r.Context(), mux.Vars(r)["id"], req); err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Crew assignment saved"})
}

// UpdateSeatPrice handles PUT /api/manager/flights/{id}/seats/{seatId}/price
func (h *Handler) UpdateSeatPrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Price *float64 `json:"price" validate:"required"`
	}
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondFailure(w, err)
		return
	}

	vars := mux.Vars(r)
	if err := h.svc.UpdateSeatPrice(r.Context(), vars["id"], vars["seatId"], *req.Price); err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Seat price updated"})
}

// ListAircraft handles GET /api/manager/aircraft. With routeId and
// departure query parameters it lists only aircraft eligible for that
// window; without them it lists the whole fleet.
func (h *Handler) ListAircraft(w http.ResponseWriter, r *http.Request) {
	routeID := r.URL.Query().Get("routeId")
	rawDeparture := r.URL.Query().Get("departure")

	if routeID != "" && rawDeparture != "" {
		departure, err := time.Parse(time.RFC3339, rawDeparture)
		if err != nil {
			respondError(w, http.StatusBadRequest, "departure must be RFC 3339")
			return
		}
		fleet, err := h.svc.ListEligibleAircraft(r.Context(), routeID, departure)
		if err != nil {
			respondFailure(w, err)
			return
		}
		respondJSON(w, http.StatusOK, fleet)
		return
	}

	fleet, err := h.svc.ListAircraft(r.Context())
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fleet)
}

// CreateAircraft handles POST /api/manager/aircraft
func (h *Handler) CreateAircraft(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAircraftRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondFailure(w, err)
		return
	}

	aircraft, err := h.svc.CreateAircraft(r.Context(), req)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, aircraft)
}

// CreateRoute handles POST /api/manager/routes
func (h *Handler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRouteRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondFailure(w, err)
		return
	}

	route, err := h.svc.CreateRoute(r.Context(), req)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, route)
}

// ListRoutes handles GET /api/manager/routes
func (h *Handler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.svc.ListRoutes(r.Context())
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, routes)
}

// ListCrew handles GET /api/manager/crew?role=pilot|attendant
func (h *Handler) ListCrew(w http.ResponseWriter, r *http.Request) {
	role := database.CrewRole(r.URL.Query().Get("role"))
	if role != database.RolePilot && role != database.RoleAttendant {
		respondError(w, http.StatusBadRequest, "role must be pilot or attendant")
		return
	}

	crew, err := h.svc.ListCrew(r.Context(), role)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, crew)
}

// CreateCrewMember handles POST /api/manager/crew
func (h *Handler) CreateCrewMember(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCrewMemberRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondFailure(w, err)
		return
	}

	member, err := h.svc.CreateCrewMember(r.Context(), req)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, member)
}

// Reconcile handles POST /api/manager/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	flightID := r.URL.Query().Get("flightId")
	if err := h.svc.Reconcile(r.Context(), flightID); err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Reconciliation complete"})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
