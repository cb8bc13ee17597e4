package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/matan25/flytau/internal/handlers"
	"github.com/matan25/flytau/internal/websocket"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, hub *websocket.Hub) *mux.Router {
	r := mux.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(corsMiddleware)

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Flights
	api.HandleFunc("/flights", h.SearchFlights).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}/seats", h.GetFlightSeats).Methods(http.MethodGet, http.MethodOptions)

	// Orders
	api.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/orders", h.CreateOrder).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/orders/{id}", h.GetOrder).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/orders/{id}", h.CancelOrder).Methods(http.MethodDelete, http.MethodOptions)

	// Manager routes
	manager := api.PathPrefix("/manager").Subrouter()
	manager.HandleFunc("/flights", h.CreateFlight).Methods(http.MethodPost, http.MethodOptions)
	manager.HandleFunc("/flights/{id}", h.UpdateFlight).Methods(http.MethodPut, http.MethodOptions)
	manager.HandleFunc("/flights/{id}/crew", h.GetCrewScreen).Methods(http.MethodGet, http.MethodOptions)
	manager.HandleFunc("/flights/{id}/crew", h.SaveCrew).Methods(http.MethodPut, http.MethodOptions)
	manager.HandleFunc("/flights/{id}/seats/{seatId}/price", h.UpdateSeatPrice).Methods(http.MethodPut, http.MethodOptions)
	manager.HandleFunc("/aircraft", h.ListAircraft).Methods(http.MethodGet, http.MethodOptions)
	manager.HandleFunc("/aircraft", h.CreateAircraft).Methods(http.MethodPost, http.MethodOptions)
	manager.HandleFunc("/routes", h.ListRoutes).Methods(http.MethodGet, http.MethodOptions)
	manager.HandleFunc("/routes", h.CreateRoute).Methods(http.MethodPost, http.MethodOptions)
	manager.HandleFunc("/crew", h.ListCrew).Methods(http.MethodGet, http.MethodOptions)
	manager.HandleFunc("/crew", h.CreateCrewMember).Methods(http.MethodPost, http.MethodOptions)
	manager.HandleFunc("/reconcile", h.Reconcile).Methods(http.MethodPost, http.MethodOptions)

	// WebSocket for real-time updates
	api.HandleFunc("/flights/{id}/ws", hub.ServeWS)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)

		next.ServeHTTP(w, r)
	})
}
