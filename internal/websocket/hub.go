package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSeatsUpdated  MessageType = "seats_updated"
	MessageTypeFlightUpdated MessageType = "flight_updated"
)

// SeatUpdate represents a seat status change
type SeatUpdate struct {
	FlightSeatID string `json:"flightSeatId"`
	Status       string `json:"status"` // Available, Sold, Blocked
}

// Message represents a WebSocket message
type Message struct {
	Type         MessageType  `json:"type"`
	FlightID     string       `json:"flightId"`
	FlightStatus string       `json:"flightStatus,omitempty"`
	Seats        []SeatUpdate `json:"seats,omitempty"`
	Timestamp    int64        `json:"timestamp"`
}

// Hub manages WebSocket connections per flight
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.flightID] == nil {
				h.clients[client.flightID] = make(map[*Client]bool)
			}
			h.clients[client.flightID][client] = true
			log.Debug().Str("flight", client.flightID).
				Int("watchers", len(h.clients[client.flightID])).
				Msg("WebSocket client registered")
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.flightID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.flightID)
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				log.Error().Err(err).Msg("Failed to marshal WebSocket message")
				continue
			}

			h.mu.RLock()
			clients := h.clients[message.FlightID]
			h.mu.RUnlock()

			for client := range clients {
				select {
				case client.send <- data:
				default:
					h.mu.Lock()
					delete(h.clients[message.FlightID], client)
					close(client.send)
					h.mu.Unlock()
				}
			}
		}
	}
}

// BroadcastSeatUpdates pushes seat status changes to all clients watching a flight.
func (h *Hub) BroadcastSeatUpdates(flightID string, seats []SeatUpdate) {
	h.broadcast <- &Message{
		Type:      MessageTypeSeatsUpdated,
		FlightID:  flightID,
		Seats:     seats,
		Timestamp: time.Now().UnixMilli(),
	}
}

// BroadcastFlightStatus notifies watchers of a flight status transition.
func (h *Hub) BroadcastFlightStatus(flightID, status string) {
	h.broadcast <- &Message{
		Type:         MessageTypeFlightUpdated,
		FlightID:     flightID,
		FlightStatus: status,
		Timestamp:    time.Now().UnixMilli(),
	}
}

// WatcherCount returns the number of clients watching a flight
func (h *Hub) WatcherCount(flightID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[flightID])
}
