package database

import (
	"time"

	"github.com/matan25/flytau/internal/scheduling"
	"github.com/matan25/flytau/internal/status"
)

// SeatClass is a cabin class on the aircraft seat template.
type SeatClass string

const (
	ClassBusiness SeatClass = "Business"
	ClassEconomy  SeatClass = "Economy"
)

// Default ticket prices applied when a flight is scheduled. Managers can
// reprice individual seats while they remain Available.
const (
	DefaultEconomyPrice          = 200.0
	DefaultBusinessPrice         = 700.0
	DefaultLongHaulEconomyPrice  = 400.0
	DefaultLongHaulBusinessPrice = 1200.0
)

// Route is a fixed origin/destination pair with a flying time.
type Route struct {
	ID              string `json:"id"`
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`
	DurationMinutes int    `json:"durationMinutes"`
}

// Duration returns the route's flying time.
func (r Route) Duration() time.Duration {
	return time.Duration(r.DurationMinutes) * time.Minute
}

// Aircraft is a fleet unit. Its seat template is immutable once created.
type Aircraft struct {
	ID           string                  `json:"id"`
	Manufacturer string                  `json:"manufacturer"`
	Model        string                  `json:"model"`
	Size         scheduling.AircraftSize `json:"size"`
}

// Seat is one position on an aircraft's template, shared by every flight
// the aircraft operates.
type Seat struct {
	ID           string    `json:"id"`
	AircraftID   string    `json:"aircraftId"`
	RowNumber    int       `json:"row"`
	ColumnLetter string    `json:"column"`
	Class        SeatClass `json:"class"`
}

// Flight is a scheduled departure. Arrival is derived from the route
// duration and never stored.
type Flight struct {
	ID            string              `json:"id"`
	RouteID       string              `json:"routeId"`
	AircraftID    string              `json:"aircraftId"`
	DepartureTime time.Time           `json:"departureTime"`
	Status        status.FlightStatus `json:"status"`

	// Joined route and aircraft fields.
	Origin          string                  `json:"origin"`
	Destination     string                  `json:"destination"`
	DurationMinutes int                     `json:"durationMinutes"`
	AircraftSize    scheduling.AircraftSize `json:"aircraftSize"`
}

// ArrivalTime returns the derived arrival timestamp.
func (f Flight) ArrivalTime() time.Time {
	return f.DepartureTime.Add(time.Duration(f.DurationMinutes) * time.Minute)
}

// LongHaul reports whether the flight's route is long-haul.
func (f Flight) LongHaul() bool {
	return scheduling.IsLongHaul(time.Duration(f.DurationMinutes) * time.Minute)
}

// Window returns the flight's scheduling footprint.
func (f Flight) Window() scheduling.Window {
	return scheduling.NewWindow(f.Origin, f.Destination, f.DepartureTime,
		time.Duration(f.DurationMinutes)*time.Minute)
}

// FlightSeat is one sellable seat on one flight.
type FlightSeat struct {
	ID       string            `json:"id"`
	FlightID string            `json:"flightId"`
	SeatID   string            `json:"seatId"`
	Price    float64           `json:"price"`
	Status   status.SeatStatus `json:"status"`

	// Joined template fields.
	RowNumber    int       `json:"row"`
	ColumnLetter string    `json:"column"`
	Class        SeatClass `json:"class"`
}

// Ticket binds a flight seat to an order at the price paid. Paid price is
// historical and immutable once written.
type Ticket struct {
	OrderID      string  `json:"orderId"`
	FlightSeatID string  `json:"flightSeatId"`
	PaidPrice    float64 `json:"paidPrice"`
	SeatLabel    string  `json:"seatLabel"`
}

// Order is a customer purchase on a single flight.
type Order struct {
	ID            string             `json:"id"`
	CustomerEmail string             `json:"customerEmail"`
	FlightID      string             `json:"flightId"`
	Status        status.OrderStatus `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
	CancelledAt   *time.Time         `json:"cancelledAt,omitempty"`
	Tickets       []Ticket           `json:"tickets,omitempty"`
}

// Total sums the paid prices of the order's tickets.
func (o Order) Total() float64 {
	var total float64
	for _, t := range o.Tickets {
		total += t.PaidPrice
	}
	return total
}

// CrewRole distinguishes the two crew rosters.
type CrewRole string

const (
	RolePilot     CrewRole = "pilot"
	RoleAttendant CrewRole = "attendant"
)

// CrewMember is a pilot or attendant on the roster.
type CrewMember struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Role              CrewRole `json:"role"`
	LongHaulCertified bool     `json:"longHaulCertified"`
}
