// Package status holds the derivation rules that keep seat, flight, and
// order statuses consistent with the underlying ticket and order facts.
// The same rules run as SQL inside the mutating transactions; this package
// is the application-level mirror the service and tests share.
package status

import (
	"math"
	"time"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "Available"
	SeatSold      SeatStatus = "Sold"
	SeatBlocked   SeatStatus = "Blocked"
)

type FlightStatus string

const (
	FlightActive       FlightStatus = "Active"
	FlightFullOccupied FlightStatus = "Full-Occupied"
	FlightCompleted    FlightStatus = "Completed"
	FlightCancelled    FlightStatus = "Cancelled"
)

type OrderStatus string

const (
	OrderActive            OrderStatus = "Active"
	OrderCompleted         OrderStatus = "Completed"
	OrderCancelledCustomer OrderStatus = "Cancelled-Customer"
	OrderCancelledSystem   OrderStatus = "Cancelled-System"
)

const (
	// CustomerCancelWindow is the minimum lead time before departure for a
	// customer-initiated cancellation.
	CustomerCancelWindow = 36 * time.Hour
	// ManagerCancelWindow is the minimum lead time before departure for a
	// manager to cancel a whole flight.
	ManagerCancelWindow = 72 * time.Hour
	// OrderAutoCompleteWindow is how close to departure an Active order is
	// considered finalized.
	OrderAutoCompleteWindow = 36 * time.Hour
)

// Live reports whether an order still claims its seats.
func (s OrderStatus) Live() bool {
	return s != OrderCancelledCustomer && s != OrderCancelledSystem
}

// NextSeatStatus derives a seat's status from its current status and the
// statuses of the orders holding tickets on it. Blocked is an operational
// hold and is never auto-cleared.
func NextSeatStatus(current SeatStatus, ticketOrders []OrderStatus) SeatStatus {
	if current == SeatBlocked {
		return SeatBlocked
	}

	live := false
	systemCancelled := false
	for _, o := range ticketOrders {
		if o.Live() {
			live = true
		}
		if o == OrderCancelledSystem {
			systemCancelled = true
		}
	}

	switch current {
	case SeatAvailable:
		if live {
			return SeatSold
		}
		if systemCancelled {
			return SeatBlocked
		}
		return SeatAvailable
	case SeatSold:
		if !live {
			return SeatAvailable
		}
		return SeatSold
	}
	return current
}

// NextFlightStatus derives a flight's status from seat occupancy and the
// clock. Cancelled and Completed are terminal and never auto-reverted.
func NextFlightStatus(current FlightStatus, availableSeats int, arrivalPassed bool) FlightStatus {
	if current == FlightCancelled || current == FlightCompleted {
		return current
	}
	if arrivalPassed {
		return FlightCompleted
	}
	if availableSeats == 0 {
		return FlightFullOccupied
	}
	return FlightActive
}

// NextOrderStatus derives an order's status. Only Active orders move: a
// cancelled flight drags them to Cancelled-System, and an imminent
// departure finalizes them to Completed.
func NextOrderStatus(current OrderStatus, flight FlightStatus, departure, now time.Time) OrderStatus {
	if current != OrderActive {
		return current
	}
	if flight == FlightCancelled {
		return OrderCancelledSystem
	}
	if departure.Sub(now) <= OrderAutoCompleteWindow {
		return OrderCompleted
	}
	return OrderActive
}

// CanCustomerCancel reports whether an order may still be cancelled by the
// customer: strictly more than 36 hours before departure.
func CanCustomerCancel(departure, now time.Time) bool {
	return departure.Sub(now) > CustomerCancelWindow
}

// CanManagerCancel reports whether a manager may cancel the flight: at
// least 72 hours before departure.
func CanManagerCancel(departure, now time.Time) bool {
	return departure.Sub(now) >= ManagerCancelWindow
}

// Quote is the money outcome of a customer cancellation.
type Quote struct {
	Fee    float64 `json:"fee"`
	Refund float64 `json:"refund"`
}

// CancellationQuote computes the 5% non-refundable fee on the originally
// paid total, rounded to cents, and the remaining refund floored at zero.
func CancellationQuote(total float64) Quote {
	fee := roundCents(total * 0.05)
	refund := total - fee
	if refund < 0 {
		refund = 0
	}
	return Quote{Fee: fee, Refund: roundCents(refund)}
}

func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}
