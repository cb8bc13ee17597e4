package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextSeatStatus(t *testing.T) {
	tests := []struct {
		name    string
		current SeatStatus
		orders  []OrderStatus
		want    SeatStatus
	}{
		{"available no tickets", SeatAvailable, nil, SeatAvailable},
		{"available with active ticket", SeatAvailable, []OrderStatus{OrderActive}, SeatSold},
		{"available with completed ticket", SeatAvailable, []OrderStatus{OrderCompleted}, SeatSold},
		{"available with system cancelled ticket", SeatAvailable, []OrderStatus{OrderCancelledSystem}, SeatBlocked},
		{"available with customer cancelled ticket", SeatAvailable, []OrderStatus{OrderCancelledCustomer}, SeatAvailable},
		{"sold with live ticket stays", SeatSold, []OrderStatus{OrderActive}, SeatSold},
		{"sold with only customer cancelled releases", SeatSold, []OrderStatus{OrderCancelledCustomer}, SeatAvailable},
		{"sold with no tickets releases", SeatSold, nil, SeatAvailable},
		{"blocked never auto cleared", SeatBlocked, nil, SeatBlocked},
		{"blocked stays despite live ticket", SeatBlocked, []OrderStatus{OrderActive}, SeatBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextSeatStatus(tt.current, tt.orders))
		})
	}
}

func TestNextSeatStatus_Idempotent(t *testing.T) {
	cases := []struct {
		current SeatStatus
		orders  []OrderStatus
	}{
		{SeatAvailable, []OrderStatus{OrderActive}},
		{SeatSold, []OrderStatus{OrderCancelledCustomer}},
		{SeatAvailable, []OrderStatus{OrderCancelledSystem}},
		{SeatBlocked, nil},
	}
	for _, c := range cases {
		once := NextSeatStatus(c.current, c.orders)
		twice := NextSeatStatus(once, c.orders)
		assert.Equal(t, once, twice)
	}
}

func TestNextFlightStatus(t *testing.T) {
	tests := []struct {
		name          string
		current       FlightStatus
		available     int
		arrivalPassed bool
		want          FlightStatus
	}{
		{"fills up", FlightActive, 0, false, FlightFullOccupied},
		{"reverts when seat frees", FlightFullOccupied, 1, false, FlightActive},
		{"completes after arrival", FlightActive, 3, true, FlightCompleted},
		{"full flight completes after arrival", FlightFullOccupied, 0, true, FlightCompleted},
		{"cancelled is terminal", FlightCancelled, 0, true, FlightCancelled},
		{"completed is terminal", FlightCompleted, 5, false, FlightCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextFlightStatus(tt.current, tt.available, tt.arrivalPassed))
		})
	}
}

func TestNextOrderStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		current   OrderStatus
		flight    FlightStatus
		departure time.Time
		want      OrderStatus
	}{
		{"far from departure stays active", OrderActive, FlightActive, now.Add(100 * time.Hour), OrderActive},
		{"within 36h completes", OrderActive, FlightActive, now.Add(30 * time.Hour), OrderCompleted},
		{"exactly 36h completes", OrderActive, FlightActive, now.Add(36 * time.Hour), OrderCompleted},
		{"cancelled flight wins over completion", OrderActive, FlightCancelled, now.Add(30 * time.Hour), OrderCancelledSystem},
		{"customer cancellation is final", OrderCancelledCustomer, FlightCancelled, now.Add(30 * time.Hour), OrderCancelledCustomer},
		{"completed never moves", OrderCompleted, FlightCancelled, now, OrderCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextOrderStatus(tt.current, tt.flight, tt.departure, now))
		})
	}
}

func TestCancellationWindows(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	assert.True(t, CanCustomerCancel(now.Add(40*time.Hour), now))
	assert.False(t, CanCustomerCancel(now.Add(30*time.Hour), now))
	assert.False(t, CanCustomerCancel(now.Add(36*time.Hour), now))

	assert.True(t, CanManagerCancel(now.Add(72*time.Hour), now))
	assert.True(t, CanManagerCancel(now.Add(100*time.Hour), now))
	assert.False(t, CanManagerCancel(now.Add(71*time.Hour), now))
}

func TestCancellationQuote(t *testing.T) {
	tests := []struct {
		total  float64
		fee    float64
		refund float64
	}{
		{200, 10, 190},
		{999.99, 50, 949.99},
		{0.10, 0.01, 0.09},
		{0, 0, 0},
	}

	for _, tt := range tests {
		q := CancellationQuote(tt.total)
		assert.InDelta(t, tt.fee, q.Fee, 0.0001)
		assert.InDelta(t, tt.refund, q.Refund, 0.0001)
	}
}
