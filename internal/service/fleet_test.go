package service

import (
	"testing"
	"time"

	"github.com/matan25/flytau/internal/database"
	"github.com/matan25/flytau/internal/status"
	"github.com/stretchr/testify/assert"
)

func TestEditableFlight(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		flight  database.Flight
		wantErr string
	}{
		{
			name:   "active flight departing later",
			flight: database.Flight{Status: status.FlightActive, DepartureTime: now.Add(48 * time.Hour)},
		},
		{
			name:   "full flight departing later",
			flight: database.Flight{Status: status.FlightFullOccupied, DepartureTime: now.Add(48 * time.Hour)},
		},
		{
			name:    "cancelled flight",
			flight:  database.Flight{Status: status.FlightCancelled, DepartureTime: now.Add(48 * time.Hour)},
			wantErr: "flight is cancelled",
		},
		{
			name:    "departed flight still marked active",
			flight:  database.Flight{Status: status.FlightActive, DepartureTime: now.Add(-time.Hour)},
			wantErr: "flight has already departed",
		},
		{
			name:    "flight departing right now",
			flight:  database.Flight{Status: status.FlightActive, DepartureTime: now},
			wantErr: "flight has already departed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := editableFlight(&tt.flight, now)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestFutureDeparture(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, futureDeparture(now.Add(time.Minute), now))
	assert.EqualError(t, futureDeparture(now, now), "departure must be in the future")
	assert.EqualError(t, futureDeparture(now.Add(-24*time.Hour), now), "departure must be in the future")
}
