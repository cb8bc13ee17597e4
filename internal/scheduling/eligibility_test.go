package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func window(origin, destination string, depOffset, durMinutes int) Window {
	dep := base.Add(time.Duration(depOffset) * time.Minute)
	return NewWindow(origin, destination, dep, time.Duration(durMinutes)*time.Minute)
}

func TestWindow_Overlaps(t *testing.T) {
	this := window("TLV", "JFK", 0, 120)

	tests := []struct {
		name     string
		other    Window
		overlaps bool
	}{
		{"fully inside", window("A", "B", 30, 30), true},
		{"identical", window("A", "B", 0, 120), true},
		{"straddles start", window("A", "B", -30, 60), true},
		{"straddles end", window("A", "B", 90, 60), true},
		{"back to back before", window("A", "B", -60, 60), false},
		{"back to back after", window("A", "B", 120, 60), false},
		{"well before", window("A", "B", -300, 60), false},
		{"well after", window("A", "B", 500, 60), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, this.Overlaps(tt.other))
			assert.Equal(t, tt.overlaps, tt.other.Overlaps(this))
		})
	}
}

func TestIsLongHaul(t *testing.T) {
	assert.False(t, IsLongHaul(5*time.Hour))
	assert.False(t, IsLongHaul(6*time.Hour))
	assert.True(t, IsLongHaul(6*time.Hour+time.Minute))
}

func TestRequiredCrew(t *testing.T) {
	p, a := RequiredCrew(AircraftSmall)
	assert.Equal(t, 2, p)
	assert.Equal(t, 3, a)

	p, a = RequiredCrew(AircraftLarge)
	assert.Equal(t, 3, p)
	assert.Equal(t, 6, a)
}

func TestEligibleMember(t *testing.T) {
	certified := CrewMember{ID: "P001", Name: "Dana", LongHaulCertified: true}
	uncertified := CrewMember{ID: "P002", Name: "Omer"}

	tests := []struct {
		name        string
		candidate   Candidate
		member      CrewMember
		assignments []Assignment
		eligible    bool
	}{
		{
			name:      "no history",
			candidate: Candidate{Window: window("TLV", "JFK", 0, 120)},
			member:    uncertified,
			eligible:  true,
		},
		{
			name:      "long haul needs certification",
			candidate: Candidate{Window: window("TLV", "JFK", 0, 420), LongHaul: true},
			member:    uncertified,
			eligible:  false,
		},
		{
			name:      "long haul with certification",
			candidate: Candidate{Window: window("TLV", "JFK", 0, 420), LongHaul: true},
			member:    certified,
			eligible:  true,
		},
		{
			name:      "overlapping assignment",
			candidate: Candidate{Window: window("TLV", "JFK", 0, 120)},
			member:    uncertified,
			assignments: []Assignment{
				{FlightID: "FT001", Window: window("TLV", "CDG", 60, 120)},
			},
			eligible: false,
		},
		{
			name:      "back to back is allowed",
			candidate: Candidate{Window: window("JFK", "TLV", 120, 120)},
			member:    uncertified,
			assignments: []Assignment{
				{FlightID: "FT001", Window: window("TLV", "JFK", 0, 120)},
			},
			eligible: true,
		},
		{
			name:      "prior lands elsewhere",
			candidate: Candidate{Window: window("LAX", "TLV", 300, 120)},
			member:    uncertified,
			assignments: []Assignment{
				{FlightID: "FT001", Window: window("TLV", "JFK", 0, 120)},
			},
			eligible: false,
		},
		{
			name:      "prior lands at origin",
			candidate: Candidate{Window: window("JFK", "TLV", 300, 120)},
			member:    uncertified,
			assignments: []Assignment{
				{FlightID: "FT001", Window: window("TLV", "JFK", 0, 120)},
			},
			eligible: true,
		},
		{
			name:      "next departs elsewhere",
			candidate: Candidate{Window: window("TLV", "JFK", 0, 120)},
			member:    uncertified,
			assignments: []Assignment{
				{FlightID: "FT002", Window: window("LAX", "TLV", 600, 120)},
			},
			eligible: false,
		},
		{
			name:      "next departs from destination",
			candidate: Candidate{Window: window("TLV", "JFK", 0, 120)},
			member:    uncertified,
			assignments: []Assignment{
				{FlightID: "FT002", Window: window("JFK", "TLV", 600, 120)},
			},
			eligible: true,
		},
		{
			name: "edit waives continuity",
			candidate: Candidate{
				Window:         window("LAX", "TLV", 300, 120),
				IgnoreFlightID: "FT009",
				Edit:           true,
			},
			member: uncertified,
			assignments: []Assignment{
				{FlightID: "FT001", Window: window("TLV", "JFK", 0, 120)},
			},
			eligible: true,
		},
		{
			name: "edit still rejects overlap",
			candidate: Candidate{
				Window:         window("TLV", "JFK", 0, 120),
				IgnoreFlightID: "FT009",
				Edit:           true,
			},
			member: uncertified,
			assignments: []Assignment{
				{FlightID: "FT001", Window: window("TLV", "CDG", 60, 120)},
			},
			eligible: false,
		},
		{
			name: "ignored flight is skipped even without edit mode",
			candidate: Candidate{
				Window:         window("TLV", "JFK", 0, 120),
				IgnoreFlightID: "FT001",
			},
			member: uncertified,
			assignments: []Assignment{
				{FlightID: "FT001", Window: window("TLV", "JFK", 0, 120)},
			},
			eligible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EligibleMember(tt.candidate, tt.member, tt.assignments)
			assert.Equal(t, tt.eligible, got)
		})
	}
}

func TestEligibleSet(t *testing.T) {
	candidate := Candidate{Window: window("TLV", "JFK", 0, 120)}
	pool := []CrewMember{
		{ID: "A001", Name: "Noa"},
		{ID: "A002", Name: "Yuval"},
		{ID: "A003", Name: "Gil"},
	}
	history := map[string][]Assignment{
		"A002": {{FlightID: "FT005", Window: window("TLV", "CDG", 30, 120)}},
	}

	ids := EligibleSet(candidate, pool, history)
	require.Len(t, ids, 2)
	assert.Equal(t, []string{"A001", "A003"}, ids)
}

func TestSelectableSet_GrandfathersAssigned(t *testing.T) {
	candidate := Candidate{Window: window("TLV", "JFK", 0, 120)}
	pool := []CrewMember{
		{ID: "A001", Name: "Noa"},
		{ID: "A002", Name: "Yuval"},
	}
	// A002 clashes with another flight but is already on this one.
	history := map[string][]Assignment{
		"A002": {{FlightID: "FT005", Window: window("TLV", "CDG", 30, 120)}},
	}
	assigned := map[string]bool{"A002": true}

	ids := SelectableSet(candidate, pool, history, assigned)
	assert.Equal(t, []string{"A001", "A002"}, ids)
}
