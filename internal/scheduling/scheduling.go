package scheduling

import "time"

// LongHaulThreshold is the route duration above which a flight is long-haul.
// Long-haul flights demand Large aircraft and long-haul-certified crew.
const LongHaulThreshold = 6 * time.Hour

// AircraftSize categorizes aircraft for crew staffing and route rules.
type AircraftSize string

const (
	AircraftSmall AircraftSize = "Small"
	AircraftLarge AircraftSize = "Large"
)

// IsLongHaul reports whether a route of the given duration is long-haul.
// The threshold itself is short-haul.
func IsLongHaul(duration time.Duration) bool {
	return duration > LongHaulThreshold
}

// RequiredCrew returns the pilot and attendant counts a flight on an
// aircraft of the given size must carry.
func RequiredCrew(size AircraftSize) (pilots, attendants int) {
	if size == AircraftLarge {
		return 3, 6
	}
	return 2, 3
}

// Window is a flight's spatial and temporal footprint. Arrival is always
// departure plus route duration; it is computed, never stored.
type Window struct {
	Origin      string
	Destination string
	Departure   time.Time
	Arrival     time.Time
}

// NewWindow builds a Window, deriving arrival from the route duration.
func NewWindow(origin, destination string, departure time.Time, duration time.Duration) Window {
	return Window{
		Origin:      origin,
		Destination: destination,
		Departure:   departure,
		Arrival:     departure.Add(duration),
	}
}

// Overlaps reports whether two windows intersect in time. Touching
// endpoints do not count: a flight may depart the instant another lands.
func (w Window) Overlaps(other Window) bool {
	return other.Arrival.After(w.Departure) && other.Departure.Before(w.Arrival)
}

// Assignment is one existing non-cancelled flight commitment, for a crew
// member or an aircraft.
type Assignment struct {
	FlightID string
	Window
}

// latestPrior returns the assignment with the greatest departure strictly
// before the candidate departure, skipping the ignored flight.
func latestPrior(candidate Window, assignments []Assignment, ignoreFlightID string) (Assignment, bool) {
	var best Assignment
	found := false
	for _, a := range assignments {
		if a.FlightID == ignoreFlightID {
			continue
		}
		if !a.Departure.Before(candidate.Departure) {
			continue
		}
		if !found || a.Departure.After(best.Departure) {
			best = a
			found = true
		}
	}
	return best, found
}

// earliestNext returns the assignment with the smallest departure strictly
// after the candidate arrival, skipping the ignored flight.
func earliestNext(candidate Window, assignments []Assignment, ignoreFlightID string) (Assignment, bool) {
	var best Assignment
	found := false
	for _, a := range assignments {
		if a.FlightID == ignoreFlightID {
			continue
		}
		if !a.Departure.After(candidate.Arrival) {
			continue
		}
		if !found || a.Departure.Before(best.Departure) {
			best = a
			found = true
		}
	}
	return best, found
}
