package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrScheduleOverlap signals a time conflict with another flight on the
	// same aircraft.
	ErrScheduleOverlap = errors.New("aircraft schedule overlap")
	// ErrNotPositioned signals that the aircraft's previous flight does not
	// land at the candidate origin.
	ErrNotPositioned = errors.New("aircraft not positioned at origin")
	// ErrSuccessorMismatch signals that the aircraft's next flight does not
	// depart from the candidate destination.
	ErrSuccessorMismatch = errors.New("aircraft next flight departs elsewhere")
)

// CheckRotation validates that scheduling the candidate on an aircraft
// keeps the aircraft's flight sequence a continuous chain of airports.
// Flights are the aircraft's non-cancelled flights. Overlap is always
// rejected; the positioning rules apply only to brand-new flights, since
// an edited flight's aircraft is assumed already correctly positioned.
func CheckRotation(c Candidate, flights []Assignment) error {
	for _, f := range flights {
		if f.FlightID == c.IgnoreFlightID {
			continue
		}
		if c.Window.Overlaps(f.Window) {
			return fmt.Errorf("%w: conflicts with flight %s (%s-%s)",
				ErrScheduleOverlap, f.FlightID, f.Origin, f.Destination)
		}
	}

	if c.Edit {
		return nil
	}

	if prev, ok := latestArrivedBefore(c.Window, flights, c.IgnoreFlightID); ok {
		if prev.Destination != c.Window.Origin {
			return fmt.Errorf("%w: last flight %s lands at %s, candidate departs from %s",
				ErrNotPositioned, prev.FlightID, prev.Destination, c.Window.Origin)
		}
	}
	if next, ok := earliestDepartingAfter(c.Window, flights, c.IgnoreFlightID); ok {
		if next.Origin != c.Window.Destination {
			return fmt.Errorf("%w: next flight %s departs from %s, candidate lands at %s",
				ErrSuccessorMismatch, next.FlightID, next.Origin, c.Window.Destination)
		}
	}

	return nil
}

// latestArrivedBefore finds the flight with the greatest arrival at or
// before the candidate departure.
func latestArrivedBefore(candidate Window, flights []Assignment, ignoreFlightID string) (Assignment, bool) {
	var best Assignment
	found := false
	for _, f := range flights {
		if f.FlightID == ignoreFlightID {
			continue
		}
		if f.Arrival.After(candidate.Departure) {
			continue
		}
		if !found || f.Arrival.After(best.Arrival) {
			best = f
			found = true
		}
	}
	return best, found
}

// earliestDepartingAfter finds the flight with the smallest departure at or
// after the candidate arrival.
func earliestDepartingAfter(candidate Window, flights []Assignment, ignoreFlightID string) (Assignment, bool) {
	var best Assignment
	found := false
	for _, f := range flights {
		if f.FlightID == ignoreFlightID {
			continue
		}
		if f.Departure.Before(candidate.Arrival) {
			continue
		}
		if !found || f.Departure.Before(best.Departure) {
			best = f
			found = true
		}
	}
	return best, found
}
