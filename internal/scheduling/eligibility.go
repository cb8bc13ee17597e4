package scheduling

// CrewMember is a pilot or attendant evaluated for assignment.
type CrewMember struct {
	ID                string
	Name              string
	LongHaulCertified bool
}

// Candidate describes the flight being staffed. IgnoreFlightID names an
// already-scheduled flight whose own assignments must be skipped when its
// window is re-evaluated. Edit additionally relaxes the continuity rules,
// on the assumption the airline can reposition crew around an existing
// commitment.
type Candidate struct {
	Window         Window
	LongHaul       bool
	IgnoreFlightID string
	Edit           bool
}

// EligibleMember decides whether one crew member may be assigned to the
// candidate flight given their existing non-cancelled assignments.
//
// A member is eligible iff all of:
//  1. no assignment window intersects the candidate window
//  2. long-haul candidates require the long-haul certification
//  3. the latest prior assignment, if any, lands at the candidate origin
//  4. the earliest future assignment, if any, departs from the candidate
//     destination
//
// Edits waive rules 3 and 4.
func EligibleMember(c Candidate, m CrewMember, assignments []Assignment) bool {
	if c.LongHaul && !m.LongHaulCertified {
		return false
	}

	for _, a := range assignments {
		if a.FlightID == c.IgnoreFlightID {
			continue
		}
		if c.Window.Overlaps(a.Window) {
			return false
		}
	}

	if c.Edit {
		return true
	}

	if prev, ok := latestPrior(c.Window, assignments, c.IgnoreFlightID); ok {
		if prev.Destination != c.Window.Origin {
			return false
		}
	}
	if next, ok := earliestNext(c.Window, assignments, c.IgnoreFlightID); ok {
		if next.Origin != c.Window.Destination {
			return false
		}
	}

	return true
}

// EligibleSet filters a crew pool down to the members eligible for the
// candidate flight. History maps crew ID to that member's non-cancelled
// assignments; members with no entry have an empty history.
func EligibleSet(c Candidate, pool []CrewMember, history map[string][]Assignment) []string {
	var ids []string
	for _, m := range pool {
		if EligibleMember(c, m, history[m.ID]) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// SelectableSet is the crew-screen pool: eligible members plus members
// already assigned to the flight, who stay selectable even when other
// schedule changes have broken their continuity.
func SelectableSet(c Candidate, pool []CrewMember, history map[string][]Assignment, assigned map[string]bool) []string {
	var ids []string
	for _, m := range pool {
		if assigned[m.ID] || EligibleMember(c, m, history[m.ID]) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}
