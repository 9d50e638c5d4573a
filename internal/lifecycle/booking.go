package lifecycle

import "time"

// BookingStatus enumerates the states a booking moves through. A
// booking starts PENDING when the venue creates it and only ever
// advances along the edges listed in bookingEdges.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// bookingEdge keys the transition table by (from, to) pair.
type bookingEdge struct {
	from BookingStatus
	to   BookingStatus
}

// bookingRule describes who may drive an edge and whether it carries an
// additional time guard.
type bookingRule struct {
	artist bool // the artist on the booking may drive this edge
	venue  bool // the venue on the booking may drive this edge
	// eventPassed requires the event datetime to be in the past. Used
	// for CONFIRMED -> COMPLETED: completion is a manual action either
	// party takes once the event has happened.
	eventPassed bool
}

// bookingEdges is the complete set of legal booking transitions. Any
// (from, to) pair missing here is rejected with ErrConflict, which also
// covers repeating the current status: there are no self edges.
var bookingEdges = map[bookingEdge]bookingRule{
	{BookingPending, BookingConfirmed}:   {artist: true},
	{BookingPending, BookingCancelled}:   {artist: true},
	{BookingConfirmed, BookingCancelled}: {artist: true, venue: true},
	{BookingConfirmed, BookingCompleted}: {artist: true, venue: true, eventPassed: true},
}

// CanTransitionBooking checks whether caller may move a booking from
// one status to another. eventAt is the booked event datetime and now
// the current time; both only matter for edges guarded by eventPassed.
// It returns ErrConflict for an edge the state machine does not define
// (including from == to) and ErrForbidden when the edge exists but the
// caller's side may not drive it.
func CanTransitionBooking(from, to BookingStatus, caller Party, eventAt, now time.Time) error {
	if !to.Valid() {
		return ErrValidation
	}
	rule, ok := bookingEdges[bookingEdge{from, to}]
	if !ok {
		return ErrConflict
	}
	allowed := (caller == PartyArtist && rule.artist) || (caller == PartyVenue && rule.venue)
	if !allowed {
		return ErrForbidden
	}
	if rule.eventPassed && now.Before(eventAt) {
		return ErrConflict
	}
	return nil
}
