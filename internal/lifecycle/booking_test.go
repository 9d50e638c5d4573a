package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionBooking(t *testing.T) {
	eventAt := time.Date(2026, 2, 15, 20, 0, 0, 0, time.UTC)
	before := eventAt.Add(-24 * time.Hour)
	after := eventAt.Add(24 * time.Hour)

	cases := []struct {
		name   string
		from   BookingStatus
		to     BookingStatus
		caller Party
		now    time.Time
		want   error
	}{
		{"artist confirms pending", BookingPending, BookingConfirmed, PartyArtist, before, nil},
		{"artist declines pending", BookingPending, BookingCancelled, PartyArtist, before, nil},
		{"venue may not confirm", BookingPending, BookingConfirmed, PartyVenue, before, ErrForbidden},
		{"venue may not decline pending", BookingPending, BookingCancelled, PartyVenue, before, ErrForbidden},
		{"artist cancels confirmed", BookingConfirmed, BookingCancelled, PartyArtist, before, nil},
		{"venue cancels confirmed", BookingConfirmed, BookingCancelled, PartyVenue, before, nil},
		{"complete after event", BookingConfirmed, BookingCompleted, PartyVenue, after, nil},
		{"complete before event", BookingConfirmed, BookingCompleted, PartyArtist, before, ErrConflict},
		{"revive cancelled", BookingCancelled, BookingConfirmed, PartyArtist, before, ErrConflict},
		{"cancel completed", BookingCompleted, BookingCancelled, PartyVenue, after, ErrConflict},
		{"pending to completed skips confirm", BookingPending, BookingCompleted, PartyArtist, after, ErrConflict},
		{"repeat confirmed is a conflict", BookingConfirmed, BookingConfirmed, PartyArtist, before, ErrConflict},
		{"repeat pending is a conflict", BookingPending, BookingPending, PartyArtist, before, ErrConflict},
		{"unknown status", BookingConfirmed, BookingStatus("ARCHIVED"), PartyArtist, before, ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CanTransitionBooking(tc.from, tc.to, tc.caller, eventAt, tc.now)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

// Every status reachable from PENDING must itself be a valid status and
// terminal states must have no outgoing edges at all.
func TestBookingEdgesAreClosed(t *testing.T) {
	for edge := range bookingEdges {
		require.True(t, edge.from.Valid(), "edge from unknown status %q", edge.from)
		require.True(t, edge.to.Valid(), "edge to unknown status %q", edge.to)
		assert.False(t, edge.from.Terminal(), "terminal status %q must not have outgoing edges", edge.from)
		assert.NotEqual(t, edge.from, edge.to, "self edges are not allowed")
	}
}

func TestPartyOf(t *testing.T) {
	p, err := PartyOf(7, 7, 9)
	require.NoError(t, err)
	assert.Equal(t, PartyArtist, p)

	p, err = PartyOf(9, 7, 9)
	require.NoError(t, err)
	assert.Equal(t, PartyVenue, p)

	_, err = PartyOf(11, 7, 9)
	assert.ErrorIs(t, err, ErrForbidden)
}
