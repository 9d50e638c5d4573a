package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateProposal(t *testing.T) {
	assert.NoError(t, ValidateProposal("pa_system", "house PA acceptable", "venue has in-house rig"))
	assert.ErrorIs(t, ValidateProposal("", "x", "y"), ErrValidation)
	assert.ErrorIs(t, ValidateProposal("f", "", "y"), ErrValidation)
	assert.ErrorIs(t, ValidateProposal("f", "x", ""), ErrValidation)
	assert.ErrorIs(t, ValidateProposal("   ", "x", "y"), ErrValidation)
}

func TestCanAcknowledge(t *testing.T) {
	assert.NoError(t, CanAcknowledge(AckPending, PartyVenue))
	assert.ErrorIs(t, CanAcknowledge(AckPending, PartyArtist), ErrForbidden)
	assert.ErrorIs(t, CanAcknowledge(AckModificationsProposed, PartyVenue), ErrConflict)
	assert.ErrorIs(t, CanAcknowledge(AckAccepted, PartyVenue), ErrConflict)
}

func TestCanPropose(t *testing.T) {
	// The opening proposal must come from the venue.
	assert.NoError(t, CanPropose(AckPending, "", false, PartyVenue))
	assert.ErrorIs(t, CanPropose(AckPending, "", false, PartyArtist), ErrForbidden)

	// Turn-taking: the last proposer may not propose again before the
	// other side has answered.
	assert.ErrorIs(t, CanPropose(AckModificationsProposed, PartyVenue, true, PartyVenue), ErrConflict)
	assert.ErrorIs(t, CanPropose(AckModificationsProposed, PartyArtist, true, PartyArtist), ErrConflict)

	// Counterparts may always take their turn.
	assert.NoError(t, CanPropose(AckModificationsProposed, PartyVenue, true, PartyArtist))
	assert.NoError(t, CanPropose(AckModificationsProposed, PartyArtist, true, PartyVenue))

	// Nothing may be proposed once the acknowledgment is resolved.
	assert.ErrorIs(t, CanPropose(AckAccepted, PartyVenue, true, PartyArtist), ErrConflict)
	assert.ErrorIs(t, CanPropose(AckRejected, PartyVenue, true, PartyArtist), ErrConflict)
	assert.ErrorIs(t, CanPropose(AckAcknowledged, PartyVenue, true, PartyArtist), ErrConflict)

	assert.ErrorIs(t, CanPropose(AckPending, "", false, Party("ADMIN")), ErrForbidden)
}

func TestCanRespond(t *testing.T) {
	// Only meaningful while modifications are on the table.
	assert.ErrorIs(t, CanRespond(AckPending, PartyVenue, PartyArtist), ErrConflict)
	assert.ErrorIs(t, CanRespond(AckAccepted, PartyVenue, PartyArtist), ErrConflict)

	// The counterpart of the last proposer responds; the proposer may
	// not answer itself.
	assert.NoError(t, CanRespond(AckModificationsProposed, PartyVenue, PartyArtist))
	assert.NoError(t, CanRespond(AckModificationsProposed, PartyArtist, PartyVenue))
	assert.ErrorIs(t, CanRespond(AckModificationsProposed, PartyVenue, PartyVenue), ErrForbidden)
	assert.ErrorIs(t, CanRespond(AckModificationsProposed, PartyArtist, PartyArtist), ErrForbidden)
}

func TestCanFinalize(t *testing.T) {
	assert.NoError(t, CanFinalize(AckModificationsProposed, AckAccepted))
	assert.NoError(t, CanFinalize(AckPending, AckRejected))
	assert.ErrorIs(t, CanFinalize(AckModificationsProposed, AckPending), ErrValidation)
	assert.ErrorIs(t, CanFinalize(AckModificationsProposed, AckAcknowledged), ErrValidation)
	assert.ErrorIs(t, CanFinalize(AckAccepted, AckRejected), ErrConflict)
	assert.ErrorIs(t, CanFinalize(AckRejected, AckAccepted), ErrConflict)
}

// Walk the negotiation loop of the second spec scenario: venue opens a
// proposal, the artist counters, the venue accepts.
func TestNegotiationRoundTrip(t *testing.T) {
	status := AckPending

	// Venue challenges a rider field.
	assert.NoError(t, CanPropose(status, "", false, PartyVenue))
	status = AckModificationsProposed
	last := PartyVenue

	// Venue cannot immediately pile on a second proposal.
	assert.ErrorIs(t, CanPropose(status, last, true, PartyVenue), ErrConflict)

	// Artist counter-proposes; the state name does not change, only the
	// log grows and the turn flips.
	assert.NoError(t, CanRespond(status, last, PartyArtist))
	assert.NoError(t, CanPropose(status, last, true, PartyArtist))
	last = PartyArtist

	// Venue accepts the counter.
	assert.NoError(t, CanRespond(status, last, PartyVenue))
	assert.NoError(t, CanFinalize(status, AckAccepted))
}
