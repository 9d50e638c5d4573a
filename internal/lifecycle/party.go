package lifecycle

// Party identifies which side of a booking performs an action. The
// values match the role claim carried in access tokens.
type Party string

const (
	PartyArtist Party = "ARTIST" // the performing artist on the booking
	PartyVenue  Party = "VENUE"  // the venue that requested the booking
)

// Counterpart returns the other side of the booking. It is used for
// turn-taking checks and for addressing notifications.
func (p Party) Counterpart() Party {
	if p == PartyArtist {
		return PartyVenue
	}
	return PartyArtist
}

// Valid reports whether p is one of the two known parties.
func (p Party) Valid() bool {
	return p == PartyArtist || p == PartyVenue
}

// PartyOf resolves the caller's side of a booking from user IDs. It
// returns ErrForbidden when the caller is neither the artist nor the
// venue on the booking.
func PartyOf(callerID, artistID, venueID uint64) (Party, error) {
	switch callerID {
	case artistID:
		return PartyArtist, nil
	case venueID:
		return PartyVenue, nil
	}
	return "", ErrForbidden
}
