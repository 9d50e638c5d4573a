package model

import "time"

// RiderAcknowledgment is the venue's response to a rider shared on a
// specific booking. At most one row exists per booking (unique key on
// booking_id); the row is created lazily when the artist first shares
// the rider and reused for every later action on it.
//
// Fields:
//  ID              – primary key identifier.
//  BookingID       – booking the rider was shared on (unique).
//  RiderTemplateID – the rider template under review.
//  ArtistID        – artist party, denormalized from the booking.
//  VenueID         – venue party, denormalized from the booking.
//  Status          – workflow state (PENDING, ACKNOWLEDGED,
//                    MODIFICATIONS_PROPOSED, ACCEPTED, REJECTED).
//  Notes           – optional free-text notes from the venue (nullable).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type RiderAcknowledgment struct {
	ID              uint64    // rider_acknowledgments.id
	BookingID       uint64    // rider_acknowledgments.booking_id
	RiderTemplateID uint64    // rider_acknowledgments.rider_template_id
	ArtistID        uint64    // rider_acknowledgments.artist_id
	VenueID         uint64    // rider_acknowledgments.venue_id
	Status          string    // rider_acknowledgments.status
	Notes           *string   // rider_acknowledgments.notes (nullable)
	CreatedAt       time.Time // rider_acknowledgments.created_at
	UpdatedAt       time.Time // rider_acknowledgments.updated_at
}

// ModificationProposal is one entry in the negotiation log of an
// acknowledgment. Entries are append-only; the UI timeline renders them
// ordered by created_at with position breaking ties, so no two entries
// ever claim the same logical slot.
//
// Fields:
//  ID               – primary key identifier.
//  AcknowledgmentID – owning acknowledgment.
//  Position         – monotonic sequence within the acknowledgment.
//  ProposedBy       – which side authored the entry (ARTIST or VENUE).
//  FieldName        – rider field being challenged.
//  ProposedValue    – the value the proposer wants instead.
//  Reason           – why the change is requested.
//  CreatedAt        – creation timestamp.
type ModificationProposal struct {
	ID               uint64    // rider_modification_proposals.id
	AcknowledgmentID uint64    // rider_modification_proposals.acknowledgment_id
	Position         uint32    // rider_modification_proposals.position
	ProposedBy       string    // rider_modification_proposals.proposed_by
	FieldName        string    // rider_modification_proposals.field_name
	ProposedValue    string    // rider_modification_proposals.proposed_value
	Reason           string    // rider_modification_proposals.reason
	CreatedAt        time.Time // rider_modification_proposals.created_at
}
