package model

import "time"

// Contract is a generated legal document tied to a booking. Content is
// a text snapshot rendered at generation time and never edited in
// place: regenerating produces a new row with the next version number,
// which is what the version-comparison feature relies on.
//
// Fields:
//  ID              – primary key identifier.
//  BookingID       – booking the contract covers.
//  RiderTemplateID – rider snapshot source, if one was attached (nullable).
//  Number          – UUID contract number printed on the document.
//  Type            – contract type (e.g. "performance").
//  Title           – document title.
//  Version         – 1-based version within the booking.
//  Content         – rendered text snapshot, immutable.
//  Status          – sign-off state (DRAFT, PENDING_SIGNATURES, SIGNED,
//                    REJECTED, CANCELLED).
//  RejectReason    – free-text reason recorded on rejection (nullable).
//  ArtistSignedAt  – when the artist signed; set at most once (nullable).
//  VenueSignedAt   – when the venue signed; set at most once (nullable).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Contract struct {
	ID              uint64     // contracts.id
	BookingID       uint64     // contracts.booking_id
	RiderTemplateID *uint64    // contracts.rider_template_id (nullable)
	Number          string     // contracts.number
	Type            string     // contracts.type
	Title           string     // contracts.title
	Version         uint32     // contracts.version
	Content         string     // contracts.content
	Status          string     // contracts.status
	RejectReason    *string    // contracts.reject_reason (nullable)
	ArtistSignedAt  *time.Time // contracts.artist_signed_at (nullable)
	VenueSignedAt   *time.Time // contracts.venue_signed_at (nullable)
	CreatedAt       time.Time  // contracts.created_at
	UpdatedAt       time.Time  // contracts.updated_at
}
