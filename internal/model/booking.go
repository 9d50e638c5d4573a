package model

import "time"

// Booking records a venue's request to engage an artist for an event.
// Bookings are never hard-deleted; cancelled and completed rows remain
// as history. The status column only ever takes values reachable along
// the edges defined in the lifecycle package.
//
// Fields:
//  ID              – primary key identifier.
//  ArtistID        – user ID of the artist being engaged.
//  VenueID         – user ID of the venue that created the booking.
//  EventAt         – datetime of the performance (UTC).
//  VenueName       – display name of the venue location.
//  VenueAddress    – street address of the venue location.
//  OfferedFeeCents – fee offered by the venue, in cents.
//  EventDetails    – free-text description of the engagement.
//  Status          – lifecycle state (PENDING, CONFIRMED, CANCELLED, COMPLETED).
//  RiderTemplateID – optional rider attached by the artist (nullable).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64    // bookings.id
	ArtistID        uint64    // bookings.artist_id
	VenueID         uint64    // bookings.venue_id
	EventAt         time.Time // bookings.event_at
	VenueName       string    // bookings.venue_name
	VenueAddress    string    // bookings.venue_address
	OfferedFeeCents uint32    // bookings.offered_fee_cents
	EventDetails    string    // bookings.event_details
	Status          string    // bookings.status
	RiderTemplateID *uint64   // bookings.rider_template_id (nullable)
	CreatedAt       time.Time // bookings.created_at
	UpdatedAt       time.Time // bookings.updated_at
}
