package model

import "time"

// RiderTemplate is an artist's reusable statement of technical,
// hospitality and financial requirements. Bookings and contracts
// reference the template by ID rather than copying it; by convention a
// template is not edited once a finalized contract references it.
//
// Fields:
//  ID           – primary key identifier.
//  ArtistID     – owning artist user; templates are owned exclusively.
//  Name         – template name (e.g. "Full band", "Acoustic duo").
//  Sound        – sound / PA requirements.
//  Lighting     – lighting requirements.
//  Stage        – stage and backline requirements.
//  Hospitality  – hospitality requirements (green room, catering).
//  PaymentTerms – payment terms (deposit, settlement window).
//  Extras       – free-text extensions beyond the structured fields.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type RiderTemplate struct {
	ID           uint64    // rider_templates.id
	ArtistID     uint64    // rider_templates.artist_id
	Name         string    // rider_templates.name
	Sound        string    // rider_templates.sound
	Lighting     string    // rider_templates.lighting
	Stage        string    // rider_templates.stage
	Hospitality  string    // rider_templates.hospitality
	PaymentTerms string    // rider_templates.payment_terms
	Extras       string    // rider_templates.extras
	CreatedAt    time.Time // rider_templates.created_at
	UpdatedAt    time.Time // rider_templates.updated_at
}
