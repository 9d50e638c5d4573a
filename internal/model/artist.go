package model

import "time"

// ArtistProfile is the public-facing profile an artist maintains so
// venues can find and evaluate them. One profile per artist user.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owning artist user.
//  StageName    – name the artist performs under.
//  Genre        – primary genre, free text (e.g. "jazz", "indie rock").
//  Bio          – free-text biography shown on the public page.
//  HomeCity     – city the artist is based in, used for search.
//  BaseFeeCents – indicative fee in cents, shown to browsing venues.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type ArtistProfile struct {
	ID           uint64    // artist_profiles.id
	UserID       uint64    // artist_profiles.user_id
	StageName    string    // artist_profiles.stage_name
	Genre        string    // artist_profiles.genre
	Bio          string    // artist_profiles.bio
	HomeCity     string    // artist_profiles.home_city
	BaseFeeCents uint32    // artist_profiles.base_fee_cents
	CreatedAt    time.Time // artist_profiles.created_at
	UpdatedAt    time.Time // artist_profiles.updated_at
}
