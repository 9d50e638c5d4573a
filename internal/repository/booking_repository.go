package repository

import (
	"context"
	"database/sql"

	"github.com/stagelink/artist-venue-booking/internal/lifecycle"
	"github.com/stagelink/artist-venue-booking/internal/model"
)

// BookingRepo provides persistence for bookings. Status moves only
// through UpdateStatusCAS so a lost race between two concurrent
// transitions surfaces as a conflict instead of a silent overwrite.
// Bookings are never deleted; cancelled and completed rows stay as
// history.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingCols = `id, artist_id, venue_id, event_at, venue_name, venue_address,
	offered_fee_cents, event_details, status, rider_template_id, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var (
		b     model.Booking
		rider sql.NullInt64
	)
	err := row.Scan(&b.ID, &b.ArtistID, &b.VenueID, &b.EventAt, &b.VenueName,
		&b.VenueAddress, &b.OfferedFeeCents, &b.EventDetails, &b.Status,
		&rider, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	if rider.Valid {
		id := uint64(rider.Int64)
		b.RiderTemplateID = &id
	}
	return b, nil
}

// Create inserts a new booking in PENDING state and populates the
// generated ID and timestamps on the provided record.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
		(artist_id, venue_id, event_at, venue_name, venue_address,
		 offered_fee_cents, event_details, status, rider_template_id)
		VALUES (?,?,?,?,?,?,?,?,?)`
	var rider any
	if b.RiderTemplateID != nil {
		rider = *b.RiderTemplateID
	}
	res, err := r.db.ExecContext(ctx, q,
		b.ArtistID, b.VenueID, b.EventAt.UTC(), b.VenueName, b.VenueAddress,
		b.OfferedFeeCents, b.EventDetails, string(lifecycle.BookingPending), rider)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*b = fresh
	return nil
}

// GetByID fetches a booking; lifecycle.ErrNotFound when no row exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return b, lifecycle.ErrNotFound
	}
	return b, err
}

// GetForUpdateTx loads a booking inside a transaction with a row lock,
// so a status decision and its write happen against a stable snapshot.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE id=? FOR UPDATE", id))
	if err == sql.ErrNoRows {
		return b, lifecycle.ErrNotFound
	}
	return b, err
}

// UpdateStatusCAS moves a booking from one status to another with a
// compare-and-swap on the current status. Zero rows affected means
// another caller won the race and the transition no longer applies;
// that is reported as lifecycle.ErrConflict.
func (r *BookingRepo) UpdateStatusCAS(ctx context.Context, tx *sql.Tx, id uint64, from, to lifecycle.BookingStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=? AND status=?",
		string(to), id, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return lifecycle.ErrConflict
	}
	return nil
}

// AttachRiderTx points a booking at one of the artist's rider
// templates. The attachment is what the share step snapshots into the
// acknowledgment, so it only applies while no acknowledgment exists
// yet; callers enforce that ordering.
func (r *BookingRepo) AttachRiderTx(ctx context.Context, tx *sql.Tx, id, riderTemplateID uint64) error {
	// No RowsAffected check: MySQL reports zero changed rows when the
	// same rider is attached twice, and callers have already locked the
	// booking row.
	_, err := tx.ExecContext(ctx,
		"UPDATE bookings SET rider_template_id=? WHERE id=?", riderTemplateID, id)
	return err
}

// ListByArtist returns the artist's bookings, newest first.
func (r *BookingRepo) ListByArtist(ctx context.Context, artistID uint64) ([]model.Booking, error) {
	return r.list(ctx, "artist_id", artistID)
}

// ListByVenue returns the venue's bookings, newest first.
func (r *BookingRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.Booking, error) {
	return r.list(ctx, "venue_id", venueID)
}

func (r *BookingRepo) list(ctx context.Context, col string, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE "+col+"=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
