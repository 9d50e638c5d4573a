package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/stagelink/artist-venue-booking/internal/lifecycle"
	"github.com/stagelink/artist-venue-booking/internal/model"
)

// ContractRepo persists contracts. Content is written once at insert
// and never updated; regeneration allocates the next version number for
// the booking inside the same transaction. Signature timestamps are
// guarded in SQL so they can be set at most once even if two requests
// race past the in-memory check.
type ContractRepo struct {
	db *sql.DB
}

// NewContractRepo returns a new ContractRepo bound to the given database.
func NewContractRepo(db *sql.DB) *ContractRepo { return &ContractRepo{db: db} }

func (r *ContractRepo) DB() *sql.DB { return r.db }

const contractCols = `id, booking_id, rider_template_id, number, type, title, version,
	content, status, reject_reason, artist_signed_at, venue_signed_at, created_at, updated_at`

func scanContract(row interface{ Scan(...any) error }) (model.Contract, error) {
	var (
		c            model.Contract
		rider        sql.NullInt64
		rejectReason sql.NullString
		artistAt     sql.NullTime
		venueAt      sql.NullTime
	)
	err := row.Scan(&c.ID, &c.BookingID, &rider, &c.Number, &c.Type, &c.Title,
		&c.Version, &c.Content, &c.Status, &rejectReason, &artistAt, &venueAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	if rider.Valid {
		id := uint64(rider.Int64)
		c.RiderTemplateID = &id
	}
	if rejectReason.Valid {
		s := rejectReason.String
		c.RejectReason = &s
	}
	if artistAt.Valid {
		t := artistAt.Time
		c.ArtistSignedAt = &t
	}
	if venueAt.Valid {
		t := venueAt.Time
		c.VenueSignedAt = &t
	}
	return c, nil
}

// CreateTx inserts a new DRAFT contract, assigning the next version
// number within the booking. The booking row should be locked by the
// caller so two concurrent generations cannot claim the same version.
func (r *ContractRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.Contract) error {
	var version uint32
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version),0)+1 FROM contracts WHERE booking_id=?",
		c.BookingID).Scan(&version); err != nil {
		return err
	}
	var rider any
	if c.RiderTemplateID != nil {
		rider = *c.RiderTemplateID
	}
	const ins = `INSERT INTO contracts
		(booking_id, rider_template_id, number, type, title, version, content, status)
		VALUES (?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, ins,
		c.BookingID, rider, c.Number, c.Type, c.Title, version, c.Content,
		string(lifecycle.ContractDraft))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.Version = version
	c.Status = string(lifecycle.ContractDraft)
	return nil
}

// SetContentTx stores the rendered document text. Only used inside the
// generation transaction, after the version number the text embeds has
// been assigned; content is never touched again afterwards.
func (r *ContractRepo) SetContentTx(ctx context.Context, tx *sql.Tx, id uint64, content string) error {
	_, err := tx.ExecContext(ctx, "UPDATE contracts SET content=? WHERE id=?", content, id)
	return err
}

// GetByID fetches a contract; lifecycle.ErrNotFound when absent.
func (r *ContractRepo) GetByID(ctx context.Context, id uint64) (model.Contract, error) {
	c, err := scanContract(r.db.QueryRowContext(ctx,
		"SELECT "+contractCols+" FROM contracts WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return c, lifecycle.ErrNotFound
	}
	return c, err
}

// GetForUpdateTx loads a contract with a row lock for state decisions.
func (r *ContractRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Contract, error) {
	c, err := scanContract(tx.QueryRowContext(ctx,
		"SELECT "+contractCols+" FROM contracts WHERE id=? FOR UPDATE", id))
	if err == sql.ErrNoRows {
		return c, lifecycle.ErrNotFound
	}
	return c, err
}

// UpdateStatusCAS moves a contract between states with a
// compare-and-swap on the current status.
func (r *ContractRepo) UpdateStatusCAS(ctx context.Context, tx *sql.Tx, id uint64, from, to lifecycle.ContractStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE contracts SET status=? WHERE id=? AND status=?",
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

// SignTx records one party's signature and the resulting status. The
// signed-at column is guarded with IS NULL so the timestamp is written
// at most once; zero rows affected means a double-sign slipped past the
// guard and is reported as lifecycle.ErrConflict.
func (r *ContractRepo) SignTx(ctx context.Context, tx *sql.Tx, id uint64, party lifecycle.Party, signedAt time.Time, newStatus lifecycle.ContractStatus) error {
	col := "artist_signed_at"
	if party == lifecycle.PartyVenue {
		col = "venue_signed_at"
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE contracts SET "+col+"=?, status=? WHERE id=? AND "+col+" IS NULL",
		signedAt.UTC(), string(newStatus), id)
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

// RejectTx moves a contract to REJECTED and records the reason.
func (r *ContractRepo) RejectTx(ctx context.Context, tx *sql.Tx, id uint64, from lifecycle.ContractStatus, reason string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE contracts SET status=?, reject_reason=? WHERE id=? AND status=?",
		string(lifecycle.ContractRejected), reason, id, string(from))
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

// ListByBooking returns every contract version for a booking, newest
// version first, for the version-comparison view.
func (r *ContractRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.Contract, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+contractCols+" FROM contracts WHERE booking_id=? ORDER BY version DESC", bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
