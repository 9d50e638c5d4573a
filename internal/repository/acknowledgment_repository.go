package repository

import (
	"context"
	"database/sql"

	"github.com/stagelink/artist-venue-booking/internal/lifecycle"
	"github.com/stagelink/artist-venue-booking/internal/model"
)

// AckRepo persists rider acknowledgments and their append-only
// modification-proposal log. A unique key on booking_id guarantees at
// most one acknowledgment per booking; GetOrCreateTx turns that into an
// idempotent share operation.
type AckRepo struct {
	db *sql.DB
}

// NewAckRepo returns a new AckRepo bound to the given database.
func NewAckRepo(db *sql.DB) *AckRepo { return &AckRepo{db: db} }

func (r *AckRepo) DB() *sql.DB { return r.db }

const ackCols = `id, booking_id, rider_template_id, artist_id, venue_id,
	status, notes, created_at, updated_at`

func scanAck(row interface{ Scan(...any) error }) (model.RiderAcknowledgment, error) {
	var (
		a     model.RiderAcknowledgment
		notes sql.NullString
	)
	err := row.Scan(&a.ID, &a.BookingID, &a.RiderTemplateID, &a.ArtistID,
		&a.VenueID, &a.Status, &notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return a, err
	}
	if notes.Valid {
		n := notes.String
		a.Notes = &n
	}
	return a, nil
}

// GetOrCreateTx fetches the acknowledgment for a booking, creating it
// in PENDING state on first call. The boolean result is true when a new
// row was inserted. A duplicate-key race with a concurrent sharer
// resolves by re-reading the winner's row, so both callers observe the
// same single acknowledgment.
func (r *AckRepo) GetOrCreateTx(ctx context.Context, tx *sql.Tx, b model.Booking) (model.RiderAcknowledgment, bool, error) {
	a, err := r.getByBooking(ctx, tx, b.ID)
	if err == nil {
		return a, false, nil
	}
	if err != sql.ErrNoRows {
		return a, false, err
	}
	if b.RiderTemplateID == nil {
		// Nothing to share: the booking carries no rider.
		return a, false, lifecycle.ErrValidation
	}
	const ins = `INSERT INTO rider_acknowledgments
		(booking_id, rider_template_id, artist_id, venue_id, status)
		VALUES (?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, ins,
		b.ID, *b.RiderTemplateID, b.ArtistID, b.VenueID, string(lifecycle.AckPending))
	if err != nil {
		if isDuplicate(err) {
			a, err = r.getByBooking(ctx, tx, b.ID)
			return a, false, err
		}
		return a, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return a, false, err
	}
	a, err = r.getByID(ctx, tx, uint64(id), false)
	return a, true, err
}

func (r *AckRepo) getByBooking(ctx context.Context, tx *sql.Tx, bookingID uint64) (model.RiderAcknowledgment, error) {
	return scanAck(tx.QueryRowContext(ctx,
		"SELECT "+ackCols+" FROM rider_acknowledgments WHERE booking_id=? LIMIT 1", bookingID))
}

func (r *AckRepo) getByID(ctx context.Context, tx *sql.Tx, id uint64, forUpdate bool) (model.RiderAcknowledgment, error) {
	q := "SELECT " + ackCols + " FROM rider_acknowledgments WHERE id=?"
	if forUpdate {
		q += " FOR UPDATE"
	}
	return scanAck(tx.QueryRowContext(ctx, q, id))
}

// GetByID fetches an acknowledgment outside a transaction;
// lifecycle.ErrNotFound when absent.
func (r *AckRepo) GetByID(ctx context.Context, id uint64) (model.RiderAcknowledgment, error) {
	a, err := scanAck(r.db.QueryRowContext(ctx,
		"SELECT "+ackCols+" FROM rider_acknowledgments WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return a, lifecycle.ErrNotFound
	}
	return a, err
}

// GetForUpdateTx loads an acknowledgment with a row lock so the guard
// decision and the status write see the same snapshot.
func (r *AckRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.RiderAcknowledgment, error) {
	a, err := r.getByID(ctx, tx, id, true)
	if err == sql.ErrNoRows {
		return a, lifecycle.ErrNotFound
	}
	return a, err
}

// UpdateStatusCAS moves an acknowledgment between workflow states with
// a compare-and-swap on the current status. Zero rows affected is a
// lost race and surfaces as lifecycle.ErrConflict.
func (r *AckRepo) UpdateStatusCAS(ctx context.Context, tx *sql.Tx, id uint64, from, to lifecycle.AckStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE rider_acknowledgments SET status=? WHERE id=? AND status=?",
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

// LastProposalTx returns the most recent proposal log entry for an
// acknowledgment, or ok=false when the log is empty. Ordering is by
// position, which increases monotonically per acknowledgment.
func (r *AckRepo) LastProposalTx(ctx context.Context, tx *sql.Tx, ackID uint64) (model.ModificationProposal, bool, error) {
	var p model.ModificationProposal
	err := tx.QueryRowContext(ctx,
		`SELECT id, acknowledgment_id, position, proposed_by, field_name, proposed_value, reason, created_at
		 FROM rider_modification_proposals WHERE acknowledgment_id=?
		 ORDER BY position DESC LIMIT 1`, ackID).
		Scan(&p.ID, &p.AcknowledgmentID, &p.Position, &p.ProposedBy,
			&p.FieldName, &p.ProposedValue, &p.Reason, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return p, false, nil
	}
	if err != nil {
		return p, false, err
	}
	return p, true, nil
}

// AppendProposalTx adds the next entry to the proposal log. The
// position is computed inside the transaction while the parent row is
// locked, so entries never collide on a logical slot even when their
// created_at timestamps tie.
func (r *AckRepo) AppendProposalTx(ctx context.Context, tx *sql.Tx, p *model.ModificationProposal) error {
	var next uint32
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position),0)+1 FROM rider_modification_proposals WHERE acknowledgment_id=?",
		p.AcknowledgmentID).Scan(&next); err != nil {
		return err
	}
	const ins = `INSERT INTO rider_modification_proposals
		(acknowledgment_id, position, proposed_by, field_name, proposed_value, reason)
		VALUES (?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, ins,
		p.AcknowledgmentID, next, p.ProposedBy, p.FieldName, p.ProposedValue, p.Reason)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.Position = next
	return nil
}

// ListProposals returns the full timeline of an acknowledgment ordered
// by (created_at, position); position breaks timestamp ties so the UI
// renders a stable audit trail.
func (r *AckRepo) ListProposals(ctx context.Context, ackID uint64) ([]model.ModificationProposal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, acknowledgment_id, position, proposed_by, field_name, proposed_value, reason, created_at
		 FROM rider_modification_proposals WHERE acknowledgment_id=?
		 ORDER BY created_at ASC, position ASC`, ackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ModificationProposal, 0)
	for rows.Next() {
		var p model.ModificationProposal
		if err := rows.Scan(&p.ID, &p.AcknowledgmentID, &p.Position, &p.ProposedBy,
			&p.FieldName, &p.ProposedValue, &p.Reason, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
