package repository

import (
	"context"
	"database/sql"

	"github.com/stagelink/artist-venue-booking/internal/lifecycle"
	"github.com/stagelink/artist-venue-booking/internal/model"
)

// RiderRepo persists rider templates. Templates belong to exactly one
// artist; bookings and contracts reference them by ID rather than
// copying their content.
type RiderRepo struct {
	db *sql.DB
}

// NewRiderRepo returns a new RiderRepo bound to the given database.
func NewRiderRepo(db *sql.DB) *RiderRepo { return &RiderRepo{db: db} }

const riderCols = `id, artist_id, name, sound, lighting, stage, hospitality,
	payment_terms, extras, created_at, updated_at`

func scanRider(row interface{ Scan(...any) error }) (model.RiderTemplate, error) {
	var t model.RiderTemplate
	err := row.Scan(&t.ID, &t.ArtistID, &t.Name, &t.Sound, &t.Lighting,
		&t.Stage, &t.Hospitality, &t.PaymentTerms, &t.Extras, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create inserts a template and populates the generated ID and
// timestamps on the record.
func (r *RiderRepo) Create(ctx context.Context, t *model.RiderTemplate) error {
	const q = `INSERT INTO rider_templates
		(artist_id, name, sound, lighting, stage, hospitality, payment_terms, extras)
		VALUES (?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		t.ArtistID, t.Name, t.Sound, t.Lighting, t.Stage, t.Hospitality, t.PaymentTerms, t.Extras)
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
	*t = fresh
	return nil
}

// GetByID fetches a template; lifecycle.ErrNotFound when absent.
func (r *RiderRepo) GetByID(ctx context.Context, id uint64) (model.RiderTemplate, error) {
	t, err := scanRider(r.db.QueryRowContext(ctx,
		"SELECT "+riderCols+" FROM rider_templates WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return t, lifecycle.ErrNotFound
	}
	return t, err
}

// ListByArtist returns all templates of one artist, newest first.
func (r *RiderRepo) ListByArtist(ctx context.Context, artistID uint64) ([]model.RiderTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+riderCols+" FROM rider_templates WHERE artist_id=? ORDER BY created_at DESC", artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RiderTemplate, 0)
	for rows.Next() {
		t, err := scanRider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the editable fields of a template owned by artistID.
// lifecycle.ErrNotFound when the row does not exist,
// lifecycle.ErrForbidden when it belongs to a different artist.
func (r *RiderRepo) Update(ctx context.Context, artistID uint64, t *model.RiderTemplate) error {
	owner, err := r.ownerOf(ctx, t.ID)
	if err != nil {
		return err
	}
	if owner != artistID {
		return lifecycle.ErrForbidden
	}
	const q = `UPDATE rider_templates SET name=?, sound=?, lighting=?, stage=?,
		hospitality=?, payment_terms=?, extras=? WHERE id=?`
	if _, err := r.db.ExecContext(ctx, q,
		t.Name, t.Sound, t.Lighting, t.Stage, t.Hospitality, t.PaymentTerms, t.Extras, t.ID); err != nil {
		return err
	}
	fresh, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = fresh
	return nil
}

// Delete removes a template owned by artistID. Deletion is refused with
// lifecycle.ErrConflict while any contract references the template, so
// finalized paperwork keeps its source.
func (r *RiderRepo) Delete(ctx context.Context, artistID, id uint64) error {
	owner, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}
	if owner != artistID {
		return lifecycle.ErrForbidden
	}
	var refs int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM contracts WHERE rider_template_id=?", id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return lifecycle.ErrConflict
	}
	_, err = r.db.ExecContext(ctx, "DELETE FROM rider_templates WHERE id=?", id)
	return err
}

func (r *RiderRepo) ownerOf(ctx context.Context, id uint64) (uint64, error) {
	var owner uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT artist_id FROM rider_templates WHERE id=? LIMIT 1", id).Scan(&owner)
	if err == sql.ErrNoRows {
		return 0, lifecycle.ErrNotFound
	}
	return owner, err
}
