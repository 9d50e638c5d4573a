package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/stagelink/artist-venue-booking/internal/model"
)

// ArtistRepo persists artist profiles and serves the public browse and
// search queries venues use to find artists.
type ArtistRepo struct {
	db *sql.DB
}

// NewArtistRepo returns a new ArtistRepo bound to the given database.
func NewArtistRepo(db *sql.DB) *ArtistRepo { return &ArtistRepo{db: db} }

func (r *ArtistRepo) DB() *sql.DB { return r.db }

const artistCols = "id, user_id, stage_name, genre, bio, home_city, base_fee_cents, created_at, updated_at"

func scanArtist(row interface{ Scan(...any) error }) (model.ArtistProfile, error) {
	var p model.ArtistProfile
	err := row.Scan(&p.ID, &p.UserID, &p.StageName, &p.Genre, &p.Bio,
		&p.HomeCity, &p.BaseFeeCents, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Upsert creates or replaces the single profile row of an artist user.
// One profile per user is enforced by a unique key on user_id.
func (r *ArtistRepo) Upsert(ctx context.Context, p *model.ArtistProfile) error {
	const q = `INSERT INTO artist_profiles (user_id, stage_name, genre, bio, home_city, base_fee_cents)
	           VALUES (?,?,?,?,?,?)
	           ON DUPLICATE KEY UPDATE stage_name=VALUES(stage_name), genre=VALUES(genre),
	               bio=VALUES(bio), home_city=VALUES(home_city), base_fee_cents=VALUES(base_fee_cents)`
	if _, err := r.db.ExecContext(ctx, q,
		p.UserID, p.StageName, p.Genre, p.Bio, p.HomeCity, p.BaseFeeCents); err != nil {
		return err
	}
	// Read the row back so the caller sees generated id and timestamps.
	fresh, err := r.GetByUserID(ctx, p.UserID)
	if err != nil {
		return err
	}
	*p = fresh
	return nil
}

// GetByUserID fetches the profile owned by a user.
func (r *ArtistRepo) GetByUserID(ctx context.Context, userID uint64) (model.ArtistProfile, error) {
	return scanArtist(r.db.QueryRowContext(ctx,
		"SELECT "+artistCols+" FROM artist_profiles WHERE user_id=? LIMIT 1", userID))
}

// GetByID fetches a profile by its own id.
func (r *ArtistRepo) GetByID(ctx context.Context, id uint64) (model.ArtistProfile, error) {
	return scanArtist(r.db.QueryRowContext(ctx,
		"SELECT "+artistCols+" FROM artist_profiles WHERE id=? LIMIT 1", id))
}

// ArtistSearchQuery defines filters and pagination for the public
// artist search.
type ArtistSearchQuery struct {
	Name     string // substring of stage name
	Genre    string // substring of genre
	City     string // substring of home city
	Page     int
	PageSize int
}

// Search returns matching profiles ordered by stage name plus the total
// match count for paging. All filters are case-insensitive substrings.
func (r *ArtistRepo) Search(ctx context.Context, q ArtistSearchQuery) ([]model.ArtistProfile, int64, error) {
	where := []string{}
	args := []any{}

	if q.Name != "" {
		where = append(where, "LOWER(stage_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}
	if q.Genre != "" {
		where = append(where, "LOWER(genre) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Genre)+"%")
	}
	if q.City != "" {
		where = append(where, "LOWER(home_city) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.City)+"%")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM artist_profiles WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.PageSize <= 0 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+artistCols+" FROM artist_profiles WHERE "+cond+
			" ORDER BY stage_name ASC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.ArtistProfile, 0)
	for rows.Next() {
		p, err := scanArtist(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
