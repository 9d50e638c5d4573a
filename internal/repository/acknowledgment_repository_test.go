package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelink/artist-venue-booking/internal/lifecycle"
	"github.com/stagelink/artist-venue-booking/internal/model"
)

var ackRows = []string{
	"id", "booking_id", "rider_template_id", "artist_id", "venue_id",
	"status", "notes", "created_at", "updated_at",
}

func sampleBooking() model.Booking {
	rider := uint64(11)
	return model.Booking{
		ID:              7,
		ArtistID:        3,
		VenueID:         5,
		Status:          "CONFIRMED",
		RiderTemplateID: &rider,
	}
}

// First share creates the row; the repo reports created=true.
func TestAckGetOrCreateTxCreates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	repo := NewAckRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rider_acknowledgments WHERE booking_id=").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(ackRows))
	mock.ExpectExec("INSERT INTO rider_acknowledgments").
		WithArgs(uint64(7), uint64(11), uint64(3), uint64(5), "PENDING").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectQuery("SELECT (.+) FROM rider_acknowledgments WHERE id=").
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows(ackRows).
			AddRow(21, 7, 11, 3, 5, "PENDING", nil, now, now))
	mock.ExpectCommit()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	a, created, err := repo.GetOrCreateTx(ctx, tx, sampleBooking())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(21), a.ID)
	assert.Equal(t, "PENDING", a.Status)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Sharing twice must not create a second row: the existing
// acknowledgment comes back with created=false.
func TestAckGetOrCreateTxIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	repo := NewAckRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rider_acknowledgments WHERE booking_id=").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(ackRows).
			AddRow(21, 7, 11, 3, 5, "MODIFICATIONS_PROPOSED", nil, now, now))
	mock.ExpectCommit()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	a, created, err := repo.GetOrCreateTx(ctx, tx, sampleBooking())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, uint64(21), a.ID)
	assert.Equal(t, "MODIFICATIONS_PROPOSED", a.Status)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A booking with no rider attached has nothing to share.
func TestAckGetOrCreateTxNoRider(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	repo := NewAckRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rider_acknowledgments WHERE booking_id=").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(ackRows))
	mock.ExpectRollback()

	b := sampleBooking()
	b.RiderTemplateID = nil

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	_, _, err = repo.GetOrCreateTx(ctx, tx, b)
	assert.ErrorIs(t, err, lifecycle.ErrValidation)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Proposal positions are allocated from MAX(position)+1 inside the
// transaction, so the log keeps a gap-free logical order.
func TestAckAppendProposalTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	repo := NewAckRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\),0\)\+1 FROM rider_modification_proposals`).
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectExec("INSERT INTO rider_modification_proposals").
		WithArgs(uint64(21), uint32(3), "VENUE", "sound", "house PA only", "no external rig allowed").
		WillReturnResult(sqlmock.NewResult(55, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	p := &model.ModificationProposal{
		AcknowledgmentID: 21,
		ProposedBy:       "VENUE",
		FieldName:        "sound",
		ProposedValue:    "house PA only",
		Reason:           "no external rig allowed",
	}
	require.NoError(t, repo.AppendProposalTx(ctx, tx, p))
	assert.Equal(t, uint64(55), p.ID)
	assert.Equal(t, uint32(3), p.Position)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
