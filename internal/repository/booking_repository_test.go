package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelink/artist-venue-booking/internal/lifecycle"
)

func newBookingMock(t *testing.T) (sqlmock.Sqlmock, *BookingRepo, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return mock, NewBookingRepo(db), func() { _ = db.Close() }
}

func TestBookingUpdateStatusCAS(t *testing.T) {
	mock, repo, done := newBookingMock(t)
	defer done()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs("CONFIRMED", uint64(42), "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	err = repo.UpdateStatusCAS(ctx, tx, 42, lifecycle.BookingPending, lifecycle.BookingConfirmed)
	assert.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A CAS that matches zero rows means another caller already moved the
// booking; the repo must report a conflict, not success.
func TestBookingUpdateStatusCASLostRace(t *testing.T) {
	mock, repo, done := newBookingMock(t)
	defer done()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs("CANCELLED", uint64(42), "CONFIRMED").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	err = repo.UpdateStatusCAS(ctx, tx, 42, lifecycle.BookingConfirmed, lifecycle.BookingCancelled)
	assert.ErrorIs(t, err, lifecycle.ErrConflict)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingGetByIDNotFound(t *testing.T) {
	mock, repo, done := newBookingMock(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingGetByID(t *testing.T) {
	mock, repo, done := newBookingMock(t)
	defer done()
	now := time.Now().UTC()
	eventAt := time.Date(2026, 2, 15, 20, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "artist_id", "venue_id", "event_at", "venue_name", "venue_address",
		"offered_fee_cents", "event_details", "status", "rider_template_id",
		"created_at", "updated_at",
	}).AddRow(7, 3, 5, eventAt, "The Basement", "12 Canal St", 150000,
		"Friday headline slot", "PENDING", nil, now, now)
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=").
		WithArgs(uint64(7)).
		WillReturnRows(rows)

	b, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), b.ArtistID)
	assert.Equal(t, uint64(5), b.VenueID)
	assert.Equal(t, "PENDING", b.Status)
	assert.Nil(t, b.RiderTemplateID)
	assert.True(t, b.EventAt.Equal(eventAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}
