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

// Each generation takes MAX(version)+1 for the booking; content rows
// are never overwritten.
func TestContractCreateTxVersions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	repo := NewContractRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(version\),0\)\+1 FROM contracts`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(2))
	mock.ExpectExec("INSERT INTO contracts").
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	c := &model.Contract{
		BookingID: 7,
		Number:    "3cd9a1de-0000-0000-0000-000000000000",
		Type:      "performance",
		Title:     "Performance agreement",
		Content:   "rendered snapshot",
	}
	require.NoError(t, repo.CreateTx(ctx, tx, c))
	assert.Equal(t, uint64(31), c.ID)
	assert.Equal(t, uint32(2), c.Version)
	assert.Equal(t, "DRAFT", c.Status)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContractSignTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	repo := NewContractRepo(db)
	ctx := context.Background()
	at := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE contracts SET artist_signed_at=").
		WithArgs(at, "PENDING_SIGNATURES", uint64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	err = repo.SignTx(ctx, tx, 31, lifecycle.PartyArtist, at, lifecycle.ContractPendingSignatures)
	assert.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The IS NULL guard in the UPDATE means a second signature by the same
// party matches zero rows: the first timestamp survives and the caller
// gets a conflict.
func TestContractSignTxDoubleSign(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	repo := NewContractRepo(db)
	ctx := context.Background()
	at := time.Date(2026, 1, 11, 9, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE contracts SET artist_signed_at=").
		WithArgs(at, "SIGNED", uint64(31)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	err = repo.SignTx(ctx, tx, 31, lifecycle.PartyArtist, at, lifecycle.ContractSigned)
	assert.ErrorIs(t, err, lifecycle.ErrConflict)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
