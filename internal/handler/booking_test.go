package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelink/artist-venue-booking/internal/repository"
)

const (
	testArtistID = uint64(11)
	testVenueID  = uint64(22)
)

// newStatusContext builds an echo context for POST /v1/bookings/:id/status
// as the JWT middleware would leave it: user_id and role set on the context.
func newStatusContext(t *testing.T, userID uint64, role, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/v1/bookings/5/status", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user_id", userID)
	c.Set("role", role)
	return c, rec
}

func bookingRow(status string, eventAt time.Time) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "artist_id", "venue_id", "event_at", "venue_name", "venue_address",
		"offered_fee_cents", "event_details", "status", "rider_template_id",
		"created_at", "updated_at",
	}).AddRow(5, testArtistID, testVenueID, eventAt, "The Attic", "12 Canal St",
		120000, "headline set", status, nil, now, now)
}

func TestBookingUpdateStatusConfirm(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	eventAt := time.Now().UTC().Add(48 * time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=(.+) FOR UPDATE").
		WithArgs(uint64(5)).
		WillReturnRows(bookingRow("PENDING", eventAt))
	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs("CONFIRMED", uint64(5), "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	h := NewBookingHandler(repository.NewBookingRepo(db), repository.NewArtistRepo(db), repository.NewRiderRepo(db), nil)
	c, rec := newStatusContext(t, testArtistID, "ARTIST", `{"status":"confirmed"}`)

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"CONFIRMED"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatusVenueCannotConfirm(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	eventAt := time.Now().UTC().Add(48 * time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=(.+) FOR UPDATE").
		WithArgs(uint64(5)).
		WillReturnRows(bookingRow("PENDING", eventAt))
	mock.ExpectRollback()

	h := NewBookingHandler(repository.NewBookingRepo(db), repository.NewArtistRepo(db), repository.NewRiderRepo(db), nil)
	c, rec := newStatusContext(t, testVenueID, "VENUE", `{"status":"CONFIRMED"}`)

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatusOutsiderForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	eventAt := time.Now().UTC().Add(48 * time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=(.+) FOR UPDATE").
		WithArgs(uint64(5)).
		WillReturnRows(bookingRow("PENDING", eventAt))
	mock.ExpectRollback()

	h := NewBookingHandler(repository.NewBookingRepo(db), repository.NewArtistRepo(db), repository.NewRiderRepo(db), nil)
	c, rec := newStatusContext(t, uint64(99), "VENUE", `{"status":"CANCELLED"}`)

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatusCompleteBeforeEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	eventAt := time.Now().UTC().Add(48 * time.Hour) // still in the future
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id=(.+) FOR UPDATE").
		WithArgs(uint64(5)).
		WillReturnRows(bookingRow("CONFIRMED", eventAt))
	mock.ExpectRollback()

	h := NewBookingHandler(repository.NewBookingRepo(db), repository.NewArtistRepo(db), repository.NewRiderRepo(db), nil)
	c, rec := newStatusContext(t, testVenueID, "VENUE", `{"status":"COMPLETED"}`)

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatusUnknown(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewBookingHandler(repository.NewBookingRepo(db), repository.NewArtistRepo(db), repository.NewRiderRepo(db), nil)
	c, rec := newStatusContext(t, testArtistID, "ARTIST", `{"status":"PAUSED"}`)

	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
