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

func newAckHandler(t *testing.T) (*AckHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewAckHandler(
		repository.NewAckRepo(db),
		repository.NewBookingRepo(db),
		repository.NewRiderRepo(db),
		nil,
	)
	return h, mock, func() { db.Close() }
}

func newAckContext(t *testing.T, path string, userID uint64, role, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/acknowledgments/7/"+path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("user_id", userID)
	c.Set("role", role)
	return c, rec
}

func ackRow(status string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "booking_id", "rider_template_id", "artist_id", "venue_id",
		"status", "notes", "created_at", "updated_at",
	}).AddRow(7, 5, 3, testArtistID, testVenueID, status, nil, now, now)
}

func proposalRow(position uint32, proposedBy string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "acknowledgment_id", "position", "proposed_by", "field_name",
		"proposed_value", "reason", "created_at",
	}).AddRow(position, 7, position, proposedBy, "sound", "2 wedges", "stage size", time.Now().UTC())
}

func TestAckFirstProposalMustComeFromVenue(t *testing.T) {
	h, mock, closeDB := newAckHandler(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rider_acknowledgments WHERE id=(.+) FOR UPDATE").
		WithArgs(uint64(7)).
		WillReturnRows(ackRow("PENDING"))
	mock.ExpectQuery("SELECT (.+) FROM rider_modification_proposals WHERE acknowledgment_id=(.+) ORDER BY position DESC LIMIT 1").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"})) // empty log
	mock.ExpectRollback()

	// The artist tries to open the negotiation; only the venue may.
	c, rec := newAckContext(t, "proposals", testArtistID, "ARTIST",
		`{"field_name":"sound","proposed_value":"house PA only","reason":"no load-in"}`)

	require.NoError(t, h.Propose(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAckProposeOutOfTurn(t *testing.T) {
	h, mock, closeDB := newAckHandler(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rider_acknowledgments WHERE id=(.+) FOR UPDATE").
		WithArgs(uint64(7)).
		WillReturnRows(ackRow("MODIFICATIONS_PROPOSED"))
	mock.ExpectQuery("SELECT (.+) FROM rider_modification_proposals WHERE acknowledgment_id=(.+) ORDER BY position DESC LIMIT 1").
		WithArgs(uint64(7)).
		WillReturnRows(proposalRow(1, "VENUE"))
	mock.ExpectRollback()

	// The venue authored the last entry and tries to follow up on
	// itself; it is out of turn.
	c, rec := newAckContext(t, "proposals", testVenueID, "VENUE",
		`{"field_name":"hospitality","proposed_value":"no alcohol","reason":"licensing"}`)

	require.NoError(t, h.Propose(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAckProposeAppendsAndMovesState(t *testing.T) {
	h, mock, closeDB := newAckHandler(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rider_acknowledgments WHERE id=(.+) FOR UPDATE").
		WithArgs(uint64(7)).
		WillReturnRows(ackRow("PENDING"))
	mock.ExpectQuery("SELECT (.+) FROM rider_modification_proposals WHERE acknowledgment_id=(.+) ORDER BY position DESC LIMIT 1").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"})) // empty log
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\),0\)\+1 FROM rider_modification_proposals`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1))
	mock.ExpectExec("INSERT INTO rider_modification_proposals").
		WithArgs(uint64(7), uint32(1), "VENUE", "sound", "house PA only", "no load-in").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("UPDATE rider_acknowledgments SET status=").
		WithArgs("MODIFICATIONS_PROPOSED", uint64(7), "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newAckContext(t, "proposals", testVenueID, "VENUE",
		`{"field_name":"sound","proposed_value":"house PA only","reason":"no load-in"}`)

	require.NoError(t, h.Propose(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"position":1`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAckRespondAccept(t *testing.T) {
	h, mock, closeDB := newAckHandler(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rider_acknowledgments WHERE id=(.+) FOR UPDATE").
		WithArgs(uint64(7)).
		WillReturnRows(ackRow("MODIFICATIONS_PROPOSED"))
	mock.ExpectQuery("SELECT (.+) FROM rider_modification_proposals WHERE acknowledgment_id=(.+) ORDER BY position DESC LIMIT 1").
		WithArgs(uint64(7)).
		WillReturnRows(proposalRow(1, "VENUE"))
	mock.ExpectExec("UPDATE rider_acknowledgments SET status=").
		WithArgs("ACCEPTED", uint64(7), "MODIFICATIONS_PROPOSED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newAckContext(t, "respond", testArtistID, "ARTIST", `{"decision":"accept"}`)

	require.NoError(t, h.Respond(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ACCEPTED"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAckAcknowledgeArtistForbidden(t *testing.T) {
	h, mock, closeDB := newAckHandler(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rider_acknowledgments WHERE id=(.+) FOR UPDATE").
		WithArgs(uint64(7)).
		WillReturnRows(ackRow("PENDING"))
	mock.ExpectRollback()

	c, rec := newAckContext(t, "acknowledge", testArtistID, "ARTIST", `{}`)

	require.NoError(t, h.Acknowledge(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
