package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Number:        "a2b4c6d8-0000-0000-0000-000000000000",
		Title:         "Performance agreement",
		Version:       1,
		ArtistName:    "The Night Owls",
		VenueName:     "The Basement",
		VenueAddress:  "12 Canal St",
		EventAt:       time.Date(2026, 2, 15, 20, 0, 0, 0, time.UTC),
		FeeCents:      150000,
		EventDetails:  "Friday headline slot",
		RiderName:     "Full band",
		RiderSound:    "32-channel desk, 4 monitor mixes",
		RiderStage:    "6x4m minimum",
		RiderPayTerms: "50% deposit, balance on the night",
		GeneratedAt:   time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestRenderDeterministic(t *testing.T) {
	first, err := Render(sampleSnapshot())
	require.NoError(t, err)
	second, err := Render(sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderContent(t *testing.T) {
	out, err := Render(sampleSnapshot())
	require.NoError(t, err)

	assert.Contains(t, out, "Performance agreement")
	assert.Contains(t, out, "version 1")
	assert.Contains(t, out, "The Night Owls")
	assert.Contains(t, out, "The Basement, 12 Canal St")
	assert.Contains(t, out, "2026-02-15 20:00")
	assert.Contains(t, out, "1500.00")
	assert.Contains(t, out, "RIDER (Full band)")
	assert.Contains(t, out, "32-channel desk")
	// Empty rider fields render as a dash, not a blank.
	assert.Contains(t, out, "Lighting:       -")
}

func TestRenderWithoutRider(t *testing.T) {
	s := sampleSnapshot()
	s.RiderName = ""
	out, err := Render(s)
	require.NoError(t, err)
	assert.NotContains(t, out, "RIDER")
}
