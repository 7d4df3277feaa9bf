package venue_models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVenueType(t *testing.T) {
	vt, err := ParseVenueType("Seminar-Hall")
	require.NoError(t, err)
	assert.Equal(t, VenueTypeSeminarHall, vt)

	_, err = ParseVenueType("stadium")
	assert.ErrorIs(t, err, ErrInvalidVenue)
}

func TestNewVenue(t *testing.T) {
	v, err := NewVenue("  Maharaja Hall ", VenueTypeMaharajaHall, "Admin Block", 400, "Dr. Rao", "9876543210",
		[]string{"Projector", "mic", " MIC ", ""})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, v.ID)
	assert.Equal(t, "Maharaja Hall", v.Name)
	assert.True(t, v.IsActive)
	assert.Equal(t, []string{"projector", "mic"}, v.Features)
}

func TestNewVenueValidation(t *testing.T) {
	_, err := NewVenue("", VenueTypeOther, "", 10, "", "", nil)
	assert.ErrorIs(t, err, ErrInvalidVenue)

	_, err = NewVenue("Lab 1", VenueTypeComputerCenter, "CSE", 0, "", "", nil)
	assert.ErrorIs(t, err, ErrInvalidVenue)

	_, err = NewVenue("Lab 1", VenueType("garage"), "CSE", 30, "", "", nil)
	assert.ErrorIs(t, err, ErrInvalidVenue)
}

func TestHasFeatures(t *testing.T) {
	v := &Venue{Features: []string{"projector", "ac", "mic"}}
	assert.True(t, v.HasFeatures([]string{"AC", "projector"}))
	assert.True(t, v.HasFeatures(nil))
	assert.False(t, v.HasFeatures([]string{"stage"}))
}
