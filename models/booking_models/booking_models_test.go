package booking_models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joy095/venue/availability"
	"github.com/joy095/venue/models/shared_models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow(t *testing.T) (availability.Window, availability.Interval) {
	t.Helper()
	w := availability.Window{FromDate: "2025-02-15", FromTime: "09:00", ToDate: "2025-02-15", ToTime: "11:00"}
	iv, err := availability.NewChecker(time.UTC).ParseWindow(w)
	require.NoError(t, err)
	return w, iv
}

func TestNewBooking(t *testing.T) {
	w, iv := testWindow(t)
	venueID, clubID, userID := uuid.New(), uuid.New(), uuid.New()

	b, err := NewBooking(venueID, clubID, userID, "club@college.edu", " Hackathon ", "Dr. Iyer", "9000000000", 60, w, iv)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, shared_models.BookingStatusPending, b.Status)
	assert.Equal(t, "Hackathon", b.EventName)
	assert.Equal(t, iv, b.Interval())
	assert.Equal(t, "2025-02-15", b.FromDate)

	occ := b.Occupied()
	assert.Equal(t, b.ID, occ.BookingID)
	assert.Equal(t, venueID, occ.VenueID)
	assert.True(t, occ.Status.IsLive())
}

func TestNewBookingValidation(t *testing.T) {
	w, iv := testWindow(t)

	_, err := NewBooking(uuid.Nil, uuid.New(), uuid.New(), "", "Fest", "", "", 10, w, iv)
	assert.ErrorIs(t, err, ErrInvalidBooking)

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), "", "  ", "", "", 10, w, iv)
	assert.ErrorIs(t, err, ErrInvalidBooking)

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), "", "Fest", "", "", 0, w, iv)
	assert.ErrorIs(t, err, ErrInvalidBooking)

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), "", "Fest", "", "", 10, w, availability.Interval{Start: iv.End, End: iv.Start})
	assert.ErrorIs(t, err, availability.ErrInvalidRange)
}

func TestConflictError(t *testing.T) {
	id := uuid.New()
	err := fmt.Errorf("wrapped: %w", &ConflictError{Result: availability.Result{Decision: availability.Conflict, ConflictingBookingID: id}})

	assert.ErrorIs(t, err, ErrBookingConflict)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, id, conflict.Result.ConflictingBookingID)
	assert.Contains(t, err.Error(), id.String())
}

func TestMapWriteErrorTurnsExclusionViolationIntoConflict(t *testing.T) {
	err := mapWriteError(&pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_live_overlap"})
	assert.ErrorIs(t, err, ErrBookingConflict)
	assert.Equal(t, ErrBookingConflict.Error(), err.Error())

	other := &pgconn.PgError{Code: "23505"}
	assert.Equal(t, error(other), mapWriteError(other))
}

func TestOccupiedFrom(t *testing.T) {
	w, iv := testWindow(t)
	b1, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), "", "A", "", "", 1, w, iv)
	require.NoError(t, err)
	b2, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), "", "B", "", "", 1, w, iv)
	require.NoError(t, err)
	b2.Status = shared_models.BookingStatusRejected

	occ := OccupiedFrom([]Booking{*b1, *b2})
	require.Len(t, occ, 2)
	assert.Equal(t, b1.ID, occ[0].BookingID)
	assert.False(t, occ[1].Status.IsLive())
}
