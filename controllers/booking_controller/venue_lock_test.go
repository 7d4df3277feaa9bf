package booking_controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker() (*VenueLocker, redismock.ClientMock) {
	rdb, mock := redismock.NewClientMock()
	l := NewVenueLocker(rdb, 5*time.Second)
	l.Wait = 0
	l.retryEvery = time.Millisecond
	l.newToken = func() string { return "token-1" }
	return l, mock
}

func TestVenueLocker_AcquireAndRelease(t *testing.T) {
	l, mock := newTestLocker()
	venueID := uuid.New()
	key := venueLockKey(venueID)

	mock.ExpectSetNX(key, "token-1", 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{key}, "token-1").SetVal(int64(1))

	release, err := l.Acquire(context.Background(), venueID)
	require.NoError(t, err)
	release()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueLocker_Busy(t *testing.T) {
	l, mock := newTestLocker()
	venueID := uuid.New()

	mock.ExpectSetNX(venueLockKey(venueID), "token-1", 5*time.Second).SetVal(false)

	release, err := l.Acquire(context.Background(), venueID)
	assert.ErrorIs(t, err, ErrVenueBusy)
	assert.Nil(t, release)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueLocker_WaitsForRelease(t *testing.T) {
	l, mock := newTestLocker()
	l.Wait = time.Second
	venueID := uuid.New()
	key := venueLockKey(venueID)

	mock.ExpectSetNX(key, "token-1", 5*time.Second).SetVal(false)
	mock.ExpectSetNX(key, "token-1", 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{key}, "token-1").SetVal(int64(1))

	release, err := l.Acquire(context.Background(), venueID)
	require.NoError(t, err)
	release()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueLocker_RedisError(t *testing.T) {
	l, mock := newTestLocker()
	venueID := uuid.New()

	mock.ExpectSetNX(venueLockKey(venueID), "token-1", 5*time.Second).SetErr(errors.New("connection refused"))

	_, err := l.Acquire(context.Background(), venueID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVenueBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}
