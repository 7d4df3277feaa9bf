package booking_controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/venue/logger"
	"github.com/redis/go-redis/v9"
)

const RedisVenueLockPrefix = "booking_lock:venue:"

// ErrVenueBusy means the venue lock stayed held for the whole wait.
var ErrVenueBusy = errors.New("another booking for this venue is in progress, please retry")

// Deletes the key only if it still holds our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// VenueLocker is a short-lived Redis lock per venue that queues writers ahead of
// the database transaction, which remains the authority. Wait bounds how long
// Acquire polls a held lock before giving up.
type VenueLocker struct {
	Redis      redis.Cmdable
	TTL        time.Duration
	Wait       time.Duration
	retryEvery time.Duration
	newToken   func() string
}

func NewVenueLocker(rdb redis.Cmdable, ttl time.Duration) *VenueLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &VenueLocker{
		Redis:      rdb,
		TTL:        ttl,
		Wait:       min(ttl, 2*time.Second),
		retryEvery: 50 * time.Millisecond,
		newToken:   func() string { return uuid.NewString() },
	}
}

func venueLockKey(venueID uuid.UUID) string {
	return RedisVenueLockPrefix + venueID.String()
}

// Acquire takes the venue lock, waiting up to Wait for a concurrent writer to
// finish, and returns its release func.
func (l *VenueLocker) Acquire(ctx context.Context, venueID uuid.UUID) (func(), error) {
	key := venueLockKey(venueID)
	token := l.newToken()
	deadline := time.Now().Add(l.Wait)

	for {
		ok, err := l.Redis.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire venue lock: %w", err)
		}
		if ok {
			break
		}
		if !time.Now().Add(l.retryEvery).Before(deadline) {
			logger.WarnLogger.Warnf("Venue %s still locked by a concurrent booking after %v", venueID, l.Wait)
			return nil, ErrVenueBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryEvery):
		}
	}

	return func() {
		// Release must run even when the request context is already cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.Redis.Eval(releaseCtx, releaseScript, []string{key}, token).Err(); err != nil {
			logger.ErrorLogger.Errorf("Failed to release venue lock %s: %v", key, err)
		}
	}, nil
}
