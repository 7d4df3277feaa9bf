package shared_models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// BookingStatus is the closed set of states a venue booking can be in.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ErrInvalidStatus is returned when a string does not name a known booking status.
var ErrInvalidStatus = errors.New("invalid booking status")

// ParseBookingStatus converts wire/database text into a BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case BookingStatusPending, BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// IsLive reports whether the booking still occupies its venue.
func (s BookingStatus) IsLive() bool {
	return s == BookingStatusPending || s == BookingStatusApproved
}

// IsTerminal reports whether no further transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCancelled
}

// CanTransitionTo reports whether the approval workflow may move a booking from s to next.
// pending -> approved|rejected|cancelled, approved -> cancelled. Retired bookings stay retired.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusApproved || next == BookingStatusRejected || next == BookingStatusCancelled
	case BookingStatusApproved:
		return next == BookingStatusCancelled
	default:
		return false
	}
}

func (s BookingStatus) String() string { return string(s) }

// Role is the kind of portal user carried in an access token.
type Role string

const (
	RoleStudent Role = "student"
	RoleClub    Role = "club"
	RoleAdmin   Role = "admin"
)

// ParseRole converts a claim value into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleStudent, RoleClub, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("invalid role: %q", s)
	}
}

// Claims is the access token payload issued by the portal's identity service.
type Claims struct {
	UserID    uuid.UUID  `json:"sub"`
	AccountID *uuid.UUID `json:"user_id,omitempty"` // identity service tokens
	Role      string     `json:"role"`
	ClubID    string     `json:"club_id,omitempty"`
	Email     string     `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ActorID returns sub, or user_id when sub is absent.
func (c *Claims) ActorID() uuid.UUID {
	if c.UserID != uuid.Nil {
		return c.UserID
	}
	if c.AccountID != nil {
		return *c.AccountID
	}
	return uuid.Nil
}
