package booking_controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/venue/availability"
	"github.com/joy095/venue/badwords"
	"github.com/joy095/venue/events"
	"github.com/joy095/venue/logger"
	"github.com/joy095/venue/models/booking_models"
	"github.com/joy095/venue/models/shared_models"
	"github.com/joy095/venue/models/venue_models"
	"github.com/joy095/venue/monitoring"
	"github.com/joy095/venue/utils"
)

var ErrCapacityExceeded = errors.New("participant count exceeds venue capacity")

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// BookingStore is the persistence the workflow needs. CreateIfAvailable and
// RescheduleIfAvailable must run the check and the write atomically per venue.
type BookingStore interface {
	Get(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error)
	ListForVenue(ctx context.Context, venueID uuid.UUID, liveOnly bool) ([]booking_models.Booking, error)
	ListByClub(ctx context.Context, clubID uuid.UUID, status string, page, limit int) ([]booking_models.Booking, int, error)
	CreateIfAvailable(ctx context.Context, b *booking_models.Booking, check booking_models.CheckFunc) (availability.Result, error)
	RescheduleIfAvailable(ctx context.Context, id uuid.UUID, w availability.Window, iv availability.Interval,
		mutate func(*booking_models.Booking) error, check booking_models.CheckFunc) (*booking_models.Booking, availability.Result, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next shared_models.BookingStatus,
		authorize func(*booking_models.Booking) error) (*booking_models.Booking, shared_models.BookingStatus, error)
	ExpireStalePending(ctx context.Context, now time.Time) ([]booking_models.Booking, error)
}

type VenueGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*venue_models.Venue, error)
}

// Locker serialises writers per venue ahead of the database transaction.
type Locker interface {
	Acquire(ctx context.Context, venueID uuid.UUID) (func(), error)
}

type Notifier interface {
	BookingStatusChanged(b *booking_models.Booking, venueName string, previous shared_models.BookingStatus) error
}

type EventPublisher interface {
	Publish(subject string, evt events.BookingEvent) error
}

// BookingService is the booking workflow. Locker, Notifier and Events are optional.
type BookingService struct {
	Bookings BookingStore
	Venues   VenueGetter
	Locker   Locker
	Notifier Notifier
	Events   EventPublisher
	Checker  *availability.Checker
}

func NewBookingService(bookings BookingStore, venues VenueGetter, checker *availability.Checker) *BookingService {
	if checker == nil {
		checker = availability.NewChecker(nil)
	}
	return &BookingService{Bookings: bookings, Venues: venues, Checker: checker}
}

// CreateBookingRequest is the body of POST /bookings.
type CreateBookingRequest struct {
	VenueID         uuid.UUID `json:"venueId" binding:"required"`
	EventName       string    `json:"eventName" binding:"required,max=200"`
	FacultyInCharge string    `json:"facultyInCharge" binding:"required,max=120"`
	ContactNumber   string    `json:"contactNumber" binding:"required,max=20"`
	Participants    int       `json:"participants" binding:"required,gt=0"`
	FromDate        string    `json:"fromDate" binding:"required,isodate"`
	FromTime        string    `json:"fromTime" binding:"required,clock"`
	ToDate          string    `json:"toDate" binding:"required,isodate"`
	ToTime          string    `json:"toTime" binding:"required,clock"`
}

func (r CreateBookingRequest) Window() availability.Window {
	return availability.Window{FromDate: r.FromDate, FromTime: r.FromTime, ToDate: r.ToDate, ToTime: r.ToTime}
}

func decisionLabel(result availability.Result, err error) string {
	switch {
	case errors.Is(err, availability.ErrInvalidRange):
		return "invalid"
	case errors.Is(err, booking_models.ErrBookingConflict):
		return "conflict"
	case err != nil:
		return "error"
	}
	return result.Decision.String()
}

func (s *BookingService) acquire(ctx context.Context, venueID uuid.UUID) func() {
	if s.Locker == nil {
		return func() {}
	}
	release, err := s.Locker.Acquire(ctx, venueID)
	if err != nil {
		// The store's advisory lock still serialises writers.
		logger.WarnLogger.Warnf("Venue lock unavailable for %s, relying on database lock: %v", venueID, err)
		return func() {}
	}
	return release
}

func (s *BookingService) publish(subject string, b *booking_models.Booking, actorID uuid.UUID, from shared_models.BookingStatus) {
	if s.Events == nil {
		return
	}
	evt := events.BookingEvent{
		BookingID:  b.ID,
		VenueID:    b.VenueID,
		ClubID:     b.ClubID,
		ActorID:    actorID,
		FromStatus: string(from),
		Status:     string(b.Status),
		StartsAt:   b.StartsAt,
		EndsAt:     b.EndsAt,
	}
	if err := s.Events.Publish(subject, evt); err != nil {
		logger.WarnLogger.Warnf("Booking %s committed but %s event failed: %v", b.ID, subject, err)
	}
}

func (s *BookingService) notify(ctx context.Context, b *booking_models.Booking, previous shared_models.BookingStatus) {
	if s.Notifier == nil {
		return
	}
	venueName := b.VenueID.String()
	if v, err := s.Venues.Get(ctx, b.VenueID); err == nil {
		venueName = v.Name
	}
	if err := s.Notifier.BookingStatusChanged(b, venueName, previous); err != nil {
		logger.WarnLogger.Warnf("Failed to notify club about booking %s: %v", b.ID, err)
	}
}

// CreateBooking files a pending booking for the actor's club if the window is free.
// A refused window yields an error matching booking_models.ErrBookingConflict whose
// *ConflictError carries the blocking booking.
func (s *BookingService) CreateBooking(ctx context.Context, actor utils.Actor, req CreateBookingRequest) (*booking_models.Booking, availability.Result, error) {
	if !actor.IsClub() {
		return nil, availability.Result{}, fmt.Errorf("%w: only clubs can request venues", utils.ErrForbidden)
	}
	if err := badwords.Screen(map[string]string{"eventName": req.EventName}); err != nil {
		return nil, availability.Result{}, err
	}

	window := req.Window()
	if req.VenueID == uuid.Nil {
		err := &availability.InvalidRangeError{Field: "venueId", Reason: "is required"}
		monitoring.RecordAvailability("create", "invalid")
		return nil, availability.Result{}, err
	}
	interval, err := s.Checker.ParseWindow(window)
	if err != nil {
		monitoring.RecordAvailability("create", "invalid")
		return nil, availability.Result{}, err
	}

	venue, err := s.Venues.Get(ctx, req.VenueID)
	if err != nil {
		return nil, availability.Result{}, err
	}
	if !venue.IsActive {
		return nil, availability.Result{}, booking_models.ErrVenueUnavailable
	}
	if req.Participants > venue.Capacity {
		return nil, availability.Result{}, fmt.Errorf("%w: %d participants, %s seats %d",
			ErrCapacityExceeded, req.Participants, venue.Name, venue.Capacity)
	}

	booking, err := booking_models.NewBooking(venue.ID, actor.ClubID, actor.UserID, actor.Email, req.EventName,
		req.FacultyInCharge, req.ContactNumber, req.Participants, window, interval)
	if err != nil {
		return nil, availability.Result{}, err
	}

	release := s.acquire(ctx, venue.ID)
	defer release()

	start := time.Now()
	result, err := s.Bookings.CreateIfAvailable(ctx, booking, func(existing []availability.Occupied) (availability.Result, error) {
		return availability.CheckInterval(booking.VenueID, interval, uuid.Nil, existing)
	})
	monitoring.ObserveWrite("create", start)
	monitoring.RecordAvailability("create", decisionLabel(result, err))
	if err != nil {
		return nil, result, err
	}

	s.publish(events.SubjectBookingCreated, booking, actor.UserID, "")
	return booking, result, nil
}

// PreviewAvailability answers "is this window free right now" without reserving it.
// The answer is advisory; only CreateBooking is authoritative.
func (s *BookingService) PreviewAvailability(ctx context.Context, venueID uuid.UUID, window availability.Window) (availability.Result, error) {
	req := availability.Request{VenueID: venueID, Window: window}
	if venueID == uuid.Nil {
		_, err := s.Checker.CheckAvailability(req, nil)
		monitoring.RecordAvailability("preview", "invalid")
		return availability.Result{}, err
	}
	if _, err := s.Checker.ParseWindow(window); err != nil {
		monitoring.RecordAvailability("preview", "invalid")
		return availability.Result{}, err
	}

	venue, err := s.Venues.Get(ctx, venueID)
	if err != nil {
		return availability.Result{}, err
	}
	if !venue.IsActive {
		return availability.Result{}, booking_models.ErrVenueUnavailable
	}

	existing, err := s.Bookings.ListForVenue(ctx, venueID, true)
	if err != nil {
		return availability.Result{}, err
	}
	result, err := s.Checker.CheckAvailability(req, booking_models.OccupiedFrom(existing))
	monitoring.RecordAvailability("preview", decisionLabel(result, err))
	return result, err
}

// RescheduleBooking moves the club's own pending booking, checking the new window
// against every other live booking of the venue.
func (s *BookingService) RescheduleBooking(ctx context.Context, actor utils.Actor, bookingID uuid.UUID, window availability.Window) (*booking_models.Booking, availability.Result, error) {
	interval, err := s.Checker.ParseWindow(window)
	if err != nil {
		monitoring.RecordAvailability("reschedule", "invalid")
		return nil, availability.Result{}, err
	}

	current, err := s.Bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, availability.Result{}, err
	}
	if !actor.IsClub() || current.ClubID != actor.ClubID {
		return nil, availability.Result{}, fmt.Errorf("%w: only the requesting club can reschedule", utils.ErrForbidden)
	}

	release := s.acquire(ctx, current.VenueID)
	defer release()

	start := time.Now()
	updated, result, err := s.Bookings.RescheduleIfAvailable(ctx, bookingID, window, interval,
		func(b *booking_models.Booking) error {
			if b.ClubID != actor.ClubID {
				return utils.ErrForbidden
			}
			if b.Status != shared_models.BookingStatusPending {
				return fmt.Errorf("%w: only pending bookings can be rescheduled, booking is %s",
					booking_models.ErrInvalidTransition, b.Status)
			}
			return nil
		},
		func(existing []availability.Occupied) (availability.Result, error) {
			return availability.CheckInterval(current.VenueID, interval, bookingID, existing)
		})
	monitoring.ObserveWrite("reschedule", start)
	monitoring.RecordAvailability("reschedule", decisionLabel(result, err))
	if err != nil {
		return nil, result, err
	}

	s.publish(events.SubjectBookingRescheduled, updated, actor.UserID, "")
	return updated, result, nil
}

// UpdateStatus moves a booking through its lifecycle. Admins approve, reject and
// cancel; a club may only cancel its own bookings.
func (s *BookingService) UpdateStatus(ctx context.Context, actor utils.Actor, bookingID uuid.UUID, next shared_models.BookingStatus) (*booking_models.Booking, error) {
	if _, err := shared_models.ParseBookingStatus(string(next)); err != nil {
		return nil, err
	}

	authorize := func(b *booking_models.Booking) error {
		if actor.IsAdmin() {
			return nil
		}
		if actor.IsClub() && b.ClubID == actor.ClubID && next == shared_models.BookingStatusCancelled {
			return nil
		}
		return fmt.Errorf("%w: cannot set booking to %s", utils.ErrForbidden, next)
	}

	updated, previous, err := s.Bookings.UpdateStatus(ctx, bookingID, next, authorize)
	if err != nil {
		return nil, err
	}
	monitoring.RecordTransition(string(previous), string(next))

	s.notify(ctx, updated, previous)
	s.publish(events.SubjectBookingStatusChanged, updated, actor.UserID, previous)
	return updated, nil
}

// GetBooking returns a booking to an admin or to the club that filed it.
func (s *BookingService) GetBooking(ctx context.Context, actor utils.Actor, bookingID uuid.UUID) (*booking_models.Booking, error) {
	b, err := s.Bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.IsClub() && b.ClubID == actor.ClubID) {
		return nil, utils.ErrForbidden
	}
	return b, nil
}

// ListVenueBookings returns the venue's calendar, live bookings only unless all is set.
func (s *BookingService) ListVenueBookings(ctx context.Context, venueID uuid.UUID, all bool) ([]booking_models.Booking, error) {
	if _, err := s.Venues.Get(ctx, venueID); err != nil {
		return nil, err
	}
	return s.Bookings.ListForVenue(ctx, venueID, !all)
}

// ListClubBookings pages through the actor's club bookings, optionally by status.
func (s *BookingService) ListClubBookings(ctx context.Context, actor utils.Actor, status string, page, limit int) ([]booking_models.Booking, int, error) {
	if !actor.IsClub() {
		return nil, 0, fmt.Errorf("%w: only clubs have bookings", utils.ErrForbidden)
	}
	if status != "" {
		if _, err := shared_models.ParseBookingStatus(status); err != nil {
			return nil, 0, err
		}
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.Bookings.ListByClub(ctx, actor.ClubID, status, page, limit)
}

// ExpireStalePending cancels pending bookings whose window has begun without an
// approval and returns how many were retired.
func (s *BookingService) ExpireStalePending(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.Bookings.ExpireStalePending(ctx, now)
	if err != nil {
		return 0, err
	}
	for i := range expired {
		b := &expired[i]
		monitoring.RecordTransition(string(shared_models.BookingStatusPending), string(b.Status))
		s.notify(ctx, b, shared_models.BookingStatusPending)
		s.publish(events.SubjectBookingStatusChanged, b, uuid.Nil, shared_models.BookingStatusPending)
	}
	monitoring.RecordExpired(len(expired))
	if len(expired) > 0 {
		logger.InfoLogger.Infof("Expired %d stale pending bookings", len(expired))
	}
	return len(expired), nil
}
