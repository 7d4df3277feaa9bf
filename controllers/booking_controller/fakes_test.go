package booking_controller

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/venue/availability"
	"github.com/joy095/venue/events"
	"github.com/joy095/venue/models/booking_models"
	"github.com/joy095/venue/models/shared_models"
	"github.com/joy095/venue/models/venue_models"
	"github.com/joy095/venue/utils"
)

// memoryStore mimics the transactional store: one mutex plays the venue lock.
type memoryStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]booking_models.Booking
	inserts  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{bookings: map[uuid.UUID]booking_models.Booking{}}
}

func (s *memoryStore) put(b booking_models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

func (s *memoryStore) Get(_ context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, booking_models.ErrBookingNotFound
	}
	return &b, nil
}

func (s *memoryStore) forVenue(venueID uuid.UUID, liveOnly bool) []booking_models.Booking {
	out := []booking_models.Booking{}
	for _, b := range s.bookings {
		if b.VenueID == venueID && (!liveOnly || b.Status.IsLive()) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}

func (s *memoryStore) ListForVenue(_ context.Context, venueID uuid.UUID, liveOnly bool) ([]booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forVenue(venueID, liveOnly), nil
}

func (s *memoryStore) ListByClub(_ context.Context, clubID uuid.UUID, status string, page, limit int) ([]booking_models.Booking, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []booking_models.Booking{}
	for _, b := range s.bookings {
		if b.ClubID == clubID && (status == "" || string(b.Status) == status) {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := min(start+limit, len(all))
	return all[start:end], len(all), nil
}

func (s *memoryStore) CreateIfAvailable(_ context.Context, b *booking_models.Booking, check booking_models.CheckFunc) (availability.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := check(booking_models.OccupiedFrom(s.forVenue(b.VenueID, true)))
	if err != nil {
		return result, err
	}
	if !result.IsAvailable() {
		return result, &booking_models.ConflictError{Result: result}
	}
	s.bookings[b.ID] = *b
	s.inserts++
	return result, nil
}

func (s *memoryStore) RescheduleIfAvailable(_ context.Context, id uuid.UUID, w availability.Window, iv availability.Interval,
	mutate func(*booking_models.Booking) error, check booking_models.CheckFunc) (*booking_models.Booking, availability.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, availability.Result{}, booking_models.ErrBookingNotFound
	}
	if err := mutate(&b); err != nil {
		return nil, availability.Result{}, err
	}
	result, err := check(booking_models.OccupiedFrom(s.forVenue(b.VenueID, true)))
	if err != nil {
		return nil, result, err
	}
	if !result.IsAvailable() {
		return nil, result, &booking_models.ConflictError{Result: result}
	}
	b.FromDate, b.FromTime, b.ToDate, b.ToTime = w.FromDate, w.FromTime, w.ToDate, w.ToTime
	b.StartsAt, b.EndsAt = iv.Start, iv.End
	s.bookings[id] = b
	return &b, result, nil
}

func (s *memoryStore) UpdateStatus(_ context.Context, id uuid.UUID, next shared_models.BookingStatus,
	authorize func(*booking_models.Booking) error) (*booking_models.Booking, shared_models.BookingStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, "", booking_models.ErrBookingNotFound
	}
	if err := authorize(&b); err != nil {
		return nil, "", err
	}
	if !b.Status.CanTransitionTo(next) {
		return nil, "", fmt.Errorf("%w: %s -> %s", booking_models.ErrInvalidTransition, b.Status, next)
	}
	previous := b.Status
	b.Status = next
	s.bookings[id] = b
	return &b, previous, nil
}

func (s *memoryStore) ExpireStalePending(_ context.Context, now time.Time) ([]booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []booking_models.Booking{}
	for id, b := range s.bookings {
		if b.Status == shared_models.BookingStatusPending && !b.StartsAt.After(now) {
			b.Status = shared_models.BookingStatusCancelled
			s.bookings[id] = b
			out = append(out, b)
		}
	}
	return out, nil
}

type memoryVenues map[uuid.UUID]*venue_models.Venue

func (m memoryVenues) Get(_ context.Context, id uuid.UUID) (*venue_models.Venue, error) {
	v, ok := m[id]
	if !ok {
		return nil, venue_models.ErrVenueNotFound
	}
	return v, nil
}

type stubLocker struct {
	mu       sync.Mutex
	err      error
	acquired int
	released int
}

func (l *stubLocker) Acquire(context.Context, uuid.UUID) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

type sentNotice struct {
	bookingID uuid.UUID
	venueName string
	status    shared_models.BookingStatus
	previous  shared_models.BookingStatus
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotice
}

func (n *recordingNotifier) BookingStatusChanged(b *booking_models.Booking, venueName string, previous shared_models.BookingStatus) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotice{b.ID, venueName, b.Status, previous})
	return nil
}

type publishedEvent struct {
	subject string
	event   events.BookingEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(subject string, evt events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{subject, evt})
	return nil
}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.subject)
	}
	return out
}

type fixture struct {
	service   *BookingService
	store     *memoryStore
	venues    memoryVenues
	notifier  *recordingNotifier
	publisher *recordingPublisher
	hall      *venue_models.Venue
	club      utils.Actor
	otherClub utils.Actor
	admin     utils.Actor
	student   utils.Actor
}

func newFixture() *fixture {
	hall := &venue_models.Venue{
		ID:       uuid.New(),
		Name:     "Seminar Hall A",
		Type:     venue_models.VenueTypeSeminarHall,
		Capacity: 120,
		IsActive: true,
	}
	f := &fixture{
		store:     newMemoryStore(),
		venues:    memoryVenues{hall.ID: hall},
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
		hall:      hall,
		club:      utils.Actor{UserID: uuid.New(), Role: shared_models.RoleClub, ClubID: uuid.New(), Email: "robotics@college.edu"},
		otherClub: utils.Actor{UserID: uuid.New(), Role: shared_models.RoleClub, ClubID: uuid.New(), Email: "drama@college.edu"},
		admin:     utils.Actor{UserID: uuid.New(), Role: shared_models.RoleAdmin},
		student:   utils.Actor{UserID: uuid.New(), Role: shared_models.RoleStudent},
	}
	f.service = NewBookingService(f.store, f.venues, availability.NewChecker(time.UTC))
	f.service.Notifier = f.notifier
	f.service.Events = f.publisher
	return f
}

func (f *fixture) request(fromDate, fromTime, toDate, toTime string) CreateBookingRequest {
	return CreateBookingRequest{
		VenueID:         f.hall.ID,
		EventName:       "Robotics Expo",
		FacultyInCharge: "Dr. Rao",
		ContactNumber:   "9876543210",
		Participants:    80,
		FromDate:        fromDate,
		FromTime:        fromTime,
		ToDate:          toDate,
		ToTime:          toTime,
	}
}
