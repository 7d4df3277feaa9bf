package booking_models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/venue/availability"
	"github.com/joy095/venue/logger"
	"github.com/joy095/venue/models/shared_models"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingConflict   = errors.New("venue unavailable for selected time")
	ErrInvalidTransition = errors.New("booking status change not allowed")
	ErrVenueUnavailable  = errors.New("venue is under maintenance or does not exist")
	ErrInvalidBooking    = errors.New("invalid booking")
)

// SQLSTATE exclusion_violation, raised by bookings_no_live_overlap.
const exclusionViolation = "23P01"

// ConflictError carries the checker's verdict when a booking is refused.
// A Result with a nil ConflictingBookingID means the database constraint fired.
type ConflictError struct {
	Result availability.Result
}

func (e *ConflictError) Error() string {
	if e.Result.ConflictingBookingID == uuid.Nil {
		return ErrBookingConflict.Error()
	}
	return fmt.Sprintf("%s: overlaps booking %s", ErrBookingConflict, e.Result.ConflictingBookingID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrBookingConflict }

// Booking is a club's request to reserve a venue for a window.
type Booking struct {
	ID               uuid.UUID                   `json:"id"`
	VenueID          uuid.UUID                   `json:"venueId"`
	ClubID           uuid.UUID                   `json:"clubId"`
	RequestedBy      uuid.UUID                   `json:"requestedBy"`
	RequesterEmail   string                      `json:"requesterEmail,omitempty"`
	EventName        string                      `json:"eventName"`
	FacultyInCharge  string                      `json:"facultyInCharge"`
	ContactNumber    string                      `json:"contactNumber"`
	ParticipantCount int                         `json:"participants"`
	FromDate         string                      `json:"fromDate"`
	FromTime         string                      `json:"fromTime"`
	ToDate           string                      `json:"toDate"`
	ToTime           string                      `json:"toTime"`
	StartsAt         time.Time                   `json:"startsAt"`
	EndsAt           time.Time                   `json:"endsAt"`
	Status           shared_models.BookingStatus `json:"status"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

// NewBooking builds a pending booking for an already-parsed window.
func NewBooking(venueID, clubID, requestedBy uuid.UUID, requesterEmail, eventName, facultyInCharge, contactNumber string,
	participants int, window availability.Window, interval availability.Interval) (*Booking, error) {
	if venueID == uuid.Nil || clubID == uuid.Nil {
		return nil, fmt.Errorf("%w: venue and club are required", ErrInvalidBooking)
	}
	if strings.TrimSpace(eventName) == "" {
		return nil, fmt.Errorf("%w: event name is required", ErrInvalidBooking)
	}
	if participants <= 0 {
		return nil, fmt.Errorf("%w: participant count must be positive", ErrInvalidBooking)
	}
	if !interval.Valid() {
		return nil, &availability.InvalidRangeError{Field: "interval", Reason: "end must be after start"}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}
	now := time.Now()
	return &Booking{
		ID:               id,
		VenueID:          venueID,
		ClubID:           clubID,
		RequestedBy:      requestedBy,
		RequesterEmail:   strings.TrimSpace(requesterEmail),
		EventName:        strings.TrimSpace(eventName),
		FacultyInCharge:  strings.TrimSpace(facultyInCharge),
		ContactNumber:    strings.TrimSpace(contactNumber),
		ParticipantCount: participants,
		FromDate:         window.FromDate,
		FromTime:         window.FromTime,
		ToDate:           window.ToDate,
		ToTime:           window.ToTime,
		StartsAt:         interval.Start,
		EndsAt:           interval.End,
		Status:           shared_models.BookingStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Interval returns the booking's half-open window.
func (b *Booking) Interval() availability.Interval {
	return availability.Interval{Start: b.StartsAt, End: b.EndsAt}
}

// Occupied converts the booking into the availability checker's view.
func (b *Booking) Occupied() availability.Occupied {
	return availability.Occupied{BookingID: b.ID, VenueID: b.VenueID, Status: b.Status, Interval: b.Interval()}
}

// OccupiedFrom converts a batch of bookings.
func OccupiedFrom(bookings []Booking) []availability.Occupied {
	out := make([]availability.Occupied, 0, len(bookings))
	for i := range bookings {
		out = append(out, bookings[i].Occupied())
	}
	return out
}

// CheckFunc decides on a proposal given the venue's live bookings, read inside the
// same transaction that will insert the proposal.
type CheckFunc func(existing []availability.Occupied) (availability.Result, error)

const bookingColumns = `id, venue_id, club_id, requested_by, requester_email, event_name, faculty_in_charge,
	contact_number, participant_count, from_date, from_time, to_date, to_time, starts_at, ends_at,
	status, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	var status string
	err := row.Scan(&b.ID, &b.VenueID, &b.ClubID, &b.RequestedBy, &b.RequesterEmail, &b.EventName,
		&b.FacultyInCharge, &b.ContactNumber, &b.ParticipantCount, &b.FromDate, &b.FromTime,
		&b.ToDate, &b.ToTime, &b.StartsAt, &b.EndsAt, &status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Status, err = shared_models.ParseBookingStatus(status)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	return b, nil
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	defer rows.Close()
	bookings := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to scan booking row: %v", err)
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading bookings: %w", err)
	}
	return bookings, nil
}

// GetBookingByID fetches a booking record by its ID.
func GetBookingByID(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (*Booking, error) {
	b, err := scanBooking(db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.WarnLogger.Warnf("Booking with ID %s not found", bookingID)
			return nil, ErrBookingNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", bookingID, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// ListBookingsForVenue returns a venue's bookings ordered by start. liveOnly keeps
// pending and approved ones, which is all the availability checker needs.
func ListBookingsForVenue(ctx context.Context, db *pgxpool.Pool, venueID uuid.UUID, liveOnly bool) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE venue_id = $1`
	if liveOnly {
		query += ` AND status IN ('pending', 'approved')`
	}
	query += ` ORDER BY starts_at ASC`

	rows, err := db.Query(ctx, query, venueID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for venue %s: %v", venueID, err)
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	return collectBookings(rows)
}

// ListBookingsByClub retrieves a club's bookings newest first with pagination and an optional status filter.
func ListBookingsByClub(ctx context.Context, db *pgxpool.Pool, clubID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	logger.InfoLogger.Infof("Fetching bookings for club %s with status filter: %q", clubID, status)

	where := ` WHERE club_id = $1`
	args := []interface{}{clubID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		logger.ErrorLogger.Errorf("Failed to count bookings for club %s: %v", clubID, err)
		return nil, 0, fmt.Errorf("failed to get booking count: %w", err)
	}

	offset := (page - 1) * limit
	query := `SELECT ` + bookingColumns + ` FROM bookings` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for club %s: %v", clubID, err)
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// lockVenue serialises writers per venue for the rest of the transaction and
// verifies the venue can take bookings.
func lockVenue(ctx context.Context, tx pgx.Tx, venueID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, venueID.String()); err != nil {
		return fmt.Errorf("failed to lock venue %s: %w", venueID, err)
	}

	var active bool
	err := tx.QueryRow(ctx, `SELECT is_active FROM venues WHERE id = $1 FOR SHARE`, venueID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && !active) {
		return ErrVenueUnavailable
	}
	if err != nil {
		return fmt.Errorf("failed to read venue %s: %w", venueID, err)
	}
	return nil
}

func liveOverlapping(ctx context.Context, tx pgx.Tx, venueID uuid.UUID, iv availability.Interval) ([]Booking, error) {
	rows, err := tx.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE venue_id = $1 AND status IN ('pending', 'approved')
		AND starts_at < $3 AND ends_at > $2
		ORDER BY starts_at ASC`, venueID, iv.Start, iv.End)
	if err != nil {
		return nil, fmt.Errorf("failed to read live bookings: %w", err)
	}
	return collectBookings(rows)
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return &ConflictError{Result: availability.Result{Decision: availability.Conflict}}
	}
	return err
}

// CreateBookingIfAvailable re-reads the venue's live bookings and inserts b only if
// check reports Available, all under a per-venue transaction lock. The schema's
// exclusion constraint backs this up; its violation surfaces as a ConflictError.
func CreateBookingIfAvailable(ctx context.Context, db *pgxpool.Pool, b *Booking, check CheckFunc) (availability.Result, error) {
	logger.InfoLogger.Infof("Attempting to create booking %s for venue %s", b.ID, b.VenueID)

	var result availability.Result
	err := pgx.BeginTxFunc(ctx, db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := lockVenue(ctx, tx, b.VenueID); err != nil {
			return err
		}
		existing, err := liveOverlapping(ctx, tx, b.VenueID, b.Interval())
		if err != nil {
			return err
		}

		result, err = check(OccupiedFrom(existing))
		if err != nil {
			return err
		}
		if !result.IsAvailable() {
			return &ConflictError{Result: result}
		}

		_, err = tx.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
			b.ID, b.VenueID, b.ClubID, b.RequestedBy, b.RequesterEmail, b.EventName, b.FacultyInCharge,
			b.ContactNumber, b.ParticipantCount, b.FromDate, b.FromTime, b.ToDate, b.ToTime,
			b.StartsAt, b.EndsAt, string(b.Status), b.CreatedAt, b.UpdatedAt)
		return err
	})
	if err != nil {
		err = mapWriteError(err)
		if !errors.Is(err, ErrBookingConflict) && !errors.Is(err, ErrVenueUnavailable) && !errors.Is(err, availability.ErrInvalidRange) {
			logger.ErrorLogger.Errorf("Failed to create booking for venue %s: %v", b.VenueID, err)
			return result, fmt.Errorf("failed to create booking: %w", err)
		}
		return result, err
	}

	logger.InfoLogger.Infof("Booking %s created for venue %s (%s to %s)", b.ID, b.VenueID, b.StartsAt, b.EndsAt)
	return result, nil
}

// RescheduleBookingIfAvailable moves a pending booking to a new window under the same
// guarantees as CreateBookingIfAvailable. mutate runs on the locked row and may refuse.
func RescheduleBookingIfAvailable(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID,
	window availability.Window, iv availability.Interval, mutate func(*Booking) error, check CheckFunc) (*Booking, availability.Result, error) {
	var (
		result  availability.Result
		updated *Booking
	)
	err := pgx.BeginTxFunc(ctx, db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		current, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, bookingID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrBookingNotFound
			}
			return err
		}
		if err := mutate(current); err != nil {
			return err
		}
		if err := lockVenue(ctx, tx, current.VenueID); err != nil {
			return err
		}
		existing, err := liveOverlapping(ctx, tx, current.VenueID, iv)
		if err != nil {
			return err
		}
		result, err = check(OccupiedFrom(existing))
		if err != nil {
			return err
		}
		if !result.IsAvailable() {
			return &ConflictError{Result: result}
		}

		current.FromDate, current.FromTime, current.ToDate, current.ToTime = window.FromDate, window.FromTime, window.ToDate, window.ToTime
		current.StartsAt, current.EndsAt = iv.Start, iv.End
		current.UpdatedAt = time.Now()
		_, err = tx.Exec(ctx, `UPDATE bookings
			SET from_date = $2, from_time = $3, to_date = $4, to_time = $5, starts_at = $6, ends_at = $7, updated_at = $8
			WHERE id = $1`,
			current.ID, current.FromDate, current.FromTime, current.ToDate, current.ToTime,
			current.StartsAt, current.EndsAt, current.UpdatedAt)
		if err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, result, mapWriteError(err)
	}
	logger.InfoLogger.Infof("Booking %s rescheduled to %s - %s", bookingID, iv.Start, iv.End)
	return updated, result, nil
}

// UpdateBookingStatus applies a status transition on the locked row. authorize runs
// before the transition check and may refuse. It returns the updated booking and
// the status it left.
func UpdateBookingStatus(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, next shared_models.BookingStatus,
	authorize func(*Booking) error) (*Booking, shared_models.BookingStatus, error) {
	logger.InfoLogger.Infof("Updating status for booking %s to %s", bookingID, next)

	var (
		updated  *Booking
		previous shared_models.BookingStatus
	)
	err := pgx.BeginTxFunc(ctx, db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		current, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, bookingID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrBookingNotFound
			}
			return err
		}
		if authorize != nil {
			if err := authorize(current); err != nil {
				return err
			}
		}
		if !current.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
		}

		previous = current.Status
		current.Status = next
		current.UpdatedAt = time.Now()
		if _, err := tx.Exec(ctx, `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`,
			current.ID, string(next), current.UpdatedAt); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrBookingNotFound) && !errors.Is(err, ErrInvalidTransition) {
			logger.ErrorLogger.Errorf("Failed to update booking %s status: %v", bookingID, err)
		}
		return nil, "", err
	}

	logger.InfoLogger.Infof("Booking %s status updated %s -> %s", bookingID, previous, next)
	return updated, previous, nil
}

// ExpireStalePending cancels pending bookings whose window has already started,
// returning the retired bookings.
func ExpireStalePending(ctx context.Context, db *pgxpool.Pool, now time.Time) ([]Booking, error) {
	rows, err := db.Query(ctx, `UPDATE bookings SET status = 'cancelled', updated_at = $1
		WHERE status = 'pending' AND starts_at <= $1
		RETURNING `+bookingColumns, now)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to expire stale pending bookings: %v", err)
		return nil, fmt.Errorf("failed to expire pending bookings: %w", err)
	}
	return collectBookings(rows)
}

// Store adapts the package functions to the booking workflow's interface.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store { return &Store{DB: db} }

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return GetBookingByID(ctx, s.DB, id)
}

func (s *Store) ListForVenue(ctx context.Context, venueID uuid.UUID, liveOnly bool) ([]Booking, error) {
	return ListBookingsForVenue(ctx, s.DB, venueID, liveOnly)
}

func (s *Store) ListByClub(ctx context.Context, clubID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	return ListBookingsByClub(ctx, s.DB, clubID, status, page, limit)
}

func (s *Store) CreateIfAvailable(ctx context.Context, b *Booking, check CheckFunc) (availability.Result, error) {
	return CreateBookingIfAvailable(ctx, s.DB, b, check)
}

func (s *Store) RescheduleIfAvailable(ctx context.Context, id uuid.UUID, w availability.Window, iv availability.Interval,
	mutate func(*Booking) error, check CheckFunc) (*Booking, availability.Result, error) {
	return RescheduleBookingIfAvailable(ctx, s.DB, id, w, iv, mutate, check)
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, next shared_models.BookingStatus,
	authorize func(*Booking) error) (*Booking, shared_models.BookingStatus, error) {
	return UpdateBookingStatus(ctx, s.DB, id, next, authorize)
}

func (s *Store) ExpireStalePending(ctx context.Context, now time.Time) ([]Booking, error) {
	return ExpireStalePending(ctx, s.DB, now)
}
