// Package availability decides whether a proposed venue booking collides with the
// venue's existing live bookings. Everything here is pure: callers fetch the
// existing bookings and persist the new one.
package availability

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/venue/models/shared_models"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ErrInvalidRange matches every malformed or non-positive booking window.
var ErrInvalidRange = errors.New("invalid booking range")

// InvalidRangeError says which part of a window was rejected.
type InvalidRangeError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid booking range: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid booking range: %s %q %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }

// Window is a booking window as it travels over the wire.
type Window struct {
	FromDate string `json:"fromDate" form:"fromDate"`
	FromTime string `json:"fromTime" form:"fromTime"`
	ToDate   string `json:"toDate" form:"toDate"`
	ToTime   string `json:"toTime" form:"toTime"`
}

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether the interval has positive length.
func (i Interval) Valid() bool {
	return !i.Start.IsZero() && !i.End.IsZero() && i.End.After(i.Start)
}

// Overlaps is the half-open overlap test; touching endpoints do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Decision is the outcome of an availability check.
type Decision int

const (
	Available Decision = iota
	Conflict
)

func (d Decision) String() string {
	if d == Conflict {
		return "conflict"
	}
	return "available"
}

// Occupied is an existing booking as the checker sees it.
type Occupied struct {
	BookingID uuid.UUID
	VenueID   uuid.UUID
	Status    shared_models.BookingStatus
	Interval  Interval
}

// Request is a proposed booking. ExcludeBookingID is set when an existing booking
// is being moved so it does not collide with itself.
type Request struct {
	VenueID          uuid.UUID
	Window           Window
	ExcludeBookingID uuid.UUID
}

// Result is returned for every well-formed request.
type Result struct {
	Decision             Decision  `json:"-"`
	VenueID              uuid.UUID `json:"venueId"`
	Requested            Interval  `json:"requested"`
	ConflictingBookingID uuid.UUID `json:"conflictingBookingId,omitempty"`
	ConflictingInterval  Interval  `json:"conflictingInterval"`
}

func (r Result) IsAvailable() bool { return r.Decision == Available }

// Message renders the user-facing explanation, naming the blocking window in loc.
func (r Result) Message(loc *time.Location) string {
	if r.Decision == Available {
		return "Venue is available for the selected time"
	}
	return fmt.Sprintf("Venue unavailable for selected time: already booked from %s to %s",
		formatInstant(r.ConflictingInterval.Start, loc), formatInstant(r.ConflictingInterval.End, loc))
}

// Checker interprets wire windows in a single location.
type Checker struct {
	loc *time.Location
}

// NewChecker builds a Checker for loc; nil means the process's local zone.
func NewChecker(loc *time.Location) *Checker {
	if loc == nil {
		loc = time.Local
	}
	return &Checker{loc: loc}
}

func (c *Checker) Location() *time.Location { return c.loc }

// ParseWindow combines the date and clock fields into an Interval. Windows may
// span several days as long as the end falls after the start.
func (c *Checker) ParseWindow(w Window) (Interval, error) {
	start, err := c.combine("fromDate", w.FromDate, "fromTime", w.FromTime)
	if err != nil {
		return Interval{}, err
	}
	end, err := c.combine("toDate", w.ToDate, "toTime", w.ToTime)
	if err != nil {
		return Interval{}, err
	}
	if !end.After(start) {
		return Interval{}, &InvalidRangeError{Field: "toDate/toTime", Reason: "must be after fromDate/fromTime"}
	}
	return Interval{Start: start, End: end}, nil
}

// FormatInterval is the inverse of ParseWindow.
func (c *Checker) FormatInterval(i Interval) Window {
	s, e := i.Start.In(c.loc), i.End.In(c.loc)
	return Window{
		FromDate: s.Format(DateLayout),
		FromTime: s.Format(ClockLayout),
		ToDate:   e.Format(DateLayout),
		ToTime:   e.Format(ClockLayout),
	}
}

// CheckAvailability classifies req against the venue's existing bookings.
// A malformed request yields an error matching ErrInvalidRange and no Result.
func (c *Checker) CheckAvailability(req Request, existing []Occupied) (Result, error) {
	if req.VenueID == uuid.Nil {
		return Result{}, &InvalidRangeError{Field: "venueId", Reason: "is required"}
	}
	interval, err := c.ParseWindow(req.Window)
	if err != nil {
		return Result{}, err
	}
	return CheckInterval(req.VenueID, interval, req.ExcludeBookingID, existing)
}

// CheckInterval is CheckAvailability for callers that already hold an Interval.
func CheckInterval(venueID uuid.UUID, interval Interval, excludeID uuid.UUID, existing []Occupied) (Result, error) {
	if venueID == uuid.Nil {
		return Result{}, &InvalidRangeError{Field: "venueId", Reason: "is required"}
	}
	if !interval.Valid() {
		return Result{}, &InvalidRangeError{Field: "interval", Reason: "end must be after start"}
	}

	result := Result{Decision: Available, VenueID: venueID, Requested: interval}

	var conflicts []Occupied
	for _, o := range existing {
		if o.VenueID != venueID || !o.Status.IsLive() || !o.Interval.Valid() {
			continue
		}
		if excludeID != uuid.Nil && o.BookingID == excludeID {
			continue
		}
		if interval.Overlaps(o.Interval) {
			conflicts = append(conflicts, o)
		}
	}
	if len(conflicts) == 0 {
		return result, nil
	}

	// Report the same blocker regardless of input order.
	sort.Slice(conflicts, func(i, j int) bool {
		if !conflicts[i].Interval.Start.Equal(conflicts[j].Interval.Start) {
			return conflicts[i].Interval.Start.Before(conflicts[j].Interval.Start)
		}
		return conflicts[i].BookingID.String() < conflicts[j].BookingID.String()
	})

	result.Decision = Conflict
	result.ConflictingBookingID = conflicts[0].BookingID
	result.ConflictingInterval = conflicts[0].Interval
	return result, nil
}

func (c *Checker) combine(dateField, date, clockField, clock string) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" {
		return time.Time{}, &InvalidRangeError{Field: dateField, Reason: "is required"}
	}
	if clock == "" {
		return time.Time{}, &InvalidRangeError{Field: clockField, Reason: "is required"}
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return time.Time{}, &InvalidRangeError{Field: dateField, Value: date, Reason: "is not a YYYY-MM-DD date"}
	}
	if len(clock) != len(ClockLayout) {
		return time.Time{}, &InvalidRangeError{Field: clockField, Value: clock, Reason: "is not a 24-hour HH:MM time"}
	}
	if _, err := time.Parse(ClockLayout, clock); err != nil {
		return time.Time{}, &InvalidRangeError{Field: clockField, Value: clock, Reason: "is not a 24-hour HH:MM time"}
	}

	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, c.loc)
	if err != nil {
		return time.Time{}, &InvalidRangeError{Field: dateField, Value: date + " " + clock, Reason: "cannot be combined"}
	}
	return t, nil
}

func formatInstant(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout + " " + ClockLayout)
}
