package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/venue/logger"
	"github.com/nats-io/nats.go"
)

const (
	SubjectBookingCreated       = "booking.created"
	SubjectBookingStatusChanged = "booking.status_changed"
	SubjectBookingRescheduled   = "booking.rescheduled"
)

// BookingEvent is the payload published for every booking lifecycle change.
type BookingEvent struct {
	BookingID  uuid.UUID `json:"bookingId"`
	VenueID    uuid.UUID `json:"venueId"`
	ClubID     uuid.UUID `json:"clubId"`
	ActorID    uuid.UUID `json:"actorId"`
	FromStatus string    `json:"fromStatus,omitempty"`
	Status     string    `json:"status"`
	StartsAt   time.Time `json:"startsAt"`
	EndsAt     time.Time `json:"endsAt"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher sends booking events to NATS. A Publisher without a connection drops
// events, so the service runs unchanged when NATS_URL is unset.
type Publisher struct {
	conn *nats.Conn
}

// Connect dials url; an empty url yields a no-op Publisher.
func Connect(url string) (*Publisher, error) {
	if url == "" {
		logger.WarnLogger.Warn("NATS_URL not set, booking events will not be published")
		return &Publisher{}, nil
	}
	conn, err := nats.Connect(url,
		nats.Name("venue-booking"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WarnLogger.Warnf("NATS disconnected: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.InfoLogger.Infof("Connected to NATS at %s", conn.ConnectedUrl())
	return &Publisher{conn: conn}, nil
}

// NewPublisher wraps an existing connection.
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// Publish marshals evt onto subject. Failures are logged and returned; callers
// treat events as best effort once the booking is committed.
func (p *Publisher) Publish(subject string, evt BookingEvent) error {
	if p == nil || p.conn == nil {
		return nil
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to publish %s for booking %s: %v", subject, evt.BookingID, err)
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		logger.WarnLogger.Warnf("NATS drain failed: %v", err)
	}
}
