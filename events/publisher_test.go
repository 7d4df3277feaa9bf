package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectWithoutURLIsNoop(t *testing.T) {
	p, err := Connect("")
	require.NoError(t, err)
	assert.NoError(t, p.Publish(SubjectBookingCreated, BookingEvent{BookingID: uuid.New(), Status: "pending"}))
	p.Close()
}

func TestNilPublisherIsSafe(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.Publish(SubjectBookingStatusChanged, BookingEvent{}))
	p.Close()
}
