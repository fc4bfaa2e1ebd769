package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSONReachesSubscribers(t *testing.T) {
	bus := NewBus()

	var got BookingEventPayload
	calls := 0
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		calls++
		return json.Unmarshal(e.Payload, &got)
	})

	err := bus.PublishJSON(EventBookingCreated, BookingEventPayload{PNR: "BE123", Status: "PENDING"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "BE123", got.PNR)
}

func TestPublishOnlyMatchingType(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(EventBookingConfirmed, func(*Event) error { calls++; return nil })

	require.NoError(t, bus.PublishJSON(EventBookingCancelled, BookingEventPayload{}))
	assert.Zero(t, calls)
}

func TestNilBusIsNoOp(t *testing.T) {
	var bus *Bus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{}))
}
