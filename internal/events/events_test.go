package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventItemDeleted, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	err := bus.PublishJSON(EventItemDeleted, CatalogEventPayload{ItemID: "d4"})
	require.NoError(t, err)

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, EventItemDeleted, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	payload, err := DecodeCatalogPayload(received)
	require.NoError(t, err)
	assert.Equal(t, "d4", payload.ItemID)
	assert.Nil(t, payload.Available)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: "event"})

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	bus.Publish(&Event{Type: "unknown"})
	assert.NoError(t, bus.PublishJSON("unknown", nil))

	var nilBus *EventBus
	assert.NoError(t, nilBus.PublishJSON(EventItemSaved, nil))
}

func TestSubscribeCatalog(t *testing.T) {
	bus := NewEventBus()
	var seen []string
	bus.SubscribeCatalog(func(event *Event) error {
		seen = append(seen, event.Type)
		return nil
	})

	for _, eventType := range CatalogEventTypes {
		bus.Publish(&Event{Type: eventType})
	}
	bus.Publish(&Event{Type: "unrelated"})

	assert.Equal(t, CatalogEventTypes, seen)
}

func TestDecodeCatalogPayload(t *testing.T) {
	available := false
	bus := NewEventBus()
	var got CatalogEventPayload
	bus.Subscribe(EventItemAvailabilityChanged, func(event *Event) error {
		var err error
		got, err = DecodeCatalogPayload(event)
		return err
	})

	require.NoError(t, bus.PublishJSON(EventItemAvailabilityChanged, CatalogEventPayload{ItemID: "s1", Available: &available}))
	assert.Equal(t, "s1", got.ItemID)
	require.NotNil(t, got.Available)
	assert.False(t, *got.Available)

	empty, err := DecodeCatalogPayload(&Event{Type: EventCatalogSeeded})
	require.NoError(t, err)
	assert.Empty(t, empty.ItemIDs)
}

func TestPublishJoinsHandlerErrors(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("redis down")
	var later bool

	bus.Subscribe(EventItemSaved, func(_ *Event) error { return boom })
	bus.Subscribe(EventItemSaved, func(_ *Event) error { later = true; return nil })

	err := bus.PublishJSON(EventItemSaved, CatalogEventPayload{ItemID: "s2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), EventItemSaved)
	assert.True(t, later, "a failing handler must not stop the rest")
}

func TestPublishJSONEncodeError(t *testing.T) {
	bus := NewEventBus()
	err := bus.PublishJSON(EventItemSaved, map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}
