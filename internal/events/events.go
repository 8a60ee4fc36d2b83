package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	EventItemAvailabilityChanged = "item_availability_changed"
	EventItemSaved               = "item_saved"
	EventItemDeleted             = "item_deleted"
	EventCatalogSeeded           = "catalog_seeded"
)

// CatalogEventTypes lists every event emitted after a successful catalog write.
var CatalogEventTypes = []string{
	EventItemAvailabilityChanged,
	EventItemSaved,
	EventItemDeleted,
	EventCatalogSeeded,
}

// CatalogEventPayload describes which records a write touched.
type CatalogEventPayload struct {
	ItemID    string   `json:"item_id,omitempty"`
	ItemIDs   []string `json:"item_ids,omitempty"`
	Available *bool    `json:"available,omitempty"`
}

// Event is one catalog change notification.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event. A returned error is reported back to the
// publisher and does not stop other handlers.
type EventHandler func(event *Event) error

// EventBus fans catalog events out to in-process handlers.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeCatalog registers handler for every catalog event type.
func (b *EventBus) SubscribeCatalog(handler EventHandler) {
	for _, eventType := range CatalogEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Publish calls every handler of the event type in registration order, on
// the caller's goroutine, and joins their errors.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, fmt.Errorf("%s handler: %w", event.Type, err))
		}
	}
	return errors.Join(errs...)
}

// PublishJSON encodes payload and publishes it. A nil bus drops the event.
func (b *EventBus) PublishJSON(eventType string, payload any) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return b.Publish(&Event{Type: eventType, Payload: raw})
}

// DecodeCatalogPayload unpacks the payload of a catalog event. An empty
// payload decodes to the zero value.
func DecodeCatalogPayload(event *Event) (CatalogEventPayload, error) {
	var payload CatalogEventPayload
	if len(event.Payload) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	return payload, nil
}
