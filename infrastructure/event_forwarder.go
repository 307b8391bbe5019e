package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"arcade/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MessagePublisher sends raw payloads to a subject
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Envelope wraps a forwarded event
type Envelope struct {
	ID         string           `json:"id"`
	Type       events.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    json.RawMessage  `json:"payload"`
}

// EventForwarder copies bus events to an external message bus
type EventForwarder struct {
	publisher MessagePublisher
	now       func() time.Time
}

func NewEventForwarder(publisher MessagePublisher) *EventForwarder {
	return &EventForwarder{publisher: publisher, now: time.Now}
}

// Register subscribes the forwarder to every forwarded event type
func (f *EventForwarder) Register(bus *events.Bus) {
	for _, eventType := range ForwardedEventTypes() {
		bus.Subscribe(eventType, f.Handle)
	}
}

// Handle forwards one event. Failures are logged, the in-process flow never waits on NATS.
func (f *EventForwarder) Handle(ctx context.Context, event events.Event) {
	if err := f.Forward(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event")
	}
}

// Forward wraps event in an envelope and publishes it
func (f *EventForwarder) Forward(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type(), err)
	}

	data, err := json.Marshal(Envelope{
		ID:         uuid.NewString(),
		Type:       event.Type(),
		OccurredAt: f.now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	return f.publisher.Publish(ctx, SubjectForEvent(event.Type()), data)
}
