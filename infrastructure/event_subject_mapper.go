package infrastructure

import (
	"fmt"

	"arcade/events"
)

var subjects = map[events.EventType]string{
	events.EventTypeBalanceChange:     "arcade.players.balance_changed",
	events.EventTypeLevelUp:           "arcade.players.level_up",
	events.EventTypeSessionStarted:    "arcade.sessions.started",
	events.EventTypeSessionEnded:      "arcade.sessions.ended",
	events.EventTypeModifierActivated: "arcade.modifiers.activated",
}

// SubjectForEvent maps an event type to its NATS subject
func SubjectForEvent(eventType events.EventType) string {
	if subject, ok := subjects[eventType]; ok {
		return subject
	}
	return fmt.Sprintf("arcade.unknown.%s", eventType)
}

// ForwardedEventTypes lists every event type sent to NATS
func ForwardedEventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypeLevelUp,
		events.EventTypeSessionStarted,
		events.EventTypeSessionEnded,
		events.EventTypeModifierActivated,
	}
}
