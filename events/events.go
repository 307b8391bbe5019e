package events

import (
	"context"
	"sync"
	"time"

	"arcade/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange     EventType = "balance_change"
	EventTypeLevelUp           EventType = "level_up"
	EventTypeSessionStarted    EventType = "session_started"
	EventTypeSessionEnded      EventType = "session_ended"
	EventTypeModifierActivated EventType = "modifier_activated"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	GuildID         int64                  `json:"guild_id"`
	PlayerID        int64                  `json:"player_id"`
	OldBalance      int64                  `json:"old_balance"`
	NewBalance      int64                  `json:"new_balance"`
	TransactionType models.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                  `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// LevelUpEvent is raised when credited experience moves a player to a higher level.
// The platform layer renders the announcement and grants roles.
type LevelUpEvent struct {
	GuildID   int64    `json:"guild_id"`
	PlayerID  int64    `json:"player_id"`
	OldLevel  int64    `json:"old_level"`
	NewLevel  int64    `json:"new_level"`
	NewBadges []string `json:"new_badges,omitempty"`
}

func (e LevelUpEvent) Type() EventType {
	return EventTypeLevelUp
}

// SessionStartedEvent is raised when a game occupies a channel
type SessionStartedEvent struct {
	SessionID string `json:"session_id"`
	ChannelID int64  `json:"channel_id"`
	GuildID   int64  `json:"guild_id"`
	Kind      string `json:"kind"`
}

func (e SessionStartedEvent) Type() EventType {
	return EventTypeSessionStarted
}

// SessionEndedEvent is raised when a channel is released
type SessionEndedEvent struct {
	SessionID string        `json:"session_id"`
	ChannelID int64         `json:"channel_id"`
	GuildID   int64         `json:"guild_id"`
	Kind      string        `json:"kind"`
	Duration  time.Duration `json:"duration"`
}

func (e SessionEndedEvent) Type() EventType {
	return EventTypeSessionEnded
}

// ModifierActivatedEvent is raised when a personal booster is activated
type ModifierActivatedEvent struct {
	GuildID    int64               `json:"guild_id"`
	PlayerID   int64               `json:"player_id"`
	Kind       models.ModifierKind `json:"kind"`
	Multiplier string              `json:"multiplier"`
	ExpiresAt  time.Time           `json:"expires_at"`
}

func (e ModifierActivatedEvent) Type() EventType {
	return EventTypeModifierActivated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

	// Handlers run asynchronously so a slow announcement never blocks a game
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Publish emits immediately. It lets the bus stand in for a transactional
// publisher where no unit of work is involved.
func (b *Bus) Publish(event Event) {
	b.Emit(context.Background(), event)
}

// TransactionalBus holds pending events for a unit of work and flushes them
// to the underlying bus after commit.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Pending returns the events queued so far
func (b *TransactionalBus) Pending() []Event {
	return b.pending
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events from transactional bus to main event bus")

	// Events outlive the transaction, so they get a fresh context
	eventCtx := context.Background()
	if b.real != nil {
		for _, ev := range b.pending {
			b.real.Emit(eventCtx, ev)
		}
	}
	b.pending = nil
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
