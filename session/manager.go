package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"arcade/events"
	"arcade/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Publisher receives session lifecycle events
type Publisher interface {
	Publish(event events.Event)
}

// GameFunc is the body of a game. It must return once ctx is done.
type GameFunc func(ctx context.Context, session *models.ChannelSession) error

type running struct {
	sessionID string
	cancel    context.CancelFunc
}

// Manager is the single owner of channel occupancy
type Manager struct {
	store       Store
	publisher   Publisher
	maxLifetime time.Duration
	now         func() time.Time

	mu      sync.Mutex
	running map[int64]running
}

// NewManager creates a session manager. A zero maxLifetime leaves games
// bounded only by the caller's context.
func NewManager(store Store, publisher Publisher, maxLifetime time.Duration) *Manager {
	return &Manager{
		store:       store,
		publisher:   publisher,
		maxLifetime: maxLifetime,
		now:         time.Now,
		running:     make(map[int64]running),
	}
}

// TryAcquire occupies a free channel. It returns false, without side
// effects, when the channel is already occupied.
func (m *Manager) TryAcquire(ctx context.Context, channelID, guildID int64, kind string) (*models.ChannelSession, bool, error) {
	s := m.newSession(channelID, guildID, kind)
	ok, err := m.acquire(ctx, s)
	if err != nil || !ok {
		return nil, false, err
	}
	return s, true, nil
}

func (m *Manager) newSession(channelID, guildID int64, kind string) *models.ChannelSession {
	return &models.ChannelSession{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		GuildID:   guildID,
		Kind:      kind,
		StartedAt: m.now().UTC(),
	}
}

func (m *Manager) acquire(ctx context.Context, s *models.ChannelSession) (bool, error) {
	ok, err := m.store.TryAcquire(ctx, s)
	if err != nil {
		return false, err
	}
	if !ok {
		log.WithFields(log.Fields{
			"channelID": s.ChannelID,
			"kind":      s.Kind,
		}).Debug("Channel already occupied")
		return false, nil
	}

	log.WithFields(log.Fields{
		"sessionID": s.ID,
		"channelID": s.ChannelID,
		"guildID":   s.GuildID,
		"kind":      s.Kind,
	}).Info("Session started")

	m.publish(events.SessionStartedEvent{
		SessionID: s.ID,
		ChannelID: s.ChannelID,
		GuildID:   s.GuildID,
		Kind:      s.Kind,
	})
	return true, nil
}

// Release frees the channel. Releasing a free channel is a no-op.
func (m *Manager) Release(ctx context.Context, channelID int64) error {
	return m.release(ctx, channelID, "")
}

func (m *Manager) release(ctx context.Context, channelID int64, sessionID string) error {
	released, err := m.store.Release(ctx, channelID, sessionID)
	if err != nil {
		return err
	}
	if released == nil {
		return nil
	}

	duration := m.now().Sub(released.StartedAt)
	log.WithFields(log.Fields{
		"sessionID": released.ID,
		"channelID": channelID,
		"kind":      released.Kind,
		"duration":  duration,
	}).Info("Session ended")

	m.publish(events.SessionEndedEvent{
		SessionID: released.ID,
		ChannelID: released.ChannelID,
		GuildID:   released.GuildID,
		Kind:      released.Kind,
		Duration:  duration,
	})
	return nil
}

// Run occupies the channel for the duration of fn and releases it on every
// exit path, including a panic inside fn, which is returned as an error.
// The run is registered before the store is touched, so a ForceStop that
// arrives during acquisition cancels the game instead of freeing the channel
// under it.
func (m *Manager) Run(ctx context.Context, channelID, guildID int64, kind string, fn GameFunc) (err error) {
	s := m.newSession(channelID, guildID, kind)

	var runCtx context.Context
	var cancel context.CancelFunc
	if m.maxLifetime > 0 {
		runCtx, cancel = context.WithTimeout(ctx, m.maxLifetime)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	m.mu.Lock()
	if _, busy := m.running[channelID]; busy {
		m.mu.Unlock()
		cancel()
		return ErrSessionActive
	}
	m.running[channelID] = running{sessionID: s.ID, cancel: cancel}
	m.mu.Unlock()

	ok, err := m.acquire(ctx, s)
	if err != nil || !ok {
		cancel()
		m.forget(channelID, s.ID)
		if err != nil {
			return fmt.Errorf("failed to acquire channel: %w", err)
		}
		return ErrSessionActive
	}

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"sessionID": s.ID,
				"channelID": channelID,
				"panic":     r,
			}).Error("Game panicked")
			err = fmt.Errorf("game %s panicked: %v", kind, r)
		}

		cancel()
		m.forget(channelID, s.ID)

		// The caller's context may already be cancelled here
		if relErr := m.release(context.WithoutCancel(ctx), channelID, s.ID); relErr != nil {
			log.WithFields(log.Fields{
				"sessionID": s.ID,
				"channelID": channelID,
				"error":     relErr,
			}).Error("Failed to release session")
			if err == nil {
				err = relErr
			}
		}
	}()

	return fn(runCtx, s)
}

func (m *Manager) forget(channelID int64, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.running[channelID]; ok && cur.sessionID == sessionID {
		delete(m.running, channelID)
	}
}

// ForceStop ends the channel's session. A game run by this process is
// cancelled and releases itself; anything else is released directly.
func (m *Manager) ForceStop(ctx context.Context, channelID int64) (bool, error) {
	m.mu.Lock()
	r, local := m.running[channelID]
	m.mu.Unlock()

	if local {
		log.WithFields(log.Fields{
			"sessionID": r.sessionID,
			"channelID": channelID,
		}).Info("Force-stopping session")
		r.cancel()
		return true, nil
	}

	current, err := m.store.Get(ctx, channelID)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, nil
	}
	if err := m.release(ctx, channelID, current.ID); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the channel's session, or nil when the channel is free
func (m *Manager) Get(ctx context.Context, channelID int64) (*models.ChannelSession, error) {
	return m.store.Get(ctx, channelID)
}

// Active lists occupied channels
func (m *Manager) Active(ctx context.Context) ([]*models.ChannelSession, error) {
	return m.store.List(ctx)
}

func (m *Manager) publish(e events.Event) {
	if m.publisher != nil {
		m.publisher.Publish(e)
	}
}
