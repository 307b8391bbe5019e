// Package session keeps at most one running game per channel.
package session

import (
	"context"
	"sort"
	"sync"

	"arcade/models"
)

// Store holds the channel occupancy table. TryAcquire must be an atomic
// check-and-set: of two concurrent calls for one channel, at most one succeeds.
type Store interface {
	// TryAcquire stores s unless its channel is already occupied
	TryAcquire(ctx context.Context, s *models.ChannelSession) (bool, error)

	// Release frees the channel and returns the session that held it, or nil if it was free.
	// With a non-empty sessionID only that session is released.
	Release(ctx context.Context, channelID int64, sessionID string) (*models.ChannelSession, error)

	// Get returns the session occupying the channel, or nil
	Get(ctx context.Context, channelID int64) (*models.ChannelSession, error)

	// List returns every occupied channel
	List(ctx context.Context) ([]*models.ChannelSession, error)
}

// MemoryStore is a Store for a single process
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]*models.ChannelSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*models.ChannelSession)}
}

func (s *MemoryStore) TryAcquire(ctx context.Context, session *models.ChannelSession) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.sessions[session.ChannelID]; busy {
		return false, nil
	}
	stored := *session
	s.sessions[session.ChannelID] = &stored
	return true, nil
}

func (s *MemoryStore) Release(ctx context.Context, channelID int64, sessionID string) (*models.ChannelSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[channelID]
	if !ok || (sessionID != "" && current.ID != sessionID) {
		return nil, nil
	}
	delete(s.sessions, channelID)
	return current, nil
}

func (s *MemoryStore) Get(ctx context.Context, channelID int64) (*models.ChannelSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[channelID]
	if !ok {
		return nil, nil
	}
	c := *current
	return &c, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*models.ChannelSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.ChannelSession, 0, len(s.sessions))
	for _, current := range s.sessions {
		c := *current
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out, nil
}
