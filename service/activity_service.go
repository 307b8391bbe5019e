package service

import (
	"context"
	"sync"
	"time"

	"arcade/models"
)

// pruneThreshold bounds the cooldown map before stale entries are dropped
const pruneThreshold = 10000

type activityKey struct {
	guildID  int64
	playerID int64
}

type activityService struct {
	payout   PayoutService
	baseExp  int64
	cooldown time.Duration

	mu   sync.Mutex
	last map[activityKey]time.Time
}

// NewActivityService rewards baseExp per chat message, at most once per cooldown
func NewActivityService(payout PayoutService, baseExp int64, cooldown time.Duration) ActivityService {
	return &activityService{
		payout:   payout,
		baseExp:  baseExp,
		cooldown: cooldown,
		last:     make(map[activityKey]time.Time),
	}
}

// OnMessage returns nil while the player is cooling down
func (s *activityService) OnMessage(ctx context.Context, guildID, playerID int64, at time.Time) (*Payout, error) {
	if s.baseExp <= 0 {
		return nil, nil
	}

	key := activityKey{guildID: guildID, playerID: playerID}
	previous, ok := s.claim(key, at)
	if !ok {
		return nil, nil
	}

	payout, err := s.payout.Award(ctx, guildID, playerID, models.Reward{Experience: s.baseExp}, "message")
	if err != nil {
		s.restore(key, at, previous)
		return nil, err
	}
	return payout, nil
}

// claim marks the player as rewarded at `at` unless still cooling down
func (s *activityService) claim(key activityKey, at time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, seen := s.last[key]
	if seen && at.Sub(previous) < s.cooldown {
		return previous, false
	}

	if len(s.last) >= pruneThreshold {
		for k, t := range s.last {
			if at.Sub(t) >= s.cooldown {
				delete(s.last, k)
			}
		}
	}
	s.last[key] = at
	return previous, true
}

// restore undoes a claim after a failed award so the next message can retry
func (s *activityService) restore(key activityKey, at, previous time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last[key].Equal(at) {
		if previous.IsZero() {
			delete(s.last, key)
		} else {
			s.last[key] = previous
		}
	}
}
