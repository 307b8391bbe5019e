package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"arcade/models"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const worldKeyPrefix = "arcade:world:"

func worldKey(guildID int64) string {
	return worldKeyPrefix + strconv.FormatInt(guildID, 10)
}

// RedisWorldState stores each guild's anomaly in Redis. The key expires
// together with the anomaly.
type RedisWorldState struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisWorldState(client *redis.Client) *RedisWorldState {
	return &RedisWorldState{client: client, now: time.Now}
}

// Publish makes m the guild's active anomaly, replacing any previous one
func (w *RedisWorldState) Publish(ctx context.Context, m *models.Modifier) error {
	ttl := m.Remaining(w.now())
	if ttl <= 0 {
		return fmt.Errorf("anomaly %q already expired at %s", m.Name, m.ExpiresAt)
	}

	global := *m
	global.Scope = models.ModifierScopeGlobal
	global.PlayerID = 0
	data, err := json.Marshal(global)
	if err != nil {
		return fmt.Errorf("failed to encode anomaly: %w", err)
	}

	if err := w.client.Set(ctx, worldKey(m.GuildID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to publish anomaly for guild %d: %w", m.GuildID, err)
	}

	log.WithFields(log.Fields{
		"guildID":    m.GuildID,
		"kind":       m.Kind,
		"multiplier": m.Multiplier.String(),
		"ttl":        ttl,
	}).Info("Published anomaly")
	return nil
}

// Clear ends the guild's anomaly early
func (w *RedisWorldState) Clear(ctx context.Context, guildID int64) error {
	if err := w.client.Del(ctx, worldKey(guildID)).Err(); err != nil {
		return fmt.Errorf("failed to clear anomaly for guild %d: %w", guildID, err)
	}
	return nil
}

// GetGlobalModifier returns the guild's anomaly, or nil if none is published
func (w *RedisWorldState) GetGlobalModifier(ctx context.Context, guildID int64) (*models.Modifier, error) {
	raw, err := w.client.Get(ctx, worldKey(guildID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read anomaly for guild %d: %w", guildID, err)
	}

	var m models.Modifier
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode anomaly for guild %d: %w", guildID, err)
	}
	return &m, nil
}

// StaticWorldState keeps anomalies in process memory
type StaticWorldState struct {
	mu        sync.RWMutex
	modifiers map[int64]*models.Modifier
}

func NewStaticWorldState() *StaticWorldState {
	return &StaticWorldState{modifiers: make(map[int64]*models.Modifier)}
}

func (w *StaticWorldState) Publish(ctx context.Context, m *models.Modifier) error {
	global := *m
	global.Scope = models.ModifierScopeGlobal
	global.PlayerID = 0

	w.mu.Lock()
	defer w.mu.Unlock()
	w.modifiers[m.GuildID] = &global
	return nil
}

func (w *StaticWorldState) Clear(ctx context.Context, guildID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.modifiers, guildID)
	return nil
}

// GetGlobalModifier returns the stored anomaly even after expiry; the
// registry ignores expired ones.
func (w *StaticWorldState) GetGlobalModifier(ctx context.Context, guildID int64) (*models.Modifier, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	m, ok := w.modifiers[guildID]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}
