package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"arcade/models"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "arcade:session:"

// releaseScript deletes the key only when it holds the expected session id
var releaseScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
	return false
end
if ARGV[1] ~= '' and cjson.decode(v)['id'] ~= ARGV[1] then
	return false
end
redis.call('DEL', KEYS[1])
return v
`)

// RedisStore shares channel occupancy between bot replicas. Each entry
// carries a TTL so a crashed process cannot block a channel forever.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(channelID int64) string {
	return keyPrefix + strconv.FormatInt(channelID, 10)
}

func (s *RedisStore) TryAcquire(ctx context.Context, session *models.ChannelSession) (bool, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return false, fmt.Errorf("failed to encode session: %w", err)
	}

	ok, err := s.client.SetNX(ctx, sessionKey(session.ChannelID), data, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire channel %d: %w", session.ChannelID, err)
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, channelID int64, sessionID string) (*models.ChannelSession, error) {
	raw, err := releaseScript.Run(ctx, s.client, []string{sessionKey(channelID)}, sessionID).Text()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to release channel %d: %w", channelID, err)
	}
	return decodeSession(raw)
}

func (s *RedisStore) Get(ctx context.Context, channelID int64) (*models.ChannelSession, error) {
	raw, err := s.client.Get(ctx, sessionKey(channelID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %d: %w", channelID, err)
	}
	return decodeSession(raw)
}

func (s *RedisStore) List(ctx context.Context) ([]*models.ChannelSession, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan sessions: %w", err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	out := make([]*models.ChannelSession, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // expired between SCAN and MGET
		}
		session, err := decodeSession(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out, nil
}

func decodeSession(raw string) (*models.ChannelSession, error) {
	var session models.ChannelSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}
