package infrastructure

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"arcade/models"

	"github.com/go-redis/redismock/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAnomaly(now time.Time) *models.Modifier {
	return &models.Modifier{
		Scope:      models.ModifierScopeGlobal,
		GuildID:    1,
		Kind:       models.ModifierKindExperienceBoost,
		Multiplier: decimal.RequireFromString("1.5"),
		Name:       "Solar flare",
		ExpiresAt:  now.Add(30 * time.Minute),
		CreatedAt:  now,
	}
}

func TestRedisWorldState_Publish(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	anomaly := testAnomaly(now)
	data, err := json.Marshal(anomaly)
	require.NoError(t, err)

	client, mock := redismock.NewClientMock()
	mock.ExpectSet("arcade:world:1", data, 30*time.Minute).SetVal("OK")

	world := NewRedisWorldState(client)
	world.now = func() time.Time { return now }

	require.NoError(t, world.Publish(context.Background(), anomaly))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisWorldState_PublishExpired(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	anomaly := testAnomaly(now)

	client, mock := redismock.NewClientMock()
	world := NewRedisWorldState(client)
	world.now = func() time.Time { return now.Add(time.Hour) }

	assert.Error(t, world.Publish(context.Background(), anomaly))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisWorldState_GetGlobalModifier(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	anomaly := testAnomaly(now)
	data, err := json.Marshal(anomaly)
	require.NoError(t, err)

	client, mock := redismock.NewClientMock()
	mock.ExpectGet("arcade:world:1").SetVal(string(data))
	mock.ExpectGet("arcade:world:2").RedisNil()
	mock.ExpectGet("arcade:world:3").SetVal("not json")
	world := NewRedisWorldState(client)

	got, err := world.GetGlobalModifier(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Multiplier.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, models.ModifierKindExperienceBoost, got.Kind)
	assert.True(t, anomaly.ExpiresAt.Equal(got.ExpiresAt))

	got, err = world.GetGlobalModifier(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = world.GetGlobalModifier(context.Background(), 3)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisWorldState_Clear(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectDel("arcade:world:1").SetVal(1)

	require.NoError(t, NewRedisWorldState(client).Clear(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaticWorldState(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	world := NewStaticWorldState()

	got, err := world.GetGlobalModifier(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	anomaly := testAnomaly(now)
	anomaly.PlayerID = 99
	require.NoError(t, world.Publish(ctx, anomaly))

	got, err = world.GetGlobalModifier(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Zero(t, got.PlayerID)
	assert.Equal(t, models.ModifierScopeGlobal, got.Scope)

	require.NoError(t, world.Clear(ctx, 1))
	got, err = world.GetGlobalModifier(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}
