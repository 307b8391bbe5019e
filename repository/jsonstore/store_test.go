package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"arcade/events"
	"arcade/models"
	"arcade/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guildID int64 = 1

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), events.NewBus(), models.DefaultLevelExpUnit)
	require.NoError(t, err)
	return store
}

func TestStore_CommitPersistsAcrossStores(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	uow := store.CreateForGuild(guildID)
	require.NoError(t, uow.Begin(ctx))
	player, err := uow.PlayerRepository().GetOrCreateForUpdate(ctx, 7)
	require.NoError(t, err)
	player.Balance = 120
	player.AddBadge("Regular")
	require.NoError(t, uow.PlayerRepository().Save(ctx, player))
	require.NoError(t, uow.ModifierRepository().Upsert(ctx, &models.Modifier{
		PlayerID:   7,
		Kind:       models.ModifierKindExperienceBoost,
		Multiplier: decimal.NewFromFloat(1.5),
		ExpiresAt:  time.Now().Add(time.Hour),
	}))
	require.NoError(t, uow.Commit())

	reopened, err := NewStore(store.dir, events.NewBus(), models.DefaultLevelExpUnit)
	require.NoError(t, err)

	uow = reopened.CreateForGuild(guildID)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	stored, err := uow.PlayerRepository().GetByID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(120), stored.Balance)
	assert.Equal(t, []string{"Regular"}, stored.Badges)
	assert.Equal(t, guildID, stored.GuildID)

	mods, err := uow.ModifierRepository().GetByPlayer(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.True(t, mods[0].Multiplier.Equal(decimal.NewFromFloat(1.5)))
	assert.Equal(t, models.ModifierScopePersonal, mods[0].Scope)
}

func TestStore_RollbackDiscardsChanges(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	uow := store.CreateForGuild(guildID)
	require.NoError(t, uow.Begin(ctx))
	player, err := uow.PlayerRepository().GetOrCreateForUpdate(ctx, 7)
	require.NoError(t, err)
	player.Balance = 50
	require.NoError(t, uow.PlayerRepository().Save(ctx, player))
	require.NoError(t, uow.Rollback())

	_, err = os.Stat(store.path(guildID))
	assert.True(t, os.IsNotExist(err))

	uow = store.CreateForGuild(guildID)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	stored, err := uow.PlayerRepository().GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestStore_CorruptFileStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.path(guildID), []byte("{not json"), 0o644))

	uow := store.CreateForGuild(guildID)
	require.NoError(t, uow.Begin(ctx))
	player, err := uow.PlayerRepository().GetOrCreateForUpdate(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), player.Balance)
	player.Balance = 10
	require.NoError(t, uow.PlayerRepository().Save(ctx, player))
	require.NoError(t, uow.Commit())

	data, err := os.ReadFile(store.path(guildID))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"balance": 10`)
}

func TestStore_MalformedRecordsAreRepaired(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		verify func(t *testing.T, uow service.UnitOfWork)
	}{
		{
			name: "null player is dropped",
			file: `{"players":{"7":null,"8":{"player_id":8,"balance":5}}}`,
			verify: func(t *testing.T, uow service.UnitOfWork) {
				p, err := uow.PlayerRepository().GetByID(context.Background(), 7)
				require.NoError(t, err)
				assert.Nil(t, p)
				other, err := uow.PlayerRepository().GetByID(context.Background(), 8)
				require.NoError(t, err)
				require.NotNil(t, other)
				assert.Equal(t, int64(5), other.Balance)
			},
		},
		{
			name: "null modifier is dropped",
			file: `{"modifiers":{"7":{"both":null}}}`,
			verify: func(t *testing.T, uow service.UnitOfWork) {
				mods, err := uow.ModifierRepository().GetByPlayer(context.Background(), 7)
				require.NoError(t, err)
				assert.Empty(t, mods)
				n, err := uow.ModifierRepository().DeleteExpired(context.Background(), 7, time.Now())
				require.NoError(t, err)
				assert.Equal(t, int64(0), n)
			},
		},
		{
			name: "negative amounts are clamped and level recomputed",
			file: `{"players":{"7":{"player_id":7,"balance":-50,"debt":-3,"experience":7000,"weekly_experience":-1,"level":0}}}`,
			verify: func(t *testing.T, uow service.UnitOfWork) {
				p, err := uow.PlayerRepository().GetByID(context.Background(), 7)
				require.NoError(t, err)
				require.NotNil(t, p)
				assert.Equal(t, int64(0), p.Balance)
				assert.Equal(t, int64(0), p.Debt)
				assert.Equal(t, int64(7000), p.Experience)
				assert.Equal(t, int64(0), p.WeeklyExperience)
				assert.Equal(t, int64(2), p.Level)
				assert.Equal(t, []string{}, p.Badges)
			},
		},
		{
			name: "negative experience is clamped",
			file: `{"players":{"7":{"player_id":7,"experience":-10,"level":4}}}`,
			verify: func(t *testing.T, uow service.UnitOfWork) {
				p, err := uow.PlayerRepository().GetByID(context.Background(), 7)
				require.NoError(t, err)
				require.NotNil(t, p)
				assert.Equal(t, int64(0), p.Experience)
				assert.Equal(t, int64(0), p.Level)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newTestStore(t)
			require.NoError(t, os.WriteFile(store.path(guildID), []byte(tt.file), 0o644))

			uow := store.CreateForGuild(guildID)
			require.NotPanics(t, func() { require.NoError(t, uow.Begin(ctx)) })
			tt.verify(t, uow)
			require.NoError(t, uow.Rollback())

			// The guild stays usable for later units of work and maintenance
			_, err := store.DeleteExpiredModifiers(ctx, time.Now())
			require.NoError(t, err)
			_, _, err = store.ResetWeeklyExperience(ctx, time.Now())
			require.NoError(t, err)
		})
	}
}

func TestStore_EventsFlushOnlyOnCommit(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	store, err := NewStore(t.TempDir(), bus, models.DefaultLevelExpUnit)
	require.NoError(t, err)

	received := make(chan events.Event, 2)
	bus.Subscribe(events.EventTypeLevelUp, func(ctx context.Context, e events.Event) {
		received <- e
	})

	rolledBack := store.CreateForGuild(guildID)
	require.NoError(t, rolledBack.Begin(ctx))
	rolledBack.EventBus().Publish(events.LevelUpEvent{PlayerID: 1})
	require.NoError(t, rolledBack.Rollback())

	committed := store.CreateForGuild(guildID)
	require.NoError(t, committed.Begin(ctx))
	committed.EventBus().Publish(events.LevelUpEvent{PlayerID: 2})
	require.NoError(t, committed.Commit())

	select {
	case e := <-received:
		assert.Equal(t, int64(2), e.(events.LevelUpEvent).PlayerID)
	case <-time.After(2 * time.Second):
		t.Fatal("committed event not delivered")
	}
	select {
	case e := <-received:
		t.Fatalf("unexpected event %v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStore_HistoryAndTop(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	uow := store.CreateForGuild(guildID)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	for id, exp := range map[int64]int64{1: 10, 2: 30, 3: 20, 4: 0} {
		p := models.NewPlayer(guildID, id)
		p.Experience = exp
		p.WeeklyExperience = exp / 10
		require.NoError(t, uow.PlayerRepository().Save(ctx, p))
	}

	top, err := uow.PlayerRepository().GetTop(ctx, 2, false)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].PlayerID)
	assert.Equal(t, int64(3), top[1].PlayerID)

	weekly, err := uow.PlayerRepository().GetTop(ctx, 10, true)
	require.NoError(t, err)
	assert.Len(t, weekly, 3)

	for i := 0; i < historyLimit+5; i++ {
		require.NoError(t, uow.BalanceHistoryRepository().Record(ctx, &models.BalanceHistory{
			PlayerID:        int64(i % 2),
			ChangeAmount:    int64(i),
			TransactionType: models.TransactionTypeReward,
		}))
	}

	entries, err := uow.BalanceHistoryRepository().GetByPlayer(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(historyLimit+3), entries[0].ChangeAmount)
	assert.Equal(t, int64(historyLimit+1), entries[1].ChangeAmount)
}

func TestStore_Maintenance(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

	for _, g := range []int64{1, 2} {
		uow := store.CreateForGuild(g)
		require.NoError(t, uow.Begin(ctx))
		p := models.NewPlayer(g, 7)
		p.Experience = 100
		p.WeeklyExperience = 100
		require.NoError(t, uow.PlayerRepository().Save(ctx, p))
		require.NoError(t, uow.ModifierRepository().Upsert(ctx, &models.Modifier{
			PlayerID:   7,
			Kind:       models.ModifierKindCurrencyBoost,
			Multiplier: decimal.NewFromInt(2),
			ExpiresAt:  now.Add(-time.Minute),
		}))
		require.NoError(t, uow.ModifierRepository().Upsert(ctx, &models.Modifier{
			PlayerID:   7,
			Kind:       models.ModifierKindExperienceBoost,
			Multiplier: decimal.NewFromInt(2),
			ExpiresAt:  now.Add(time.Hour),
		}))
		require.NoError(t, uow.Commit())
	}
	// Stray files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, "guild_abc.json"), []byte("{}"), 0o644))

	rows, ran, err := store.ResetWeeklyExperience(ctx, now)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, int64(2), rows)

	_, ran, err = store.ResetWeeklyExperience(ctx, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, ran)

	deleted, err := store.DeleteExpiredModifiers(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	uow := store.CreateForGuild(1)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	p, err := uow.PlayerRepository().GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.WeeklyExperience)
	assert.Equal(t, int64(100), p.Experience)
	mods, err := uow.ModifierRepository().GetByPlayer(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, models.ModifierKindExperienceBoost, mods[0].Kind)
}
