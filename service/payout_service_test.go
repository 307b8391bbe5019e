package service

import (
	"context"
	"errors"
	"testing"

	"arcade/events"
	"arcade/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPayoutService_Award(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	m.ExpectCommit()

	registry := new(MockModifierRegistry)
	registry.On("EffectiveMultiplier", ctx, TestGuildID, TestPlayerID, models.ModifierKindCurrencyBoost).
		Return(decimal.RequireFromString("1.5"), nil)
	registry.On("EffectiveMultiplier", ctx, TestGuildID, TestPlayerID, models.ModifierKindExperienceBoost).
		Return(decimal.RequireFromString("3"), nil)

	player := &models.Player{GuildID: TestGuildID, PlayerID: TestPlayerID, Balance: 10, Experience: 3450, Level: 0, Badges: []string{}}
	m.PlayerRepo.On("GetOrCreateForUpdate", ctx, TestPlayerID).Return(player, nil)
	m.PlayerRepo.On("Save", ctx, mock.Anything).Return(nil)
	m.HistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.ChangeAmount == 45 &&
			h.TransactionType == models.TransactionTypeReward &&
			h.TransactionMetadata["reason"] == "quiz"
	})).Return(nil)
	m.Events.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()
	m.Events.On("Publish", events.LevelUpEvent{GuildID: TestGuildID, PlayerID: TestPlayerID, OldLevel: 0, NewLevel: 1}).Return()

	payout, err := NewPayoutService(m.Factory, registry, 3500).
		Award(ctx, TestGuildID, TestPlayerID, models.Reward{Currency: 30, Experience: 30}, "quiz")
	require.NoError(t, err)

	assert.Equal(t, models.Reward{Currency: 30, Experience: 30}, payout.Base)
	assert.Equal(t, models.Reward{Currency: 45, Experience: 90}, payout.Final)
	assert.Equal(t, int64(55), payout.Balance)
	require.NotNil(t, payout.LevelUp)
	assert.Equal(t, int64(1), payout.LevelUp.NewLevel)
	assert.Equal(t, int64(3540), player.Experience)
	m.AssertAllExpectations(t)
	registry.AssertExpectations(t)
}

func TestPayoutService_Award_RegistryErrorAbortsBeforeCredit(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()

	registry := new(MockModifierRegistry)
	registry.On("EffectiveMultiplier", ctx, TestGuildID, TestPlayerID, models.ModifierKindCurrencyBoost).
		Return(one, errors.New("db down"))

	_, err := NewPayoutService(m.Factory, registry, 3500).
		Award(ctx, TestGuildID, TestPlayerID, models.Reward{Currency: 10}, "quiz")
	assert.Error(t, err)
	m.PlayerRepo.AssertNotCalled(t, "GetOrCreateForUpdate", mock.Anything, mock.Anything)
}

func TestPayoutService_Award_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()

	registry := new(MockModifierRegistry)
	registry.On("EffectiveMultiplier", ctx, TestGuildID, TestPlayerID, mock.Anything).Return(one, nil)

	m.PlayerRepo.On("GetOrCreateForUpdate", ctx, TestPlayerID).Return(models.NewPlayer(TestGuildID, TestPlayerID), nil)
	m.PlayerRepo.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))

	_, err := NewPayoutService(m.Factory, registry, 3500).
		Award(ctx, TestGuildID, TestPlayerID, models.Reward{Currency: 10, Experience: 10}, "quiz")
	assert.Error(t, err)
	m.UoW.AssertNotCalled(t, "Commit")
	m.UoW.AssertCalled(t, "Rollback")
}

func TestPayoutService_Award_NegativeRejected(t *testing.T) {
	m := NewTestMocks()
	_, err := NewPayoutService(m.Factory, new(MockModifierRegistry), 3500).
		Award(context.Background(), TestGuildID, TestPlayerID, models.Reward{Currency: -1}, "quiz")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
