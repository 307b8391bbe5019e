package service

import (
	"context"
	"errors"
	"testing"

	"arcade/events"
	"arcade/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_GetAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("missing account is zeroed", func(t *testing.T) {
		m := NewTestMocks()
		m.PlayerRepo.On("GetByID", ctx, TestPlayerID).Return(nil, nil)

		account, err := NewLedgerService(m.Factory, 3500).GetAccount(ctx, TestGuildID, TestPlayerID)
		require.NoError(t, err)
		assert.Equal(t, TestGuildID, account.GuildID)
		assert.Equal(t, int64(0), account.Balance)
		assert.Equal(t, int64(0), account.Level)
		m.AssertAllExpectations(t)
	})

	t.Run("existing account", func(t *testing.T) {
		m := NewTestMocks()
		existing := &models.Player{GuildID: TestGuildID, PlayerID: TestPlayerID, Balance: 42}
		m.PlayerRepo.On("GetByID", ctx, TestPlayerID).Return(existing, nil)

		account, err := NewLedgerService(m.Factory, 3500).GetAccount(ctx, TestGuildID, TestPlayerID)
		require.NoError(t, err)
		assert.Equal(t, int64(42), account.Balance)
	})

	t.Run("repository error", func(t *testing.T) {
		m := NewTestMocks()
		m.PlayerRepo.On("GetByID", ctx, TestPlayerID).Return(nil, errors.New("db down"))

		_, err := NewLedgerService(m.Factory, 3500).GetAccount(ctx, TestGuildID, TestPlayerID)
		assert.Error(t, err)
	})
}

func TestLedgerService_CreditCurrency(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	m.ExpectCommit()

	player := &models.Player{GuildID: TestGuildID, PlayerID: TestPlayerID, Balance: 100, Badges: []string{}}
	m.PlayerRepo.On("GetOrCreateForUpdate", ctx, TestPlayerID).Return(player, nil)
	m.PlayerRepo.On("Save", ctx, mock.MatchedBy(func(p *models.Player) bool { return p.Balance == 150 })).Return(nil)
	m.HistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.PlayerID == TestPlayerID &&
			h.BalanceBefore == 100 &&
			h.BalanceAfter == 150 &&
			h.ChangeAmount == 50 &&
			h.TransactionType == models.TransactionTypeReward
	})).Return(nil)
	m.Events.On("Publish", events.BalanceChangeEvent{
		GuildID:         TestGuildID,
		PlayerID:        TestPlayerID,
		OldBalance:      100,
		NewBalance:      150,
		TransactionType: models.TransactionTypeReward,
		ChangeAmount:    50,
	}).Return()

	balance, err := NewLedgerService(m.Factory, 3500).CreditCurrency(ctx, TestGuildID, TestPlayerID, 50, models.TransactionTypeReward)
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance)
	m.AssertAllExpectations(t)
}

func TestLedgerService_CreditCurrency_NegativeRejected(t *testing.T) {
	m := NewTestMocks()
	_, err := NewLedgerService(m.Factory, 3500).CreditCurrency(context.Background(), TestGuildID, TestPlayerID, -1, models.TransactionTypeReward)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	m.Factory.AssertNotCalled(t, "CreateForGuild", mock.Anything)
}

func TestLedgerService_DebitCurrency_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()

	player := &models.Player{GuildID: TestGuildID, PlayerID: TestPlayerID, Balance: 50}
	m.PlayerRepo.On("GetOrCreateForUpdate", ctx, TestPlayerID).Return(player, nil)

	balance, err := NewLedgerService(m.Factory, 3500).DebitCurrency(ctx, TestGuildID, TestPlayerID, 100, models.TransactionTypePurchase)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	var fundsErr *InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.Equal(t, int64(50), fundsErr.Have)
	assert.Equal(t, int64(100), fundsErr.Need)
	assert.Equal(t, int64(50), balance)

	m.PlayerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.UoW.AssertNotCalled(t, "Commit")
	m.UoW.AssertCalled(t, "Rollback")
}

func TestLedgerService_CreditExperience_LevelUp(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	m.ExpectCommit()

	player := &models.Player{GuildID: TestGuildID, PlayerID: TestPlayerID, Badges: []string{}}
	m.PlayerRepo.On("GetOrCreateForUpdate", ctx, TestPlayerID).Return(player, nil)
	m.PlayerRepo.On("Save", ctx, mock.Anything).Return(nil)
	expected := events.LevelUpEvent{GuildID: TestGuildID, PlayerID: TestPlayerID, OldLevel: 0, NewLevel: 1}
	m.Events.On("Publish", expected).Return()

	levelUp, err := NewLedgerService(m.Factory, 3500).CreditExperience(ctx, TestGuildID, TestPlayerID, 3500)
	require.NoError(t, err)
	require.NotNil(t, levelUp)
	assert.Equal(t, expected, *levelUp)
	assert.Equal(t, int64(3500), player.Experience)
	assert.Equal(t, int64(3500), player.WeeklyExperience)
	assert.Equal(t, int64(1), player.Level)
	m.AssertAllExpectations(t)
}

func TestLedgerService_CreditExperience_NoLevelUp(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	m.ExpectCommit()

	player := &models.Player{GuildID: TestGuildID, PlayerID: TestPlayerID, Experience: 100, Badges: []string{}}
	m.PlayerRepo.On("GetOrCreateForUpdate", ctx, TestPlayerID).Return(player, nil)
	m.PlayerRepo.On("Save", ctx, mock.Anything).Return(nil)

	levelUp, err := NewLedgerService(m.Factory, 3500).CreditExperience(ctx, TestGuildID, TestPlayerID, 15)
	require.NoError(t, err)
	assert.Nil(t, levelUp)
	assert.Equal(t, int64(115), player.Experience)
	m.Events.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestAddExperience_Badges(t *testing.T) {
	tests := []struct {
		name       string
		startExp   int64
		amount     int64
		wantLevel  int64
		wantBadges []string
		wantSignal bool
	}{
		{"below first threshold", 0, 400, 4, nil, true},
		{"reaches regular", 400, 100, 5, []string{"Regular"}, true},
		{"skips to veteran", 0, 1000, 10, []string{"Regular", "Veteran"}, true},
		{"within level", 510, 5, 5, []string{"Regular"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := models.NewPlayer(TestGuildID, TestPlayerID)
			player.Experience = tt.startExp
			player.Level = models.LevelForExperience(tt.startExp, 100)

			levelUp := addExperience(player, tt.amount, 100)
			assert.Equal(t, tt.wantLevel, player.Level)
			assert.Equal(t, tt.wantSignal, levelUp != nil)
			if tt.wantBadges == nil {
				assert.Empty(t, player.Badges)
			} else {
				assert.Equal(t, tt.wantBadges, player.Badges)
			}
		})
	}
}
