package testutil

import (
	"time"

	"arcade/models"

	"github.com/shopspring/decimal"
)

// CreateTestPlayer creates a player record with a balance and experience
func CreateTestPlayer(guildID, playerID, balance, experience int64) *models.Player {
	player := models.NewPlayer(guildID, playerID)
	player.Balance = balance
	player.Experience = experience
	player.WeeklyExperience = experience
	player.Level = models.LevelForExperience(experience, models.DefaultLevelExpUnit)
	return player
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(playerID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		PlayerID:        playerID,
		BalanceBefore:   1000,
		BalanceAfter:    900,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// CreateTestModifier creates a personal modifier expiring after ttl
func CreateTestModifier(guildID, playerID int64, kind models.ModifierKind, multiplier string, ttl time.Duration) *models.Modifier {
	return &models.Modifier{
		Scope:      models.ModifierScopePersonal,
		GuildID:    guildID,
		PlayerID:   playerID,
		Kind:       kind,
		Multiplier: decimal.RequireFromString(multiplier),
		Name:       "Test Booster",
		ExpiresAt:  time.Now().Add(ttl).UTC().Truncate(time.Microsecond),
	}
}
