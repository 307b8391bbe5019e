package service

import (
	"context"
	"fmt"

	"arcade/events"
	"arcade/models"
)

// RecordBalanceChange records a balance history entry and queues a BalanceChangeEvent.
// This is the single entry point for all balance changes in the system.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		GuildID:         history.GuildID,
		PlayerID:        history.PlayerID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	return nil
}

// changeBalance applies delta to a locked player record, saves it and records history.
// Debits beyond the balance fail with *InsufficientFundsError and change nothing.
func changeBalance(ctx context.Context, uow UnitOfWork, player *models.Player, delta int64, txType models.TransactionType, metadata map[string]any) error {
	if delta < 0 && !player.CanAfford(-delta) {
		return &InsufficientFundsError{Have: player.Balance, Need: -delta}
	}
	if delta == 0 {
		return nil
	}

	before := player.Balance
	player.Balance += delta
	if err := uow.PlayerRepository().Save(ctx, player); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}

	return RecordBalanceChange(ctx, uow, &models.BalanceHistory{
		GuildID:             player.GuildID,
		PlayerID:            player.PlayerID,
		BalanceBefore:       before,
		BalanceAfter:        player.Balance,
		ChangeAmount:        delta,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	})
}

// addExperience credits experience on a player record in memory, recomputing the
// level and awarding threshold badges. It returns a level-up signal when the level rose.
func addExperience(player *models.Player, amount, levelExpUnit int64) *events.LevelUpEvent {
	oldLevel := player.Level
	player.Experience += amount
	player.WeeklyExperience += amount
	player.Level = models.LevelForExperience(player.Experience, levelExpUnit)

	var newBadges []string
	for _, badge := range models.BadgesUpTo(player.Level) {
		if player.AddBadge(badge) {
			newBadges = append(newBadges, badge)
		}
	}

	if player.Level <= oldLevel {
		return nil
	}
	return &events.LevelUpEvent{
		GuildID:   player.GuildID,
		PlayerID:  player.PlayerID,
		OldLevel:  oldLevel,
		NewLevel:  player.Level,
		NewBadges: newBadges,
	}
}

// creditExperience applies addExperience to a locked record, saves it and queues the level-up
func creditExperience(ctx context.Context, uow UnitOfWork, player *models.Player, amount, levelExpUnit int64) (*events.LevelUpEvent, error) {
	if amount == 0 {
		return nil, nil
	}

	levelUp := addExperience(player, amount, levelExpUnit)
	if err := uow.PlayerRepository().Save(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to save player: %w", err)
	}
	if levelUp != nil {
		uow.EventBus().Publish(*levelUp)
	}
	return levelUp, nil
}
