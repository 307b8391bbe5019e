package service

import (
	"context"
	"fmt"

	"arcade/events"
	"arcade/models"

	log "github.com/sirupsen/logrus"
)

type ledgerService struct {
	uowFactory   UnitOfWorkFactory
	levelExpUnit int64
}

// NewLedgerService creates a ledger over guild-scoped units of work
func NewLedgerService(uowFactory UnitOfWorkFactory, levelExpUnit int64) LedgerService {
	if levelExpUnit <= 0 {
		levelExpUnit = models.DefaultLevelExpUnit
	}
	return &ledgerService{
		uowFactory:   uowFactory,
		levelExpUnit: levelExpUnit,
	}
}

func (s *ledgerService) GetAccount(ctx context.Context, guildID, playerID int64) (*models.Player, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if player == nil {
		return models.NewPlayer(guildID, playerID), nil
	}
	return player, nil
}

func (s *ledgerService) CreditCurrency(ctx context.Context, guildID, playerID, amount int64, txType models.TransactionType) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: credit of %d", ErrInvalidAmount, amount)
	}
	return s.changeBalance(ctx, guildID, playerID, amount, txType)
}

func (s *ledgerService) DebitCurrency(ctx context.Context, guildID, playerID, amount int64, txType models.TransactionType) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: debit of %d", ErrInvalidAmount, amount)
	}
	return s.changeBalance(ctx, guildID, playerID, -amount, txType)
}

func (s *ledgerService) changeBalance(ctx context.Context, guildID, playerID, delta int64, txType models.TransactionType) (int64, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	player, err := uow.PlayerRepository().GetOrCreateForUpdate(ctx, playerID)
	if err != nil {
		return 0, fmt.Errorf("failed to get player: %w", err)
	}

	if err := changeBalance(ctx, uow, player, delta, txType, nil); err != nil {
		return player.Balance, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return player.Balance, nil
}

func (s *ledgerService) CreditExperience(ctx context.Context, guildID, playerID, amount int64) (*events.LevelUpEvent, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: experience credit of %d", ErrInvalidAmount, amount)
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetOrCreateForUpdate(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	levelUp, err := creditExperience(ctx, uow, player, amount, s.levelExpUnit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if levelUp != nil {
		log.WithFields(log.Fields{
			"guildID":  guildID,
			"playerID": playerID,
			"oldLevel": levelUp.OldLevel,
			"newLevel": levelUp.NewLevel,
		}).Info("Player levelled up")
	}
	return levelUp, nil
}

func (s *ledgerService) Leaderboard(ctx context.Context, guildID int64, limit int, weekly bool) ([]*models.Player, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	players, err := uow.PlayerRepository().GetTop(ctx, limit, weekly)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return players, nil
}
