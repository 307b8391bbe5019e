package service

import (
	"context"
	"fmt"

	"arcade/events"
	"arcade/models"

	"github.com/shopspring/decimal"
)

// Payout is the outcome of one reward: what was asked for, what was credited and why
type Payout struct {
	Base                 models.Reward
	Final                models.Reward
	CurrencyMultiplier   decimal.Decimal
	ExperienceMultiplier decimal.Decimal
	Balance              int64
	LevelUp              *events.LevelUpEvent
}

type payoutService struct {
	uowFactory   UnitOfWorkFactory
	registry     ModifierRegistry
	levelExpUnit int64
}

// NewPayoutService creates the reward pipeline: modifiers, calculator, ledger
func NewPayoutService(uowFactory UnitOfWorkFactory, registry ModifierRegistry, levelExpUnit int64) PayoutService {
	if levelExpUnit <= 0 {
		levelExpUnit = models.DefaultLevelExpUnit
	}
	return &payoutService{
		uowFactory:   uowFactory,
		registry:     registry,
		levelExpUnit: levelExpUnit,
	}
}

// Award multiplies base by the player's effective multipliers and credits both
// fields in a single unit of work. A repeated call pays again.
func (s *payoutService) Award(ctx context.Context, guildID, playerID int64, base models.Reward, reason string) (*Payout, error) {
	if base.Currency < 0 || base.Experience < 0 {
		return nil, fmt.Errorf("%w: negative reward %+v", ErrInvalidAmount, base)
	}

	currencyMul, err := s.registry.EffectiveMultiplier(ctx, guildID, playerID, models.ModifierKindCurrencyBoost)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency multiplier: %w", err)
	}
	experienceMul, err := s.registry.EffectiveMultiplier(ctx, guildID, playerID, models.ModifierKindExperienceBoost)
	if err != nil {
		return nil, fmt.Errorf("failed to get experience multiplier: %w", err)
	}

	payout := &Payout{
		Base:                 base,
		Final:                ComputeSplit(base, currencyMul, experienceMul),
		CurrencyMultiplier:   currencyMul,
		ExperienceMultiplier: experienceMul,
	}

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	player, err := uow.PlayerRepository().GetOrCreateForUpdate(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	metadata := map[string]any{
		"reason":     reason,
		"base":       base.Currency,
		"multiplier": currencyMul.String(),
	}
	if err := changeBalance(ctx, uow, player, payout.Final.Currency, models.TransactionTypeReward, metadata); err != nil {
		return nil, fmt.Errorf("failed to credit currency: %w", err)
	}

	payout.LevelUp, err = creditExperience(ctx, uow, player, payout.Final.Experience, s.levelExpUnit)
	if err != nil {
		return nil, fmt.Errorf("failed to credit experience: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	payout.Balance = player.Balance
	return payout, nil
}
