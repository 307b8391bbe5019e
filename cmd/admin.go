package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arcade/config"
	"arcade/events"
	"arcade/infrastructure"
	"arcade/models"
	"arcade/service"
	"arcade/worker"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ResetWeekly runs the weekly experience reset once
func ResetWeekly(ctx context.Context) error {
	cfg := config.Get()
	store, err := openStorage(ctx, cfg, events.NewBus())
	if err != nil {
		return err
	}
	defer store.close()

	return worker.NewMaintenance(store.maintenance).ResetWeekly(ctx)
}

// AdjustBalance credits or debits a player's balance as an admin adjustment
func AdjustBalance(ctx context.Context, guildID, playerID, amount int64) error {
	if amount == 0 {
		return service.ErrInvalidAmount
	}

	cfg := config.Get()
	store, err := openStorage(ctx, cfg, events.NewBus())
	if err != nil {
		return err
	}
	defer store.close()

	ledger := service.NewLedgerService(store.uowFactory, cfg.LevelExpUnit)

	var balance int64
	if amount > 0 {
		balance, err = ledger.CreditCurrency(ctx, guildID, playerID, amount, models.TransactionTypeAdminAdjust)
	} else {
		balance, err = ledger.DebitCurrency(ctx, guildID, playerID, -amount, models.TransactionTypeAdminAdjust)
	}
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":    guildID,
		"playerID":   playerID,
		"amount":     amount,
		"newBalance": balance,
	}).Info("Adjusted balance")
	return nil
}

// validateAnomaly rejects anomalies that could never raise a reward
func validateAnomaly(multiplier decimal.Decimal, duration time.Duration) error {
	if multiplier.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("multiplier must be at least 1, got %s", multiplier)
	}
	if duration <= 0 {
		return errors.New("duration must be positive")
	}
	return nil
}

// PublishAnomaly starts a guild-wide modifier shared by every replica through Redis
func PublishAnomaly(ctx context.Context, guildID int64, kind models.ModifierKind, multiplier decimal.Decimal, duration time.Duration, name string) error {
	if !kind.IsValid() {
		return fmt.Errorf("unknown modifier kind %q", kind)
	}
	if err := validateAnomaly(multiplier, duration); err != nil {
		return err
	}

	cfg := config.Get()
	if !cfg.RedisEnabled() {
		return errors.New("REDIS_URL is required to publish an anomaly")
	}
	client, err := openRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	now := time.Now()
	return infrastructure.NewRedisWorldState(client).Publish(ctx, &models.Modifier{
		Scope:      models.ModifierScopeGlobal,
		GuildID:    guildID,
		Kind:       kind,
		Multiplier: multiplier,
		Name:       name,
		ExpiresAt:  now.Add(duration),
		CreatedAt:  now,
	})
}
