package service

import (
	"context"
	"fmt"
	"time"

	"arcade/events"
	"arcade/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var one = decimal.NewFromInt(1)

type modifierRegistry struct {
	uowFactory UnitOfWorkFactory
	world      GlobalModifierSource
	now        func() time.Time
}

// NewModifierRegistry creates a registry over stored personal modifiers and an
// optional world-state source for global anomalies
func NewModifierRegistry(uowFactory UnitOfWorkFactory, world GlobalModifierSource) ModifierRegistry {
	return &modifierRegistry{
		uowFactory: uowFactory,
		world:      world,
		now:        time.Now,
	}
}

// EffectiveMultiplier multiplies the strongest active personal modifier that
// applies to kind with the active global modifier. Personal boosters of
// different kinds never stack with each other. Expired personal modifiers
// contribute 1 and are deleted on the way.
func (r *modifierRegistry) EffectiveMultiplier(ctx context.Context, guildID, playerID int64, kind models.ModifierKind) (decimal.Decimal, error) {
	if !kind.IsValid() {
		return one, fmt.Errorf("%w: unknown kind %q", ErrInvalidModifier, kind)
	}
	now := r.now()

	personal, err := r.personal(ctx, guildID, playerID, now)
	if err != nil {
		return one, err
	}

	product := one
	for _, m := range personal {
		if m.AppliesTo(kind) {
			product = decimal.Max(product, atLeastOne(m.Multiplier))
		}
	}

	if global := r.activeGlobal(ctx, guildID, now); global != nil && global.AppliesTo(kind) {
		product = product.Mul(atLeastOne(global.Multiplier))
	}

	return product, nil
}

func (r *modifierRegistry) ActivatePersonal(ctx context.Context, guildID, playerID int64, kind models.ModifierKind, multiplier decimal.Decimal, duration time.Duration) (*models.Modifier, error) {
	uow := r.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	modifier, err := activatePersonal(ctx, uow, playerID, kind, multiplier, duration, "", r.now())
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return modifier, nil
}

func (r *modifierRegistry) CurrentGlobalModifier(ctx context.Context, guildID int64) (*models.Modifier, error) {
	if r.world == nil {
		return nil, nil
	}
	m, err := r.world.GetGlobalModifier(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to read global modifier: %w", err)
	}
	if m == nil || !m.IsActive(r.now()) {
		return nil, nil
	}
	return m, nil
}

func (r *modifierRegistry) ActiveModifiers(ctx context.Context, guildID, playerID int64) ([]*models.Modifier, error) {
	return r.personal(ctx, guildID, playerID, r.now())
}

// personal returns the player's active modifiers, deleting expired ones
func (r *modifierRegistry) personal(ctx context.Context, guildID, playerID int64, now time.Time) ([]*models.Modifier, error) {
	uow := r.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stored, err := uow.ModifierRepository().GetByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get modifiers: %w", err)
	}

	active := make([]*models.Modifier, 0, len(stored))
	expired := false
	for _, m := range stored {
		if m.IsActive(now) {
			active = append(active, m)
		} else {
			expired = true
		}
	}

	if expired {
		if _, err := uow.ModifierRepository().DeleteExpired(ctx, playerID, now); err != nil {
			log.WithFields(log.Fields{
				"guildID":  guildID,
				"playerID": playerID,
				"error":    err,
			}).Warn("Failed to delete expired modifiers")
			return active, nil
		}
		if err := uow.Commit(); err != nil {
			log.WithError(err).Warn("Failed to commit expired modifier cleanup")
		}
	}

	return active, nil
}

// activeGlobal reads the world state; a failing source counts as no anomaly
func (r *modifierRegistry) activeGlobal(ctx context.Context, guildID int64, now time.Time) *models.Modifier {
	if r.world == nil {
		return nil
	}
	m, err := r.world.GetGlobalModifier(ctx, guildID)
	if err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"error":   err,
		}).Warn("World state unavailable, ignoring global modifier")
		return nil
	}
	if m == nil || !m.IsActive(now) {
		return nil
	}
	return m
}

// activatePersonal validates and stores a booster inside an open unit of work.
// A newer booster of the same kind replaces the older one's multiplier and expiry.
func activatePersonal(ctx context.Context, uow UnitOfWork, playerID int64, kind models.ModifierKind, multiplier decimal.Decimal, duration time.Duration, name string, now time.Time) (*models.Modifier, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidModifier, kind)
	}
	if multiplier.LessThan(one) {
		return nil, fmt.Errorf("%w: multiplier %s is below 1", ErrInvalidModifier, multiplier)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration %s is not positive", ErrInvalidModifier, duration)
	}

	modifier := &models.Modifier{
		Scope:      models.ModifierScopePersonal,
		PlayerID:   playerID,
		Kind:       kind,
		Multiplier: multiplier,
		Name:       name,
		ExpiresAt:  now.Add(duration).UTC(),
	}
	if err := uow.ModifierRepository().Upsert(ctx, modifier); err != nil {
		return nil, fmt.Errorf("failed to store modifier: %w", err)
	}

	uow.EventBus().Publish(events.ModifierActivatedEvent{
		GuildID:    modifier.GuildID,
		PlayerID:   playerID,
		Kind:       kind,
		Multiplier: multiplier.String(),
		ExpiresAt:  modifier.ExpiresAt,
	})

	log.WithFields(log.Fields{
		"guildID":    modifier.GuildID,
		"playerID":   playerID,
		"kind":       kind,
		"multiplier": multiplier.String(),
		"expiresAt":  modifier.ExpiresAt,
	}).Info("Personal modifier activated")

	return modifier, nil
}

func atLeastOne(m decimal.Decimal) decimal.Decimal {
	if m.LessThan(one) {
		return one
	}
	return m
}
