package service

import (
	"context"
	"time"

	"arcade/events"
	"arcade/models"

	"github.com/shopspring/decimal"
)

// PlayerRepository defines guild-scoped access to ledger records
type PlayerRepository interface {
	// GetByID returns the player's record, or nil if the player was never touched
	GetByID(ctx context.Context, playerID int64) (*models.Player, error)

	// GetOrCreateForUpdate returns the record, creating a zeroed one if missing,
	// and locks it for the rest of the unit of work
	GetOrCreateForUpdate(ctx context.Context, playerID int64) (*models.Player, error)

	// Save writes the full record back
	Save(ctx context.Context, player *models.Player) error

	// GetTop returns players ordered by total or weekly experience
	GetTop(ctx context.Context, limit int, weekly bool) ([]*models.Player, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByPlayer returns the most recent entries for a player
	GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*models.BalanceHistory, error)
}

// ModifierRepository defines guild-scoped access to personal modifiers
type ModifierRepository interface {
	// GetByPlayer returns every stored modifier for a player, expired ones included
	GetByPlayer(ctx context.Context, playerID int64) ([]*models.Modifier, error)

	// Upsert stores the modifier, replacing any existing one of the same kind
	Upsert(ctx context.Context, modifier *models.Modifier) error

	// DeleteExpired removes the player's modifiers that expired at or before now
	DeleteExpired(ctx context.Context, playerID int64, now time.Time) (int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups repository calls for one guild into a single atomic change.
// Events published on EventBus are delivered only after Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PlayerRepository() PlayerRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	ModifierRepository() ModifierRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates guild-scoped units of work
type UnitOfWorkFactory interface {
	CreateForGuild(guildID int64) UnitOfWork
}

// GlobalModifierSource is the read side of the world-state publisher
type GlobalModifierSource interface {
	// GetGlobalModifier returns the guild's published anomaly, or nil if none
	GetGlobalModifier(ctx context.Context, guildID int64) (*models.Modifier, error)
}

// MaintenanceStore runs batch jobs across all guilds
type MaintenanceStore interface {
	// ResetWeeklyExperience zeroes weekly experience once per week. It reports
	// ran=false when the week starting at weekStart was already reset.
	ResetWeeklyExperience(ctx context.Context, weekStart time.Time) (rows int64, ran bool, err error)

	// DeleteExpiredModifiers garbage-collects expired personal modifiers
	DeleteExpiredModifiers(ctx context.Context, now time.Time) (int64, error)
}

// LedgerService is the durable currency and experience record
type LedgerService interface {
	// GetAccount returns the player's record, zeroed if it does not exist
	GetAccount(ctx context.Context, guildID, playerID int64) (*models.Player, error)

	// CreditCurrency adds amount to the balance and returns the new balance
	CreditCurrency(ctx context.Context, guildID, playerID, amount int64, txType models.TransactionType) (int64, error)

	// DebitCurrency removes amount from the balance or fails with ErrInsufficientFunds
	DebitCurrency(ctx context.Context, guildID, playerID, amount int64, txType models.TransactionType) (int64, error)

	// CreditExperience adds experience and returns a level-up signal when the level increased
	CreditExperience(ctx context.Context, guildID, playerID, amount int64) (*events.LevelUpEvent, error)

	// Leaderboard returns the top players by total or weekly experience
	Leaderboard(ctx context.Context, guildID int64, limit int, weekly bool) ([]*models.Player, error)
}

// ModifierRegistry tracks active reward multipliers
type ModifierRegistry interface {
	// EffectiveMultiplier returns the product of the active personal and global multipliers, at least 1
	EffectiveMultiplier(ctx context.Context, guildID, playerID int64, kind models.ModifierKind) (decimal.Decimal, error)

	// ActivatePersonal stores a booster, overwriting any active one of the same kind
	ActivatePersonal(ctx context.Context, guildID, playerID int64, kind models.ModifierKind, multiplier decimal.Decimal, duration time.Duration) (*models.Modifier, error)

	// CurrentGlobalModifier returns the guild's active anomaly, or nil
	CurrentGlobalModifier(ctx context.Context, guildID int64) (*models.Modifier, error)

	// ActiveModifiers returns the player's active personal modifiers
	ActiveModifiers(ctx context.Context, guildID, playerID int64) ([]*models.Modifier, error)
}

// PayoutService applies modifiers to a base reward and credits the result
type PayoutService interface {
	Award(ctx context.Context, guildID, playerID int64, base models.Reward, reason string) (*Payout, error)
}

// ShopService sells boosters
type ShopService interface {
	Catalog() []ShopItem
	Purchase(ctx context.Context, guildID, playerID int64, itemID string) (*Purchase, error)
}

// ActivityService rewards chat activity
type ActivityService interface {
	OnMessage(ctx context.Context, guildID, playerID int64, at time.Time) (*Payout, error)
}
