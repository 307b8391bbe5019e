package service

import (
	"context"
	"time"

	"arcade/events"
	"arcade/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPlayerRepository is a mock implementation of PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) GetByID(ctx context.Context, playerID int64) (*models.Player, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetOrCreateForUpdate(ctx context.Context, playerID int64) (*models.Player, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) Save(ctx context.Context, player *models.Player) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetTop(ctx context.Context, limit int, weekly bool) ([]*models.Player, error) {
	args := m.Called(ctx, limit, weekly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Player), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockModifierRepository is a mock implementation of ModifierRepository
type MockModifierRepository struct {
	mock.Mock
}

func (m *MockModifierRepository) GetByPlayer(ctx context.Context, playerID int64) ([]*models.Modifier, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Modifier), args.Error(1)
}

func (m *MockModifierRepository) Upsert(ctx context.Context, modifier *models.Modifier) error {
	args := m.Called(ctx, modifier)
	return args.Error(0)
}

func (m *MockModifierRepository) DeleteExpired(ctx context.Context, playerID int64, now time.Time) (int64, error) {
	args := m.Called(ctx, playerID, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock UnitOfWork whose repositories are set directly
type MockUnitOfWork struct {
	mock.Mock
	playerRepo         PlayerRepository
	balanceHistoryRepo BalanceHistoryRepository
	modifierRepo       ModifierRepository
	eventBus           EventPublisher
}

// SetRepositories wires the repositories returned by the unit of work
func (m *MockUnitOfWork) SetRepositories(players PlayerRepository, history BalanceHistoryRepository, modifiers ModifierRepository, bus EventPublisher) {
	m.playerRepo = players
	m.balanceHistoryRepo = history
	m.modifierRepo = modifiers
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) PlayerRepository() PlayerRepository                 { return m.playerRepo }
func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository { return m.balanceHistoryRepo }
func (m *MockUnitOfWork) ModifierRepository() ModifierRepository             { return m.modifierRepo }
func (m *MockUnitOfWork) EventBus() EventPublisher                           { return m.eventBus }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	args := m.Called(guildID)
	return args.Get(0).(UnitOfWork)
}

// MockGlobalModifierSource is a mock implementation of GlobalModifierSource
type MockGlobalModifierSource struct {
	mock.Mock
}

func (m *MockGlobalModifierSource) GetGlobalModifier(ctx context.Context, guildID int64) (*models.Modifier, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Modifier), args.Error(1)
}

// MockModifierRegistry is a mock implementation of ModifierRegistry
type MockModifierRegistry struct {
	mock.Mock
}

func (m *MockModifierRegistry) EffectiveMultiplier(ctx context.Context, guildID, playerID int64, kind models.ModifierKind) (decimal.Decimal, error) {
	args := m.Called(ctx, guildID, playerID, kind)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockModifierRegistry) ActivatePersonal(ctx context.Context, guildID, playerID int64, kind models.ModifierKind, multiplier decimal.Decimal, duration time.Duration) (*models.Modifier, error) {
	args := m.Called(ctx, guildID, playerID, kind, multiplier, duration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Modifier), args.Error(1)
}

func (m *MockModifierRegistry) CurrentGlobalModifier(ctx context.Context, guildID int64) (*models.Modifier, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Modifier), args.Error(1)
}

func (m *MockModifierRegistry) ActiveModifiers(ctx context.Context, guildID, playerID int64) ([]*models.Modifier, error) {
	args := m.Called(ctx, guildID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Modifier), args.Error(1)
}

// MockPayoutService is a mock implementation of PayoutService
type MockPayoutService struct {
	mock.Mock
}

func (m *MockPayoutService) Award(ctx context.Context, guildID, playerID int64, base models.Reward, reason string) (*Payout, error) {
	args := m.Called(ctx, guildID, playerID, base, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payout), args.Error(1)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetAccount(ctx context.Context, guildID, playerID int64) (*models.Player, error) {
	args := m.Called(ctx, guildID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockLedgerService) CreditCurrency(ctx context.Context, guildID, playerID, amount int64, txType models.TransactionType) (int64, error) {
	args := m.Called(ctx, guildID, playerID, amount, txType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) DebitCurrency(ctx context.Context, guildID, playerID, amount int64, txType models.TransactionType) (int64, error) {
	args := m.Called(ctx, guildID, playerID, amount, txType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) CreditExperience(ctx context.Context, guildID, playerID, amount int64) (*events.LevelUpEvent, error) {
	args := m.Called(ctx, guildID, playerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*events.LevelUpEvent), args.Error(1)
}

func (m *MockLedgerService) Leaderboard(ctx context.Context, guildID int64, limit int, weekly bool) ([]*models.Player, error) {
	args := m.Called(ctx, guildID, limit, weekly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Player), args.Error(1)
}
