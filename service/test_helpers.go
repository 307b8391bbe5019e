package service

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

const (
	TestGuildID  int64 = 1
	TestPlayerID int64 = 7
)

// TestMocks holds a unit of work wired to mock repositories
type TestMocks struct {
	Factory      *MockUnitOfWorkFactory
	UoW          *MockUnitOfWork
	PlayerRepo   *MockPlayerRepository
	HistoryRepo  *MockBalanceHistoryRepository
	ModifierRepo *MockModifierRepository
	Events       *MockEventPublisher
}

// NewTestMocks creates mocks where every CreateForGuild returns the same unit of work
// and Begin/Commit/Rollback succeed
func NewTestMocks() *TestMocks {
	m := &TestMocks{
		Factory:      new(MockUnitOfWorkFactory),
		UoW:          new(MockUnitOfWork),
		PlayerRepo:   new(MockPlayerRepository),
		HistoryRepo:  new(MockBalanceHistoryRepository),
		ModifierRepo: new(MockModifierRepository),
		Events:       new(MockEventPublisher),
	}
	m.UoW.SetRepositories(m.PlayerRepo, m.HistoryRepo, m.ModifierRepo, m.Events)
	m.Factory.On("CreateForGuild", mock.Anything).Return(m.UoW)
	m.UoW.On("Begin", mock.Anything).Return(nil)
	m.UoW.On("Rollback").Return(nil)
	return m
}

// ExpectCommit registers a successful commit
func (m *TestMocks) ExpectCommit() {
	m.UoW.On("Commit").Return(nil)
}

// AssertAllExpectations asserts all mock expectations
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.Factory.AssertExpectations(t)
	m.UoW.AssertExpectations(t)
	m.PlayerRepo.AssertExpectations(t)
	m.HistoryRepo.AssertExpectations(t)
	m.ModifierRepo.AssertExpectations(t)
	m.Events.AssertExpectations(t)
}
