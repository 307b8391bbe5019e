package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMaintenanceStore struct {
	mock.Mock
}

func (m *mockMaintenanceStore) ResetWeeklyExperience(ctx context.Context, weekStart time.Time) (int64, bool, error) {
	args := m.Called(ctx, weekStart)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockMaintenanceStore) DeleteExpiredModifiers(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestMaintenance_ResetWeeklyUsesMondayUTC(t *testing.T) {
	store := &mockMaintenanceStore{}
	m := NewMaintenance(store)
	// Thursday afternoon
	m.now = func() time.Time { return time.Date(2026, 5, 7, 15, 30, 0, 0, time.UTC) }
	monday := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	store.On("ResetWeeklyExperience", mock.Anything, monday).Return(int64(12), true, nil).Once()
	store.On("ResetWeeklyExperience", mock.Anything, monday).Return(int64(0), false, nil).Once()

	require.NoError(t, m.ResetWeekly(context.Background()))
	require.NoError(t, m.ResetWeekly(context.Background()))
	store.AssertExpectations(t)
}

func TestMaintenance_Errors(t *testing.T) {
	store := &mockMaintenanceStore{}
	m := NewMaintenance(store)
	dbErr := errors.New("connection reset")

	store.On("ResetWeeklyExperience", mock.Anything, mock.Anything).Return(int64(0), false, dbErr)
	store.On("DeleteExpiredModifiers", mock.Anything, mock.Anything).Return(int64(0), dbErr)

	assert.ErrorIs(t, m.ResetWeekly(context.Background()), dbErr)
	assert.ErrorIs(t, m.SweepModifiers(context.Background()), dbErr)
}

func TestMaintenance_SweepModifiers(t *testing.T) {
	store := &mockMaintenanceStore{}
	m := NewMaintenance(store)
	now := time.Date(2026, 5, 7, 15, 30, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	store.On("DeleteExpiredModifiers", mock.Anything, now).Return(int64(3), nil)

	require.NoError(t, m.SweepModifiers(context.Background()))
	store.AssertExpectations(t)
}

func TestScheduler_RunsJobsOnStart(t *testing.T) {
	store := &mockMaintenanceStore{}
	reset := make(chan struct{}, 1)
	swept := make(chan struct{}, 1)
	store.On("ResetWeeklyExperience", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { reset <- struct{}{} }).
		Return(int64(0), false, nil)
	store.On("DeleteExpiredModifiers", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { swept <- struct{}{} }).
		Return(int64(0), nil)

	s, err := NewScheduler(NewMaintenance(store), time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer func() { assert.NoError(t, s.Shutdown()) }()

	for _, ch := range []chan struct{}{reset, swept} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run on start")
		}
	}
	assert.Len(t, s.sched.Jobs(), 2)
}
