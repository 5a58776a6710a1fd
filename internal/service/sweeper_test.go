package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"safewatch/internal/model"
)

// MockCache is a mock implementation of the sweeper's cache dependency.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func TestRetentionSweeper_RunOnce(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	retention := 24 * time.Hour
	cutoff := now.Add(-retention)

	stale1 := time.Date(2026, 5, 8, 12, 0, 0, 0, time.UTC)
	stale2 := time.Date(2026, 5, 9, 11, 0, 0, 0, time.UTC)
	eligible := []model.Incident{
		{ID: 1, Resolved: true, ResolvedAt: &stale1},
		{ID: 2, Resolved: true, ResolvedAt: &stale2},
	}

	mockRepo := NewMockIncidentRepository()
	mockRepo.On("ListResolvedBefore", mock.Anything, cutoff).Return(eligible, nil)
	mockRepo.On("Delete", mock.Anything, &eligible[0]).Return(nil)
	mockRepo.On("Delete", mock.Anything, &eligible[1]).Return(nil)

	sweeper := NewRetentionSweeper(mockRepo, nil, retention, time.Second)
	deleted, err := sweeper.RunOnce(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 2, deleted)
	mockRepo.AssertExpectations(t)
}

// A swept incident must also leave the read cache, or Get could serve it
// after it is gone from the store.
func TestRetentionSweeper_RunOnce_EvictsSweptIncidents(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	stale := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	eligible := []model.Incident{
		{ID: 4, Resolved: true, ResolvedAt: &stale},
		{ID: 9, Resolved: true, ResolvedAt: &stale},
	}

	mockRepo := NewMockIncidentRepository()
	mockRepo.On("ListResolvedBefore", mock.Anything, mock.AnythingOfType("time.Time")).Return(eligible, nil)
	mockRepo.On("Delete", mock.Anything, mock.AnythingOfType("*model.Incident")).Return(nil)

	mockCache := new(MockCache)
	mockCache.On("Delete", mock.Anything, "incident:4").Return(nil)
	mockCache.On("Delete", mock.Anything, "incident:9").Return(nil)

	sweeper := NewRetentionSweeper(mockRepo, mockCache, 24*time.Hour, time.Second)
	deleted, err := sweeper.RunOnce(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 2, deleted)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestRetentionSweeper_RunOnce_NothingEligible(t *testing.T) {
	now := time.Now().UTC()
	mockRepo := NewMockIncidentRepository()
	mockRepo.On("ListResolvedBefore", mock.Anything, mock.AnythingOfType("time.Time")).Return([]model.Incident{}, nil)

	sweeper := NewRetentionSweeper(mockRepo, nil, 24*time.Hour, time.Second)
	deleted, err := sweeper.RunOnce(context.Background(), now)

	assert.NoError(t, err)
	assert.Zero(t, deleted)
}

// A failed pass surfaces its error and evicts nothing.
func TestRetentionSweeper_RunOnce_StoreError(t *testing.T) {
	mockRepo := NewMockIncidentRepository()
	mockRepo.On("ListResolvedBefore", mock.Anything, mock.AnythingOfType("time.Time")).Return(nil, errors.New("store busy"))

	mockCache := new(MockCache)

	sweeper := NewRetentionSweeper(mockRepo, mockCache, 24*time.Hour, time.Second)
	deleted, err := sweeper.RunOnce(context.Background(), time.Now().UTC())

	assert.Error(t, err)
	assert.Zero(t, deleted)
	assert.Empty(t, mockCache.Calls)
}

// A failing tick must not stop the loop: the next tick runs and succeeds.
func TestRetentionSweeper_TickFailureIsolation(t *testing.T) {
	mockRepo := NewMockIncidentRepository()
	mockRepo.On("ListResolvedBefore", mock.Anything, mock.AnythingOfType("time.Time")).Return(nil, errors.New("store busy")).Once()
	mockRepo.On("ListResolvedBefore", mock.Anything, mock.AnythingOfType("time.Time")).Return([]model.Incident{}, nil)

	sweeper := NewRetentionSweeper(mockRepo, nil, time.Hour, 5*time.Millisecond)
	sweeper.Start(context.Background())

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, sweeper.Stop(ctx))

	// Both expectations consumed: the error tick happened and a later tick
	// completed cleanly.
	mockRepo.AssertExpectations(t)
}

func TestRetentionSweeper_StopWithoutStart(t *testing.T) {
	sweeper := NewRetentionSweeper(NewMockIncidentRepository(), nil, time.Hour, time.Second)
	assert.NoError(t, sweeper.Stop(context.Background()))
}

func TestRetentionSweeper_StartStop(t *testing.T) {
	mockRepo := NewMockIncidentRepository()
	mockRepo.On("ListResolvedBefore", mock.Anything, mock.AnythingOfType("time.Time")).Return([]model.Incident{}, nil).Maybe()

	sweeper := NewRetentionSweeper(mockRepo, nil, time.Hour, 10*time.Millisecond)
	sweeper.Start(context.Background())
	// Idempotent start
	sweeper.Start(context.Background())

	time.Sleep(30 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, sweeper.Stop(ctx))
}
