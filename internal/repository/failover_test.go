package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"indigo/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) LoadSnapshot(ctx context.Context) ([]models.MenuItem, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.MenuItem), args.Bool(1), args.Error(2)
}

func (m *mockCache) SaveSnapshot(ctx context.Context, items []models.MenuItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func TestFailoverSnapshotCache(t *testing.T) {
	primary := new(mockCache)
	fallback := new(mockCache)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverSnapshotCache(primary, fallback, &logger)
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()
	items := []models.MenuItem{{ID: "s1"}}

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("LoadSnapshot", ctx).Return(items, true, nil).Once()

		got, ok, err := repo.LoadSnapshot(ctx)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, items, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("LoadSnapshot", ctx).Return(nil, false, errors.New("fail")).Once()
		fallback.On("LoadSnapshot", ctx).Return(items, true, nil).Once()

		got, ok, err := repo.LoadSnapshot(ctx)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, items, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("PrimarySkippedWhileDown", func(t *testing.T) {
		fallback.On("SaveSnapshot", ctx, items).Return(nil).Once()
		fallback.On("LoadSnapshot", ctx).Return(items, true, nil).Once()

		assert.NoError(t, repo.SaveSnapshot(ctx, items))
		_, ok, err := repo.LoadSnapshot(ctx)
		assert.NoError(t, err)
		assert.True(t, ok)
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		clock = clock.Add(2 * time.Minute)
		primary.On("LoadSnapshot", ctx).Return(items, true, nil).Once()

		_, ok, err := repo.LoadSnapshot(ctx)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("SaveWritesBoth", func(t *testing.T) {
		fallback.On("SaveSnapshot", ctx, items).Return(nil).Once()
		primary.On("SaveSnapshot", ctx, items).Return(nil).Once()

		assert.NoError(t, repo.SaveSnapshot(ctx, items))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}
