package repository

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetBookedTimes(ctx context.Context, date string) ([]string, bool, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]string), args.Bool(1), args.Error(2)
}

func (m *mockCache) SetBookedTimes(ctx context.Context, date string, times []string) error {
	args := m.Called(ctx, date, times)
	return args.Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, date string) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

func TestFailoverSlotCache(t *testing.T) {
	primary := new(mockCache)
	fallback := new(mockCache)
	logger := zerolog.New(io.Discard)
	cache := NewFailoverSlotCache(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("GetBookedTimes", ctx, "2026-03-02").Return([]string{"09:00"}, true, nil).Once()

		times, ok, err := cache.GetBookedTimes(ctx, "2026-03-02")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"09:00"}, times)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("GetBookedTimes", ctx, "2026-03-03").Return(nil, false, errors.New("redis down")).Once()
		fallback.On("GetBookedTimes", ctx, "2026-03-03").Return([]string{"10:00"}, true, nil).Once()

		times, ok, err := cache.GetBookedTimes(ctx, "2026-03-03")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"10:00"}, times)
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("WhileDownUsesFallback", func(t *testing.T) {
		cache.lastCheck.Store(time.Now().UnixNano())
		fallback.On("GetBookedTimes", ctx, "2026-03-04").Return(nil, false, nil).Once()

		_, ok, err := cache.GetBookedTimes(ctx, "2026-03-04")
		assert.NoError(t, err)
		assert.False(t, ok)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		cache.isDown.Store(true)
		cache.lastCheck.Store(time.Now().Add(-2 * time.Minute).UnixNano())
		primary.On("GetBookedTimes", ctx, "2026-03-05").Return([]string{"11:00"}, true, nil).Once()

		times, ok, err := cache.GetBookedTimes(ctx, "2026-03-05")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"11:00"}, times)
		assert.False(t, cache.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("SetFailsOverToFallback", func(t *testing.T) {
		cache.isDown.Store(false)
		primary.On("SetBookedTimes", ctx, "2026-03-06", []string{"12:00"}).Return(errors.New("redis down")).Once()
		fallback.On("SetBookedTimes", ctx, "2026-03-06", []string{"12:00"}).Return(nil).Once()

		err := cache.SetBookedTimes(ctx, "2026-03-06", []string{"12:00"})
		assert.NoError(t, err)
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("InvalidateClearsBoth", func(t *testing.T) {
		cache.isDown.Store(false)
		primary.On("Invalidate", ctx, "2026-03-07").Return(nil).Once()
		fallback.On("Invalidate", ctx, "2026-03-07").Return(nil).Once()

		assert.NoError(t, cache.Invalidate(ctx, "2026-03-07"))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}

type brokenCache struct{}

func (brokenCache) GetBookedTimes(context.Context, string) ([]string, bool, error) {
	return nil, false, errors.New("redis down")
}

func (brokenCache) SetBookedTimes(context.Context, string, []string) error {
	return errors.New("redis down")
}

func (brokenCache) Invalidate(context.Context, string) error {
	return errors.New("redis down")
}

// Concurrent requests keep hammering the failover tracking fields while
// the primary is down; run with -race.
func TestFailoverSlotCacheConcurrent(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cache := NewFailoverSlotCache(brokenCache{}, NewMemorySlotCache(time.Minute), &logger)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = cache.SetBookedTimes(ctx, "2026-03-02", []string{"09:00"})
				_, _, err := cache.GetBookedTimes(ctx, "2026-03-02")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.True(t, cache.isDown.Load())
}
