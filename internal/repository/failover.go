package repository

import (
	"context"
	"sync/atomic"
	"time"

	"appointd/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverSlotCache reads and writes through a primary cache and falls
// back to a secondary one when the primary errors. The primary is retried
// after a minute.
type FailoverSlotCache struct {
	primary  domain.SlotCache
	fallback domain.SlotCache
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// UnixNano of the last failed primary attempt; atomic because
	// concurrent requests race on the recovery probe.
	lastCheck atomic.Int64
}

func NewFailoverSlotCache(primary, fallback domain.SlotCache, logger *zerolog.Logger) *FailoverSlotCache {
	return &FailoverSlotCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverSlotCache) GetBookedTimes(ctx context.Context, date string) ([]string, bool, error) {
	if !c.isDown.Load() {
		times, ok, err := c.primary.GetBookedTimes(ctx, date)
		if err == nil {
			return times, ok, nil
		}
		c.logger.Error().Err(err).Msg("Primary slot cache failed, falling back to memory")
		c.isDown.Store(true)
		c.lastCheck.Store(time.Now().UnixNano())
	}

	// Try to recover after 1 minute
	if c.isDown.Load() && time.Since(time.Unix(0, c.lastCheck.Load())) > time.Minute {
		times, ok, err := c.primary.GetBookedTimes(ctx, date)
		if err == nil {
			c.isDown.Store(false)
			return times, ok, nil
		}
		c.lastCheck.Store(time.Now().UnixNano())
	}

	return c.fallback.GetBookedTimes(ctx, date)
}

func (c *FailoverSlotCache) SetBookedTimes(ctx context.Context, date string, times []string) error {
	if !c.isDown.Load() {
		if err := c.primary.SetBookedTimes(ctx, date, times); err == nil {
			return nil
		} else {
			c.logger.Error().Err(err).Msg("Primary slot cache failed, falling back to memory")
			c.isDown.Store(true)
			c.lastCheck.Store(time.Now().UnixNano())
		}
	}
	return c.fallback.SetBookedTimes(ctx, date, times)
}

func (c *FailoverSlotCache) Invalidate(ctx context.Context, date string) error {
	// Both caches are cleared; a stale fallback entry would resurface
	// old availability after a failover.
	var firstErr error
	if err := c.primary.Invalidate(ctx, date); err != nil && !c.isDown.Load() {
		firstErr = err
	}
	if err := c.fallback.Invalidate(ctx, date); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
