package repository

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	times     []string
	expiresAt time.Time
}

// MemorySlotCache caches booked time cells per date in process memory.
// Entries expire lazily on read.
type MemorySlotCache struct {
	entries sync.Map
	ttl     time.Duration
}

func NewMemorySlotCache(ttl time.Duration) *MemorySlotCache {
	return &MemorySlotCache{ttl: ttl}
}

func (c *MemorySlotCache) GetBookedTimes(ctx context.Context, date string) ([]string, bool, error) {
	val, ok := c.entries.Load(date)
	if !ok {
		return nil, false, nil
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		c.entries.Delete(date)
		return nil, false, nil
	}
	return append([]string(nil), entry.times...), true, nil
}

func (c *MemorySlotCache) SetBookedTimes(ctx context.Context, date string, times []string) error {
	c.entries.Store(date, &memoryEntry{
		times:     append([]string(nil), times...),
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}

func (c *MemorySlotCache) Invalidate(ctx context.Context, date string) error {
	c.entries.Delete(date)
	return nil
}
