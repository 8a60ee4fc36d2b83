package repository

import (
	"context"
	"sync"
	"time"

	"indigo/internal/models"
)

// MemorySnapshotCache keeps the snapshot in process memory.
type MemorySnapshotCache struct {
	mu        sync.RWMutex
	items     []models.MenuItem
	set       bool
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewMemorySnapshotCache builds a cache; ttl <= 0 keeps the snapshot forever.
func NewMemorySnapshotCache(ttl time.Duration) *MemorySnapshotCache {
	return &MemorySnapshotCache{ttl: ttl, now: time.Now}
}

func (r *MemorySnapshotCache) LoadSnapshot(_ context.Context) ([]models.MenuItem, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.set {
		return nil, false, nil
	}
	if r.ttl > 0 && r.now().After(r.expiresAt) {
		return nil, false, nil
	}
	return models.CloneItems(r.items), true, nil
}

func (r *MemorySnapshotCache) SaveSnapshot(_ context.Context, items []models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = models.CloneItems(items)
	r.set = true
	r.expiresAt = r.now().Add(r.ttl)
	return nil
}
