package repository

import (
	"context"
	"sync/atomic"
	"time"

	"indigo/internal/domain"
	"indigo/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverSnapshotCache prefers the primary cache and falls back to the
// secondary one while the primary is failing.
type FailoverSnapshotCache struct {
	primary   domain.SnapshotCache
	fallback  domain.SnapshotCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverSnapshotCache(primary, fallback domain.SnapshotCache, logger *zerolog.Logger) *FailoverSnapshotCache {
	return &FailoverSnapshotCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *FailoverSnapshotCache) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary snapshot cache failed, falling back to memory")
	}
	r.lastCheck.Store(r.now().UnixNano())
}

// usePrimary reports whether the primary should be tried, allowing a
// recovery attempt once per interval.
func (r *FailoverSnapshotCache) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return r.now().Sub(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverSnapshotCache) LoadSnapshot(ctx context.Context) ([]models.MenuItem, bool, error) {
	if r.usePrimary() {
		items, ok, err := r.primary.LoadSnapshot(ctx)
		if err == nil {
			if r.isDown.Swap(false) {
				r.logger.Info().Msg("Primary snapshot cache recovered")
			}
			return items, ok, nil
		}
		r.markDown(err)
	}

	return r.fallback.LoadSnapshot(ctx)
}

// SaveSnapshot always refreshes the fallback so it is warm when needed.
func (r *FailoverSnapshotCache) SaveSnapshot(ctx context.Context, items []models.MenuItem) error {
	fallbackErr := r.fallback.SaveSnapshot(ctx, items)

	if r.usePrimary() {
		err := r.primary.SaveSnapshot(ctx, items)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}

	return fallbackErr
}
