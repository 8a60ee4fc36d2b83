package worker

import (
	"context"
	"time"

	"indigo/internal/domain"
	"indigo/internal/models"

	"github.com/rs/zerolog"
)

// MirrorWorker copies every fresh catalog snapshot to an external mirror.
// While a push is failing, newer snapshots replace the pending one.
type MirrorWorker struct {
	feed   domain.CatalogFeed
	mirror domain.MenuMirror
	retry  RetryPolicy
	logger *zerolog.Logger
}

func NewMirrorWorker(feed domain.CatalogFeed, mirror domain.MenuMirror, retry RetryPolicy, logger *zerolog.Logger) *MirrorWorker {
	return &MirrorWorker{feed: feed, mirror: mirror, retry: retry, logger: logger}
}

// Run blocks until ctx is done or the feed closes.
func (w *MirrorWorker) Run(ctx context.Context) error {
	sub, err := w.feed.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	w.logger.Info().Msg("mirror worker started")
	defer w.logger.Info().Msg("mirror worker stopped")

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	var (
		pending  []models.MenuItem
		hasItems bool
		failures int
	)

	push := func() {
		err := w.mirror.ReplaceMenu(ctx, pending)
		if err == nil {
			w.logger.Debug().Int("items", len(pending)).Msg("menu mirrored")
			hasItems, pending, failures = false, nil, 0
			return
		}

		failures++
		if w.retry.Exhausted(failures) {
			w.logger.Error().Err(err).Int("failures", failures).Msg("mirror push abandoned")
			hasItems, pending, failures = false, nil, 0
			return
		}
		delay := w.retry.NextDelay(failures)
		w.logger.Warn().Err(err).Int("failures", failures).Dur("retry_in", delay).Msg("mirror push failed")
		timer.Reset(delay)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-sub.Updates():
			if !ok {
				return nil
			}
			if update.Err != nil {
				w.logger.Warn().Err(update.Err).Msg("mirror skipped failed snapshot")
				continue
			}
			if update.Snapshot.FromCache {
				continue
			}
			timer.Stop()
			pending, hasItems, failures = update.Snapshot.Items, true, 0
			push()
		case <-timer.C:
			if hasItems {
				push()
			}
		}
	}
}
