package catalog

import (
	"context"
	"errors"
	"sync"

	"indigo/internal/domain"
	"indigo/internal/events"
	"indigo/internal/metrics"
	"indigo/internal/models"

	"github.com/rs/zerolog"
)

var ErrFeedClosed = errors.New("catalog feed closed")

// Feed turns a CatalogReader into live whole-collection snapshots.
type Feed struct {
	reader domain.CatalogReader
	cache  domain.SnapshotCache
	logger *zerolog.Logger

	// readMu orders read+deliver pairs so a later delivery never carries
	// older data.
	readMu sync.Mutex

	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

func NewFeed(reader domain.CatalogReader, cache domain.SnapshotCache, logger *zerolog.Logger) *Feed {
	return &Feed{
		reader: reader,
		cache:  cache,
		logger: logger,
		subs:   make(map[*subscription]struct{}),
	}
}

// Subscribe registers a listener. A cached snapshot, if any, is delivered
// immediately with FromCache set; a fresh read follows in the background.
func (f *Feed) Subscribe(ctx context.Context) (domain.Subscription, error) {
	sub := &subscription{feed: f, updates: make(chan domain.SnapshotUpdate, 1)}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, ErrFeedClosed
	}
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	if f.cache != nil {
		items, ok, err := f.cache.LoadSnapshot(ctx)
		switch {
		case err != nil:
			f.logger.Warn().Err(err).Msg("load cached snapshot")
		case ok:
			sub.deliver(domain.SnapshotUpdate{Snapshot: domain.Snapshot{Items: items, FromCache: true}})
		}
	}

	go func() {
		f.readMu.Lock()
		defer f.readMu.Unlock()
		sub.deliver(f.read(ctx))
	}()

	return sub, nil
}

// Refresh re-reads the collection and broadcasts it to every subscriber.
func (f *Feed) Refresh(ctx context.Context) {
	f.readMu.Lock()
	defer f.readMu.Unlock()

	update := f.read(ctx)
	for _, sub := range f.subscribers() {
		sub.deliver(update)
	}
}

func (f *Feed) read(ctx context.Context) domain.SnapshotUpdate {
	items, err := f.reader.ListItems(ctx)
	if err != nil {
		f.logger.Error().Err(err).Msg("read catalog snapshot")
		return domain.SnapshotUpdate{Err: err}
	}

	if f.cache != nil {
		if err := f.cache.SaveSnapshot(ctx, items); err != nil {
			f.logger.Warn().Err(err).Msg("save snapshot to cache")
		}
	}
	return domain.SnapshotUpdate{Snapshot: domain.Snapshot{Items: items}}
}

// Attach refreshes the feed after every catalog write announced on bus.
func (f *Feed) Attach(bus *events.EventBus) {
	bus.SubscribeCatalog(func(event *events.Event) error {
		f.logger.Debug().Str("event", event.Type).Msg("catalog changed")
		f.Refresh(context.Background())
		return nil
	})
}

func (f *Feed) subscribers() []*subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*subscription, 0, len(f.subs))
	for sub := range f.subs {
		out = append(out, sub)
	}
	return out
}

func (f *Feed) remove(sub *subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, sub)
}

// Subscribers reports how many subscriptions are open.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close ends every open subscription and rejects new ones.
func (f *Feed) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	for _, sub := range f.subscribers() {
		_ = sub.Close()
	}
	return nil
}

type subscription struct {
	feed    *Feed
	updates chan domain.SnapshotUpdate

	mu     sync.Mutex
	closed bool
	once   sync.Once
}

func (s *subscription) Updates() <-chan domain.SnapshotUpdate {
	return s.updates
}

// deliver replaces any pending update with u.
func (s *subscription) deliver(u domain.SnapshotUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if u.Err == nil {
		u.Snapshot.Items = models.CloneItems(u.Snapshot.Items)
		metrics.IncSnapshot(u.Snapshot.FromCache)
	}

	select {
	case <-s.updates:
	default:
	}
	s.updates <- u
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.feed.remove(s)
		s.mu.Lock()
		s.closed = true
		close(s.updates)
		s.mu.Unlock()
	})
	return nil
}
