package view

import (
	"context"
	"sort"
	"sync"

	"indigo/internal/domain"
	"indigo/internal/models"
)

type fakeSubscription struct {
	updates chan domain.SnapshotUpdate
	once    sync.Once
	closes  int
	mu      sync.Mutex
}

func (s *fakeSubscription) Updates() <-chan domain.SnapshotUpdate { return s.updates }

func (s *fakeSubscription) Close() error {
	s.mu.Lock()
	s.closes++
	s.mu.Unlock()
	s.once.Do(func() { close(s.updates) })
	return nil
}

func (s *fakeSubscription) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// fakeCatalog is an in-memory store with call recording and error injection.
type fakeCatalog struct {
	mu    sync.Mutex
	items map[string]models.MenuItem
	calls []string

	subscribeErr error
	writeErr     error
	sub          *fakeSubscription
}

func newFakeCatalog(items ...models.MenuItem) *fakeCatalog {
	c := &fakeCatalog{items: make(map[string]models.MenuItem)}
	for _, item := range items {
		c.items[item.ID] = item
	}
	return c
}

func (c *fakeCatalog) Subscribe(context.Context) (domain.Subscription, error) {
	if c.subscribeErr != nil {
		return nil, c.subscribeErr
	}
	c.sub = &fakeSubscription{updates: make(chan domain.SnapshotUpdate, 8)}
	return c.sub, nil
}

func (c *fakeCatalog) record(call string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return c.writeErr
}

func (c *fakeCatalog) SetItem(_ context.Context, item models.MenuItem) error {
	if err := c.record("set:" + item.ID); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
	return nil
}

func (c *fakeCatalog) UpdateAvailability(_ context.Context, id string, available bool) error {
	if err := c.record("availability:" + id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.items[id]
	item.Available = available
	c.items[id] = item
	return nil
}

func (c *fakeCatalog) DeleteItem(_ context.Context, id string) error {
	if err := c.record("delete:" + id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

func (c *fakeCatalog) SeedItems(_ context.Context, items []models.MenuItem) error {
	if err := c.record("seed"); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range items {
		c.items[item.ID] = item
	}
	return nil
}

// snapshot returns the store contents ordered by id.
func (c *fakeCatalog) snapshot() []models.MenuItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.MenuItem, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *fakeCatalog) recorded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type fakeRecommender struct {
	mu    sync.Mutex
	reply string
	calls int
	mood  string
	items []models.MenuItem
	gate  chan struct{}
}

func (r *fakeRecommender) Recommend(ctx context.Context, mood string, items []models.MenuItem) string {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.mood = mood
	r.items = items
	return r.reply
}

func (r *fakeRecommender) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
