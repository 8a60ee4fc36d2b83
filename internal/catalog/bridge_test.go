package catalog

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"indigo/internal/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh(context.Context) { r.calls.Add(1) }

func TestRedisBridge(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newInstance := func() (*events.EventBus, *countingRefresher, *RedisBridge) {
		client := redis.NewClient(&redis.Options{Addr: s.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		bus := events.NewEventBus()
		target := &countingRefresher{}
		bridge := NewRedisBridge(client, "menu_items:changed", target, &logger)
		bridge.Attach(bus)
		require.NoError(t, bridge.Start(ctx))
		t.Cleanup(func() { _ = bridge.Close() })
		return bus, target, bridge
	}

	busA, targetA, bridgeA := newInstance()
	busB, targetB, bridgeB := newInstance()
	assert.NotEqual(t, bridgeA.InstanceID(), bridgeB.InstanceID())

	require.NoError(t, busA.PublishJSON(events.EventItemSaved, events.CatalogEventPayload{ItemID: "s1"}))
	assert.Eventually(t, func() bool { return targetB.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// A sees B's later message only; its own was dropped.
	require.NoError(t, busB.PublishJSON(events.EventItemDeleted, events.CatalogEventPayload{ItemID: "d1"}))
	assert.Eventually(t, func() bool { return targetA.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), targetB.calls.Load())
}

func TestRedisBridge_IgnoresGarbage(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	logger := zerolog.Nop()
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	target := &countingRefresher{}
	bridge := NewRedisBridge(client, "menu_items:changed", target, &logger)
	require.NoError(t, bridge.Start(context.Background()))

	s.Publish("menu_items:changed", "not json")
	s.Publish("menu_items:changed", `{"origin":"other","type":"item_saved"}`)

	assert.Eventually(t, func() bool { return target.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, bridge.Close())
	require.NoError(t, bridge.Close())
}
