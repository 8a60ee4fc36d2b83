package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"indigo/internal/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Refresher is anything that can re-read the catalog on demand.
type Refresher interface {
	Refresh(ctx context.Context)
}

type bridgeMessage struct {
	Origin  string          `json:"origin"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RedisBridge relays catalog events between server instances sharing one store.
type RedisBridge struct {
	client     *redis.Client
	channel    string
	instanceID string
	target     Refresher
	logger     *zerolog.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisBridge(client *redis.Client, channel string, target Refresher, logger *zerolog.Logger) *RedisBridge {
	return &RedisBridge{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		target:     target,
		logger:     logger,
	}
}

// InstanceID identifies this process on the channel.
func (b *RedisBridge) InstanceID() string {
	return b.instanceID
}

// Attach forwards every local catalog event to the channel.
func (b *RedisBridge) Attach(bus *events.EventBus) {
	bus.SubscribeCatalog(func(event *events.Event) error {
		return b.publish(context.Background(), event)
	})
}

func (b *RedisBridge) publish(ctx context.Context, event *events.Event) error {
	raw, err := json.Marshal(bridgeMessage{Origin: b.instanceID, Type: event.Type, Payload: event.Payload})
	if err != nil {
		return fmt.Errorf("marshal bridge message: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Start subscribes to the channel and returns once the subscription is
// confirmed. Messages are handled until ctx ends or Close is called.
func (b *RedisBridge) Start(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}

	b.mu.Lock()
	b.pubsub = pubsub
	b.done = make(chan struct{})
	done := b.done
	b.mu.Unlock()

	go func() {
		defer close(done)
		b.loop(ctx, pubsub.Channel())
	}()

	b.logger.Info().Str("channel", b.channel).Str("instance", b.instanceID).Msg("Catalog bridge started")
	return nil
}

func (b *RedisBridge) loop(ctx context.Context, messages <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			b.handle(ctx, msg.Payload)
		}
	}
}

func (b *RedisBridge) handle(ctx context.Context, payload string) {
	var msg bridgeMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		b.logger.Warn().Err(err).Msg("decode bridge message")
		return
	}
	if msg.Origin == b.instanceID {
		return
	}

	b.logger.Debug().Str("event", msg.Type).Str("origin", msg.Origin).Msg("remote catalog change")
	b.target.Refresh(ctx)
}

// Close stops the subscription and waits for the handler loop to exit.
func (b *RedisBridge) Close() error {
	b.mu.Lock()
	pubsub, done := b.pubsub, b.done
	b.pubsub = nil
	b.mu.Unlock()

	if pubsub == nil {
		return nil
	}
	err := pubsub.Close()
	<-done
	return err
}
