package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PublishReload asks every instance to refresh. origin names the sender
// so it can ignore its own broadcast. Returns the number of receivers.
func (s *Store) PublishReload(ctx context.Context, origin string) (int64, error) {
	n, err := s.client.Publish(ctx, ChannelReload, origin).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to publish reload: %w", err)
	}
	return n, nil
}

// ReloadSubscription delivers the origin of each reload broadcast.
type ReloadSubscription struct {
	pubsub *redis.PubSub
	ch     chan string
}

// SubscribeReload subscribes to reload broadcasts. The subscription is
// confirmed before returning. The channel closes when ctx ends or Close is called.
func (s *Store) SubscribeReload(ctx context.Context) (*ReloadSubscription, error) {
	pubsub := s.client.Subscribe(ctx, ChannelReload)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", ChannelReload, err)
	}

	sub := &ReloadSubscription{
		pubsub: pubsub,
		ch:     make(chan string, 1),
	}
	go sub.forward(ctx)
	return sub, nil
}

// C returns the channel of origins.
func (sub *ReloadSubscription) C() <-chan string {
	return sub.ch
}

// Close ends the subscription.
func (sub *ReloadSubscription) Close() error {
	return sub.pubsub.Close()
}

func (sub *ReloadSubscription) forward(ctx context.Context) {
	defer close(sub.ch)
	msgs := sub.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = sub.pubsub.Close()
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			select {
			case sub.ch <- msg.Payload:
			case <-ctx.Done():
				_ = sub.pubsub.Close()
				return
			}
		}
	}
}
