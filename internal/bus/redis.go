package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"legal-relay-backend/internal/logger"
)

type RedisBus struct {
	client *redis.Client
	logger *logger.Logger

	mu     sync.Mutex
	closed bool
}

// NewRedis connects to addr and verifies the connection with PING.
func NewRedis(ctx context.Context, addr, password string) (*RedisBus, error) {
	if addr == "" {
		return nil, fmt.Errorf("bus: redis address required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("bus: redis ping %s: %w", addr, err)
	}
	return &RedisBus{client: client, logger: logger.New("bus.redis")}, nil
}

func (b *RedisBus) Publish(ctx context.Context, channel string, env Envelope) error {
	if b.isClosed() {
		return ErrClosed
	}
	payload, err := encode(env)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("bus: redis publish: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, channel string, handle func(Envelope)) error {
	if b.isClosed() {
		return ErrClosed
	}
	sub := b.client.Subscribe(ctx, channel)
	defer sub.Close()

	// Wait for the subscription confirmation so a publish right after
	// Subscribe returns is not missed.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("bus: redis subscribe %s: %w", channel, err)
	}
	b.logger.Infof("subscribed to redis channel %s", channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Infof("unsubscribed from redis channel %s", channel)
			return nil
		case msg, ok := <-ch:
			if !ok {
				return ErrClosed
			}
			env, err := decode([]byte(msg.Payload))
			if err != nil {
				b.logger.Warnf("discarding message on %s: %v", channel, err)
				continue
			}
			handle(env)
		}
	}
}

func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.client.Close()
}

func (b *RedisBus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
