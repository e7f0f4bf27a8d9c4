package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"legal-relay-backend/internal/logger"
)

const natsSubscriptionBuffer = 256

// NATSBus uses core NATS subjects. There is no JetStream persistence, which
// matches the relay's best-effort contract.
type NATSBus struct {
	conn   *nats.Conn
	logger *logger.Logger
}

func NewNATS(url, name string) (*NATSBus, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	log := logger.New("bus.nats")
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(3*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500*time.Millisecond),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("disconnected from nats: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Infof("reconnected to nats at %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("bus: nats connect %s: %w", url, err)
	}
	return &NATSBus{conn: conn, logger: log}, nil
}

func (b *NATSBus) Publish(_ context.Context, subject string, env Envelope) error {
	if b.conn.IsClosed() {
		return ErrClosed
	}
	payload, err := encode(env)
	if err != nil {
		return err
	}
	if err := b.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("bus: nats publish: %w", err)
	}
	return nil
}

func (b *NATSBus) Subscribe(ctx context.Context, subject string, handle func(Envelope)) error {
	if b.conn.IsClosed() {
		return ErrClosed
	}
	ch := make(chan *nats.Msg, natsSubscriptionBuffer)
	sub, err := b.conn.ChanSubscribe(subject, ch)
	if err != nil {
		return fmt.Errorf("bus: nats subscribe %s: %w", subject, err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil && !b.conn.IsClosed() {
			b.logger.Warnf("unsubscribe %s: %v", subject, err)
		}
	}()
	b.logger.Infof("subscribed to nats subject %s", subject)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-ch:
			env, err := decode(msg.Data)
			if err != nil {
				b.logger.Warnf("discarding message on %s: %v", subject, err)
				continue
			}
			handle(env)
		}
	}
}

func (b *NATSBus) Close() error {
	if err := b.conn.Drain(); err != nil && err != nats.ErrConnectionClosed {
		b.conn.Close()
		return fmt.Errorf("bus: nats drain: %w", err)
	}
	return nil
}
