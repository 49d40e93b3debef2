package messagebroker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSClient implements Broker on top of a core NATS connection.
type NATSClient struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNATSClient connects to NATS with reconnect handling.
// natsURL example: "nats://localhost:4222".
func NewNATSClient(natsURL, appName string, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name(appName),
		nats.Timeout(5*time.Second),
		nats.PingInterval(20*time.Second),
		nats.MaxPingsOutstanding(3),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Error("NATS connection closed", "error", nc.LastError())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSClient{conn: nc, logger: logger.With("component", "nats_client")}, nil
}

type natsMessage struct {
	msg *nats.Msg
}

func (m natsMessage) Subject() string { return m.msg.Subject }
func (m natsMessage) Data() []byte    { return m.msg.Data }

type natsSubscription struct {
	sub *nats.Subscription
}

func (s natsSubscription) Unsubscribe() error { return s.sub.Unsubscribe() }

// Publish sends data to subject.
func (c *NATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %q: %w", subject, err)
	}
	return nil
}

// Subscribe creates a queue subscription on subject. The handler runs on the
// NATS delivery goroutine.
func (c *NATSClient) Subscribe(ctx context.Context, subject, queueGroup string, handler MsgHandler) (Subscription, error) {
	sub, err := c.conn.QueueSubscribe(subject, queueGroup, func(msg *nats.Msg) {
		handler(natsMessage{msg: msg})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %q: %w", subject, err)
	}
	c.logger.Info("Subscribed to NATS subject", "subject", subject, "queue_group", queueGroup)
	return natsSubscription{sub: sub}, nil
}

// Close drains the connection so published messages are flushed first.
func (c *NATSClient) Close() {
	if c.conn != nil && !c.conn.IsClosed() {
		_ = c.conn.Drain()
		c.conn.Close()
	}
}
