package messagebroker

import "context"

// Message is one delivered broker message.
type Message interface {
	Subject() string
	Data() []byte
}

// MsgHandler consumes one broker message.
type MsgHandler func(msg Message)

// Subscription is a live subscription that can be torn down.
type Subscription interface {
	Unsubscribe() error
}

// Broker publishes and subscribes to subjects. Subscriptions in the same
// queue group share the subject's traffic, so one worker handles each
// message. Delivery is at-least-once; consumers must be idempotent.
type Broker interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(ctx context.Context, subject, queueGroup string, handler MsgHandler) (Subscription, error)
	Close()
}
