package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
	"github.com/opencomms/messaging-dispatch/internal/platform/messagebroker"
)

// DispatchFunc handles one dispatch signal for a channel.
type DispatchFunc func(ctx context.Context, deliveryID uuid.UUID) error

// Processor is what the consumer registers: each channel processor exposes
// its channel tag and its dispatch operation.
type Processor interface {
	Channel() domain.ChannelType
	Dispatch(ctx context.Context, deliveryID uuid.UUID) error
}

// DispatchConsumer subscribes the registered channel processors to their
// dispatch subjects. It is the lookup table from channel-type tag to
// handler; there is no dispatch hierarchy beyond it.
type DispatchConsumer struct {
	bus      messagebroker.Broker
	logger   *slog.Logger
	timeout  time.Duration
	handlers map[domain.ChannelType]DispatchFunc
	subs     []messagebroker.Subscription
}

// NewDispatchConsumer creates a consumer. timeout bounds the processing of
// one signal; zero means no bound.
func NewDispatchConsumer(bus messagebroker.Broker, logger *slog.Logger, timeout time.Duration) *DispatchConsumer {
	return &DispatchConsumer{
		bus:      bus,
		logger:   logger.With("component", "dispatch_consumer"),
		timeout:  timeout,
		handlers: make(map[domain.ChannelType]DispatchFunc),
	}
}

// Register adds a processor's handler for its channel. Must be called
// before Start.
func (c *DispatchConsumer) Register(p Processor) {
	c.handlers[p.Channel()] = p.Dispatch
}

// Start subscribes every registered channel on the bus under the shared
// dispatch queue group.
func (c *DispatchConsumer) Start(ctx context.Context) error {
	for channel, handler := range c.handlers {
		subject := DispatchSubject(channel)
		sub, err := c.bus.Subscribe(ctx, subject, DispatchQueueGroup, c.msgHandler(channel, handler))
		if err != nil {
			return fmt.Errorf("subscribing to %q: %w", subject, err)
		}
		c.subs = append(c.subs, sub)
		c.logger.Info("Dispatch handler registered", "channel", channel, "subject", subject)
	}
	return nil
}

func (c *DispatchConsumer) msgHandler(channel domain.ChannelType, handler DispatchFunc) messagebroker.MsgHandler {
	return func(msg messagebroker.Message) {
		var signal DispatchSignal
		if err := json.Unmarshal(msg.Data(), &signal); err != nil {
			c.logger.Error("Failed to unmarshal dispatch signal",
				"subject", msg.Subject(), "error", err, "data", string(msg.Data()))
			return
		}

		ctx := context.Background()
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		timer := prometheus.NewTimer(dispatchDurationHist.WithLabelValues(string(channel)))
		defer timer.ObserveDuration()

		if err := handler(ctx, signal.DeliveryID); err != nil {
			c.logger.ErrorContext(ctx, "Dispatch failed",
				"channel", channel, "delivery_id", signal.DeliveryID, "error", err)
		}
	}
}

// Stop unsubscribes all handlers.
func (c *DispatchConsumer) Stop() {
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Error("Failed to unsubscribe dispatch handler", "error", err)
		}
	}
	c.subs = nil
}
