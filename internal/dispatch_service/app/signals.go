package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
	"github.com/opencomms/messaging-dispatch/internal/platform/messagebroker"
)

// DispatchQueueGroup is the queue group shared by all dispatch workers so
// each signal is handled by exactly one worker per deployment.
const DispatchQueueGroup = "dispatch_workers"

const dispatchSubjectPrefix = "messages.dispatch."

// DispatchSubject returns the broker subject carrying dispatch signals for
// one channel, e.g. "messages.dispatch.email".
func DispatchSubject(channel domain.ChannelType) string {
	return dispatchSubjectPrefix + strings.ToLower(string(channel))
}

// DispatchSignal is the payload of one dispatch signal. It references the
// persisted message by delivery identity only; the content is re-read from
// the store by the processor.
type DispatchSignal struct {
	DeliveryID uuid.UUID `json:"delivery_id"`
}

// EmitDispatch publishes a dispatch signal for deliveryID on channel's
// subject.
func EmitDispatch(ctx context.Context, bus messagebroker.Broker, channel domain.ChannelType, deliveryID uuid.UUID) error {
	data, err := json.Marshal(DispatchSignal{DeliveryID: deliveryID})
	if err != nil {
		return fmt.Errorf("marshaling dispatch signal: %w", err)
	}
	if err := bus.Publish(ctx, DispatchSubject(channel), data); err != nil {
		return fmt.Errorf("emitting dispatch signal for %s: %w", channel, err)
	}
	return nil
}
