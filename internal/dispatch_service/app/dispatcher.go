package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// dispatchPlan is the channel-specific part of a dispatch: the decoded
// recipient (for the whitelist gate), the resolved destination recorded on
// history, and the send operation handed to the retry policy.
type dispatchPlan struct {
	recipient   string
	destination string
	send        Operation
}

// planFunc decodes a message's content into a dispatchPlan. A decode error
// is a data-integrity failure, not a transient one.
type planFunc func(msg *domain.Message) (*dispatchPlan, error)

// ChannelDispatcher is the dispatch state machine shared by every concrete
// channel. Per-channel behavior is injected through the plan function and
// the optional whitelist gate.
type ChannelDispatcher struct {
	channel   domain.ChannelType
	messages  domain.MessageRepository
	whitelist domain.WhitelistRepository // nil for ungated channels
	retry     *RetryPolicy
	plan      planFunc
	logger    *slog.Logger
}

// Channel returns the concrete channel this dispatcher serves.
func (d *ChannelDispatcher) Channel() domain.ChannelType {
	return d.channel
}

// Dispatch drives one pending message to a terminal outcome:
// load, whitelist gate, retried send, history append + row delete.
// A missing row is a stale signal and a silent no-op.
func (d *ChannelDispatcher) Dispatch(ctx context.Context, deliveryID uuid.UUID) error {
	msg, err := d.messages.FindByDeliveryID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			d.logger.DebugContext(ctx, "Stale dispatch signal, no pending message", "delivery_id", deliveryID)
			return nil
		}
		return fmt.Errorf("loading pending message %s: %w", deliveryID, err)
	}

	plan, err := d.plan(msg)
	if err != nil {
		d.logger.ErrorContext(ctx, "Persisted content no longer deserializes; data-integrity bug",
			"delivery_id", deliveryID, "message_id", msg.MessageID, "channel", d.channel, "error", err)
		return fmt.Errorf("%w (delivery %s): %v", domain.ErrMalformedContent, deliveryID, err)
	}

	if d.whitelist != nil && plan.recipient != "" {
		allowed, err := d.whitelist.IsAllowed(ctx, d.channel, plan.recipient)
		if err != nil {
			return fmt.Errorf("whitelist check for delivery %s: %w", deliveryID, err)
		}
		if !allowed {
			d.logger.InfoContext(ctx, "Recipient not whitelisted, blocking delivery",
				"delivery_id", deliveryID, "channel", d.channel)
			entry := domain.NewHistoryFromMessage(msg, d.channel, domain.StatusBlocked).
				WithDetail("recipient not whitelisted for channel " + string(d.channel))
			return resolvePending(ctx, d.messages, d.logger, msg, entry)
		}
	}

	outcome := d.retry.Execute(ctx, plan.send, func(attempt int, reason error) {
		sendAttemptsCounter.WithLabelValues(string(d.channel), "failure").Inc()
		d.logger.WarnContext(ctx, "Send attempt failed",
			"delivery_id", deliveryID, "channel", d.channel, "attempt", attempt, "error", reason)
	})

	var entry *domain.History
	if outcome.Succeeded {
		sendAttemptsCounter.WithLabelValues(string(d.channel), "success").Inc()
		entry = domain.NewHistoryFromMessage(msg, d.channel, domain.StatusSent)
	} else {
		status, detail := exhaustedStatus(outcome)
		d.logger.WarnContext(ctx, "Delivery exhausted all attempts",
			"delivery_id", deliveryID, "channel", d.channel, "attempts", outcome.Attempts, "status", status)
		entry = domain.NewHistoryFromMessage(msg, d.channel, status).WithDetail(detail)
	}
	entry.WithDestination(plan.destination)

	return resolvePending(ctx, d.messages, d.logger, msg, entry)
}

// exhaustedStatus maps an exhausted outcome onto the normalized terminal
// taxonomy: a final unsuccessful response is NOT_SENT, a final
// transport/adapter error is FAILED.
func exhaustedStatus(out Outcome) (domain.MessageStatus, string) {
	if out.LastErr != nil {
		return domain.StatusFailed, out.LastErr.Error()
	}
	return domain.StatusNotSent, errAdapterNotSent.Error()
}

// resolvePending records the terminal outcome: one history append and one
// pending-row delete, atomically. A row already resolved by a concurrent
// worker is a no-op, which keeps terminal records unique per identity.
func resolvePending(ctx context.Context, messages domain.MessageRepository, logger *slog.Logger, msg *domain.Message, entry *domain.History) error {
	err := messages.Resolve(ctx, msg.DeliveryID, entry)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			logger.InfoContext(ctx, "Pending row already resolved by a concurrent dispatch",
				"delivery_id", msg.DeliveryID)
			return nil
		}
		return fmt.Errorf("resolving delivery %s: %w", msg.DeliveryID, err)
	}
	dispatchProcessedCounter.WithLabelValues(string(entry.ChannelType), string(entry.Status)).Inc()
	logger.InfoContext(ctx, "Delivery resolved",
		"delivery_id", msg.DeliveryID, "message_id", msg.MessageID,
		"channel", entry.ChannelType, "status", entry.Status)
	return nil
}
