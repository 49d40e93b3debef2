package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
	"github.com/opencomms/messaging-dispatch/internal/platform/messagebroker"
)

// RecoveryHandler re-emits dispatch signals for rows still PENDING. It runs
// once at startup (crash recovery) and optionally on a cron sweep, catching
// rows whose signal never arrived or was lost mid-flight. Safe to run at any
// time because dispatch is idempotent against resolved rows.
type RecoveryHandler struct {
	messages domain.MessageRepository
	bus      messagebroker.Broker
	logger   *slog.Logger
}

// NewRecoveryHandler creates the recovery handler.
func NewRecoveryHandler(messages domain.MessageRepository, bus messagebroker.Broker, logger *slog.Logger) *RecoveryHandler {
	return &RecoveryHandler{
		messages: messages,
		bus:      bus,
		logger:   logger.With("component", "recovery"),
	}
}

// ReplayPending emits one dispatch signal per PENDING row, on the subject of
// each row's current channel. Returns the number of signals emitted.
func (h *RecoveryHandler) ReplayPending(ctx context.Context) (int, error) {
	pending, err := h.messages.FindAllByStatus(ctx, domain.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("loading pending messages for replay: %w", err)
	}
	if len(pending) == 0 {
		h.logger.InfoContext(ctx, "No pending messages to replay")
		return 0, nil
	}

	replayed := 0
	for _, msg := range pending {
		if err := EmitDispatch(ctx, h.bus, msg.ChannelType, msg.DeliveryID); err != nil {
			h.logger.ErrorContext(ctx, "Failed to re-emit dispatch signal",
				"delivery_id", msg.DeliveryID, "channel", msg.ChannelType, "error", err)
			continue
		}
		recoveryReplayedCounter.WithLabelValues(string(msg.ChannelType)).Inc()
		replayed++
	}

	h.logger.InfoContext(ctx, "Replayed pending messages", "count", replayed, "total", len(pending))
	return replayed, nil
}

// Schedule registers the periodic sweep on c. The sweep is a best-effort
// safety net; errors are logged, never fatal.
func (h *RecoveryHandler) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		if _, err := h.ReplayPending(context.Background()); err != nil {
			h.logger.Error("Recovery sweep failed", "error", err)
		}
	})
}
