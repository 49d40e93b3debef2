package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/adapters/senders"
	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// LetterProcessor resolves a LETTER delivery: digital mail is always
// attempted first; snail mail is a sequential fallback used only when an
// attachment permits physical delivery.
type LetterProcessor struct {
	messages      domain.MessageRepository
	digitalSender DigitalMailSenderPort
	snailSender   SnailMailSenderPort
	retry         *RetryPolicy
	logger        *slog.Logger
}

// NewLetterProcessor creates the LETTER channel processor.
func NewLetterProcessor(messages domain.MessageRepository, digitalSender DigitalMailSenderPort, snailSender SnailMailSenderPort, retry *RetryPolicy, logger *slog.Logger) *LetterProcessor {
	return &LetterProcessor{
		messages:      messages,
		digitalSender: digitalSender,
		snailSender:   snailSender,
		retry:         retry,
		logger:        logger.With("processor", "letter"),
	}
}

// Channel returns the logical channel this processor serves.
func (p *LetterProcessor) Channel() domain.ChannelType {
	return domain.ChannelLetter
}

// Dispatch drives one letter to a terminal outcome across its two legs.
func (p *LetterProcessor) Dispatch(ctx context.Context, deliveryID uuid.UUID) error {
	msg, err := p.messages.FindByDeliveryID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			p.logger.DebugContext(ctx, "Stale dispatch signal, no pending letter", "delivery_id", deliveryID)
			return nil
		}
		return fmt.Errorf("loading pending letter %s: %w", deliveryID, err)
	}

	var req domain.LetterRequest
	if err := json.Unmarshal(msg.Content, &req); err != nil {
		p.logger.ErrorContext(ctx, "Persisted letter content no longer deserializes; data-integrity bug",
			"delivery_id", deliveryID, "message_id", msg.MessageID, "error", err)
		return fmt.Errorf("%w (delivery %s): %v", domain.ErrMalformedContent, deliveryID, err)
	}

	digitalReq := senders.NewDigitalMailSendRequestFromLetter(req)
	digitalOutcome := p.retry.Execute(ctx, asOperation(p.digitalSender.Send, digitalReq), func(attempt int, reason error) {
		sendAttemptsCounter.WithLabelValues(string(domain.ChannelDigitalMail), "failure").Inc()
		p.logger.WarnContext(ctx, "Digital-mail attempt failed",
			"delivery_id", deliveryID, "attempt", attempt, "error", reason)
	})

	if digitalOutcome.Succeeded {
		sendAttemptsCounter.WithLabelValues(string(domain.ChannelDigitalMail), "success").Inc()
		entry := domain.NewHistoryFromMessage(msg, domain.ChannelDigitalMail, domain.StatusSent)
		return resolvePending(ctx, p.messages, p.logger, msg, entry)
	}

	// No attachment permits physical delivery: the snail-mail leg is never
	// attempted and the digital failure is the terminal outcome.
	if len(req.SnailMailAttachments()) == 0 {
		status, detail := exhaustedStatus(digitalOutcome)
		p.logger.WarnContext(ctx, "Digital mail exhausted and no snail-eligible attachments",
			"delivery_id", deliveryID, "attempts", digitalOutcome.Attempts)
		entry := domain.NewHistoryFromMessage(msg, domain.ChannelDigitalMail, status).WithDetail(detail)
		return resolvePending(ctx, p.messages, p.logger, msg, entry)
	}

	p.logger.InfoContext(ctx, "Digital mail exhausted, falling back to snail mail",
		"delivery_id", deliveryID, "digital_attempts", digitalOutcome.Attempts)

	snailReq := senders.NewSnailMailSendRequestFromLetter(req)
	snailOutcome := p.retry.Execute(ctx, asOperation(p.snailSender.Send, snailReq), func(attempt int, reason error) {
		sendAttemptsCounter.WithLabelValues(string(domain.ChannelSnailMail), "failure").Inc()
		p.logger.WarnContext(ctx, "Snail-mail attempt failed",
			"delivery_id", deliveryID, "attempt", attempt, "error", reason)
	})

	var entry *domain.History
	if snailOutcome.Succeeded {
		sendAttemptsCounter.WithLabelValues(string(domain.ChannelSnailMail), "success").Inc()
		entry = domain.NewHistoryFromMessage(msg, domain.ChannelSnailMail, domain.StatusSent)
	} else {
		status, detail := exhaustedStatus(snailOutcome)
		entry = domain.NewHistoryFromMessage(msg, domain.ChannelSnailMail, status).WithDetail(detail)
	}
	entry.WithDestination(snailReq.Address.String())

	return resolvePending(ctx, p.messages, p.logger, msg, entry)
}
