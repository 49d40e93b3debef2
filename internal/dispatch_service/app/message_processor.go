package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
	"github.com/opencomms/messaging-dispatch/internal/platform/messagebroker"
)

// MessageProcessor resolves a channel-agnostic MESSAGE delivery into a
// concrete EMAIL or SMS dispatch using the recipient's feedback preferences.
// This is the one place a pending row is mutated in place: the same logical
// delivery keeps its identity while changing channel.
type MessageProcessor struct {
	messages domain.MessageRepository
	resolver domain.PreferenceResolver
	bus      messagebroker.Broker
	logger   *slog.Logger
}

// NewMessageProcessor creates the composite MESSAGE channel processor.
func NewMessageProcessor(messages domain.MessageRepository, resolver domain.PreferenceResolver, bus messagebroker.Broker, logger *slog.Logger) *MessageProcessor {
	return &MessageProcessor{
		messages: messages,
		resolver: resolver,
		bus:      bus,
		logger:   logger.With("processor", "message"),
	}
}

// Channel returns the logical channel this processor serves.
func (p *MessageProcessor) Channel() domain.ChannelType {
	return domain.ChannelMessage
}

// Dispatch resolves the message's channel. On a usable preference the row is
// rewritten to the concrete channel and a fresh dispatch signal is emitted;
// the concrete processor writes the history row. Without usable preferences
// the delivery terminates here.
func (p *MessageProcessor) Dispatch(ctx context.Context, deliveryID uuid.UUID) error {
	msg, err := p.messages.FindByDeliveryID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			p.logger.DebugContext(ctx, "Stale dispatch signal, no pending message", "delivery_id", deliveryID)
			return nil
		}
		return fmt.Errorf("loading pending message %s: %w", deliveryID, err)
	}

	var req domain.MessageRequest
	if err := json.Unmarshal(msg.Content, &req); err != nil {
		p.logger.ErrorContext(ctx, "Persisted message content no longer deserializes; data-integrity bug",
			"delivery_id", deliveryID, "message_id", msg.MessageID, "error", err)
		return fmt.Errorf("%w (delivery %s): %v", domain.ErrMalformedContent, deliveryID, err)
	}

	partyID := req.PartyID
	if msg.PartyID != nil && *msg.PartyID != "" {
		partyID = *msg.PartyID
	}

	prefs, err := p.resolver.PreferencesFor(ctx, partyID)
	if err != nil {
		return fmt.Errorf("resolving feedback preferences for party %s: %w", partyID, err)
	}

	if len(prefs) == 0 {
		p.logger.InfoContext(ctx, "No feedback settings found for party",
			"delivery_id", deliveryID, "party_id", partyID)
		entry := domain.NewHistoryFromMessage(msg, domain.ChannelMessage, domain.StatusNoContactSettings)
		return resolvePending(ctx, p.messages, p.logger, msg, entry)
	}

	pref, ok := firstUsablePreference(prefs)
	if !ok {
		p.logger.InfoContext(ctx, "Party has feedback settings but wants no contact",
			"delivery_id", deliveryID, "party_id", partyID)
		entry := domain.NewHistoryFromMessage(msg, domain.ChannelMessage, domain.StatusNoContactWanted)
		return resolvePending(ctx, p.messages, p.logger, msg, entry)
	}

	channel, content, err := concreteRequest(req, pref)
	if err != nil {
		return fmt.Errorf("building concrete request for delivery %s: %w", deliveryID, err)
	}

	msg.ChannelType = channel
	msg.Content = content
	// OriginalChannelType stays MESSAGE so the history row written by the
	// concrete processor still identifies the composite origin.
	if _, err := p.messages.Save(ctx, msg); err != nil {
		return fmt.Errorf("persisting resolved message %s: %w", deliveryID, err)
	}

	p.logger.InfoContext(ctx, "Composite message resolved to concrete channel",
		"delivery_id", deliveryID, "party_id", partyID, "channel", channel)

	if err := EmitDispatch(ctx, p.bus, channel, msg.DeliveryID); err != nil {
		// The rewritten row stays PENDING; recovery will re-emit the signal.
		return err
	}
	return nil
}

// firstUsablePreference picks the first preference that both names a contact
// method and is wanted.
func firstUsablePreference(prefs []domain.FeedbackPreference) (domain.FeedbackPreference, bool) {
	for _, pref := range prefs {
		if pref.Usable() {
			return pref, true
		}
	}
	return domain.FeedbackPreference{}, false
}

// concreteRequest derives the concrete channel request from the original
// composite content, substituting the resolved destination.
func concreteRequest(req domain.MessageRequest, pref domain.FeedbackPreference) (domain.ChannelType, json.RawMessage, error) {
	switch pref.ContactMethod {
	case domain.ContactMethodEmail:
		content, err := json.Marshal(domain.EmailRequest{
			EmailAddress: pref.Destination,
			Subject:      req.Subject,
			Message:      req.Message,
			SenderEmail:  req.Sender,
		})
		return domain.ChannelEmail, content, err
	case domain.ContactMethodSMS:
		content, err := json.Marshal(domain.SMSRequest{
			MobileNumber: pref.Destination,
			Sender:       req.Sender,
			Message:      req.Message,
		})
		return domain.ChannelSMS, content, err
	default:
		return "", nil, fmt.Errorf("unsupported contact method %q", pref.ContactMethod)
	}
}
