package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/adapters/senders"
	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// Per-channel sender ports. The concrete adapters in adapters/senders
// satisfy these; tests substitute mocks.

type EmailSenderPort interface {
	Send(ctx context.Context, req senders.EmailSendRequest) (*senders.SendResult, error)
}

type SMSSenderPort interface {
	Send(ctx context.Context, req senders.SMSSendRequest) (*senders.SendResult, error)
}

type WebMessageSenderPort interface {
	Send(ctx context.Context, req senders.WebMessageSendRequest) (*senders.SendResult, error)
}

type DigitalMailSenderPort interface {
	Send(ctx context.Context, req senders.DigitalMailSendRequest) (*senders.SendResult, error)
}

type SnailMailSenderPort interface {
	Send(ctx context.Context, req senders.SnailMailSendRequest) (*senders.SendResult, error)
}

type DigitalInvoiceSenderPort interface {
	Send(ctx context.Context, req senders.DigitalInvoiceSendRequest) (*senders.SendResult, error)
}

type SlackSenderPort interface {
	Send(ctx context.Context, req senders.SlackSendRequest) (*senders.SendResult, error)
}

// asOperation adapts a typed sender call into the retry policy's operation
// shape.
func asOperation[T any](sender func(ctx context.Context, req T) (*senders.SendResult, error), req T) Operation {
	return func(ctx context.Context) (bool, error) {
		res, err := sender(ctx, req)
		if err != nil {
			return false, err
		}
		return res.Sent, nil
	}
}

// NewEmailDispatcher builds the EMAIL channel processor. Email recipients
// are whitelist-gated by address.
func NewEmailDispatcher(messages domain.MessageRepository, whitelist domain.WhitelistRepository, sender EmailSenderPort, retry *RetryPolicy, logger *slog.Logger) *ChannelDispatcher {
	return &ChannelDispatcher{
		channel:   domain.ChannelEmail,
		messages:  messages,
		whitelist: whitelist,
		retry:     retry,
		logger:    logger.With("processor", "email"),
		plan: func(msg *domain.Message) (*dispatchPlan, error) {
			var req domain.EmailRequest
			if err := json.Unmarshal(msg.Content, &req); err != nil {
				return nil, err
			}
			return &dispatchPlan{
				recipient:   req.EmailAddress,
				destination: req.EmailAddress,
				send:        asOperation(sender.Send, senders.NewEmailSendRequest(req)),
			}, nil
		},
	}
}

// NewSMSDispatcher builds the SMS channel processor. SMS recipients are
// whitelist-gated by mobile number.
func NewSMSDispatcher(messages domain.MessageRepository, whitelist domain.WhitelistRepository, sender SMSSenderPort, retry *RetryPolicy, logger *slog.Logger) *ChannelDispatcher {
	return &ChannelDispatcher{
		channel:   domain.ChannelSMS,
		messages:  messages,
		whitelist: whitelist,
		retry:     retry,
		logger:    logger.With("processor", "sms"),
		plan: func(msg *domain.Message) (*dispatchPlan, error) {
			var req domain.SMSRequest
			if err := json.Unmarshal(msg.Content, &req); err != nil {
				return nil, err
			}
			return &dispatchPlan{
				recipient:   req.MobileNumber,
				destination: req.MobileNumber,
				send:        asOperation(sender.Send, senders.NewSMSSendRequest(req)),
			}, nil
		},
	}
}

// NewWebMessageDispatcher builds the WEB_MESSAGE channel processor, gated by
// party identity.
func NewWebMessageDispatcher(messages domain.MessageRepository, whitelist domain.WhitelistRepository, sender WebMessageSenderPort, retry *RetryPolicy, logger *slog.Logger) *ChannelDispatcher {
	return &ChannelDispatcher{
		channel:   domain.ChannelWebMessage,
		messages:  messages,
		whitelist: whitelist,
		retry:     retry,
		logger:    logger.With("processor", "web_message"),
		plan: func(msg *domain.Message) (*dispatchPlan, error) {
			var req domain.WebMessageRequest
			if err := json.Unmarshal(msg.Content, &req); err != nil {
				return nil, err
			}
			return &dispatchPlan{
				recipient: req.PartyID,
				send:      asOperation(sender.Send, senders.NewWebMessageSendRequest(req)),
			}, nil
		},
	}
}

// NewDigitalMailDispatcher builds the DIGITAL_MAIL channel processor, gated
// by party identity.
func NewDigitalMailDispatcher(messages domain.MessageRepository, whitelist domain.WhitelistRepository, sender DigitalMailSenderPort, retry *RetryPolicy, logger *slog.Logger) *ChannelDispatcher {
	return &ChannelDispatcher{
		channel:   domain.ChannelDigitalMail,
		messages:  messages,
		whitelist: whitelist,
		retry:     retry,
		logger:    logger.With("processor", "digital_mail"),
		plan: func(msg *domain.Message) (*dispatchPlan, error) {
			var req domain.DigitalMailRequest
			if err := json.Unmarshal(msg.Content, &req); err != nil {
				return nil, err
			}
			return &dispatchPlan{
				recipient: req.PartyID,
				send:      asOperation(sender.Send, senders.NewDigitalMailSendRequest(req)),
			}, nil
		},
	}
}

// NewSnailMailDispatcher builds the SNAIL_MAIL channel processor. Physical
// mail is not whitelist-gated.
func NewSnailMailDispatcher(messages domain.MessageRepository, sender SnailMailSenderPort, retry *RetryPolicy, logger *slog.Logger) *ChannelDispatcher {
	return &ChannelDispatcher{
		channel:  domain.ChannelSnailMail,
		messages: messages,
		retry:    retry,
		logger:   logger.With("processor", "snail_mail"),
		plan: func(msg *domain.Message) (*dispatchPlan, error) {
			var req domain.SnailMailRequest
			if err := json.Unmarshal(msg.Content, &req); err != nil {
				return nil, err
			}
			return &dispatchPlan{
				destination: req.Address.String(),
				send:        asOperation(sender.Send, senders.NewSnailMailSendRequest(req)),
			}, nil
		},
	}
}

// NewDigitalInvoiceDispatcher builds the DIGITAL_INVOICE channel processor.
func NewDigitalInvoiceDispatcher(messages domain.MessageRepository, sender DigitalInvoiceSenderPort, retry *RetryPolicy, logger *slog.Logger) *ChannelDispatcher {
	return &ChannelDispatcher{
		channel:  domain.ChannelDigitalInvoice,
		messages: messages,
		retry:    retry,
		logger:   logger.With("processor", "digital_invoice"),
		plan: func(msg *domain.Message) (*dispatchPlan, error) {
			var req domain.DigitalInvoiceRequest
			if err := json.Unmarshal(msg.Content, &req); err != nil {
				return nil, err
			}
			return &dispatchPlan{
				send: asOperation(sender.Send, senders.NewDigitalInvoiceSendRequest(req)),
			}, nil
		},
	}
}

// NewSlackDispatcher builds the SLACK (chat) channel processor.
func NewSlackDispatcher(messages domain.MessageRepository, sender SlackSenderPort, retry *RetryPolicy, logger *slog.Logger) *ChannelDispatcher {
	return &ChannelDispatcher{
		channel:  domain.ChannelSlack,
		messages: messages,
		retry:    retry,
		logger:   logger.With("processor", "slack"),
		plan: func(msg *domain.Message) (*dispatchPlan, error) {
			var req domain.SlackRequest
			if err := json.Unmarshal(msg.Content, &req); err != nil {
				return nil, err
			}
			return &dispatchPlan{
				destination: req.Channel,
				send:        asOperation(sender.Send, senders.NewSlackSendRequest(req)),
			}, nil
		},
	}
}
