package senders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// EmailSendRequest is the email sending service's wire shape.
type EmailSendRequest struct {
	EmailAddress string                   `json:"email_address"`
	Subject      string                   `json:"subject"`
	Message      string                   `json:"message"`
	HTMLMessage  string                   `json:"html_message,omitempty"`
	SenderName   string                   `json:"sender_name,omitempty"`
	SenderEmail  string                   `json:"sender_email,omitempty"`
	ReplyTo      string                   `json:"reply_to,omitempty"`
	Headers      map[string]string        `json:"headers,omitempty"`
	Attachments  []domain.EmailAttachment `json:"attachments,omitempty"`
}

// EmailSender calls the remote email sending service.
type EmailSender struct {
	httpSender
}

// NewEmailSender creates an email adapter. A nil httpClient gets a default
// with a 10s timeout.
func NewEmailSender(logger *slog.Logger, baseURL, token string, httpClient *http.Client) *EmailSender {
	return &EmailSender{httpSender: newHTTPSender(logger, "email", baseURL, token, httpClient)}
}

// NewEmailSendRequest maps the original request into the adapter shape.
func NewEmailSendRequest(req domain.EmailRequest) EmailSendRequest {
	return EmailSendRequest{
		EmailAddress: req.EmailAddress,
		Subject:      req.Subject,
		Message:      req.Message,
		HTMLMessage:  req.HTMLMessage,
		SenderName:   req.SenderName,
		SenderEmail:  req.SenderEmail,
		ReplyTo:      req.ReplyTo,
		Headers:      req.Headers,
		Attachments:  req.Attachments,
	}
}

func (s *EmailSender) Send(ctx context.Context, req EmailSendRequest) (*SendResult, error) {
	s.logger.DebugContext(ctx, "Sending email", "recipient", req.EmailAddress)
	return s.post(ctx, "/send/email", req)
}
