package senders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// DigitalMailSendRequest is the digital-mail service's wire shape.
type DigitalMailSendRequest struct {
	PartyID     string                  `json:"party_id"`
	Subject     string                  `json:"subject"`
	Body        string                  `json:"body"`
	ContentType string                  `json:"content_type,omitempty"`
	Sender      string                  `json:"sender,omitempty"`
	Attachments []domain.MailAttachment `json:"attachments,omitempty"`
}

// DigitalMailSender calls the remote digital-mail service.
type DigitalMailSender struct {
	httpSender
}

func NewDigitalMailSender(logger *slog.Logger, baseURL, token string, httpClient *http.Client) *DigitalMailSender {
	return &DigitalMailSender{httpSender: newHTTPSender(logger, "digital_mail", baseURL, token, httpClient)}
}

// NewDigitalMailSendRequest maps the original request into the adapter shape.
func NewDigitalMailSendRequest(req domain.DigitalMailRequest) DigitalMailSendRequest {
	return DigitalMailSendRequest{
		PartyID:     req.PartyID,
		Subject:     req.Subject,
		Body:        req.Body,
		ContentType: req.ContentType,
		Sender:      req.Sender,
		Attachments: req.Attachments,
	}
}

// NewDigitalMailSendRequestFromLetter builds the digital leg of a letter,
// keeping only attachments eligible for digital mail.
func NewDigitalMailSendRequestFromLetter(req domain.LetterRequest) DigitalMailSendRequest {
	return DigitalMailSendRequest{
		PartyID:     req.PartyID,
		Subject:     req.Subject,
		Body:        req.Body,
		ContentType: req.ContentType,
		Sender:      req.Sender,
		Attachments: req.DigitalMailAttachments(),
	}
}

func (s *DigitalMailSender) Send(ctx context.Context, req DigitalMailSendRequest) (*SendResult, error) {
	s.logger.DebugContext(ctx, "Sending digital mail", "party_id", req.PartyID)
	return s.post(ctx, "/send/digitalmail", req)
}
