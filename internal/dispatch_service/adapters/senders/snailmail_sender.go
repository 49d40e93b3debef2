package senders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// SnailMailSendRequest is the physical-mail service's wire shape.
type SnailMailSendRequest struct {
	PartyID     string                  `json:"party_id"`
	Department  string                  `json:"department,omitempty"`
	Deviation   string                  `json:"deviation,omitempty"`
	Address     domain.PostalAddress    `json:"address"`
	Attachments []domain.MailAttachment `json:"attachments,omitempty"`
}

// SnailMailSender calls the remote physical-mail service.
type SnailMailSender struct {
	httpSender
}

func NewSnailMailSender(logger *slog.Logger, baseURL, token string, httpClient *http.Client) *SnailMailSender {
	return &SnailMailSender{httpSender: newHTTPSender(logger, "snail_mail", baseURL, token, httpClient)}
}

// NewSnailMailSendRequest maps the original request into the adapter shape.
func NewSnailMailSendRequest(req domain.SnailMailRequest) SnailMailSendRequest {
	return SnailMailSendRequest{
		PartyID:     req.PartyID,
		Department:  req.Department,
		Deviation:   req.Deviation,
		Address:     req.Address,
		Attachments: req.Attachments,
	}
}

// NewSnailMailSendRequestFromLetter builds the physical fallback leg of a
// letter, keeping only attachments eligible for snail mail. The address must
// have been resolved upstream and carried on the letter request.
func NewSnailMailSendRequestFromLetter(req domain.LetterRequest) SnailMailSendRequest {
	out := SnailMailSendRequest{
		PartyID:     req.PartyID,
		Department:  req.Department,
		Deviation:   req.Deviation,
		Attachments: req.SnailMailAttachments(),
	}
	if req.Address != nil {
		out.Address = *req.Address
	}
	return out
}

func (s *SnailMailSender) Send(ctx context.Context, req SnailMailSendRequest) (*SendResult, error) {
	s.logger.DebugContext(ctx, "Sending snail mail", "party_id", req.PartyID, "city", req.Address.City)
	return s.post(ctx, "/send/snailmail", req)
}
