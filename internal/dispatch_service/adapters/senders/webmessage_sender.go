package senders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// WebMessageSendRequest is the web-message service's wire shape.
type WebMessageSendRequest struct {
	PartyID     string                        `json:"party_id"`
	Message     string                        `json:"message"`
	OepInstance string                        `json:"oep_instance,omitempty"`
	Attachments []domain.WebMessageAttachment `json:"attachments,omitempty"`
}

// WebMessageSender calls the remote web-message service.
type WebMessageSender struct {
	httpSender
}

func NewWebMessageSender(logger *slog.Logger, baseURL, token string, httpClient *http.Client) *WebMessageSender {
	return &WebMessageSender{httpSender: newHTTPSender(logger, "web_message", baseURL, token, httpClient)}
}

// NewWebMessageSendRequest maps the original request into the adapter shape.
func NewWebMessageSendRequest(req domain.WebMessageRequest) WebMessageSendRequest {
	return WebMessageSendRequest{
		PartyID:     req.PartyID,
		Message:     req.Message,
		OepInstance: req.OepInstance,
		Attachments: req.Attachments,
	}
}

func (s *WebMessageSender) Send(ctx context.Context, req WebMessageSendRequest) (*SendResult, error) {
	s.logger.DebugContext(ctx, "Sending web message", "party_id", req.PartyID)
	return s.post(ctx, "/send/webmessage", req)
}
