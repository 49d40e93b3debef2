package senders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// SMSSendRequest is the SMS sending service's wire shape.
type SMSSendRequest struct {
	MobileNumber string `json:"mobile_number"`
	Sender       string `json:"sender,omitempty"`
	Message      string `json:"message"`
	Priority     string `json:"priority,omitempty"`
}

// SMSSender calls the remote SMS sending service.
type SMSSender struct {
	httpSender
}

func NewSMSSender(logger *slog.Logger, baseURL, token string, httpClient *http.Client) *SMSSender {
	return &SMSSender{httpSender: newHTTPSender(logger, "sms", baseURL, token, httpClient)}
}

// NewSMSSendRequest maps the original request into the adapter shape.
func NewSMSSendRequest(req domain.SMSRequest) SMSSendRequest {
	return SMSSendRequest{
		MobileNumber: req.MobileNumber,
		Sender:       req.Sender,
		Message:      req.Message,
		Priority:     req.Priority,
	}
}

func (s *SMSSender) Send(ctx context.Context, req SMSSendRequest) (*SendResult, error) {
	s.logger.DebugContext(ctx, "Sending SMS", "recipient", req.MobileNumber)
	return s.post(ctx, "/send/sms", req)
}
