package senders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// SlackSendRequest is the chat webhook's wire shape.
type SlackSendRequest struct {
	Token   string `json:"token,omitempty"`
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// SlackSender posts chat messages to the configured webhook endpoint.
type SlackSender struct {
	httpSender
}

func NewSlackSender(logger *slog.Logger, baseURL, token string, httpClient *http.Client) *SlackSender {
	return &SlackSender{httpSender: newHTTPSender(logger, "slack", baseURL, token, httpClient)}
}

// NewSlackSendRequest maps the original request into the adapter shape.
func NewSlackSendRequest(req domain.SlackRequest) SlackSendRequest {
	return SlackSendRequest{
		Token:   req.Token,
		Channel: req.Channel,
		Text:    req.Message,
	}
}

func (s *SlackSender) Send(ctx context.Context, req SlackSendRequest) (*SendResult, error) {
	s.logger.DebugContext(ctx, "Sending chat message", "channel", req.Channel)
	return s.post(ctx, "/send/slack", req)
}
