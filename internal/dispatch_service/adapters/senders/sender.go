// Package senders wraps the remote channel sending microservices. Each
// adapter owns its wire format; callers only see a boolean-ish outcome.
package senders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// SendResult is the outcome of one remote send attempt. Sent=false with a
// nil error means the service answered but declined or could not deliver;
// both cases are retryable from the pipeline's point of view.
type SendResult struct {
	Sent   bool
	Detail string
}

// sendResponse is the common success envelope of the sending services.
type sendResponse struct {
	Sent      bool   `json:"sent"`
	Delivered bool   `json:"delivered"`
	Message   string `json:"message,omitempty"`
}

// httpSender is the shared transport for every channel adapter.
type httpSender struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	token      string
}

func newHTTPSender(logger *slog.Logger, name, baseURL, token string, httpClient *http.Client) httpSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return httpSender{
		logger:     logger.With("sender", name),
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
	}
}

// post marshals body, POSTs it to baseURL+path and classifies the response.
// Transport failures and non-2xx statuses return an error; a 2xx response
// with a falsy sent/delivered flag returns Sent=false without error.
func (s httpSender) post(ctx context.Context, path string, body any) (*SendResult, error) {
	reqBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling send request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewBuffer(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("building send request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.token)
	}

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling sending service: %w", err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response (status %d): %w", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		s.logger.WarnContext(ctx, "Sending service returned error status",
			"status_code", httpResp.StatusCode, "body", string(respBytes))
		return nil, fmt.Errorf("sending service returned status %d", httpResp.StatusCode)
	}

	var resp sendResponse
	if len(respBytes) > 0 {
		if err := json.Unmarshal(respBytes, &resp); err != nil {
			return nil, fmt.Errorf("decoding send response: %w", err)
		}
	}

	return &SendResult{Sent: resp.Sent || resp.Delivered, Detail: resp.Message}, nil
}
