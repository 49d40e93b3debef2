// Package feedback is the HTTP client for the external feedback-settings
// service, which owns per-party channel preferences.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// Client implements domain.PreferenceResolver against the feedback-settings
// service.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a feedback-settings client. A nil httpClient gets a
// default with a 10s timeout.
func NewClient(logger *slog.Logger, baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		logger:     logger.With("component", "feedback_client"),
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
	}
}

// PreferencesFor returns all feedback preferences registered for partyID.
// An empty list is a valid answer, not an error.
func (c *Client) PreferencesFor(ctx context.Context, partyID string) ([]domain.FeedbackPreference, error) {
	reqURL := fmt.Sprintf("%s/settings?partyId=%s", c.baseURL, url.QueryEscape(partyID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building feedback settings request: %w", err)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling feedback settings service: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("feedback settings service returned status %d", httpResp.StatusCode)
	}

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feedback settings response: %w", err)
	}

	var prefs []domain.FeedbackPreference
	if err := json.Unmarshal(respBytes, &prefs); err != nil {
		return nil, fmt.Errorf("decoding feedback settings response: %w", err)
	}

	c.logger.DebugContext(ctx, "Fetched feedback preferences", "party_id", partyID, "count", len(prefs))
	return prefs, nil
}
