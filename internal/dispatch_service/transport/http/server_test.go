package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *domain.History) (*domain.History, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.History), args.Error(1)
}

func (m *MockHistoryRepository) FindByMessageID(ctx context.Context, messageID uuid.UUID) ([]domain.History, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.History), args.Error(1)
}

func (m *MockHistoryRepository) FindByBatchID(ctx context.Context, batchID uuid.UUID) ([]domain.History, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.History), args.Error(1)
}

func (m *MockHistoryRepository) FindByPartyID(ctx context.Context, partyID string) ([]domain.History, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.History), args.Error(1)
}

func (m *MockHistoryRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]domain.History, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.History), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_Healthz(t *testing.T) {
	srv := NewServer(new(MockHistoryRepository), testLogger())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_StatusFound(t *testing.T) {
	history := new(MockHistoryRepository)
	srv := NewServer(history, testLogger())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	messageID := uuid.New()
	destination := "Storgatan 1, 12345 Stockholm"
	history.On("FindByMessageID", mock.Anything, messageID).Return([]domain.History{
		{
			ID:                  uuid.New(),
			MessageID:           messageID,
			DeliveryID:          uuid.New(),
			ChannelType:         domain.ChannelSnailMail,
			OriginalChannelType: domain.ChannelLetter,
			Status:              domain.StatusSent,
			Destination:         &destination,
			CreatedAt:           time.Now().UTC(),
		},
	}, nil)

	resp, err := http.Get(ts.URL + "/status/" + messageID.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []struct {
		MessageID           uuid.UUID `json:"message_id"`
		ChannelType         string    `json:"channel_type"`
		OriginalChannelType string    `json:"original_channel_type"`
		Status              string    `json:"status"`
		Destination         *string   `json:"destination"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, messageID, out[0].MessageID)
	assert.Equal(t, "SNAIL_MAIL", out[0].ChannelType)
	assert.Equal(t, "LETTER", out[0].OriginalChannelType)
	assert.Equal(t, "SENT", out[0].Status)
	require.NotNil(t, out[0].Destination)
	assert.Equal(t, destination, *out[0].Destination)
}

func TestServer_StatusNotFound(t *testing.T) {
	history := new(MockHistoryRepository)
	srv := NewServer(history, testLogger())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	messageID := uuid.New()
	history.On("FindByMessageID", mock.Anything, messageID).Return(nil, domain.ErrHistoryNotFound)

	resp, err := http.Get(ts.URL + "/status/" + messageID.String())
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_StatusInvalidID(t *testing.T) {
	srv := NewServer(new(MockHistoryRepository), testLogger())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
