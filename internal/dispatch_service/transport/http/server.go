// Package http exposes the service's internal HTTP surface: liveness,
// Prometheus metrics and a minimal delivery-status query. The public
// message-intake API lives in a separate service.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// Server is the internal HTTP server.
type Server struct {
	history domain.HistoryRepository
	logger  *slog.Logger
}

// NewServer creates the internal HTTP server.
func NewServer(history domain.HistoryRepository, logger *slog.Logger) *Server {
	return &Server{history: history, logger: logger.With("component", "http_server")}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/status/{messageID}", s.handleStatus)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// historyResponse is the wire shape of one terminal outcome.
type historyResponse struct {
	MessageID           uuid.UUID  `json:"message_id"`
	DeliveryID          uuid.UUID  `json:"delivery_id"`
	BatchID             *uuid.UUID `json:"batch_id,omitempty"`
	ChannelType         string     `json:"channel_type"`
	OriginalChannelType string     `json:"original_channel_type"`
	Status              string     `json:"status"`
	Destination         *string    `json:"destination,omitempty"`
	StatusDetail        *string    `json:"status_detail,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(chi.URLParam(r, "messageID"))
	if err != nil {
		http.Error(w, "invalid message ID", http.StatusBadRequest)
		return
	}

	entries, err := s.history.FindByMessageID(r.Context(), messageID)
	if err != nil {
		if errors.Is(err, domain.ErrHistoryNotFound) {
			http.Error(w, "no delivery outcome recorded", http.StatusNotFound)
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to query history", "message_id", messageID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]historyResponse, 0, len(entries))
	for _, h := range entries {
		out = append(out, historyResponse{
			MessageID:           h.MessageID,
			DeliveryID:          h.DeliveryID,
			BatchID:             h.BatchID,
			ChannelType:         string(h.ChannelType),
			OriginalChannelType: string(h.OriginalChannelType),
			Status:              string(h.Status),
			Destination:         h.Destination,
			StatusDetail:        h.StatusDetail,
			CreatedAt:           h.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to encode status response", "error", err)
	}
}
