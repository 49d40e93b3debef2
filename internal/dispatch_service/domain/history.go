package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// History is the immutable terminal outcome of one delivery. Exactly one row
// is appended per message/delivery identity; rows are never updated or
// deleted by this service.
type History struct {
	ID                  uuid.UUID       `json:"id"`
	MessageID           uuid.UUID       `json:"message_id"`
	DeliveryID          uuid.UUID       `json:"delivery_id"`
	BatchID             *uuid.UUID      `json:"batch_id,omitempty"`
	PartyID             *string         `json:"party_id,omitempty"`
	ChannelType         ChannelType     `json:"channel_type"`
	OriginalChannelType ChannelType     `json:"original_channel_type"`
	Status              MessageStatus   `json:"status"`
	Content             json.RawMessage `json:"content,omitempty"`
	Origin              string          `json:"origin,omitempty"`
	Issuer              string          `json:"issuer,omitempty"`
	MunicipalityID      string          `json:"municipality_id,omitempty"`
	// Destination is the resolved delivery target when one was computed at
	// dispatch time: the postal address for letters, the email address or
	// mobile number for resolved composite messages.
	Destination  *string   `json:"destination,omitempty"`
	StatusDetail *string   `json:"status_detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewHistoryFromMessage builds the terminal record for msg. The channel on
// the history row is the channel actually attempted, which for letter and
// composite flows can differ from the message's original channel.
func NewHistoryFromMessage(msg *Message, channel ChannelType, status MessageStatus) *History {
	return &History{
		ID:                  uuid.New(),
		MessageID:           msg.MessageID,
		DeliveryID:          msg.DeliveryID,
		BatchID:             msg.BatchID,
		PartyID:             msg.PartyID,
		ChannelType:         channel,
		OriginalChannelType: msg.OriginalChannelType,
		Status:              status,
		Content:             msg.Content,
		Origin:              msg.Origin,
		Issuer:              msg.Issuer,
		MunicipalityID:      msg.MunicipalityID,
		CreatedAt:           time.Now().UTC(),
	}
}

// WithDetail attaches a human-readable reason (last send error, whitelist
// verdict) to the history row.
func (h *History) WithDetail(detail string) *History {
	if detail != "" {
		h.StatusDetail = &detail
	}
	return h
}

// WithDestination records the resolved delivery target.
func (h *History) WithDestination(destination string) *History {
	if destination != "" {
		h.Destination = &destination
	}
	return h
}
