package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChannelType identifies a delivery medium. LETTER and MESSAGE are logical
// channels that resolve into one of the concrete ones at dispatch time.
type ChannelType string

const (
	ChannelEmail          ChannelType = "EMAIL"
	ChannelSMS            ChannelType = "SMS"
	ChannelWebMessage     ChannelType = "WEB_MESSAGE"
	ChannelDigitalMail    ChannelType = "DIGITAL_MAIL"
	ChannelSnailMail      ChannelType = "SNAIL_MAIL"
	ChannelDigitalInvoice ChannelType = "DIGITAL_INVOICE"
	ChannelSlack          ChannelType = "SLACK"
	ChannelLetter         ChannelType = "LETTER"
	ChannelMessage        ChannelType = "MESSAGE"
)

// DispatchableChannels lists every channel the recovery handler replays.
var DispatchableChannels = []ChannelType{
	ChannelEmail,
	ChannelSMS,
	ChannelWebMessage,
	ChannelDigitalMail,
	ChannelSnailMail,
	ChannelDigitalInvoice,
	ChannelSlack,
	ChannelLetter,
	ChannelMessage,
}

// MessageStatus defines the lifecycle states of a delivery.
// PENDING is the only non-terminal status; a row with any other status never
// exists in the message store, it lives in history instead.
type MessageStatus string

const (
	StatusPending MessageStatus = "PENDING"

	StatusSent                  MessageStatus = "SENT"
	StatusNotSent               MessageStatus = "NOT_SENT"
	StatusFailed                MessageStatus = "FAILED"
	StatusBlocked               MessageStatus = "BLOCKED"
	StatusNoContactSettings     MessageStatus = "NO_CONTACT_SETTINGS_FOUND"
	StatusNoContactWanted       MessageStatus = "NO_CONTACT_WANTED"
)

// IsTerminal reports whether s ends a delivery's lifecycle.
func (s MessageStatus) IsTerminal() bool {
	return s != StatusPending
}

// Message is the durable working record of one pending delivery.
// Content is the serialized original request and is re-read on every
// dispatch attempt; it is never edited except by the composite-message
// resolution, which rewrites ChannelType and Content together.
type Message struct {
	MessageID           uuid.UUID       `json:"message_id"`
	DeliveryID          uuid.UUID       `json:"delivery_id"`
	BatchID             *uuid.UUID      `json:"batch_id,omitempty"`
	PartyID             *string         `json:"party_id,omitempty"`
	ChannelType         ChannelType     `json:"channel_type"`
	OriginalChannelType ChannelType     `json:"original_channel_type"`
	Status              MessageStatus   `json:"status"`
	Content             json.RawMessage `json:"content"`
	Origin              string          `json:"origin,omitempty"`
	Issuer              string          `json:"issuer,omitempty"`
	MunicipalityID      string          `json:"municipality_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// NewMessage creates a PENDING message for a single delivery; the delivery ID
// equals the message ID until a batch splits it per recipient.
func NewMessage(channel ChannelType, content json.RawMessage) *Message {
	id := uuid.New()
	return &Message{
		MessageID:           id,
		DeliveryID:          id,
		ChannelType:         channel,
		OriginalChannelType: channel,
		Status:              StatusPending,
		Content:             content,
		CreatedAt:           time.Now().UTC(),
	}
}
