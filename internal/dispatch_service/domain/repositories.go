package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRepository is the durable store for pending messages. A row exists
// only while the delivery outcome is undetermined.
type MessageRepository interface {
	// Save inserts the message, or updates it in place when the identity
	// already exists (the composite-message resolution re-dispatch).
	Save(ctx context.Context, msg *Message) (*Message, error)
	FindByID(ctx context.Context, messageID uuid.UUID) (*Message, error)
	FindByDeliveryID(ctx context.Context, deliveryID uuid.UUID) (*Message, error)
	FindAllByStatus(ctx context.Context, status MessageStatus) ([]Message, error)
	Delete(ctx context.Context, deliveryID uuid.UUID) error

	// Resolve atomically appends the terminal history entry and deletes the
	// pending row, so a terminal outcome is observably exclusive with the
	// row's continued existence. When the pending row is already gone the
	// whole transition is a no-op and ErrMessageNotFound is returned.
	Resolve(ctx context.Context, deliveryID uuid.UUID, entry *History) error
}

// HistoryRepository is the append-only store of terminal outcomes.
type HistoryRepository interface {
	Append(ctx context.Context, entry *History) (*History, error)
	FindByMessageID(ctx context.Context, messageID uuid.UUID) ([]History, error)
	FindByBatchID(ctx context.Context, batchID uuid.UUID) ([]History, error)
	FindByPartyID(ctx context.Context, partyID string) ([]History, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]History, error)
}

// WhitelistRepository answers whether a recipient may receive messages of a
// given channel type. Presence of an entry implies permission.
type WhitelistRepository interface {
	IsAllowed(ctx context.Context, channel ChannelType, recipient string) (bool, error)
}
