package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

type pgMessageRepository struct {
	db *pgxpool.Pool
}

// NewPgMessageRepository creates the PostgreSQL-backed message store.
func NewPgMessageRepository(db *pgxpool.Pool) domain.MessageRepository {
	return &pgMessageRepository{db: db}
}

const messageColumns = `message_id, delivery_id, batch_id, party_id, channel_type,
	original_channel_type, status, content, origin, issuer, municipality_id, created_at`

func scanMessage(row pgx.Row) (*domain.Message, error) {
	msg := &domain.Message{}
	err := row.Scan(
		&msg.MessageID, &msg.DeliveryID, &msg.BatchID, &msg.PartyID, &msg.ChannelType,
		&msg.OriginalChannelType, &msg.Status, &msg.Content, &msg.Origin, &msg.Issuer,
		&msg.MunicipalityID, &msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

func (r *pgMessageRepository) Save(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if msg.Status == "" {
		msg.Status = domain.StatusPending
	}

	// Upsert on delivery_id: the composite-message resolution rewrites the
	// channel and content of an existing row under the same identity.
	query := `
		INSERT INTO pending_messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (delivery_id) DO UPDATE SET
			channel_type = EXCLUDED.channel_type,
			status = EXCLUDED.status,
			content = EXCLUDED.content
	`
	_, err := r.db.Exec(ctx, query,
		msg.MessageID, msg.DeliveryID, msg.BatchID, msg.PartyID, msg.ChannelType,
		msg.OriginalChannelType, msg.Status, msg.Content, msg.Origin, msg.Issuer,
		msg.MunicipalityID, msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("saving pending message: %w", err)
	}
	return msg, nil
}

func (r *pgMessageRepository) FindByID(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM pending_messages WHERE message_id = $1 LIMIT 1`
	return scanMessage(r.db.QueryRow(ctx, query, messageID))
}

func (r *pgMessageRepository) FindByDeliveryID(ctx context.Context, deliveryID uuid.UUID) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM pending_messages WHERE delivery_id = $1`
	return scanMessage(r.db.QueryRow(ctx, query, deliveryID))
}

func (r *pgMessageRepository) FindAllByStatus(ctx context.Context, status domain.MessageStatus) ([]domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM pending_messages WHERE status = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("querying pending messages by status: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *msg)
	}
	return out, rows.Err()
}

func (r *pgMessageRepository) Delete(ctx context.Context, deliveryID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pending_messages WHERE delivery_id = $1`, deliveryID)
	if err != nil {
		return fmt.Errorf("deleting pending message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// Resolve appends the history entry and deletes the pending row in one
// transaction. The delete runs first; zero affected rows means another
// worker already resolved this delivery, in which case no history row is
// written either, keeping at most one terminal record per identity.
func (r *pgMessageRepository) Resolve(ctx context.Context, deliveryID uuid.UUID, entry *domain.History) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM pending_messages WHERE delivery_id = $1`, deliveryID)
		if err != nil {
			return fmt.Errorf("deleting pending message: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrMessageNotFound
		}

		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now().UTC()
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO history (id, message_id, delivery_id, batch_id, party_id, channel_type,
				original_channel_type, status, content, origin, issuer, municipality_id,
				destination, status_detail, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			entry.ID, entry.MessageID, entry.DeliveryID, entry.BatchID, entry.PartyID,
			entry.ChannelType, entry.OriginalChannelType, entry.Status, entry.Content,
			entry.Origin, entry.Issuer, entry.MunicipalityID, entry.Destination,
			entry.StatusDetail, entry.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("appending history entry: %w", err)
		}
		return nil
	})
}
