package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

type pgHistoryRepository struct {
	db *pgxpool.Pool
}

// NewPgHistoryRepository creates the PostgreSQL-backed history store.
func NewPgHistoryRepository(db *pgxpool.Pool) domain.HistoryRepository {
	return &pgHistoryRepository{db: db}
}

const historyColumns = `id, message_id, delivery_id, batch_id, party_id, channel_type,
	original_channel_type, status, content, origin, issuer, municipality_id,
	destination, status_detail, created_at`

func (r *pgHistoryRepository) Append(ctx context.Context, entry *domain.History) (*domain.History, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO history (` + historyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.MessageID, entry.DeliveryID, entry.BatchID, entry.PartyID,
		entry.ChannelType, entry.OriginalChannelType, entry.Status, entry.Content,
		entry.Origin, entry.Issuer, entry.MunicipalityID, entry.Destination,
		entry.StatusDetail, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("appending history entry: %w", err)
	}
	return entry, nil
}

func (r *pgHistoryRepository) queryHistory(ctx context.Context, query string, args ...any) ([]domain.History, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []domain.History
	for rows.Next() {
		var h domain.History
		err := rows.Scan(
			&h.ID, &h.MessageID, &h.DeliveryID, &h.BatchID, &h.PartyID, &h.ChannelType,
			&h.OriginalChannelType, &h.Status, &h.Content, &h.Origin, &h.Issuer,
			&h.MunicipalityID, &h.Destination, &h.StatusDetail, &h.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrHistoryNotFound
	}
	return out, nil
}

func (r *pgHistoryRepository) FindByMessageID(ctx context.Context, messageID uuid.UUID) ([]domain.History, error) {
	query := `SELECT ` + historyColumns + ` FROM history WHERE message_id = $1 ORDER BY created_at`
	return r.queryHistory(ctx, query, messageID)
}

func (r *pgHistoryRepository) FindByBatchID(ctx context.Context, batchID uuid.UUID) ([]domain.History, error) {
	query := `SELECT ` + historyColumns + ` FROM history WHERE batch_id = $1 ORDER BY created_at`
	return r.queryHistory(ctx, query, batchID)
}

func (r *pgHistoryRepository) FindByPartyID(ctx context.Context, partyID string) ([]domain.History, error) {
	query := `SELECT ` + historyColumns + ` FROM history WHERE party_id = $1 ORDER BY created_at`
	return r.queryHistory(ctx, query, partyID)
}

func (r *pgHistoryRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]domain.History, error) {
	query := `SELECT ` + historyColumns + ` FROM history WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at`
	return r.queryHistory(ctx, query, from, to)
}
