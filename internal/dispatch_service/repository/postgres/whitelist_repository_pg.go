package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

type pgWhitelistRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPgWhitelistRepository creates the PostgreSQL-backed whitelist gate.
func NewPgWhitelistRepository(db *pgxpool.Pool, logger *slog.Logger) domain.WhitelistRepository {
	return &pgWhitelistRepository{db: db, logger: logger.With("component", "whitelist_repository_pg")}
}

// IsAllowed reports whether recipient has a whitelist entry for channel.
// Presence of the row implies permission; administration of the rows is
// owned elsewhere.
func (r *pgWhitelistRepository) IsAllowed(ctx context.Context, channel domain.ChannelType, recipient string) (bool, error) {
	query := `SELECT 1 FROM whitelist_entries WHERE channel_type = $1 AND recipient = $2 LIMIT 1`

	var one int
	err := r.db.QueryRow(ctx, query, channel, recipient).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.DebugContext(ctx, "Recipient not whitelisted", "channel", channel, "recipient", recipient)
			return false, nil
		}
		return false, fmt.Errorf("checking whitelist: %w", err)
	}
	return true, nil
}
