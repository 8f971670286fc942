package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alaalsalam/hisabi-backend/internal/apperrors"
	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portsrepo "github.com/alaalsalam/hisabi-backend/internal/core/ports/repositories"
)

type PgxIdempotencyRepository struct {
	BaseRepository
}

// newPgxIdempotencyRepository creates a new repository over the write-once
// operation ledger.
func newPgxIdempotencyRepository(pool *pgxpool.Pool) portsrepo.IdempotencyRepository {
	return &PgxIdempotencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxIdempotencyRepository implements portsrepo.IdempotencyRepository
var _ portsrepo.IdempotencyRepository = (*PgxIdempotencyRepository)(nil)

func (r *PgxIdempotencyRepository) Lookup(ctx context.Context, key domain.IdempotencyKey) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT status, result, created_at
		FROM sync_ops
		WHERE user_id = $1 AND device_id = $2 AND wallet_id = $3 AND op_id = $4;
	`
	record := domain.IdempotencyRecord{Key: key}
	err := r.Pool.QueryRow(ctx, query, key.UserID, key.DeviceID, key.WalletID, key.OpID).Scan(
		&record.Status, &record.Result, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up op %s: %w", key.OpID, err)
	}
	return &record, nil
}

// RecordOnce inserts the outcome for a key. An existing row wins: the
// first recorded outcome is never overwritten.
func (r *PgxIdempotencyRepository) RecordOnce(ctx context.Context, record domain.IdempotencyRecord) error {
	query := `
		INSERT INTO sync_ops (user_id, device_id, wallet_id, op_id, status, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, device_id, wallet_id, op_id) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query,
		record.Key.UserID,
		record.Key.DeviceID,
		record.Key.WalletID,
		record.Key.OpID,
		record.Status,
		record.Result,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record op %s: %w", record.Key.OpID, err)
	}
	return nil
}
