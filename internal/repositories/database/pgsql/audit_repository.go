package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portsrepo "github.com/alaalsalam/hisabi-backend/internal/core/ports/repositories"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository over the append-only audit log.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAuditRepository implements portsrepo.AuditRepository
var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

func (r *PgxAuditRepository) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	query := `
		INSERT INTO audit_log (
			audit_id, wallet_id, user_id, device_id, op_id,
			entity_kind, entity_id, action, outcome, reason, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		entry.AuditID,
		entry.WalletID,
		entry.UserID,
		entry.DeviceID,
		entry.OpID,
		entry.EntityKind,
		entry.EntityID,
		entry.Action,
		entry.Outcome,
		entry.Reason,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry %s: %w", entry.AuditID, err)
	}
	return nil
}
