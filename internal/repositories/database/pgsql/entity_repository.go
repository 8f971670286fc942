package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alaalsalam/hisabi-backend/internal/apperrors"
	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portsrepo "github.com/alaalsalam/hisabi-backend/internal/core/ports/repositories"
)

type PgxEntityRepository struct {
	BaseRepository
}

// newPgxEntityRepository creates a new repository over the synced-entity store.
func newPgxEntityRepository(pool *pgxpool.Pool) portsrepo.EntityRepositoryFacade {
	return &PgxEntityRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxEntityRepository implements portsrepo.EntityRepositoryFacade
var _ portsrepo.EntityRepositoryFacade = (*PgxEntityRepository)(nil)

const entitySelectColumns = `wallet_id, user_id, kind, entity_id, doc_version, server_modified, is_deleted, deleted_at, payload`

// scopeClause builds the predicate selecting rows visible in a scope.
// Wallet-scoped rows key on wallet_id; user-scoped rows carry an empty
// wallet_id and key on user_id instead.
func scopeClause(scope domain.EntityScope, argOffset int) (string, []any) {
	if scope.WalletID != "" {
		return fmt.Sprintf("wallet_id = $%d", argOffset), []any{scope.WalletID}
	}
	return fmt.Sprintf("wallet_id = '' AND user_id = $%d", argOffset), []any{scope.UserID}
}

func scanEntity(row pgx.Row) (*domain.SyncedEntity, error) {
	var e domain.SyncedEntity
	err := row.Scan(
		&e.WalletID, &e.UserID, &e.Kind, &e.EntityID,
		&e.DocVersion, &e.ServerModified, &e.IsDeleted, &e.DeletedAt, &e.Payload,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan entity row: %w", err)
	}
	return &e, nil
}

func (r *PgxEntityRepository) FindEntity(ctx context.Context, scope domain.EntityScope, kind domain.EntityKind, entityID string) (*domain.SyncedEntity, error) {
	clause, args := scopeClause(scope, 1)
	query := fmt.Sprintf(`
		SELECT %s FROM synced_entities
		WHERE %s AND kind = $%d AND entity_id = $%d;
	`, entitySelectColumns, clause, len(args)+1, len(args)+2)
	args = append(args, kind, entityID)
	return scanEntity(r.Pool.QueryRow(ctx, query, args...))
}

func (r *PgxEntityRepository) ListEntities(ctx context.Context, scope domain.EntityScope, kind domain.EntityKind) ([]domain.SyncedEntity, error) {
	clause, args := scopeClause(scope, 1)
	query := fmt.Sprintf(`
		SELECT %s FROM synced_entities
		WHERE %s AND kind = $%d AND is_deleted = false
		ORDER BY entity_id;
	`, entitySelectColumns, clause, len(args)+1)
	args = append(args, kind)
	return r.collectEntities(ctx, query, args...)
}

func (r *PgxEntityRepository) ListChangedSince(ctx context.Context, scope domain.EntityScope, kind domain.EntityKind, since time.Time, afterID string, limit int) ([]domain.SyncedEntity, error) {
	clause, args := scopeClause(scope, 1)
	args = append(args, kind)
	kindIdx := len(args)

	var boundary string
	if afterID == "" {
		args = append(args, since)
		boundary = fmt.Sprintf("server_modified > $%d", len(args))
	} else {
		// Row-value comparison resumes a page that was cut inside a
		// timestamp: rows at since with a larger entity_id still qualify.
		args = append(args, since, afterID)
		boundary = fmt.Sprintf("(server_modified, entity_id) > ($%d, $%d)", len(args)-1, len(args))
	}

	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT %s FROM synced_entities
		WHERE %s AND kind = $%d AND %s
		ORDER BY server_modified, entity_id
		LIMIT $%d;
	`, entitySelectColumns, clause, kindIdx, boundary, len(args))
	return r.collectEntities(ctx, query, args...)
}

func (r *PgxEntityRepository) collectEntities(ctx context.Context, query string, args ...any) ([]domain.SyncedEntity, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entities []domain.SyncedEntity
	for rows.Next() {
		var e domain.SyncedEntity
		if err := rows.Scan(
			&e.WalletID, &e.UserID, &e.Kind, &e.EntityID,
			&e.DocVersion, &e.ServerModified, &e.IsDeleted, &e.DeletedAt, &e.Payload,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entity row: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entity rows: %w", err)
	}
	return entities, nil
}

func (r *PgxEntityRepository) InsertEntity(ctx context.Context, entity domain.SyncedEntity) error {
	query := `
		INSERT INTO synced_entities (
			wallet_id, user_id, kind, entity_id,
			doc_version, server_modified, is_deleted, deleted_at, payload
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		entity.WalletID,
		entity.UserID,
		entity.Kind,
		entity.EntityID,
		entity.DocVersion,
		entity.ServerModified,
		entity.IsDeleted,
		entity.DeletedAt,
		entity.Payload,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: %s %s", apperrors.ErrDuplicate, entity.Kind, entity.EntityID)
		}
		return fmt.Errorf("failed to insert %s %s: %w", entity.Kind, entity.EntityID, err)
	}
	return nil
}

// UpdateEntityGuarded is the version-check-then-write step: the row only
// changes when its stored doc_version still equals baseVersion.
func (r *PgxEntityRepository) UpdateEntityGuarded(ctx context.Context, entity domain.SyncedEntity, baseVersion int64) error {
	scope := domain.EntityScope{WalletID: entity.WalletID, UserID: entity.UserID}
	clause, args := scopeClause(scope, 1)
	n := len(args)
	query := fmt.Sprintf(`
		UPDATE synced_entities
		SET doc_version = $%d, server_modified = $%d, is_deleted = $%d, deleted_at = $%d, payload = $%d
		WHERE %s AND kind = $%d AND entity_id = $%d AND doc_version = $%d;
	`, n+1, n+2, n+3, n+4, n+5, clause, n+6, n+7, n+8)
	args = append(args,
		entity.DocVersion,
		entity.ServerModified,
		entity.IsDeleted,
		entity.DeletedAt,
		entity.Payload,
		entity.Kind,
		entity.EntityID,
		baseVersion,
	)

	result, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", entity.Kind, entity.EntityID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s at version %d", apperrors.ErrConflict, entity.Kind, entity.EntityID, baseVersion)
	}
	return nil
}

// UpdateAggregate overwrites a row's payload with recalculated derived
// fields. The version bump makes the change visible to pulling devices.
func (r *PgxEntityRepository) UpdateAggregate(ctx context.Context, scope domain.EntityScope, kind domain.EntityKind, entityID string, payload json.RawMessage, modified time.Time) error {
	clause, args := scopeClause(scope, 1)
	n := len(args)
	query := fmt.Sprintf(`
		UPDATE synced_entities
		SET payload = $%d, doc_version = doc_version + 1, server_modified = $%d
		WHERE %s AND kind = $%d AND entity_id = $%d AND is_deleted = false;
	`, n+1, n+2, clause, n+3, n+4)
	args = append(args, payload, modified, kind, entityID)

	result, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update aggregate for %s %s: %w", kind, entityID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, kind, entityID)
	}
	return nil
}
