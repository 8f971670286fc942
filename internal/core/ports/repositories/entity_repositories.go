package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
)

// EntityReader defines read operations over the synced-entity store.
type EntityReader interface {
	// FindEntity retrieves one entity (tombstones included) by its key
	// within a scope. Returns apperrors.ErrNotFound when absent.
	FindEntity(ctx context.Context, scope domain.EntityScope, kind domain.EntityKind, entityID string) (*domain.SyncedEntity, error)

	// ListEntities retrieves all non-deleted entities of a kind within a
	// scope. This is the recalc engine's source-row query.
	ListEntities(ctx context.Context, scope domain.EntityScope, kind domain.EntityKind) ([]domain.SyncedEntity, error)

	// ListChangedSince retrieves entities (tombstones included) ordered by
	// (server_modified, entity_id) ascending, capped at limit. An empty
	// afterID selects rows strictly after the since watermark; a non-empty
	// afterID additionally admits rows at exactly since whose entity_id
	// sorts after it, so a page cut inside a timestamp can resume without
	// skipping rows.
	ListChangedSince(ctx context.Context, scope domain.EntityScope, kind domain.EntityKind, since time.Time, afterID string, limit int) ([]domain.SyncedEntity, error)
}

// EntityWriter defines write operations over the synced-entity store.
type EntityWriter interface {
	// InsertEntity persists a brand-new entity row. Returns
	// apperrors.ErrDuplicate when the key already exists.
	InsertEntity(ctx context.Context, entity domain.SyncedEntity) error

	// UpdateEntityGuarded persists an update only if the stored
	// doc_version still equals baseVersion (the version-check-then-write
	// step that is the sole concurrency control). Returns
	// apperrors.ErrConflict when the guard fails.
	UpdateEntityGuarded(ctx context.Context, entity domain.SyncedEntity, baseVersion int64) error

	// UpdateAggregate overwrites the payload of an existing row with
	// recalculated derived fields, bumping doc_version and stamping
	// server_modified so the change surfaces on pull.
	UpdateAggregate(ctx context.Context, scope domain.EntityScope, kind domain.EntityKind, entityID string, payload json.RawMessage, modified time.Time) error
}

// EntityRepositoryFacade combines entity read and write operations.
type EntityRepositoryFacade interface {
	EntityReader
	EntityWriter
}
