package services

import (
	"context"

	"github.com/alaalsalam/hisabi-backend/internal/dto"
)

// SyncSvcFacade is the synchronization core: batched push with
// idempotent replay and conflict detection, and incremental pull.
type SyncSvcFacade interface {
	// Push validates and applies a batch of client mutations in array
	// order, then recalculates the aggregates the batch touched.
	Push(ctx context.Context, userID string, req dto.SyncPushRequest) (*dto.SyncPushResponse, error)

	// Pull returns incremental changes (tombstones included) since the
	// request cursor, grouped by entity kind.
	Pull(ctx context.Context, userID string, req dto.SyncPullRequest) (*dto.SyncPullResponse, error)
}
