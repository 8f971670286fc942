package repositories

import (
	"context"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
)

// IdempotencyRepository is the write-once ledger mapping
// (user, device, wallet, op_id) to the first recorded outcome.
type IdempotencyRepository interface {
	// Lookup returns the stored record for a key, or
	// apperrors.ErrNotFound when the op_id has never been processed.
	Lookup(ctx context.Context, key domain.IdempotencyKey) (*domain.IdempotencyRecord, error)

	// RecordOnce stores the outcome for a key. It is a no-op when the
	// key already exists; a recorded outcome is never overwritten.
	RecordOnce(ctx context.Context, record domain.IdempotencyRecord) error
}
