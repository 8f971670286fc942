package repositories

import (
	"context"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
)

// AuditRepository appends mutation outcomes to the append-only audit log.
type AuditRepository interface {
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
}
