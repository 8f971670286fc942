package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/alaalsalam/hisabi-backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		WalletRepo:      newPgxWalletRepository(dbPool),
		EntityRepo:      newPgxEntityRepository(dbPool),
		IdempotencyRepo: newPgxIdempotencyRepository(dbPool),
		AuditRepo:       newPgxAuditRepository(dbPool),
		DeviceRepo:      newPgxDeviceRepository(dbPool),
	}
}
