package services

import (
	portsrepo "github.com/alaalsalam/hisabi-backend/internal/core/ports/repositories"
	portssvc "github.com/alaalsalam/hisabi-backend/internal/core/ports/services"
	"github.com/alaalsalam/hisabi-backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServicesContainer {
	container := &portssvc.ServicesContainer{}

	container.Wallet = NewWalletService(repos.WalletRepo)

	// The recalc engine comes first since the sync core flushes into it.
	container.Recalc = NewRecalcService(repos.EntityRepo)

	limits := SyncLimits{
		MaxBatchItems:    cfg.SyncMaxBatchItems,
		MaxPayloadBytes:  cfg.SyncMaxPayloadBytes,
		MaxPullLimit:     cfg.SyncMaxPullLimit,
		DefaultPullLimit: cfg.SyncDefaultPullLimit,
	}
	container.Sync = NewSyncService(
		repos.WalletRepo,
		repos.EntityRepo,
		repos.IdempotencyRepo,
		repos.AuditRepo,
		repos.DeviceRepo,
		container.Recalc,
		limits,
	)

	container.Auth = NewAuthService(repos.DeviceRepo, cfg.JWTSecret, cfg.JWTExpiryDuration)

	return container
}
