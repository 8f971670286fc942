package repositories

// RepositoryProvider bundles the repository implementations handed to the
// service layer.
type RepositoryProvider struct {
	WalletRepo      WalletRepositoryFacade
	EntityRepo      EntityRepositoryFacade
	IdempotencyRepo IdempotencyRepository
	AuditRepo       AuditRepository
	DeviceRepo      DeviceRepository
}
