package services

// ServicesContainer bundles the service facades handed to the HTTP layer.
type ServicesContainer struct {
	Wallet WalletSvcFacade
	Sync   SyncSvcFacade
	Recalc RecalcSvcFacade
	Auth   AuthSvcFacade
}
