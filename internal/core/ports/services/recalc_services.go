package services

import "context"

// RecalcSvcFacade recomputes derived aggregates from their source rows.
// It is called by push at the end of each batch and by the standalone
// administrative rebuild tooling. A nil/empty id list means all rows of
// that aggregate kind in the wallet.
type RecalcSvcFacade interface {
	RecalcAccountBalances(ctx context.Context, walletID string, accountIDs []string) error
	RecalcBudgets(ctx context.Context, walletID string, budgetIDs []string) error
	RecalcGoals(ctx context.Context, walletID string, goalIDs []string) error
	RecalcDebts(ctx context.Context, walletID string, debtIDs []string) error
	RecalcFunds(ctx context.Context, walletID string, fundIDs []string) error

	// RecalcWallet rebuilds every aggregate category of a wallet.
	RecalcWallet(ctx context.Context, walletID string) error
}
