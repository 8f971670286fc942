package repositories

import (
	"context"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
)

// WalletReader defines read operations for wallet data
type WalletReader interface {
	// FindWalletByID retrieves a specific wallet by its ID.
	FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)

	// ListWalletsByUserID retrieves all wallets a user is an active member of.
	ListWalletsByUserID(ctx context.Context, userID string) ([]domain.Wallet, error)
}

// WalletWriter defines write operations for wallet data
type WalletWriter interface {
	// SaveWallet persists a new wallet.
	SaveWallet(ctx context.Context, wallet domain.Wallet) error

	// UpdateWallet updates mutable wallet fields (name, currency, status).
	UpdateWallet(ctx context.Context, wallet domain.Wallet) error
}

// WalletMembershipManager defines operations for managing wallet memberships
type WalletMembershipManager interface {
	// AddMember adds a user to a wallet with a specific role.
	AddMember(ctx context.Context, membership domain.WalletMember) error

	// FindMember retrieves the membership of a user in a wallet.
	FindMember(ctx context.Context, walletID, userID string) (*domain.WalletMember, error)

	// ListMembers retrieves all memberships of a wallet, removed ones included.
	ListMembers(ctx context.Context, walletID string) ([]domain.WalletMember, error)

	// UpdateMember persists a role or status change for a membership.
	UpdateMember(ctx context.Context, membership domain.WalletMember) error
}

// WalletRepositoryFacade combines all wallet-related repository interfaces
type WalletRepositoryFacade interface {
	WalletReader
	WalletWriter
	WalletMembershipManager
}
