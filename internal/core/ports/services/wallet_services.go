package services

import (
	"context"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	"github.com/alaalsalam/hisabi-backend/internal/dto"
)

// WalletAuthorizerSvc is the ACL gate in front of every wallet mutation.
type WalletAuthorizerSvc interface {
	// RequireMember resolves the caller's membership in a wallet and
	// enforces a minimum role. Returns apperrors.ErrNotFound when the
	// wallet does not exist and apperrors.ErrForbidden when the caller
	// is not an active member or ranks below minRole.
	RequireMember(ctx context.Context, walletID, userID string, minRole domain.WalletRole) (*domain.WalletMember, error)
}

// WalletSvcFacade combines wallet CRUD and membership management.
type WalletSvcFacade interface {
	WalletAuthorizerSvc

	CreateWallet(ctx context.Context, req dto.CreateWalletRequest, creatorUserID string) (*domain.Wallet, error)
	FindWalletByID(ctx context.Context, walletID, userID string) (*domain.Wallet, error)
	ListUserWallets(ctx context.Context, userID string) ([]domain.Wallet, error)
	ListMembers(ctx context.Context, walletID, actingUserID string) ([]domain.WalletMember, error)
	AddMember(ctx context.Context, walletID, actingUserID string, req dto.AddMemberRequest) error
	RemoveMember(ctx context.Context, walletID, actingUserID, targetUserID string) error
	ChangeMemberRole(ctx context.Context, walletID, actingUserID, targetUserID string, role domain.WalletRole) error
}
