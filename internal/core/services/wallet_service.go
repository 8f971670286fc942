package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alaalsalam/hisabi-backend/internal/apperrors"
	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portsrepo "github.com/alaalsalam/hisabi-backend/internal/core/ports/repositories"
	portssvc "github.com/alaalsalam/hisabi-backend/internal/core/ports/services"
	"github.com/alaalsalam/hisabi-backend/internal/dto"
)

// walletService implements the WalletSvcFacade interface
type walletService struct {
	BaseService
	walletRepo portsrepo.WalletRepositoryFacade
}

// NewWalletService creates a new wallet service with the provided dependencies
func NewWalletService(walletRepo portsrepo.WalletRepositoryFacade) portssvc.WalletSvcFacade {
	return &walletService{walletRepo: walletRepo}
}

// Ensure walletService implements the WalletSvcFacade interface
var _ portssvc.WalletSvcFacade = (*walletService)(nil)

// RequireMember resolves the caller's membership and enforces minRole.
// It is the gate in front of every wallet-scoped operation.
func (s *walletService) RequireMember(ctx context.Context, walletID, userID string, minRole domain.WalletRole) (*domain.WalletMember, error) {
	_, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: wallet %s", apperrors.ErrNotFound, walletID)
		}
		s.LogError(ctx, err, "Failed to find wallet for membership check",
			slog.String("wallet_id", walletID))
		return nil, err
	}

	member, err := s.walletRepo.FindMember(ctx, walletID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of wallet",
				slog.String("user_id", userID),
				slog.String("wallet_id", walletID))
			return nil, fmt.Errorf("%w: not a wallet member", apperrors.ErrForbidden)
		}
		s.LogError(ctx, err, "Failed to find wallet membership",
			slog.String("user_id", userID),
			slog.String("wallet_id", walletID))
		return nil, err
	}

	if !member.IsActive() {
		return nil, fmt.Errorf("%w: membership removed", apperrors.ErrForbidden)
	}
	if !member.Role.AtLeast(minRole) {
		s.LogDebug(ctx, "User does not have required role",
			slog.String("user_id", userID),
			slog.String("wallet_id", walletID),
			slog.String("user_role", string(member.Role)),
			slog.String("required_role", string(minRole)))
		return nil, fmt.Errorf("%w: requires role %s or higher", apperrors.ErrForbidden, minRole)
	}

	return member, nil
}

// CreateWallet creates a new wallet with the creator as its sole owner.
func (s *walletService) CreateWallet(ctx context.Context, req dto.CreateWalletRequest, creatorUserID string) (*domain.Wallet, error) {
	walletID := req.WalletID
	if walletID == "" {
		walletID = uuid.NewString()
	}

	now := time.Now().UTC()
	wallet := domain.Wallet{
		WalletID:  walletID,
		Name:      req.Name,
		Currency:  req.Currency,
		Status:    domain.WalletActive,
		OwnerID:   creatorUserID,
		CreatedAt: now,
	}

	if err := s.walletRepo.SaveWallet(ctx, wallet); err != nil {
		s.LogError(ctx, err, "Failed to save wallet",
			slog.String("wallet_id", walletID))
		return nil, err
	}

	membership := domain.WalletMember{
		WalletID: walletID,
		UserID:   creatorUserID,
		Role:     domain.RoleOwner,
		Status:   domain.MemberActive,
		JoinedAt: now,
	}
	if err := s.walletRepo.AddMember(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add creator as owner of new wallet",
			slog.String("wallet_id", walletID),
			slog.String("user_id", creatorUserID))
		return nil, err
	}

	s.LogInfo(ctx, "Wallet created",
		slog.String("wallet_id", walletID),
		slog.String("owner_id", creatorUserID))
	return &wallet, nil
}

// FindWalletByID retrieves a wallet the caller is a member of.
func (s *walletService) FindWalletByID(ctx context.Context, walletID, userID string) (*domain.Wallet, error) {
	if _, err := s.RequireMember(ctx, walletID, userID, domain.RoleViewer); err != nil {
		return nil, err
	}
	return s.walletRepo.FindWalletByID(ctx, walletID)
}

// ListUserWallets retrieves all wallets a user is an active member of.
func (s *walletService) ListUserWallets(ctx context.Context, userID string) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListWalletsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list wallets for user",
			slog.String("user_id", userID))
		return nil, err
	}
	if wallets == nil {
		return []domain.Wallet{}, nil
	}
	return wallets, nil
}

// ListMembers retrieves the membership list of a wallet.
func (s *walletService) ListMembers(ctx context.Context, walletID, actingUserID string) ([]domain.WalletMember, error) {
	if _, err := s.RequireMember(ctx, walletID, actingUserID, domain.RoleViewer); err != nil {
		return nil, err
	}
	return s.walletRepo.ListMembers(ctx, walletID)
}

// AddMember adds a user to a wallet. Requires admin.
func (s *walletService) AddMember(ctx context.Context, walletID, actingUserID string, req dto.AddMemberRequest) error {
	if _, err := s.RequireMember(ctx, walletID, actingUserID, domain.RoleAdmin); err != nil {
		return err
	}

	role := domain.WalletRole(req.Role)
	if role == domain.RoleOwner {
		return fmt.Errorf("%w: a wallet has exactly one owner", apperrors.ErrValidation)
	}

	// Re-activate a previously removed membership instead of duplicating it.
	existing, err := s.walletRepo.FindMember(ctx, walletID, req.UserID)
	if err == nil {
		existing.Role = role
		existing.Status = domain.MemberActive
		return s.walletRepo.UpdateMember(ctx, *existing)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	membership := domain.WalletMember{
		WalletID: walletID,
		UserID:   req.UserID,
		Role:     role,
		Status:   domain.MemberActive,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.walletRepo.AddMember(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add wallet member",
			slog.String("wallet_id", walletID),
			slog.String("target_user_id", req.UserID))
		return err
	}

	s.LogInfo(ctx, "Wallet member added",
		slog.String("wallet_id", walletID),
		slog.String("target_user_id", req.UserID),
		slog.String("role", req.Role))
	return nil
}

// RemoveMember marks a membership as removed. Requires admin; the owner
// cannot be removed.
func (s *walletService) RemoveMember(ctx context.Context, walletID, actingUserID, targetUserID string) error {
	if _, err := s.RequireMember(ctx, walletID, actingUserID, domain.RoleAdmin); err != nil {
		return err
	}

	member, err := s.walletRepo.FindMember(ctx, walletID, targetUserID)
	if err != nil {
		return err
	}
	if member.Role == domain.RoleOwner {
		return fmt.Errorf("%w: the wallet owner cannot be removed", apperrors.ErrValidation)
	}

	member.Status = domain.MemberRemoved
	if err := s.walletRepo.UpdateMember(ctx, *member); err != nil {
		s.LogError(ctx, err, "Failed to remove wallet member",
			slog.String("wallet_id", walletID),
			slog.String("target_user_id", targetUserID))
		return err
	}

	s.LogInfo(ctx, "Wallet member removed",
		slog.String("wallet_id", walletID),
		slog.String("target_user_id", targetUserID))
	return nil
}

// ChangeMemberRole changes a member's role. Requires admin; the owner
// role can neither be granted nor taken away here.
func (s *walletService) ChangeMemberRole(ctx context.Context, walletID, actingUserID, targetUserID string, role domain.WalletRole) error {
	if _, err := s.RequireMember(ctx, walletID, actingUserID, domain.RoleAdmin); err != nil {
		return err
	}
	if role == domain.RoleOwner {
		return fmt.Errorf("%w: a wallet has exactly one owner", apperrors.ErrValidation)
	}
	if role.Rank() == 0 {
		return fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}

	member, err := s.walletRepo.FindMember(ctx, walletID, targetUserID)
	if err != nil {
		return err
	}
	if member.Role == domain.RoleOwner {
		return fmt.Errorf("%w: the owner role cannot be changed", apperrors.ErrValidation)
	}

	member.Role = role
	return s.walletRepo.UpdateMember(ctx, *member)
}
