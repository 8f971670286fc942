package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/alaalsalam/hisabi-backend/internal/apperrors"
	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portssvc "github.com/alaalsalam/hisabi-backend/internal/core/ports/services"
	"github.com/alaalsalam/hisabi-backend/internal/core/services"
	"github.com/alaalsalam/hisabi-backend/internal/dto"
)

type WalletServiceTestSuite struct {
	suite.Suite
	repo    *fakeWalletRepo
	service portssvc.WalletSvcFacade
}

func (s *WalletServiceTestSuite) SetupTest() {
	s.repo = newFakeWalletRepo()
	s.service = services.NewWalletService(s.repo)
}

func (s *WalletServiceTestSuite) seedWallet() {
	now := time.Now().UTC()
	s.Require().NoError(s.repo.SaveWallet(context.Background(), domain.Wallet{
		WalletID: testWalletID, Name: "Family", Currency: "USD",
		Status: domain.WalletActive, OwnerID: testOwnerID, CreatedAt: now,
	}))
	for userID, role := range map[string]domain.WalletRole{
		testOwnerID:  domain.RoleOwner,
		testMemberID: domain.RoleMember,
		testViewerID: domain.RoleViewer,
	} {
		s.Require().NoError(s.repo.AddMember(context.Background(), domain.WalletMember{
			WalletID: testWalletID, UserID: userID, Role: role,
			Status: domain.MemberActive, JoinedAt: now,
		}))
	}
}

func (s *WalletServiceTestSuite) TestCreateWallet_CreatorBecomesOwner() {
	wallet, err := s.service.CreateWallet(context.Background(), dto.CreateWalletRequest{
		Name: "Household", Currency: "SAR",
	}, testOwnerID)
	s.Require().NoError(err)
	s.NotEmpty(wallet.WalletID, "an id is generated when the client supplies none")
	s.Equal(testOwnerID, wallet.OwnerID)
	s.Equal(domain.WalletActive, wallet.Status)

	member, err := s.repo.FindMember(context.Background(), wallet.WalletID, testOwnerID)
	s.Require().NoError(err)
	s.Equal(domain.RoleOwner, member.Role)
	s.True(member.IsActive())
}

func (s *WalletServiceTestSuite) TestCreateWallet_ClientSuppliedID() {
	wallet, err := s.service.CreateWallet(context.Background(), dto.CreateWalletRequest{
		WalletID: "my-wallet", Name: "Mine",
	}, testOwnerID)
	s.Require().NoError(err)
	s.Equal("my-wallet", wallet.WalletID)

	_, err = s.service.CreateWallet(context.Background(), dto.CreateWalletRequest{
		WalletID: "my-wallet", Name: "Again",
	}, testOwnerID)
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *WalletServiceTestSuite) TestRequireMember_Gates() {
	s.seedWallet()
	ctx := context.Background()

	_, err := s.service.RequireMember(ctx, "no-such-wallet", testOwnerID, domain.RoleViewer)
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.service.RequireMember(ctx, testWalletID, "stranger", domain.RoleViewer)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.service.RequireMember(ctx, testWalletID, testViewerID, domain.RoleMember)
	s.ErrorIs(err, apperrors.ErrForbidden)

	member, err := s.service.RequireMember(ctx, testWalletID, testMemberID, domain.RoleMember)
	s.Require().NoError(err)
	s.Equal(domain.RoleMember, member.Role)

	// A removed membership grants nothing, whatever the role was.
	removed := domain.WalletMember{
		WalletID: testWalletID, UserID: testMemberID,
		Role: domain.RoleMember, Status: domain.MemberRemoved,
	}
	s.Require().NoError(s.repo.UpdateMember(ctx, removed))
	_, err = s.service.RequireMember(ctx, testWalletID, testMemberID, domain.RoleViewer)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *WalletServiceTestSuite) TestAddMember_AdminGated() {
	s.seedWallet()
	ctx := context.Background()

	err := s.service.AddMember(ctx, testWalletID, testMemberID, dto.AddMemberRequest{
		UserID: "newbie", Role: "member",
	})
	s.ErrorIs(err, apperrors.ErrForbidden)

	err = s.service.AddMember(ctx, testWalletID, testOwnerID, dto.AddMemberRequest{
		UserID: "newbie", Role: "member",
	})
	s.Require().NoError(err)
	member, err := s.repo.FindMember(ctx, testWalletID, "newbie")
	s.Require().NoError(err)
	s.Equal(domain.RoleMember, member.Role)
}

func (s *WalletServiceTestSuite) TestAddMember_OwnerRoleRejected() {
	s.seedWallet()
	err := s.service.AddMember(context.Background(), testWalletID, testOwnerID, dto.AddMemberRequest{
		UserID: "pretender", Role: "owner",
	})
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *WalletServiceTestSuite) TestAddMember_ReactivatesRemovedMembership() {
	s.seedWallet()
	ctx := context.Background()

	s.Require().NoError(s.service.RemoveMember(ctx, testWalletID, testOwnerID, testMemberID))
	member, err := s.repo.FindMember(ctx, testWalletID, testMemberID)
	s.Require().NoError(err)
	s.False(member.IsActive())

	s.Require().NoError(s.service.AddMember(ctx, testWalletID, testOwnerID, dto.AddMemberRequest{
		UserID: testMemberID, Role: "admin",
	}))
	member, err = s.repo.FindMember(ctx, testWalletID, testMemberID)
	s.Require().NoError(err)
	s.True(member.IsActive())
	s.Equal(domain.RoleAdmin, member.Role)
}

func (s *WalletServiceTestSuite) TestRemoveMember_OwnerProtected() {
	s.seedWallet()
	err := s.service.RemoveMember(context.Background(), testWalletID, testOwnerID, testOwnerID)
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *WalletServiceTestSuite) TestChangeMemberRole() {
	s.seedWallet()
	ctx := context.Background()

	s.Require().NoError(s.service.ChangeMemberRole(ctx, testWalletID, testOwnerID, testViewerID, domain.RoleMember))
	member, err := s.repo.FindMember(ctx, testWalletID, testViewerID)
	s.Require().NoError(err)
	s.Equal(domain.RoleMember, member.Role)

	err = s.service.ChangeMemberRole(ctx, testWalletID, testOwnerID, testMemberID, domain.RoleOwner)
	s.ErrorIs(err, apperrors.ErrValidation)

	err = s.service.ChangeMemberRole(ctx, testWalletID, testOwnerID, testOwnerID, domain.RoleAdmin)
	s.ErrorIs(err, apperrors.ErrValidation, "the owner role cannot be changed")

	err = s.service.ChangeMemberRole(ctx, testWalletID, testOwnerID, testMemberID, domain.WalletRole("superuser"))
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *WalletServiceTestSuite) TestListUserWallets() {
	s.seedWallet()
	wallets, err := s.service.ListUserWallets(context.Background(), testMemberID)
	s.Require().NoError(err)
	s.Require().Len(wallets, 1)
	s.Equal(testWalletID, wallets[0].WalletID)

	none, err := s.service.ListUserWallets(context.Background(), "stranger")
	s.Require().NoError(err)
	s.Empty(none)
	s.NotNil(none, "an empty list, never nil")
}

func TestWalletServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}
