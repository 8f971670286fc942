package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/alaalsalam/hisabi-backend/internal/apperrors"
	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portssvc "github.com/alaalsalam/hisabi-backend/internal/core/ports/services"
	"github.com/alaalsalam/hisabi-backend/internal/core/services"
	"github.com/alaalsalam/hisabi-backend/internal/dto"
	"github.com/alaalsalam/hisabi-backend/internal/utils/cursor"
)

type SyncPullServiceTestSuite struct {
	suite.Suite
	wallets  *fakeWalletRepo
	entities *fakeEntityRepo
	devices  *fakeDeviceRepo
	service  portssvc.SyncSvcFacade
}

func (s *SyncPullServiceTestSuite) SetupTest() {
	s.wallets = newFakeWalletRepo()
	s.entities = newFakeEntityRepo()
	s.devices = newFakeDeviceRepo()

	recalc := services.NewRecalcService(s.entities)
	s.service = services.NewSyncService(
		s.wallets, s.entities, newFakeLedger(), &fakeAudit{}, s.devices, recalc,
		services.DefaultSyncLimits(),
	)

	now := time.Now().UTC()
	s.Require().NoError(s.wallets.SaveWallet(context.Background(), domain.Wallet{
		WalletID: testWalletID, Name: "Family", Currency: "USD",
		Status: domain.WalletActive, OwnerID: testOwnerID, CreatedAt: now,
	}))
	for userID, role := range map[string]domain.WalletRole{
		testOwnerID:  domain.RoleOwner,
		testViewerID: domain.RoleViewer,
	} {
		s.Require().NoError(s.wallets.AddMember(context.Background(), domain.WalletMember{
			WalletID: testWalletID, UserID: userID, Role: role,
			Status: domain.MemberActive, JoinedAt: now,
		}))
	}
	s.Require().NoError(s.devices.SaveDevice(context.Background(), domain.Device{
		DeviceID: testDeviceID, UserID: testOwnerID,
		Status: domain.DeviceActive, RegisteredAt: now,
	}))
}

func (s *SyncPullServiceTestSuite) seedRow(e domain.SyncedEntity) {
	if e.DocVersion == 0 {
		e.DocVersion = 1
	}
	s.Require().NoError(s.entities.InsertEntity(context.Background(), e))
}

func (s *SyncPullServiceTestSuite) pull(userID string, req dto.SyncPullRequest) *dto.SyncPullResponse {
	req.DeviceID = testDeviceID
	req.WalletID = testWalletID
	resp, err := s.service.Pull(context.Background(), userID, req)
	s.Require().NoError(err)
	return resp
}

func (s *SyncPullServiceTestSuite) TestPull_ReturnsChangesAndTombstones() {
	now := time.Now().UTC()
	accPayload, err := json.Marshal(domain.AccountDoc{Name: "Main", OpeningBalance: decimal.NewFromInt(10)})
	s.Require().NoError(err)
	s.seedRow(domain.SyncedEntity{
		WalletID: testWalletID, UserID: testOwnerID, Kind: domain.KindAccount,
		EntityID: "acc-1", ServerModified: now, Payload: accPayload,
	})
	deletedAt := now
	s.seedRow(domain.SyncedEntity{
		WalletID: testWalletID, UserID: testOwnerID, Kind: domain.KindTransaction,
		EntityID: "tx-gone", DocVersion: 2, ServerModified: now,
		IsDeleted: true, DeletedAt: &deletedAt, Payload: json.RawMessage(`{"amount":"5"}`),
	})

	resp := s.pull(testOwnerID, dto.SyncPullRequest{})

	s.Require().Len(resp.Changes[string(domain.KindAccount)], 1)
	s.Equal("acc-1", resp.Changes[string(domain.KindAccount)][0].EntityID)

	tombstones := resp.Changes[string(domain.KindTransaction)]
	s.Require().Len(tombstones, 1)
	s.True(tombstones[0].IsDeleted)
	s.NotNil(tombstones[0].DeletedAt)
	s.Nil(tombstones[0].Payload, "tombstones carry no payload")
}

func (s *SyncPullServiceTestSuite) TestPull_ViewerAllowed() {
	resp := s.pull(testViewerID, dto.SyncPullRequest{})
	s.NotEmpty(resp.NextCursor)
}

func (s *SyncPullServiceTestSuite) TestPull_NonMemberForbidden() {
	_, err := s.service.Pull(context.Background(), "stranger", dto.SyncPullRequest{
		DeviceID: testDeviceID, WalletID: testWalletID,
	})
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *SyncPullServiceTestSuite) TestPull_RemovedMemberForbidden() {
	s.Require().NoError(s.wallets.AddMember(context.Background(), domain.WalletMember{
		WalletID: testWalletID, UserID: "ex-member", Role: domain.RoleMember,
		Status: domain.MemberRemoved, JoinedAt: time.Now().UTC(),
	}))
	_, err := s.service.Pull(context.Background(), "ex-member", dto.SyncPullRequest{
		DeviceID: testDeviceID, WalletID: testWalletID,
	})
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *SyncPullServiceTestSuite) TestPull_InvalidCursor() {
	_, err := s.service.Pull(context.Background(), testOwnerID, dto.SyncPullRequest{
		DeviceID: testDeviceID, WalletID: testWalletID, Cursor: "not-base64!!",
	})
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *SyncPullServiceTestSuite) TestPull_LimitTruncationResumes() {
	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"acc-1", "acc-2", "acc-3"} {
		payload, err := json.Marshal(domain.AccountDoc{Name: id})
		s.Require().NoError(err)
		s.seedRow(domain.SyncedEntity{
			WalletID: testWalletID, UserID: testOwnerID, Kind: domain.KindAccount,
			EntityID: id, ServerModified: base.Add(time.Duration(i) * time.Minute),
			Payload: payload,
		})
	}

	first := s.pull(testOwnerID, dto.SyncPullRequest{Limit: 2})
	records := first.Changes[string(domain.KindAccount)]
	s.Require().Len(records, 2)
	s.Equal("acc-1", records[0].EntityID)
	s.Equal("acc-2", records[1].EntityID)

	// A truncated page pins the exact row it stopped at.
	token, err := cursor.Decode(first.NextCursor)
	s.Require().NoError(err)
	s.Require().NotNil(token.Resume)
	s.Equal(string(domain.KindAccount), token.Resume.Kind)
	s.True(token.Resume.Time.Equal(records[1].ServerModified))
	s.Equal("acc-2", token.Resume.EntityID)

	second := s.pull(testOwnerID, dto.SyncPullRequest{Cursor: first.NextCursor, Limit: 2})
	rest := second.Changes[string(domain.KindAccount)]
	s.Require().Len(rest, 1)
	s.Equal("acc-3", rest[0].EntityID)
}

func (s *SyncPullServiceTestSuite) TestPull_SharedTimestampAcrossPages() {
	stamp := time.Now().UTC().Add(-time.Hour)
	for _, id := range []string{"acc-1", "acc-2", "acc-3"} {
		payload, err := json.Marshal(domain.AccountDoc{Name: id})
		s.Require().NoError(err)
		s.seedRow(domain.SyncedEntity{
			WalletID: testWalletID, UserID: testOwnerID, Kind: domain.KindAccount,
			EntityID: id, ServerModified: stamp, Payload: payload,
		})
	}

	first := s.pull(testOwnerID, dto.SyncPullRequest{Limit: 2})
	records := first.Changes[string(domain.KindAccount)]
	s.Require().Len(records, 2)
	s.Equal("acc-1", records[0].EntityID)
	s.Equal("acc-2", records[1].EntityID)

	// The row sharing the boundary timestamp but sorted after the cut
	// still arrives on the next page.
	second := s.pull(testOwnerID, dto.SyncPullRequest{Cursor: first.NextCursor, Limit: 2})
	rest := second.Changes[string(domain.KindAccount)]
	s.Require().Len(rest, 1)
	s.Equal("acc-3", rest[0].EntityID)
}

func (s *SyncPullServiceTestSuite) TestPull_ResumesKindsBeyondTheCut() {
	now := time.Now().UTC()
	accPayload, err := json.Marshal(domain.AccountDoc{Name: "Main"})
	s.Require().NoError(err)
	s.seedRow(domain.SyncedEntity{
		WalletID: testWalletID, UserID: testOwnerID, Kind: domain.KindAccount,
		EntityID: "acc-1", ServerModified: now, Payload: accPayload,
	})
	txPayload, err := json.Marshal(domain.TransactionDoc{
		TxType: domain.TxExpense, AccountID: "acc-1", Amount: decimal.NewFromInt(5), Date: now,
	})
	s.Require().NoError(err)
	s.seedRow(domain.SyncedEntity{
		WalletID: testWalletID, UserID: testOwnerID, Kind: domain.KindTransaction,
		EntityID: "tx-old", ServerModified: now.Add(-time.Minute), Payload: txPayload,
	})

	// The first page spends its whole budget on the account kind, so the
	// transaction kind is never reached even though its row is older.
	first := s.pull(testOwnerID, dto.SyncPullRequest{Limit: 1})
	s.Require().Len(first.Changes[string(domain.KindAccount)], 1)
	s.Empty(first.Changes[string(domain.KindTransaction)])

	second := s.pull(testOwnerID, dto.SyncPullRequest{Cursor: first.NextCursor, Limit: 10})
	txs := second.Changes[string(domain.KindTransaction)]
	s.Require().Len(txs, 1)
	s.Equal("tx-old", txs[0].EntityID)
}

func (s *SyncPullServiceTestSuite) TestPull_CursorNeverRegresses() {
	future := time.Now().UTC().Add(time.Hour)
	resp := s.pull(testOwnerID, dto.SyncPullRequest{Cursor: cursor.Encode(cursor.Token{Watermark: future})})

	s.Empty(resp.Changes)
	next, err := cursor.Decode(resp.NextCursor)
	s.Require().NoError(err)
	s.False(next.Watermark.Before(future), "next cursor must never move behind the request cursor")
}

func (s *SyncPullServiceTestSuite) TestPull_ScrubsProfileSecrets() {
	payload, err := json.Marshal(domain.ProfileDoc{
		DisplayName: "Ala", Email: "ala@example.com", PINHash: "bcrypt-hash",
	})
	s.Require().NoError(err)
	s.seedRow(domain.SyncedEntity{
		UserID: testOwnerID, Kind: domain.KindProfile,
		EntityID: "profile-1", ServerModified: time.Now().UTC(), Payload: payload,
	})

	resp := s.pull(testOwnerID, dto.SyncPullRequest{})
	profiles := resp.Changes[string(domain.KindProfile)]
	s.Require().Len(profiles, 1)

	var fields map[string]any
	s.Require().NoError(json.Unmarshal(profiles[0].Payload, &fields))
	s.Equal("Ala", fields["display_name"])
	s.NotContains(fields, "pin_hash")
}

func (s *SyncPullServiceTestSuite) TestPull_TouchesDevice() {
	s.pull(testOwnerID, dto.SyncPullRequest{})
	device, err := s.devices.FindDeviceByID(context.Background(), testDeviceID)
	s.Require().NoError(err)
	s.NotNil(device.LastSeenAt)
}

func TestSyncPullServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncPullServiceTestSuite))
}
