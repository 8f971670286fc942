package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alaalsalam/hisabi-backend/internal/apperrors"
	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portsrepo "github.com/alaalsalam/hisabi-backend/internal/core/ports/repositories"
)

// In-memory repository fakes. They reproduce the sentinel-error contracts
// of the pgsql implementations so service tests exercise the same paths.

// --- wallet repository ---

type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[string]domain.Wallet
	members map[string]map[string]domain.WalletMember
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{
		wallets: make(map[string]domain.Wallet),
		members: make(map[string]map[string]domain.WalletMember),
	}
}

var _ portsrepo.WalletRepositoryFacade = (*fakeWalletRepo)(nil)

func (f *fakeWalletRepo) FindWalletByID(_ context.Context, walletID string) (*domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[walletID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &w, nil
}

func (f *fakeWalletRepo) ListWalletsByUserID(_ context.Context, userID string) ([]domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Wallet
	for walletID, members := range f.members {
		if m, ok := members[userID]; ok && m.IsActive() {
			out = append(out, f.wallets[walletID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeWalletRepo) SaveWallet(_ context.Context, wallet domain.Wallet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.wallets[wallet.WalletID]; ok {
		return fmt.Errorf("%w: wallet %s", apperrors.ErrDuplicate, wallet.WalletID)
	}
	f.wallets[wallet.WalletID] = wallet
	return nil
}

func (f *fakeWalletRepo) UpdateWallet(_ context.Context, wallet domain.Wallet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.wallets[wallet.WalletID]; !ok {
		return apperrors.ErrNotFound
	}
	f.wallets[wallet.WalletID] = wallet
	return nil
}

func (f *fakeWalletRepo) AddMember(_ context.Context, membership domain.WalletMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[membership.WalletID] == nil {
		f.members[membership.WalletID] = make(map[string]domain.WalletMember)
	}
	if _, ok := f.members[membership.WalletID][membership.UserID]; ok {
		return fmt.Errorf("%w: member %s", apperrors.ErrDuplicate, membership.UserID)
	}
	f.members[membership.WalletID][membership.UserID] = membership
	return nil
}

func (f *fakeWalletRepo) FindMember(_ context.Context, walletID, userID string) (*domain.WalletMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[walletID][userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &m, nil
}

func (f *fakeWalletRepo) ListMembers(_ context.Context, walletID string) ([]domain.WalletMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WalletMember
	for _, m := range f.members[walletID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeWalletRepo) UpdateMember(_ context.Context, membership domain.WalletMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.members[membership.WalletID][membership.UserID]; !ok {
		return apperrors.ErrNotFound
	}
	f.members[membership.WalletID][membership.UserID] = membership
	return nil
}

// --- entity repository ---

type entityKey struct {
	walletID string
	userID   string
	kind     domain.EntityKind
	entityID string
}

func keyFor(scope domain.EntityScope, kind domain.EntityKind, entityID string) entityKey {
	if scope.WalletID != "" {
		return entityKey{walletID: scope.WalletID, kind: kind, entityID: entityID}
	}
	return entityKey{userID: scope.UserID, kind: kind, entityID: entityID}
}

func keyOf(e domain.SyncedEntity) entityKey {
	if e.WalletID != "" {
		return entityKey{walletID: e.WalletID, kind: e.Kind, entityID: e.EntityID}
	}
	return entityKey{userID: e.UserID, kind: e.Kind, entityID: e.EntityID}
}

type fakeEntityRepo struct {
	mu   sync.Mutex
	rows map[entityKey]domain.SyncedEntity
}

func newFakeEntityRepo() *fakeEntityRepo {
	return &fakeEntityRepo{rows: make(map[entityKey]domain.SyncedEntity)}
}

var _ portsrepo.EntityRepositoryFacade = (*fakeEntityRepo)(nil)

func (f *fakeEntityRepo) FindEntity(_ context.Context, scope domain.EntityScope, kind domain.EntityKind, entityID string) (*domain.SyncedEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[keyFor(scope, kind, entityID)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEntityRepo) matchesScope(e domain.SyncedEntity, scope domain.EntityScope) bool {
	if scope.WalletID != "" {
		return e.WalletID == scope.WalletID
	}
	return e.WalletID == "" && e.UserID == scope.UserID
}

func (f *fakeEntityRepo) ListEntities(_ context.Context, scope domain.EntityScope, kind domain.EntityKind) ([]domain.SyncedEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SyncedEntity
	for _, e := range f.rows {
		if e.Kind == kind && !e.IsDeleted && f.matchesScope(e, scope) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out, nil
}

func (f *fakeEntityRepo) ListChangedSince(_ context.Context, scope domain.EntityScope, kind domain.EntityKind, since time.Time, afterID string, limit int) ([]domain.SyncedEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SyncedEntity
	for _, e := range f.rows {
		if e.Kind != kind || !f.matchesScope(e, scope) {
			continue
		}
		changed := e.ServerModified.After(since)
		if !changed && afterID != "" {
			changed = e.ServerModified.Equal(since) && e.EntityID > afterID
		}
		if changed {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServerModified.Equal(out[j].ServerModified) {
			return out[i].EntityID < out[j].EntityID
		}
		return out[i].ServerModified.Before(out[j].ServerModified)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEntityRepo) InsertEntity(_ context.Context, entity domain.SyncedEntity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := keyOf(entity)
	if _, ok := f.rows[key]; ok {
		return fmt.Errorf("%w: %s %s", apperrors.ErrDuplicate, entity.Kind, entity.EntityID)
	}
	f.rows[key] = entity
	return nil
}

func (f *fakeEntityRepo) UpdateEntityGuarded(_ context.Context, entity domain.SyncedEntity, baseVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := keyOf(entity)
	current, ok := f.rows[key]
	if !ok || current.DocVersion != baseVersion {
		return fmt.Errorf("%w: %s %s", apperrors.ErrConflict, entity.Kind, entity.EntityID)
	}
	f.rows[key] = entity
	return nil
}

func (f *fakeEntityRepo) UpdateAggregate(_ context.Context, scope domain.EntityScope, kind domain.EntityKind, entityID string, payload json.RawMessage, modified time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := keyFor(scope, kind, entityID)
	current, ok := f.rows[key]
	if !ok || current.IsDeleted {
		return apperrors.ErrNotFound
	}
	current.Payload = payload
	current.DocVersion++
	current.ServerModified = modified
	f.rows[key] = current
	return nil
}

// --- idempotency ledger ---

type fakeLedger struct {
	mu      sync.Mutex
	records map[domain.IdempotencyKey]domain.IdempotencyRecord
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[domain.IdempotencyKey]domain.IdempotencyRecord)}
}

var _ portsrepo.IdempotencyRepository = (*fakeLedger)(nil)

func (f *fakeLedger) Lookup(_ context.Context, key domain.IdempotencyKey) (*domain.IdempotencyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}

func (f *fakeLedger) RecordOnce(_ context.Context, record domain.IdempotencyRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[record.Key]; ok {
		return nil
	}
	f.records[record.Key] = record
	return nil
}

// --- audit log ---

type fakeAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

var _ portsrepo.AuditRepository = (*fakeAudit)(nil)

func (f *fakeAudit) AppendAudit(_ context.Context, entry domain.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) byReason(reason string) []domain.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range f.entries {
		if e.Reason == reason {
			out = append(out, e)
		}
	}
	return out
}

// --- devices ---

type fakeDeviceRepo struct {
	mu      sync.Mutex
	devices map[string]domain.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[string]domain.Device)}
}

var _ portsrepo.DeviceRepository = (*fakeDeviceRepo)(nil)

func (f *fakeDeviceRepo) FindDeviceByID(_ context.Context, deviceID string) (*domain.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[deviceID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDeviceRepo) SaveDevice(_ context.Context, device domain.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.devices[device.DeviceID]; ok {
		return fmt.Errorf("%w: device %s", apperrors.ErrDuplicate, device.DeviceID)
	}
	f.devices[device.DeviceID] = device
	return nil
}

func (f *fakeDeviceRepo) UpdateDeviceStatus(_ context.Context, deviceID string, status domain.DeviceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[deviceID]
	if !ok {
		return apperrors.ErrNotFound
	}
	d.Status = status
	f.devices[deviceID] = d
	return nil
}

func (f *fakeDeviceRepo) TouchDevice(_ context.Context, deviceID string, seenAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[deviceID]
	if !ok {
		return nil
	}
	d.LastSeenAt = &seenAt
	f.devices[deviceID] = d
	return nil
}
