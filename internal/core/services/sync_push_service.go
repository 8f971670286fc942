package services

import (
	"context"
	"encoding/json"
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

// SyncLimits caps the work a single sync call may carry.
type SyncLimits struct {
	MaxBatchItems    int
	MaxPayloadBytes  int
	MaxPullLimit     int
	DefaultPullLimit int
}

// DefaultSyncLimits returns the limits used when config leaves them unset.
func DefaultSyncLimits() SyncLimits {
	return SyncLimits{
		MaxBatchItems:    100,
		MaxPayloadBytes:  32 * 1024,
		MaxPullLimit:     500,
		DefaultPullLimit: 200,
	}
}

// syncService implements the SyncSvcFacade interface.
type syncService struct {
	BaseService
	walletRepo portsrepo.WalletRepositoryFacade
	entityRepo portsrepo.EntityRepositoryFacade
	ledger     portsrepo.IdempotencyRepository
	audit      portsrepo.AuditRepository
	devices    portsrepo.DeviceRepository
	recalc     portssvc.RecalcSvcFacade
	limits     SyncLimits
	now        func() time.Time
}

// NewSyncService creates a new sync service with the provided dependencies.
func NewSyncService(
	walletRepo portsrepo.WalletRepositoryFacade,
	entityRepo portsrepo.EntityRepositoryFacade,
	ledger portsrepo.IdempotencyRepository,
	audit portsrepo.AuditRepository,
	devices portsrepo.DeviceRepository,
	recalc portssvc.RecalcSvcFacade,
	limits SyncLimits,
) portssvc.SyncSvcFacade {
	if limits.MaxBatchItems <= 0 {
		limits = DefaultSyncLimits()
	}
	return &syncService{
		walletRepo: walletRepo,
		entityRepo: entityRepo,
		ledger:     ledger,
		audit:      audit,
		devices:    devices,
		recalc:     recalc,
		limits:     limits,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.SyncSvcFacade = (*syncService)(nil)

// pushContext carries the per-call state shared by all items of a batch.
type pushContext struct {
	userID   string
	deviceID string
	walletID string
	member   *domain.WalletMember
	dirty    *recalcSet
}

// Push validates and applies a batch of client mutations in array order.
// Item outcomes are independent: a failing item never rolls back earlier
// ones. Aggregates touched by the batch are recalculated once at the end,
// before the response, so the client observes consistent derived state.
func (s *syncService) Push(ctx context.Context, userID string, req dto.SyncPushRequest) (*dto.SyncPushResponse, error) {
	if len(req.Items) > s.limits.MaxBatchItems {
		return nil, fmt.Errorf("%w: batch of %d items exceeds the maximum of %d",
			apperrors.ErrValidation, len(req.Items), s.limits.MaxBatchItems)
	}

	member, err := s.gateBatch(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	pc := &pushContext{
		userID:   userID,
		deviceID: req.DeviceID,
		walletID: req.WalletID,
		member:   member,
		dirty:    newRecalcSet(),
	}

	results := make([]domain.ItemResult, 0, len(req.Items))
	for _, itemReq := range req.Items {
		item := itemReq.ToDomain()
		result := s.processItem(ctx, pc, item)
		results = append(results, result)
	}

	pc.dirty.flush(ctx, s, req.WalletID)

	if err := s.devices.TouchDevice(ctx, req.DeviceID, s.now()); err != nil {
		s.LogDebug(ctx, "Failed to record device activity", slog.String("error", err.Error()))
	}

	return &dto.SyncPushResponse{
		Results:    results,
		ServerTime: s.now(),
	}, nil
}

// gateBatch runs the call-level ACL check. Every push is mutating, so a
// viewer is rejected before any item runs. A batch that bootstraps a new
// wallet (wallet-create for the request wallet id) passes without a
// membership; the wallet-create item establishes the owner membership.
func (s *syncService) gateBatch(ctx context.Context, userID string, req dto.SyncPushRequest) (*domain.WalletMember, error) {
	_, err := s.walletRepo.FindWalletByID(ctx, req.WalletID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if !batchBootstrapsWallet(req) {
			return nil, fmt.Errorf("%w: wallet %s", apperrors.ErrNotFound, req.WalletID)
		}
		return nil, nil
	}

	member, err := s.walletRepo.FindMember(ctx, req.WalletID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.auditDenial(ctx, req, userID, domain.AuditReasonNotMember)
			return nil, fmt.Errorf("%w: not a wallet member", apperrors.ErrForbidden)
		}
		return nil, err
	}
	if !member.IsActive() {
		s.auditDenial(ctx, req, userID, domain.AuditReasonNotMember)
		return nil, fmt.Errorf("%w: membership removed", apperrors.ErrForbidden)
	}
	if !member.Role.AtLeast(domain.RoleMember) {
		s.auditDenial(ctx, req, userID, domain.AuditReasonInsufficientRole)
		return nil, fmt.Errorf("%w: role %s cannot push mutations", apperrors.ErrForbidden, member.Role)
	}
	return member, nil
}

func batchBootstrapsWallet(req dto.SyncPushRequest) bool {
	for _, item := range req.Items {
		if domain.EntityKind(item.EntityType) == domain.KindWallet &&
			domain.SyncOperation(item.Operation) == domain.OpCreate &&
			item.EntityID == req.WalletID {
			return true
		}
	}
	return false
}

// processItem runs the per-item pipeline: ledger lookup, resolution,
// conflict detection, apply, record. Every path returns an ItemResult;
// item failures never abort the batch.
func (s *syncService) processItem(ctx context.Context, pc *pushContext, item domain.SyncItem) domain.ItemResult {
	base := domain.ItemResult{
		OpID:       item.OpID,
		EntityType: item.EntityType,
		ClientID:   item.EntityID,
	}

	// Replays return the first recorded outcome verbatim, whatever the
	// retried payload says.
	key := domain.IdempotencyKey{
		UserID:   pc.userID,
		DeviceID: pc.deviceID,
		WalletID: pc.walletID,
		OpID:     item.OpID,
	}
	if stored, err := s.ledger.Lookup(ctx, key); err == nil {
		return replayResult(base, stored)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Idempotency ledger lookup failed", slog.String("op_id", item.OpID))
		return s.finishError(ctx, pc, item, base, domain.ErrCodeInternal, "idempotency lookup failed")
	}

	if !domain.KnownKind(item.EntityType) {
		return s.finishError(ctx, pc, item, base, domain.ErrCodeUnknownEntityType,
			fmt.Sprintf("unknown entity type %q", item.EntityType))
	}
	if len(item.Payload) > s.limits.MaxPayloadBytes {
		return s.finishError(ctx, pc, item, base, domain.ErrCodePayloadTooLarge,
			fmt.Sprintf("payload exceeds %d bytes", s.limits.MaxPayloadBytes))
	}
	if pc.member != nil && !pc.member.Role.AtLeast(domain.MinMutationRole(item.EntityType, item.Operation)) {
		return s.finishError(ctx, pc, item, base, domain.ErrCodePermissionDenied,
			fmt.Sprintf("%s on %s requires role %s", item.Operation, item.EntityType,
				domain.MinMutationRole(item.EntityType, item.Operation)))
	}
	if code, msg, ok := checkPayloadWalletID(item.Payload, pc.walletID); !ok {
		return s.finishError(ctx, pc, item, base, code, msg)
	}
	// A wallet document's id is the wallet itself; accepting a foreign id
	// would file another wallet's document under this wallet's scope.
	if item.EntityType == domain.KindWallet && item.EntityID != pc.walletID {
		return s.finishError(ctx, pc, item, base, domain.ErrCodeWalletMismatch,
			fmt.Sprintf("wallet document id %s does not match request wallet %s", item.EntityID, pc.walletID))
	}

	scope := domain.ScopeFor(item.EntityType, pc.walletID, pc.userID)
	existing, err := s.entityRepo.FindEntity(ctx, scope, item.EntityType, item.EntityID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to resolve entity", slog.String("entity_id", item.EntityID))
		return s.finishError(ctx, pc, item, base, domain.ErrCodeInternal, "entity lookup failed")
	}

	switch item.Operation {
	case domain.OpCreate:
		if existing != nil {
			// Create on an existing id is an idempotent success
			// returning the current state, without a version bump.
			result := base
			result.Status = domain.ItemAccepted
			result.DocVersion = &existing.DocVersion
			modified := existing.ServerModified
			result.ServerModified = &modified
			result.ServerRecord = domain.SnapshotOf(existing)
			return s.finish(ctx, pc, item, result, "create")
		}
		return s.applyCreate(ctx, pc, item, base)

	case domain.OpUpdate, domain.OpDelete:
		if item.BaseVersion == nil {
			return s.finishError(ctx, pc, item, base, domain.ErrCodeBaseVersionRequired,
				string(item.Operation)+" requires base_version")
		}
		if existing == nil {
			return s.finishError(ctx, pc, item, base, domain.ErrCodeNotFound,
				fmt.Sprintf("%s %s not found", item.EntityType, item.EntityID))
		}
		// The conflict detector: version equality only, no merge. The
		// client must pull the returned snapshot and resubmit.
		if *item.BaseVersion != existing.DocVersion {
			result := base
			result.Status = domain.ItemConflict
			result.ServerRecord = domain.SnapshotOf(existing)
			return s.finish(ctx, pc, item, result, string(item.Operation))
		}
		if item.Operation == domain.OpDelete {
			return s.applyDelete(ctx, pc, item, existing, base)
		}
		return s.applyUpdate(ctx, pc, item, existing, base)

	default:
		return s.finishError(ctx, pc, item, base, domain.ErrCodeValidation,
			fmt.Sprintf("unknown operation %q", item.Operation))
	}
}

// sanitizeDoc decodes the client payload through the closed schema
// registry, validates it, resolves its cross-entity references within the
// request wallet, and reapplies the derived fields the client may not set.
func (s *syncService) sanitizeDoc(ctx context.Context, pc *pushContext, item domain.SyncItem, prev *domain.SyncedEntity) (json.RawMessage, any, any, *domain.SyncItemError) {
	doc, err := domain.DecodeDoc(item.EntityType, item.Payload)
	if err != nil {
		return nil, nil, nil, &domain.SyncItemError{Code: domain.ErrCodeValidation, Message: err.Error()}
	}
	if err := domain.ValidateDoc(item.EntityType, doc); err != nil {
		return nil, nil, nil, &domain.SyncItemError{Code: domain.ErrCodeValidation, Message: err.Error()}
	}

	for _, ref := range domain.DocRefs(item.EntityType, doc) {
		refScope := domain.ScopeFor(ref.Kind, pc.walletID, pc.userID)
		target, err := s.entityRepo.FindEntity(ctx, refScope, ref.Kind, ref.ID)
		if err != nil || target.IsDeleted {
			return nil, nil, nil, &domain.SyncItemError{
				Code:    domain.ErrCodeUnresolvedReference,
				Message: fmt.Sprintf("%s %s not found in wallet", ref.Kind, ref.ID),
			}
		}
	}

	var prevDoc any
	if prev != nil {
		if prevDoc, err = domain.DecodeDoc(item.EntityType, prev.Payload); err != nil {
			prevDoc = nil
		}
	}
	domain.CarryDerived(item.EntityType, doc, prevDoc)

	payload, err := domain.EncodeDoc(doc)
	if err != nil {
		return nil, nil, nil, &domain.SyncItemError{Code: domain.ErrCodeInternal, Message: "payload encoding failed"}
	}
	return payload, doc, prevDoc, nil
}

func (s *syncService) applyCreate(ctx context.Context, pc *pushContext, item domain.SyncItem, base domain.ItemResult) domain.ItemResult {
	payload, doc, _, itemErr := s.sanitizeDoc(ctx, pc, item, nil)
	if itemErr != nil {
		return s.finishErrorDetail(ctx, pc, item, base, itemErr)
	}

	now := s.now()
	entity := domain.SyncedEntity{
		WalletID:       walletIDForKind(item.EntityType, pc.walletID),
		UserID:         pc.userID,
		Kind:           item.EntityType,
		EntityID:       item.EntityID,
		DocVersion:     1,
		ServerModified: now,
		Payload:        payload,
	}

	// Wallet bootstrap: the relational wallet row and the owner
	// membership come into being alongside the synced document.
	if item.EntityType == domain.KindWallet {
		if err := s.bootstrapWallet(ctx, pc, item, doc, now); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return s.finishError(ctx, pc, item, base, domain.ErrCodeValidation, "wallet already exists")
			}
			s.LogError(ctx, err, "Wallet bootstrap failed", slog.String("wallet_id", pc.walletID))
			return s.finishError(ctx, pc, item, base, domain.ErrCodeInternal, "wallet bootstrap failed")
		}
	}

	if err := s.entityRepo.InsertEntity(ctx, entity); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a create race; surface the winner's state.
			if current, ferr := s.entityRepo.FindEntity(ctx, domain.ScopeFor(item.EntityType, pc.walletID, pc.userID), item.EntityType, item.EntityID); ferr == nil {
				result := base
				result.Status = domain.ItemAccepted
				result.DocVersion = &current.DocVersion
				modified := current.ServerModified
				result.ServerModified = &modified
				result.ServerRecord = domain.SnapshotOf(current)
				return s.finish(ctx, pc, item, result, "create")
			}
		}
		s.LogError(ctx, err, "Failed to insert entity",
			slog.String("kind", string(item.EntityType)),
			slog.String("entity_id", item.EntityID))
		return s.finishError(ctx, pc, item, base, domain.ErrCodeInternal, "persist failed")
	}

	pc.dirty.noteChange(item.EntityType, item.EntityID, doc, nil)

	result := base
	result.Status = domain.ItemAccepted
	version := entity.DocVersion
	result.DocVersion = &version
	result.ServerModified = &entity.ServerModified
	return s.finish(ctx, pc, item, result, "create")
}

func (s *syncService) applyUpdate(ctx context.Context, pc *pushContext, item domain.SyncItem, existing *domain.SyncedEntity, base domain.ItemResult) domain.ItemResult {
	payload, doc, prevDoc, itemErr := s.sanitizeDoc(ctx, pc, item, existing)
	if itemErr != nil {
		return s.finishErrorDetail(ctx, pc, item, base, itemErr)
	}

	now := s.now()
	updated := *existing
	updated.Payload = payload
	updated.DocVersion = existing.DocVersion + 1
	updated.ServerModified = now

	if err := s.entityRepo.UpdateEntityGuarded(ctx, updated, existing.DocVersion); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return s.concurrentConflict(ctx, pc, item, base)
		}
		s.LogError(ctx, err, "Failed to update entity", slog.String("entity_id", item.EntityID))
		return s.finishError(ctx, pc, item, base, domain.ErrCodeInternal, "persist failed")
	}

	if item.EntityType == domain.KindWallet {
		s.applyWalletDoc(ctx, pc.walletID, doc)
	}

	pc.dirty.noteChange(item.EntityType, item.EntityID, doc, prevDoc)

	result := base
	result.Status = domain.ItemAccepted
	version := updated.DocVersion
	result.DocVersion = &version
	result.ServerModified = &updated.ServerModified
	return s.finish(ctx, pc, item, result, "update")
}

func (s *syncService) applyDelete(ctx context.Context, pc *pushContext, item domain.SyncItem, existing *domain.SyncedEntity, base domain.ItemResult) domain.ItemResult {
	now := s.now()
	tombstone := *existing
	tombstone.IsDeleted = true
	tombstone.DeletedAt = &now
	tombstone.DocVersion = existing.DocVersion + 1
	tombstone.ServerModified = now

	if err := s.entityRepo.UpdateEntityGuarded(ctx, tombstone, existing.DocVersion); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return s.concurrentConflict(ctx, pc, item, base)
		}
		s.LogError(ctx, err, "Failed to soft-delete entity", slog.String("entity_id", item.EntityID))
		return s.finishError(ctx, pc, item, base, domain.ErrCodeInternal, "persist failed")
	}

	if item.EntityType == domain.KindWallet {
		s.archiveWallet(ctx, pc.walletID)
	}

	prevDoc, err := domain.DecodeDoc(item.EntityType, existing.Payload)
	if err != nil {
		prevDoc = nil
	}
	pc.dirty.noteChange(item.EntityType, item.EntityID, nil, prevDoc)

	result := base
	result.Status = domain.ItemAccepted
	version := tombstone.DocVersion
	result.DocVersion = &version
	result.ServerModified = &tombstone.ServerModified
	return s.finish(ctx, pc, item, result, "delete")
}

// concurrentConflict handles the rare case where the version guard fails
// between our read and write: another device won; report its state.
func (s *syncService) concurrentConflict(ctx context.Context, pc *pushContext, item domain.SyncItem, base domain.ItemResult) domain.ItemResult {
	result := base
	result.Status = domain.ItemConflict
	scope := domain.ScopeFor(item.EntityType, pc.walletID, pc.userID)
	if current, err := s.entityRepo.FindEntity(ctx, scope, item.EntityType, item.EntityID); err == nil {
		result.ServerRecord = domain.SnapshotOf(current)
	}
	return s.finish(ctx, pc, item, result, string(item.Operation))
}

// bootstrapWallet creates the wallet row and the creator's owner
// membership during a wallet-create push item.
func (s *syncService) bootstrapWallet(ctx context.Context, pc *pushContext, item domain.SyncItem, doc any, now time.Time) error {
	// A wallet created through the REST surface already has its row and
	// owner; only the synced document is new then.
	if _, err := s.walletRepo.FindWalletByID(ctx, item.EntityID); err == nil {
		return nil
	}

	walletDoc, _ := doc.(*domain.WalletDoc)
	if walletDoc == nil {
		walletDoc = &domain.WalletDoc{}
	}
	wallet := domain.Wallet{
		WalletID:  item.EntityID,
		Name:      walletDoc.Name,
		Currency:  walletDoc.Currency,
		Status:    domain.WalletActive,
		OwnerID:   pc.userID,
		CreatedAt: now,
	}
	if err := s.walletRepo.SaveWallet(ctx, wallet); err != nil {
		return err
	}
	membership := domain.WalletMember{
		WalletID: item.EntityID,
		UserID:   pc.userID,
		Role:     domain.RoleOwner,
		Status:   domain.MemberActive,
		JoinedAt: now,
	}
	if err := s.walletRepo.AddMember(ctx, membership); err != nil {
		return err
	}
	owner := membership
	pc.member = &owner
	return nil
}

// applyWalletDoc mirrors accepted wallet-document changes onto the
// relational wallet row. Best effort: the synced row is authoritative for
// other devices either way.
func (s *syncService) applyWalletDoc(ctx context.Context, walletID string, doc any) {
	walletDoc, ok := doc.(*domain.WalletDoc)
	if !ok {
		return
	}
	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		return
	}
	if walletDoc.Name != "" {
		wallet.Name = walletDoc.Name
	}
	if walletDoc.Currency != "" {
		wallet.Currency = walletDoc.Currency
	}
	if walletDoc.Status != "" {
		wallet.Status = walletDoc.Status
	}
	if err := s.walletRepo.UpdateWallet(ctx, *wallet); err != nil {
		s.LogWarn(ctx, "Failed to mirror wallet document onto wallet row",
			slog.String("wallet_id", walletID), slog.String("error", err.Error()))
	}
}

func (s *syncService) archiveWallet(ctx context.Context, walletID string) {
	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		return
	}
	wallet.Status = domain.WalletArchived
	if err := s.walletRepo.UpdateWallet(ctx, *wallet); err != nil {
		s.LogWarn(ctx, "Failed to archive wallet row",
			slog.String("wallet_id", walletID), slog.String("error", err.Error()))
	}
}

// finish records the outcome in the idempotency ledger and the audit log,
// then returns it. Ledger failures degrade the at-most-once guarantee for
// this op_id only; audit failures are always swallowed.
func (s *syncService) finish(ctx context.Context, pc *pushContext, item domain.SyncItem, result domain.ItemResult, action string) domain.ItemResult {
	encoded, err := json.Marshal(result)
	if err == nil {
		record := domain.IdempotencyRecord{
			Key: domain.IdempotencyKey{
				UserID:   pc.userID,
				DeviceID: pc.deviceID,
				WalletID: pc.walletID,
				OpID:     item.OpID,
			},
			Status:    result.Status,
			Result:    encoded,
			CreatedAt: s.now(),
		}
		if err := s.ledger.RecordOnce(ctx, record); err != nil {
			s.LogWarn(ctx, "Failed to record idempotency outcome",
				slog.String("op_id", item.OpID), slog.String("error", err.Error()))
		}
	}

	entry := domain.AuditEntry{
		AuditID:    uuid.NewString(),
		WalletID:   pc.walletID,
		UserID:     pc.userID,
		DeviceID:   pc.deviceID,
		OpID:       item.OpID,
		EntityKind: item.EntityType,
		EntityID:   item.EntityID,
		Action:     action,
		Outcome:    string(result.Status),
		CreatedAt:  s.now(),
	}
	if result.Error != nil {
		entry.Reason = string(result.Error.Code)
	}
	if err := s.audit.AppendAudit(ctx, entry); err != nil {
		// Best effort only: the audit log never affects item outcomes.
		s.LogWarn(ctx, "Audit append failed", slog.String("op_id", item.OpID), slog.String("error", err.Error()))
	}

	return result
}

func (s *syncService) finishError(ctx context.Context, pc *pushContext, item domain.SyncItem, base domain.ItemResult, code domain.ItemErrorCode, msg string) domain.ItemResult {
	return s.finishErrorDetail(ctx, pc, item, base, &domain.SyncItemError{Code: code, Message: msg})
}

func (s *syncService) finishErrorDetail(ctx context.Context, pc *pushContext, item domain.SyncItem, base domain.ItemResult, itemErr *domain.SyncItemError) domain.ItemResult {
	result := base
	result.Status = domain.ItemError
	result.Error = itemErr
	return s.finish(ctx, pc, item, result, string(item.Operation))
}

func (s *syncService) auditDenial(ctx context.Context, req dto.SyncPushRequest, userID, reason string) {
	entry := domain.AuditEntry{
		AuditID:   uuid.NewString(),
		WalletID:  req.WalletID,
		UserID:    userID,
		DeviceID:  req.DeviceID,
		Action:    "denied",
		Outcome:   "rejected",
		Reason:    reason,
		CreatedAt: s.now(),
	}
	if err := s.audit.AppendAudit(ctx, entry); err != nil {
		s.LogWarn(ctx, "Audit append failed for denial", slog.String("error", err.Error()))
	}
}

// replayResult reconstructs the originally recorded outcome for a retried
// op_id. The body is the first result verbatim (original version numbers
// included); only the status marker and already_applied flag change.
func replayResult(base domain.ItemResult, stored *domain.IdempotencyRecord) domain.ItemResult {
	var original domain.ItemResult
	if err := json.Unmarshal(stored.Result, &original); err != nil {
		base.Status = domain.ItemDuplicate
		base.AlreadyApplied = true
		return base
	}
	original.Status = domain.ItemDuplicate
	original.AlreadyApplied = true
	return original
}

// checkPayloadWalletID rejects an explicit wallet_id in the payload that
// contradicts the request wallet. The request context always wins.
func checkPayloadWalletID(raw json.RawMessage, walletID string) (domain.ItemErrorCode, string, bool) {
	if len(raw) == 0 {
		return "", "", true
	}
	var probe struct {
		WalletID string `json:"wallet_id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return domain.ErrCodeValidation, "malformed payload", false
	}
	if probe.WalletID != "" && probe.WalletID != walletID {
		return domain.ErrCodeWalletMismatch,
			fmt.Sprintf("payload wallet_id %s does not match request wallet %s", probe.WalletID, walletID), false
	}
	return "", "", true
}

func walletIDForKind(kind domain.EntityKind, walletID string) string {
	if domain.IsUserScoped(kind) {
		return ""
	}
	return walletID
}
